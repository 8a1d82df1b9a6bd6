package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_pos_backend/internal/models"

	"github.com/lib/pq"
)

// OrderRepository defines the interface for order-related database operations.
// GetOrdersInRange and GetCanceledOrdersInRange are the two upstream fetches
// the report engine runs concurrently.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrdersInRange(start, end time.Time) ([]models.Order, error)
	GetCanceledOrdersInRange(start, end time.Time) ([]models.CanceledOrder, error)
	CreateCanceledOrder(executor SQLExecutor, canceled *models.CanceledOrder) (int64, error)
	UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string) error
	LastOrderNumber() (string, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, daily_serial, total_amount, payment_method,
	delivery_platform, status, cash_amount, card_amount, cash_received,
	change_amount, created_at, created_by`

// scanOrder reads one order row in orderColumns order.
func scanOrder(s scanner, o *models.Order) error {
	var (
		platform                         sql.NullString
		cash, card, received, changeAmnt sql.NullFloat64
	)
	err := s.Scan(
		&o.ID, &o.OrderNumber, &o.DailySerial, &o.TotalAmount, &o.PaymentMethod,
		&platform, &o.Status, &cash, &card, &received,
		&changeAmnt, &o.CreatedAt, &o.CreatedBy,
	)
	if err != nil {
		return err
	}
	if platform.Valid {
		p := platform.String
		o.DeliveryPlatform = &p
	}
	assign := func(dst **models.Money, src sql.NullFloat64) {
		if src.Valid {
			m := models.Money(src.Float64)
			*dst = &m
		}
	}
	assign(&o.CashAmount, cash)
	assign(&o.CardAmount, card)
	assign(&o.CashReceived, received)
	assign(&o.ChangeAmount, changeAmnt)
	return nil
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (order_number, daily_serial, total_amount, payment_method, delivery_platform,
	             status, cash_amount, card_amount, cash_received, change_amount,
	             created_at, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.OrderNumber, order.DailySerial, order.TotalAmount, order.PaymentMethod, order.DeliveryPlatform,
		order.Status, order.CashAmount, order.CardAmount, order.CashReceived, order.ChangeAmount,
		order.CreatedAt, order.CreatedBy,
	).Scan(&order.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: order number %s (constraint: %s)", ErrDuplicateKey, order.OrderNumber, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items
	            (order_id, name, name_en, name_ar, type, quantity, unit_price, total_price)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	err := executor.QueryRow(query,
		item.OrderID, item.Name, item.NameEn, item.NameAr, item.Type,
		item.Quantity, item.UnitPrice, item.TotalPrice,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := scanOrder(r.db.QueryRow(query, orderID), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT id, order_id, name, name_en, name_ar, type, quantity, unit_price, total_price
	          FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.Name, &item.NameEn, &item.NameAr,
			&item.Type, &item.Quantity, &item.UnitPrice, &item.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() as total_count FROM orders`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.PaymentMethod != nil && *filters.PaymentMethod != "" {
		conditions = append(conditions, fmt.Sprintf("payment_method = $%d", argCounter))
		args = append(args, *filters.PaymentMethod)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			endOfDay := startOfDay.AddDate(0, 0, 1)
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d AND created_at < $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o                                models.Order
			platform                         sql.NullString
			cash, card, received, changeAmnt sql.NullFloat64
		)
		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.DailySerial, &o.TotalAmount, &o.PaymentMethod,
			&platform, &o.Status, &cash, &card, &received,
			&changeAmnt, &o.CreatedAt, &o.CreatedBy,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		if platform.Valid {
			p := platform.String
			o.DeliveryPlatform = &p
		}
		if cash.Valid {
			m := models.Money(cash.Float64)
			o.CashAmount = &m
		}
		if card.Valid {
			m := models.Money(card.Float64)
			o.CardAmount = &m
		}
		if received.Valid {
			m := models.Money(received.Float64)
			o.CashReceived = &m
		}
		if changeAmnt.Valid {
			m := models.Money(changeAmnt.Float64)
			o.ChangeAmount = &m
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

// GetOrdersInRange fetches completed and modified orders in [start, end),
// ordered by created_at ascending, with their items attached.
func (r *orderRepository) GetOrdersInRange(start, end time.Time) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT ` + orderColumns + `
	          FROM orders
	          WHERE status IN ('completed', 'modified')
	            AND created_at >= $1 AND created_at < $2
	          ORDER BY created_at ASC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying orders in range: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var orderIDs []int64
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("%w: scanning order in range: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating orders in range: %v", ErrDatabaseError, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.getItemsForOrders(orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].OrderItems = itemsByOrder[orders[i].ID]
	}
	return orders, nil
}

// getItemsForOrders loads the items of many orders in one round trip.
func (r *orderRepository) getItemsForOrders(orderIDs []int64) (map[int64][]models.OrderItem, error) {
	query := `SELECT id, order_id, name, name_en, name_ar, type, quantity, unit_price, total_price
	          FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`

	rows, err := r.db.Query(query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items batch: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	itemsByOrder := map[int64][]models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.Name, &item.NameEn, &item.NameAr,
			&item.Type, &item.Quantity, &item.UnitPrice, &item.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning order item batch row: %v", ErrDatabaseError, err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item batch rows: %v", ErrDatabaseError, err)
	}
	return itemsByOrder, nil
}

// GetCanceledOrdersInRange fetches cancellations in [start, end) ordered by
// canceled_at ascending, each joined with its original order snapshot.
func (r *orderRepository) GetCanceledOrdersInRange(start, end time.Time) ([]models.CanceledOrder, error) {
	canceled := []models.CanceledOrder{}
	query := `SELECT c.id, c.original_order_id, c.canceled_at, c.canceled_by, c.reason,
	                 o.id, o.order_number, o.daily_serial, o.total_amount, o.payment_method,
	                 o.delivery_platform, o.status, o.cash_amount, o.card_amount, o.cash_received,
	                 o.change_amount, o.created_at, o.created_by
	          FROM canceled_orders c
	          JOIN orders o ON c.original_order_id = o.id
	          WHERE c.canceled_at >= $1 AND c.canceled_at < $2
	          ORDER BY c.canceled_at ASC`

	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying canceled orders in range: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                                models.CanceledOrder
			o                                models.Order
			reason, platform                 sql.NullString
			cash, card, received, changeAmnt sql.NullFloat64
		)
		err := rows.Scan(
			&c.ID, &c.OriginalOrderID, &c.CanceledAt, &c.CanceledBy, &reason,
			&o.ID, &o.OrderNumber, &o.DailySerial, &o.TotalAmount, &o.PaymentMethod,
			&platform, &o.Status, &cash, &card, &received,
			&changeAmnt, &o.CreatedAt, &o.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning canceled order: %v", ErrDatabaseError, err)
		}
		if reason.Valid {
			s := reason.String
			c.Reason = &s
		}
		if platform.Valid {
			p := platform.String
			o.DeliveryPlatform = &p
		}
		if cash.Valid {
			m := models.Money(cash.Float64)
			o.CashAmount = &m
		}
		if card.Valid {
			m := models.Money(card.Float64)
			o.CardAmount = &m
		}
		if received.Valid {
			m := models.Money(received.Float64)
			o.CashReceived = &m
		}
		if changeAmnt.Valid {
			m := models.Money(changeAmnt.Float64)
			o.ChangeAmount = &m
		}
		c.Order = &o
		canceled = append(canceled, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating canceled order rows: %v", ErrDatabaseError, err)
	}
	return canceled, nil
}

func (r *orderRepository) CreateCanceledOrder(executor SQLExecutor, canceled *models.CanceledOrder) (int64, error) {
	query := `INSERT INTO canceled_orders (original_order_id, canceled_at, canceled_by, reason)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	if canceled.CanceledAt.IsZero() {
		canceled.CanceledAt = time.Now()
	}

	err := executor.QueryRow(query,
		canceled.OriginalOrderID, canceled.CanceledAt, canceled.CanceledBy, canceled.Reason,
	).Scan(&canceled.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating canceled order for order ID %d: %v", ErrDatabaseError, canceled.OriginalOrderID, err)
	}
	return canceled.ID, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`
	result, err := executor.Exec(query, newStatus, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LastOrderNumber returns the number of the most recently created order that
// has one. Returns ErrNotFound when no numbered order exists.
func (r *orderRepository) LastOrderNumber() (string, error) {
	var number string
	query := `SELECT order_number FROM orders
	          WHERE order_number IS NOT NULL AND order_number <> ''
	          ORDER BY created_at DESC, id DESC
	          LIMIT 1`
	err := r.db.QueryRow(query).Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting last order number: %v", ErrDatabaseError, err)
	}
	return number, nil
}
