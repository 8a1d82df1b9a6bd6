package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/pkg/utils"
)

// --- Data Transfer Objects (DTOs) ---

// CreateOrderItemRequest is one line of a new order.
type CreateOrderItemRequest struct {
	Name      string       `json:"name" binding:"required"`
	NameEn    *string      `json:"name_en"`
	NameAr    *string      `json:"name_ar"`
	Type      string       `json:"type" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required,gt=0"`
	UnitPrice models.Money `json:"unit_price"`
}

// CreateOrderRequest is used for creating a new order. For mixed payments
// the cash/card split must be supplied and add up to the order total.
type CreateOrderRequest struct {
	Items            []CreateOrderItemRequest `json:"items" binding:"required,dive"`
	PaymentMethod    string                   `json:"payment_method" binding:"required"`
	DeliveryPlatform *string                  `json:"delivery_platform"`
	CashAmount       *models.Money            `json:"cash_amount"`
	CardAmount       *models.Money            `json:"card_amount"`
	CashReceived     *models.Money            `json:"cash_received"`
}

// CancelOrderRequest carries the optional cancellation reason.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// --- OrderService Interface ---

type OrderService interface {
	CreateOrder(req CreateOrderRequest, createdBy string) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	CancelOrder(orderID int64, canceledBy string, reason string) (*models.CanceledOrder, error)
	PreviewOrderNumber() string
}

// --- orderService Implementation ---

type orderService struct {
	orderRepo    repositories.OrderRepository
	counterRepo  repositories.CounterRepository
	orderNumbers SequenceProvider
	db           *sql.DB // For managing transactions
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	counterRepo repositories.CounterRepository,
	orderNumbers SequenceProvider,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		counterRepo:  counterRepo,
		orderNumbers: orderNumbers,
		db:           db,
	}
}

// CreateOrder validates the request, mints an order number and the per-day
// serial, and inserts the order with its items in one transaction.
func (s *orderService) CreateOrder(req CreateOrderRequest, createdBy string) (*models.Order, error) {
	if err := validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	var total float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		lineTotal := round2(float64(itemReq.UnitPrice) * float64(itemReq.Quantity))
		total += lineTotal
		items = append(items, models.OrderItem{
			Name:       itemReq.Name,
			NameEn:     itemReq.NameEn,
			NameAr:     itemReq.NameAr,
			Type:       itemReq.Type,
			Quantity:   itemReq.Quantity,
			UnitPrice:  itemReq.UnitPrice,
			TotalPrice: models.Money(lineTotal),
		})
	}
	total = round2(total)

	if req.PaymentMethod == models.PaymentMixed {
		split := round2(float64(*req.CashAmount) + float64(*req.CardAmount))
		if math.Abs(split-total) > 0.01 {
			return nil, fmt.Errorf("%w: mixed split %.2f does not match order total %.2f", ErrValidation, split, total)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	serial, err := s.counterRepo.NextSerial(tx, repositories.CounterDailySerial)
	if err != nil {
		return nil, fmt.Errorf("failed to advance daily order serial: %w", err)
	}

	order := models.Order{
		OrderNumber:      s.orderNumbers.Next(),
		DailySerial:      serial,
		TotalAmount:      models.Money(total),
		PaymentMethod:    req.PaymentMethod,
		DeliveryPlatform: req.DeliveryPlatform,
		Status:           models.OrderStatusCompleted,
		CashAmount:       req.CashAmount,
		CardAmount:       req.CardAmount,
		CashReceived:     req.CashReceived,
		CreatedAt:        time.Now(),
		CreatedBy:        createdBy,
	}

	// Change is derived from the cash tendered against the cash portion.
	if req.CashReceived != nil {
		cashDue := total
		if req.PaymentMethod == models.PaymentMixed && req.CashAmount != nil {
			cashDue = float64(*req.CashAmount)
		}
		change := models.Money(round2(float64(*req.CashReceived) - cashDue))
		if change < 0 {
			return nil, fmt.Errorf("%w: cash received %.2f is less than the cash due %.2f", ErrValidation, float64(*req.CashReceived), cashDue)
		}
		order.ChangeAmount = &change
	}

	orderID, err := s.orderRepo.CreateOrder(tx, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order record: %w", err)
	}

	for i := range items {
		items[i].OrderID = orderID
		if _, err := s.orderRepo.CreateOrderItem(tx, &items[i]); err != nil {
			return nil, fmt.Errorf("failed to create order item %q: %w", items[i].Name, err)
		}
	}
	order.OrderItems = items

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	utils.LogInfo("Order created", map[string]interface{}{
		"order_number": order.OrderNumber, "daily_serial": order.DailySerial, "total": order.TotalAmount.String(),
	})
	return &order, nil
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order ID %d: %w", orderID, err)
	}
	order.OrderItems = items
	return order, nil
}

// CancelOrder snapshots the order into canceled_orders and flips its status.
// Already-canceled orders are rejected.
func (s *orderService) CancelOrder(orderID int64, canceledBy string, reason string) (*models.CanceledOrder, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for cancellation: %w", err)
	}
	if order.Status == models.OrderStatusCanceled {
		return nil, fmt.Errorf("%w: order %s is already canceled", ErrInvalidOrderStatus, order.OrderNumber)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	canceled := models.CanceledOrder{
		OriginalOrderID: orderID,
		CanceledAt:      time.Now(),
		CanceledBy:      canceledBy,
		Reason:          utils.NewNullString(reason),
	}
	if _, err := s.orderRepo.CreateCanceledOrder(tx, &canceled); err != nil {
		return nil, fmt.Errorf("failed to record cancellation for order ID %d: %w", orderID, err)
	}
	if err := s.orderRepo.UpdateOrderStatus(tx, orderID, models.OrderStatusCanceled); err != nil {
		return nil, fmt.Errorf("failed to update order status for ID %d: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation transaction: %w", err)
	}

	order.Status = models.OrderStatusCanceled
	canceled.Order = order
	return &canceled, nil
}

// PreviewOrderNumber returns the next order number without advancing the
// counter.
func (s *orderService) PreviewOrderNumber() string {
	return s.orderNumbers.Preview()
}

func validateCreateOrderRequest(req CreateOrderRequest) error {
	switch req.PaymentMethod {
	case models.PaymentCash, models.PaymentCard:
	case models.PaymentMixed:
		if req.CashAmount == nil || req.CardAmount == nil {
			return fmt.Errorf("%w: mixed payment requires cash_amount and card_amount", ErrValidation)
		}
	case models.PaymentDelivery:
		if req.DeliveryPlatform == nil {
			return fmt.Errorf("%w: delivery payment requires delivery_platform", ErrValidation)
		}
		switch *req.DeliveryPlatform {
		case models.PlatformKeeta, models.PlatformHungerStation, models.PlatformJahez:
		default:
			return fmt.Errorf("%w: unknown delivery platform %q", ErrValidation, *req.DeliveryPlatform)
		}
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("%w: an order needs at least one item", ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for item %q must be positive", ErrValidation, item.Name)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: unit price for item %q must not be negative", ErrValidation, item.Name)
		}
	}
	return nil
}
