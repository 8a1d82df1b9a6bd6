package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_pos_backend/internal/models"

	"github.com/lib/pq"
)

// ReportRepository defines the interface for saved EOD report rows. The
// nested breakdown arrays are serialized to JSON columns on insert and
// deserialized on read.
type ReportRepository interface {
	InsertReport(executor SQLExecutor, report *models.SavedEODReport) (int64, error)
	GetReports(filters models.ReportFilters) ([]models.SavedEODReport, int, error)
	GetReportByID(reportID int64) (*models.SavedEODReport, error)
	DeleteReport(executor SQLExecutor, reportID int64) (int64, error)
	LastReportNumber() (string, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = `id, report_number, start_datetime, end_datetime, total_orders,
	canceled_orders, total_revenue, average_order_value, total_cash, total_card,
	total_cash_received, total_change_given, payment_breakdown, delivery_platform_breakdown,
	best_selling_items, hourly_sales, peak_hour, order_completion_rate,
	order_cancellation_rate, cash_orders_count, card_orders_count, generated_by, generated_at`

func (r *reportRepository) InsertReport(executor SQLExecutor, report *models.SavedEODReport) (int64, error) {
	paymentJSON, err := json.Marshal(report.Data.PaymentBreakdown)
	if err != nil {
		return 0, fmt.Errorf("%w: marshaling payment breakdown: %v", ErrDatabaseError, err)
	}
	deliveryJSON, err := json.Marshal(report.Data.DeliveryPlatformBreakdown)
	if err != nil {
		return 0, fmt.Errorf("%w: marshaling delivery breakdown: %v", ErrDatabaseError, err)
	}
	bestSellersJSON, err := json.Marshal(report.Data.BestSellingItems)
	if err != nil {
		return 0, fmt.Errorf("%w: marshaling best sellers: %v", ErrDatabaseError, err)
	}
	hourlyJSON, err := json.Marshal(report.Data.HourlySales)
	if err != nil {
		return 0, fmt.Errorf("%w: marshaling hourly sales: %v", ErrDatabaseError, err)
	}

	query := `INSERT INTO eod_reports
	            (report_number, start_datetime, end_datetime, total_orders, canceled_orders,
	             total_revenue, average_order_value, total_cash, total_card,
	             total_cash_received, total_change_given, payment_breakdown,
	             delivery_platform_breakdown, best_selling_items, hourly_sales, peak_hour,
	             order_completion_rate, order_cancellation_rate, cash_orders_count,
	             card_orders_count, generated_by, generated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	                  $17, $18, $19, $20, $21, $22)
	          RETURNING id`

	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}

	err = executor.QueryRow(query,
		report.ReportNumber, report.Data.StartDateTime, report.Data.EndDateTime,
		report.Data.TotalOrders, report.Data.CanceledOrders,
		report.Data.TotalRevenue, report.Data.AverageOrderValue,
		report.Data.TotalCash, report.Data.TotalCard,
		report.Data.TotalCashReceived, report.Data.TotalChangeGiven,
		paymentJSON, deliveryJSON, bestSellersJSON, hourlyJSON,
		report.Data.PeakHour, report.Data.OrderCompletionRate, report.Data.OrderCancellationRate,
		report.CashOrdersCount, report.CardOrdersCount,
		report.GeneratedBy, report.GeneratedAt,
	).Scan(&report.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: report number %s (constraint: %s)", ErrDuplicateKey, report.ReportNumber, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: inserting EOD report: %v", ErrDatabaseError, err)
	}
	return report.ID, nil
}

// scanReport reads one report row in reportColumns order.
func scanReport(s scanner, report *models.SavedEODReport, extra ...interface{}) error {
	var paymentJSON, deliveryJSON, bestSellersJSON, hourlyJSON []byte

	dest := []interface{}{
		&report.ID, &report.ReportNumber, &report.Data.StartDateTime, &report.Data.EndDateTime,
		&report.Data.TotalOrders, &report.Data.CanceledOrders,
		&report.Data.TotalRevenue, &report.Data.AverageOrderValue,
		&report.Data.TotalCash, &report.Data.TotalCard,
		&report.Data.TotalCashReceived, &report.Data.TotalChangeGiven,
		&paymentJSON, &deliveryJSON, &bestSellersJSON, &hourlyJSON,
		&report.Data.PeakHour, &report.Data.OrderCompletionRate, &report.Data.OrderCancellationRate,
		&report.CashOrdersCount, &report.CardOrdersCount,
		&report.GeneratedBy, &report.GeneratedAt,
	}
	dest = append(dest, extra...)

	if err := s.Scan(dest...); err != nil {
		return err
	}
	if err := json.Unmarshal(paymentJSON, &report.Data.PaymentBreakdown); err != nil {
		return fmt.Errorf("unmarshaling payment breakdown: %w", err)
	}
	if err := json.Unmarshal(deliveryJSON, &report.Data.DeliveryPlatformBreakdown); err != nil {
		return fmt.Errorf("unmarshaling delivery breakdown: %w", err)
	}
	if err := json.Unmarshal(bestSellersJSON, &report.Data.BestSellingItems); err != nil {
		return fmt.Errorf("unmarshaling best sellers: %w", err)
	}
	if err := json.Unmarshal(hourlyJSON, &report.Data.HourlySales); err != nil {
		return fmt.Errorf("unmarshaling hourly sales: %w", err)
	}
	report.Data.GeneratedAt = report.GeneratedAt
	return nil
}

func (r *reportRepository) GetReports(filters models.ReportFilters) ([]models.SavedEODReport, int, error) {
	reports := []models.SavedEODReport{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + reportColumns + `, COUNT(*) OVER() as total_count FROM eod_reports`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.StartDate != nil && *filters.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", *filters.StartDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("generated_at >= $%d", argCounter))
			args = append(args, parsed)
			argCounter++
		}
	}
	if filters.EndDate != nil && *filters.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", *filters.EndDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("generated_at < $%d", argCounter))
			args = append(args, parsed.AddDate(0, 0, 1))
			argCounter++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY generated_at DESC")

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
		return nil, 0, fmt.Errorf("%w: querying EOD reports: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var report models.SavedEODReport
		if err := scanReport(rows, &report, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning EOD report: %v", ErrDatabaseError, err)
		}
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating EOD report rows: %v", ErrDatabaseError, err)
	}
	return reports, totalCount, nil
}

func (r *reportRepository) GetReportByID(reportID int64) (*models.SavedEODReport, error) {
	report := &models.SavedEODReport{}
	query := `SELECT ` + reportColumns + ` FROM eod_reports WHERE id = $1`
	err := scanReport(r.db.QueryRow(query, reportID), report)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting EOD report by ID %d: %v", ErrDatabaseError, reportID, err)
	}
	return report, nil
}

func (r *reportRepository) DeleteReport(executor SQLExecutor, reportID int64) (int64, error) {
	result, err := executor.Exec(`DELETE FROM eod_reports WHERE id = $1`, reportID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting EOD report ID %d: %v", ErrDatabaseError, reportID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting EOD report ID %d: %v", ErrDatabaseError, reportID, err)
	}
	if rowsAffected == 0 {
		return 0, ErrNotFound
	}
	return rowsAffected, nil
}

// LastReportNumber returns the number of the most recently generated report
// that has one. Returns ErrNotFound when no numbered report exists.
func (r *reportRepository) LastReportNumber() (string, error) {
	var number string
	query := `SELECT report_number FROM eod_reports
	          WHERE report_number IS NOT NULL AND report_number <> ''
	          ORDER BY generated_at DESC, id DESC
	          LIMIT 1`
	err := r.db.QueryRow(query).Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting last report number: %v", ErrDatabaseError, err)
	}
	return number, nil
}
