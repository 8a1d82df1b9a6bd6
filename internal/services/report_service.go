package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"restaurant_pos_backend/internal/models"
	"restaurant_pos_backend/internal/repositories"
	"restaurant_pos_backend/pkg/utils"
)

// ReportService generates end-of-day reports and manages their history.
type ReportService interface {
	GenerateEODReport(req models.EODReportRequest, generatedBy string) (*models.EODReportData, *models.SavedEODReport, error)
	PreviewReportNumber() string
	GetReports(filters models.ReportFilters) ([]models.SavedEODReport, int, error)
	GetReportByID(reportID int64) (*models.SavedEODReport, error)
	DeleteReport(reportID int64) error
}

type reportService struct {
	orderRepo     repositories.OrderRepository
	reportRepo    repositories.ReportRepository
	counterRepo   repositories.CounterRepository
	reportNumbers SequenceProvider
	location      *time.Location
	db            *sql.DB
}

// NewReportService creates a new instance of ReportService. location controls
// the hourly bucketing timezone; nil means the server's local timezone.
func NewReportService(
	orderRepo repositories.OrderRepository,
	reportRepo repositories.ReportRepository,
	counterRepo repositories.CounterRepository,
	reportNumbers SequenceProvider,
	location *time.Location,
	db *sql.DB,
) ReportService {
	if location == nil {
		location = time.Local
	}
	return &reportService{
		orderRepo:     orderRepo,
		reportRepo:    reportRepo,
		counterRepo:   counterRepo,
		reportNumbers: reportNumbers,
		location:      location,
		db:            db,
	}
}

// GenerateEODReport validates the request, fetches orders and cancellations
// concurrently, runs the calculators and assembles the report. When
// SaveToDatabase is set the report is also persisted with a freshly minted
// report number. The daily order serial is reset best-effort after a
// successful generation; a reset failure is logged and never surfaced.
func (s *reportService) GenerateEODReport(req models.EODReportRequest, generatedBy string) (*models.EODReportData, *models.SavedEODReport, error) {
	start, end, err := parseReportWindow(req)
	if err != nil {
		return nil, nil, err
	}

	var (
		wg          sync.WaitGroup
		orders      []models.Order
		canceled    []models.CanceledOrder
		ordersErr   error
		canceledErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		orders, ordersErr = s.orderRepo.GetOrdersInRange(start, end)
	}()
	go func() {
		defer wg.Done()
		canceled, canceledErr = s.orderRepo.GetCanceledOrdersInRange(start, end)
	}()
	wg.Wait()

	if ordersErr != nil {
		return nil, nil, fmt.Errorf("%w: fetching orders: %v", ErrUpstreamFetch, ordersErr)
	}
	if canceledErr != nil {
		return nil, nil, fmt.Errorf("%w: fetching canceled orders: %v", ErrUpstreamFetch, canceledErr)
	}

	data := buildEODReportData(orders, canceled, start, end, s.location)
	if err := validateEODReportData(data); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternalConsistency, err)
	}

	var saved *models.SavedEODReport
	if req.SaveToDatabase {
		saved, err = s.saveReport(data, generatedBy)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := s.counterRepo.ResetCounter(repositories.CounterDailySerial); err != nil {
		utils.LogError(err, "EOD report: failed to reset daily order serial")
	} else {
		utils.LogDebug("EOD report: daily order serial reset")
	}

	return data, saved, nil
}

// PreviewReportNumber returns the next report number without advancing the
// counter.
func (s *reportService) PreviewReportNumber() string {
	return s.reportNumbers.Preview()
}

func (s *reportService) GetReports(filters models.ReportFilters) ([]models.SavedEODReport, int, error) {
	reports, totalCount, err := s.reportRepo.GetReports(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing reports: %v", ErrPersistence, err)
	}
	return reports, totalCount, nil
}

func (s *reportService) GetReportByID(reportID int64) (*models.SavedEODReport, error) {
	report, err := s.reportRepo.GetReportByID(reportID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("%w: getting report %d: %v", ErrPersistence, reportID, err)
	}
	return report, nil
}

func (s *reportService) DeleteReport(reportID int64) error {
	_, err := s.reportRepo.DeleteReport(s.db, reportID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("%w: deleting report %d: %v", ErrPersistence, reportID, err)
	}
	return nil
}

// parseReportWindow validates the request window before any I/O happens.
func parseReportWindow(req models.EODReportRequest) (start, end time.Time, err error) {
	if req.StartDateTime == "" || req.EndDateTime == "" {
		return start, end, fmt.Errorf("%w: start_datetime and end_datetime are required", ErrValidation)
	}
	start, err = time.Parse(time.RFC3339, req.StartDateTime)
	if err != nil {
		return start, end, fmt.Errorf("%w: invalid start_datetime %q", ErrValidation, req.StartDateTime)
	}
	end, err = time.Parse(time.RFC3339, req.EndDateTime)
	if err != nil {
		return start, end, fmt.Errorf("%w: invalid end_datetime %q", ErrValidation, req.EndDateTime)
	}
	if !start.Before(end) {
		return start, end, fmt.Errorf("%w: start_datetime must be before end_datetime", ErrValidation)
	}
	return start, end, nil
}

// buildEODReportData runs every calculator over the in-memory sets and
// assembles the report. Calculators are pure and independent of each other.
func buildEODReportData(orders []models.Order, canceled []models.CanceledOrder, start, end time.Time, loc *time.Location) *models.EODReportData {
	totalRevenue := calculateTotalRevenue(orders)
	tender := calculateTenderTotals(orders)
	hourly := calculateHourlySales(orders, loc)
	completionRate, cancellationRate := calculateCompletionRates(len(orders), len(canceled))

	return &models.EODReportData{
		StartDateTime:             start,
		EndDateTime:               end,
		TotalOrders:               len(orders),
		CanceledOrders:            len(canceled),
		TotalRevenue:              totalRevenue,
		AverageOrderValue:         calculateAverageOrderValue(float64(totalRevenue), len(orders)),
		TotalCash:                 tender.Cash,
		TotalCard:                 tender.Card,
		TotalCashReceived:         tender.CashReceived,
		TotalChangeGiven:          tender.ChangeGiven,
		PaymentBreakdown:          calculatePaymentBreakdown(orders, float64(totalRevenue)),
		DeliveryPlatformBreakdown: calculateDeliveryPlatformBreakdown(orders),
		BestSellingItems:          calculateBestSellers(orders),
		HourlySales:               hourly,
		PeakHour:                  calculatePeakHour(hourly),
		OrderCompletionRate:       completionRate,
		OrderCancellationRate:     cancellationRate,
		GeneratedAt:               time.Now(),
	}
}

// validateEODReportData is the engine's own output consistency check. A
// failure here is a bug in the calculators, not a recoverable condition.
func validateEODReportData(data *models.EODReportData) error {
	if len(data.HourlySales) != 24 {
		return fmt.Errorf("hourly sales has %d entries, want 24", len(data.HourlySales))
	}
	money := map[string]models.Money{
		"total_revenue":       data.TotalRevenue,
		"average_order_value": data.AverageOrderValue,
		"total_cash":          data.TotalCash,
		"total_card":          data.TotalCard,
		"total_cash_received": data.TotalCashReceived,
		"total_change_given":  data.TotalChangeGiven,
	}
	for name, v := range money {
		if v < 0 {
			return fmt.Errorf("%s is negative: %s", name, v)
		}
	}
	for _, e := range data.PaymentBreakdown {
		if e.TotalAmount < 0 {
			return fmt.Errorf("payment bucket %s has negative amount", e.Method)
		}
		if e.OrderCount > data.TotalOrders {
			return fmt.Errorf("payment bucket %s counts %d orders out of %d", e.Method, e.OrderCount, data.TotalOrders)
		}
	}
	for _, e := range data.DeliveryPlatformBreakdown {
		if e.TotalAmount < 0 {
			return fmt.Errorf("delivery bucket %s has negative amount", e.Platform)
		}
		if e.OrderCount > data.TotalOrders {
			return fmt.Errorf("delivery bucket %s counts %d orders out of %d", e.Platform, e.OrderCount, data.TotalOrders)
		}
	}
	if sum := data.OrderCompletionRate + data.OrderCancellationRate; sum < 99.999 || sum > 100.001 {
		return fmt.Errorf("completion and cancellation rates sum to %v, want 100", sum)
	}
	return nil
}

// saveReport mints a report number and persists the row. The cash/card order
// counts are read back from the payment breakdown; a bucket dropped for being
// zero counts as 0.
func (s *reportService) saveReport(data *models.EODReportData, generatedBy string) (*models.SavedEODReport, error) {
	saved := &models.SavedEODReport{
		ReportNumber: s.reportNumbers.Next(),
		Data:         *data,
		GeneratedBy:  generatedBy,
		GeneratedAt:  data.GeneratedAt,
	}
	for _, e := range data.PaymentBreakdown {
		switch e.Method {
		case models.PaymentCash:
			saved.CashOrdersCount = e.OrderCount
		case models.PaymentCard:
			saved.CardOrdersCount = e.OrderCount
		}
	}

	if _, err := s.reportRepo.InsertReport(s.db, saved); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return saved, nil
}
