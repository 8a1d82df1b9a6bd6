package models

import "time"

// EODReportRequest is the caller-supplied window for report generation.
// IncludePreviousPeriodComparison is accepted for forward compatibility but
// no calculator consumes it yet.
type EODReportRequest struct {
	StartDateTime                   string `json:"start_datetime" binding:"required"`
	EndDateTime                     string `json:"end_datetime" binding:"required"`
	SaveToDatabase                  bool   `json:"save_to_database"`
	IncludePreviousPeriodComparison bool   `json:"include_previous_period_comparison"`
}

// PaymentBreakdownEntry is one payment-method bucket of the report.
// A mixed order contributes its cash portion to the cash bucket and its card
// portion to the card bucket, incrementing both counts.
type PaymentBreakdownEntry struct {
	Method      string  `json:"method"`
	OrderCount  int     `json:"order_count"`
	TotalAmount Money   `json:"total_amount"`
	Percentage  float64 `json:"percentage"`
}

// DeliveryPlatformBreakdownEntry is one delivery-platform bucket, restricted
// to delivery-method orders. Percentage is relative to the delivery total,
// not overall revenue.
type DeliveryPlatformBreakdownEntry struct {
	Platform    string  `json:"platform"`
	OrderCount  int     `json:"order_count"`
	TotalAmount Money   `json:"total_amount"`
	Percentage  float64 `json:"percentage"`
}

// BestSellingItem is an aggregated item row, grouped by lowercased name plus
// category type.
type BestSellingItem struct {
	ItemName      string `json:"item_name"`
	ItemType      string `json:"item_type"`
	TotalQuantity int    `json:"total_quantity"`
	TotalRevenue  Money  `json:"total_revenue"`
	AveragePrice  Money  `json:"average_price"`
}

// HourlySalesEntry is one hour-of-day bucket. The report always carries all
// 24 hours, zero-filled when empty.
type HourlySalesEntry struct {
	Hour       int   `json:"hour"`
	OrderCount int   `json:"order_count"`
	Revenue    Money `json:"revenue"`
}

// EODReportData is the assembled end-of-day report for a time window.
type EODReportData struct {
	StartDateTime             time.Time                        `json:"start_datetime"`
	EndDateTime               time.Time                        `json:"end_datetime"`
	TotalOrders               int                              `json:"total_orders"`
	CanceledOrders            int                              `json:"canceled_orders"`
	TotalRevenue              Money                            `json:"total_revenue"`
	AverageOrderValue         Money                            `json:"average_order_value"`
	TotalCash                 Money                            `json:"total_cash"`
	TotalCard                 Money                            `json:"total_card"`
	TotalCashReceived         Money                            `json:"total_cash_received"`
	TotalChangeGiven          Money                            `json:"total_change_given"`
	PaymentBreakdown          []PaymentBreakdownEntry          `json:"payment_breakdown"`
	DeliveryPlatformBreakdown []DeliveryPlatformBreakdownEntry `json:"delivery_platform_breakdown"`
	BestSellingItems          []BestSellingItem                `json:"best_selling_items"`
	HourlySales               []HourlySalesEntry               `json:"hourly_sales"`
	PeakHour                  string                           `json:"peak_hour"`
	OrderCompletionRate       float64                          `json:"order_completion_rate"`
	OrderCancellationRate     float64                          `json:"order_cancellation_rate"`
	GeneratedAt               time.Time                        `json:"generated_at"`
}

// SavedEODReport is a persisted report row. Immutable once stored except for
// explicit delete.
type SavedEODReport struct {
	ID              int64         `json:"id"`
	ReportNumber    string        `json:"report_number"`
	Data            EODReportData `json:"data"`
	CashOrdersCount int           `json:"cash_orders_count"`
	CardOrdersCount int           `json:"card_orders_count"`
	GeneratedBy     string        `json:"generated_by"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// ReportFilters defines filters for listing saved reports.
type ReportFilters struct {
	StartDate *string `form:"start_date"` // YYYY-MM-DD
	EndDate   *string `form:"end_date"`   // YYYY-MM-DD
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
