package models

import "time"

// Payment methods accepted at checkout.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentMixed    = "mixed"
	PaymentDelivery = "delivery"
)

// Delivery platforms an order can originate from.
const (
	PlatformKeeta         = "keeta"
	PlatformHungerStation = "hunger_station"
	PlatformJahez         = "jahez"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusModified  = "modified"
	OrderStatusCanceled  = "canceled"
)

// Order represents a placed order with its tender details.
// CashAmount/CardAmount carry the split for mixed payments; CashReceived and
// ChangeAmount are the drawer figures for cash tenders.
type Order struct {
	ID               int64       `json:"id"`
	OrderNumber      string      `json:"order_number"`
	DailySerial      int64       `json:"daily_serial"`
	OrderItems       []OrderItem `json:"order_items,omitempty"`
	TotalAmount      Money       `json:"total_amount"`
	PaymentMethod    string      `json:"payment_method"`
	DeliveryPlatform *string     `json:"delivery_platform,omitempty"`
	Status           string      `json:"status"`
	CashAmount       *Money      `json:"cash_amount,omitempty"`
	CardAmount       *Money      `json:"card_amount,omitempty"`
	CashReceived     *Money      `json:"cash_received,omitempty"`
	ChangeAmount     *Money      `json:"change_amount,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	CreatedBy        string      `json:"created_by"`
}

// OrderItem is a single line on an order. Name may be blank for legacy rows,
// in which case the localized names are consulted (see DisplayName).
type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"order_id"`
	Name       string  `json:"name"`
	NameEn     *string `json:"name_en,omitempty"`
	NameAr     *string `json:"name_ar,omitempty"`
	Type       string  `json:"type"`
	Quantity   int     `json:"quantity"`
	UnitPrice  Money   `json:"unit_price"`
	TotalPrice Money   `json:"total_price"`
}

// DisplayName resolves the item name through the fallback chain:
// explicit name, English name, Arabic name, then "Unknown Item".
func (i OrderItem) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.NameEn != nil && *i.NameEn != "" {
		return *i.NameEn
	}
	if i.NameAr != nil && *i.NameAr != "" {
		return *i.NameAr
	}
	return "Unknown Item"
}

// CanceledOrder is the snapshot recorded when an order is canceled.
type CanceledOrder struct {
	ID              int64     `json:"id"`
	OriginalOrderID int64     `json:"original_order_id"`
	CanceledAt      time.Time `json:"canceled_at"`
	CanceledBy      string    `json:"canceled_by"`
	Reason          *string   `json:"reason,omitempty"`
	Order           *Order    `json:"order,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	Status        *string `form:"status"`
	PaymentMethod *string `form:"payment_method"`
	Date          *string `form:"date"` // Expected format YYYY-MM-DD
	Page          int     `form:"page"`
	PageSize      int     `form:"page_size"`
}
