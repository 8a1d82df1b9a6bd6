package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"restaurant_pos_backend/internal/models"
)

// round2 is the engine-wide money rounding rule: half-up to two decimals.
// All calculators round once, on the value they emit.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// calculateTotalRevenue sums total_amount over the fetched order set
// (completed and modified orders only; the repository enforces the filter).
func calculateTotalRevenue(orders []models.Order) models.Money {
	var sum float64
	for _, o := range orders {
		sum += float64(o.TotalAmount)
	}
	return models.Money(round2(sum))
}

// tenderTotals carries the cash-drawer figures for the window.
type tenderTotals struct {
	Cash         models.Money
	Card         models.Money
	CashReceived models.Money
	ChangeGiven  models.Money
}

// calculateTenderTotals derives the drawer totals. Cash orders count their
// full amount as cash, card orders as card, mixed orders use their own
// recorded split (never re-derived from the total). Delivery orders never
// touch the drawer.
func calculateTenderTotals(orders []models.Order) tenderTotals {
	var cash, card, received, change float64
	for _, o := range orders {
		switch o.PaymentMethod {
		case models.PaymentCash:
			cash += float64(o.TotalAmount)
			if o.CashReceived != nil {
				received += float64(*o.CashReceived)
			}
			if o.ChangeAmount != nil {
				change += float64(*o.ChangeAmount)
			}
		case models.PaymentCard:
			card += float64(o.TotalAmount)
		case models.PaymentMixed:
			if o.CashAmount != nil {
				cash += float64(*o.CashAmount)
			}
			if o.CardAmount != nil {
				card += float64(*o.CardAmount)
			}
			if o.CashReceived != nil {
				received += float64(*o.CashReceived)
			}
			if o.ChangeAmount != nil {
				change += float64(*o.ChangeAmount)
			}
		}
	}
	return tenderTotals{
		Cash:         models.Money(round2(cash)),
		Card:         models.Money(round2(card)),
		CashReceived: models.Money(round2(received)),
		ChangeGiven:  models.Money(round2(change)),
	}
}

// calculatePaymentBreakdown buckets revenue into cash, card and delivery.
// A mixed order increments both the cash and the card count. Zero-amount
// buckets are dropped from the output entirely.
func calculatePaymentBreakdown(orders []models.Order, totalRevenue float64) []models.PaymentBreakdownEntry {
	type bucket struct {
		count  int
		amount float64
	}
	buckets := map[string]*bucket{
		models.PaymentCash:     {},
		models.PaymentCard:     {},
		models.PaymentDelivery: {},
	}
	for _, o := range orders {
		switch o.PaymentMethod {
		case models.PaymentCash:
			buckets[models.PaymentCash].count++
			buckets[models.PaymentCash].amount += float64(o.TotalAmount)
		case models.PaymentCard:
			buckets[models.PaymentCard].count++
			buckets[models.PaymentCard].amount += float64(o.TotalAmount)
		case models.PaymentMixed:
			buckets[models.PaymentCash].count++
			buckets[models.PaymentCard].count++
			if o.CashAmount != nil {
				buckets[models.PaymentCash].amount += float64(*o.CashAmount)
			}
			if o.CardAmount != nil {
				buckets[models.PaymentCard].amount += float64(*o.CardAmount)
			}
		case models.PaymentDelivery:
			buckets[models.PaymentDelivery].count++
			buckets[models.PaymentDelivery].amount += float64(o.TotalAmount)
		}
	}

	entries := []models.PaymentBreakdownEntry{}
	for _, method := range []string{models.PaymentCash, models.PaymentCard, models.PaymentDelivery} {
		b := buckets[method]
		if b.amount == 0 {
			continue
		}
		pct := 0.0
		if totalRevenue > 0 {
			pct = round2(b.amount / totalRevenue * 100)
		}
		entries = append(entries, models.PaymentBreakdownEntry{
			Method:      method,
			OrderCount:  b.count,
			TotalAmount: models.Money(round2(b.amount)),
			Percentage:  pct,
		})
	}
	return entries
}

// calculateDeliveryPlatformBreakdown buckets delivery-method orders by
// platform. Percentages are relative to the total delivery amount.
// Zero-amount platforms are dropped.
func calculateDeliveryPlatformBreakdown(orders []models.Order) []models.DeliveryPlatformBreakdownEntry {
	type bucket struct {
		count  int
		amount float64
	}
	buckets := map[string]*bucket{
		models.PlatformKeeta:         {},
		models.PlatformHungerStation: {},
		models.PlatformJahez:         {},
	}
	var deliveryTotal float64
	for _, o := range orders {
		if o.PaymentMethod != models.PaymentDelivery || o.DeliveryPlatform == nil {
			continue
		}
		b, ok := buckets[*o.DeliveryPlatform]
		if !ok {
			continue
		}
		b.count++
		b.amount += float64(o.TotalAmount)
		deliveryTotal += float64(o.TotalAmount)
	}

	entries := []models.DeliveryPlatformBreakdownEntry{}
	for _, platform := range []string{models.PlatformKeeta, models.PlatformHungerStation, models.PlatformJahez} {
		b := buckets[platform]
		if b.amount == 0 {
			continue
		}
		pct := 0.0
		if deliveryTotal > 0 {
			pct = round2(b.amount / deliveryTotal * 100)
		}
		entries = append(entries, models.DeliveryPlatformBreakdownEntry{
			Platform:    platform,
			OrderCount:  b.count,
			TotalAmount: models.Money(round2(b.amount)),
			Percentage:  pct,
		})
	}
	return entries
}

// calculateBestSellers aggregates items across all orders, keyed by
// lowercased display name plus category type, and sorts by quantity
// descending. Equal quantities keep first-seen order; the tie-break is
// intentionally unspecified and may differ if the input ordering differs.
func calculateBestSellers(orders []models.Order) []models.BestSellingItem {
	type acc struct {
		name    string
		typ     string
		qty     int
		revenue float64
	}
	totals := map[string]*acc{}
	var keys []string
	for _, o := range orders {
		for _, it := range o.OrderItems {
			name := it.DisplayName()
			key := strings.ToLower(name) + "_" + it.Type
			a, ok := totals[key]
			if !ok {
				a = &acc{name: name, typ: it.Type}
				totals[key] = a
				keys = append(keys, key)
			}
			a.qty += it.Quantity
			a.revenue += float64(it.TotalPrice)
		}
	}

	items := make([]models.BestSellingItem, 0, len(keys))
	for _, k := range keys {
		a := totals[k]
		avg := 0.0
		if a.qty > 0 {
			avg = round2(a.revenue / float64(a.qty))
		}
		items = append(items, models.BestSellingItem{
			ItemName:      a.name,
			ItemType:      a.typ,
			TotalQuantity: a.qty,
			TotalRevenue:  models.Money(round2(a.revenue)),
			AveragePrice:  models.Money(avg),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalQuantity > items[j].TotalQuantity
	})
	return items
}

// calculateHourlySales buckets orders by hour-of-day of created_at in the
// given location. The result always has exactly 24 entries, hours 0-23.
func calculateHourlySales(orders []models.Order, loc *time.Location) []models.HourlySalesEntry {
	var revenue [24]float64
	entries := make([]models.HourlySalesEntry, 24)
	for h := range entries {
		entries[h].Hour = h
	}
	for _, o := range orders {
		h := o.CreatedAt.In(loc).Hour()
		entries[h].OrderCount++
		revenue[h] += float64(o.TotalAmount)
	}
	for h := range entries {
		entries[h].Revenue = models.Money(round2(revenue[h]))
	}
	return entries
}

// calculatePeakHour returns the hour with the most orders, formatted as
// "<hour>:00". On ties the lowest hour wins (first maximum in a
// left-to-right scan).
func calculatePeakHour(hourly []models.HourlySalesEntry) string {
	peak := 0
	for h := range hourly {
		if hourly[h].OrderCount > hourly[peak].OrderCount {
			peak = h
		}
	}
	return fmt.Sprintf("%d:00", peak)
}

// calculateAverageOrderValue is total revenue over order count, zero when
// the window is empty.
func calculateAverageOrderValue(totalRevenue float64, orderCount int) models.Money {
	if orderCount == 0 {
		return 0
	}
	return models.Money(round2(totalRevenue / float64(orderCount)))
}

// calculateCompletionRates derives the completion and cancellation
// percentages. With no orders at all the completion rate defaults to 100.
// The cancellation rate is always the complement, so the two sum to 100.
func calculateCompletionRates(completedCount, canceledCount int) (completionRate, cancellationRate float64) {
	completionRate = 100.0
	if total := completedCount + canceledCount; total > 0 {
		completionRate = round2(float64(completedCount) / float64(total) * 100)
	}
	cancellationRate = round2(100 - completionRate)
	return completionRate, cancellationRate
}
