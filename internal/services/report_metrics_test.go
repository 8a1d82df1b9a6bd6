package services

import (
	"testing"
	"time"

	"restaurant_pos_backend/internal/models"
)

func moneyPtr(v float64) *models.Money {
	m := models.Money(v)
	return &m
}

func strPtr(s string) *string {
	return &s
}

func cashOrder(total float64, received float64, at time.Time) models.Order {
	change := models.Money(received - total)
	return models.Order{
		TotalAmount:   models.Money(total),
		PaymentMethod: models.PaymentCash,
		Status:        models.OrderStatusCompleted,
		CashReceived:  moneyPtr(received),
		ChangeAmount:  &change,
		CreatedAt:     at,
	}
}

func cardOrder(total float64, at time.Time) models.Order {
	return models.Order{
		TotalAmount:   models.Money(total),
		PaymentMethod: models.PaymentCard,
		Status:        models.OrderStatusCompleted,
		CreatedAt:     at,
	}
}

func mixedOrder(cash, card float64, at time.Time) models.Order {
	return models.Order{
		TotalAmount:   models.Money(cash + card),
		PaymentMethod: models.PaymentMixed,
		Status:        models.OrderStatusCompleted,
		CashAmount:    moneyPtr(cash),
		CardAmount:    moneyPtr(card),
		CreatedAt:     at,
	}
}

func deliveryOrder(total float64, platform string, at time.Time) models.Order {
	return models.Order{
		TotalAmount:      models.Money(total),
		PaymentMethod:    models.PaymentDelivery,
		DeliveryPlatform: &platform,
		Status:           models.OrderStatusCompleted,
		CreatedAt:        at,
	}
}

var testDay = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return testDay.Add(time.Duration(hour) * time.Hour)
}

func TestCalculateTotalRevenue(t *testing.T) {
	tests := []struct {
		name   string
		orders []models.Order
		want   models.Money
	}{
		{"empty", nil, 0},
		{"single", []models.Order{cardOrder(49.99, at(12))}, 49.99},
		{
			"mixed methods sum everything",
			[]models.Order{
				cashOrder(10.10, 20, at(10)),
				cardOrder(20.20, at(11)),
				deliveryOrder(30.30, models.PlatformJahez, at(12)),
			},
			60.60,
		},
		{
			"rounded to two decimals",
			[]models.Order{cardOrder(0.1, at(9)), cardOrder(0.2, at(9))},
			0.30,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateTotalRevenue(tt.orders); got != tt.want {
				t.Errorf("calculateTotalRevenue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateTenderTotals(t *testing.T) {
	orders := []models.Order{
		cashOrder(25.00, 30.00, at(10)),                       // cash 25, received 30, change 5
		cardOrder(40.00, at(11)),                              // card 40
		mixedOrder(10.00, 15.00, at(12)),                      // cash 10, card 15
		deliveryOrder(99.00, models.PlatformKeeta, at(13)),    // excluded from drawer
	}
	orders[2].CashReceived = moneyPtr(10.00)
	orders[2].ChangeAmount = moneyPtr(0)

	got := calculateTenderTotals(orders)
	if got.Cash != 35.00 {
		t.Errorf("Cash = %v, want 35.00", got.Cash)
	}
	if got.Card != 55.00 {
		t.Errorf("Card = %v, want 55.00", got.Card)
	}
	if got.CashReceived != 40.00 {
		t.Errorf("CashReceived = %v, want 40.00", got.CashReceived)
	}
	if got.ChangeGiven != 5.00 {
		t.Errorf("ChangeGiven = %v, want 5.00", got.ChangeGiven)
	}
}

func TestCalculateTenderTotalsMixedUsesRecordedSplit(t *testing.T) {
	// The recorded split wins even when it disagrees with the order total.
	o := mixedOrder(10.00, 15.00, at(12))
	o.TotalAmount = 100.00

	got := calculateTenderTotals([]models.Order{o})
	if got.Cash != 10.00 || got.Card != 15.00 {
		t.Errorf("got cash=%v card=%v, want 10.00/15.00", got.Cash, got.Card)
	}
}

func TestCalculatePaymentBreakdown(t *testing.T) {
	t.Run("empty input yields no buckets", func(t *testing.T) {
		if got := calculatePaymentBreakdown(nil, 0); len(got) != 0 {
			t.Errorf("got %d entries, want 0", len(got))
		}
	})

	t.Run("mixed order counts in both buckets", func(t *testing.T) {
		orders := []models.Order{
			cashOrder(50.00, 50.00, at(10)),
			mixedOrder(30.00, 20.00, at(11)),
		}
		entries := calculatePaymentBreakdown(orders, 100.00)
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		cash, card := entries[0], entries[1]
		if cash.Method != models.PaymentCash || card.Method != models.PaymentCard {
			t.Fatalf("unexpected bucket order: %s, %s", cash.Method, card.Method)
		}
		if cash.OrderCount != 2 || cash.TotalAmount != 80.00 || cash.Percentage != 80.00 {
			t.Errorf("cash bucket = %+v", cash)
		}
		if card.OrderCount != 1 || card.TotalAmount != 20.00 || card.Percentage != 20.00 {
			t.Errorf("card bucket = %+v", card)
		}
	})

	t.Run("zero-amount buckets are dropped", func(t *testing.T) {
		orders := []models.Order{deliveryOrder(75.00, models.PlatformJahez, at(14))}
		entries := calculatePaymentBreakdown(orders, 75.00)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].Method != models.PaymentDelivery || entries[0].Percentage != 100.00 {
			t.Errorf("delivery bucket = %+v", entries[0])
		}
	})

	t.Run("zero revenue yields zero percentages", func(t *testing.T) {
		// A zero-total order keeps its count but its bucket amount stays 0,
		// so it is dropped; only non-zero buckets survive.
		orders := []models.Order{
			cashOrder(0, 0, at(9)),
			cardOrder(10.00, at(9)),
		}
		entries := calculatePaymentBreakdown(orders, 10.00)
		if len(entries) != 1 || entries[0].Method != models.PaymentCard {
			t.Fatalf("entries = %+v", entries)
		}
	})
}

func TestCalculateDeliveryPlatformBreakdown(t *testing.T) {
	t.Run("percentages are relative to delivery total", func(t *testing.T) {
		orders := []models.Order{
			cashOrder(500.00, 500.00, at(10)), // not delivery, ignored
			deliveryOrder(75.00, models.PlatformKeeta, at(11)),
			deliveryOrder(25.00, models.PlatformJahez, at(12)),
		}
		entries := calculateDeliveryPlatformBreakdown(orders)
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[0].Platform != models.PlatformKeeta || entries[0].Percentage != 75.00 {
			t.Errorf("keeta bucket = %+v", entries[0])
		}
		if entries[1].Platform != models.PlatformJahez || entries[1].Percentage != 25.00 {
			t.Errorf("jahez bucket = %+v", entries[1])
		}
	})

	t.Run("unknown or missing platform is skipped", func(t *testing.T) {
		unknown := deliveryOrder(10.00, "ubereats", at(12))
		noPlatform := models.Order{
			TotalAmount:   10.00,
			PaymentMethod: models.PaymentDelivery,
			CreatedAt:     at(12),
		}
		entries := calculateDeliveryPlatformBreakdown([]models.Order{unknown, noPlatform})
		if len(entries) != 0 {
			t.Errorf("got %d entries, want 0", len(entries))
		}
	})
}

func TestCalculateBestSellers(t *testing.T) {
	withItems := func(at time.Time, items ...models.OrderItem) models.Order {
		o := cardOrder(0, at)
		o.OrderItems = items
		return o
	}

	t.Run("groups case-insensitively by name and type", func(t *testing.T) {
		orders := []models.Order{
			withItems(at(10),
				models.OrderItem{Name: "Shawarma", Type: "food", Quantity: 2, TotalPrice: 30.00},
				models.OrderItem{Name: "Cola", Type: "drink", Quantity: 1, TotalPrice: 5.00},
			),
			withItems(at(11),
				models.OrderItem{Name: "SHAWARMA", Type: "food", Quantity: 3, TotalPrice: 45.00},
				models.OrderItem{Name: "Shawarma", Type: "drink", Quantity: 1, TotalPrice: 8.00},
			),
		}
		items := calculateBestSellers(orders)
		if len(items) != 3 {
			t.Fatalf("got %d items, want 3", len(items))
		}
		top := items[0]
		if top.ItemName != "Shawarma" || top.ItemType != "food" {
			t.Fatalf("top item = %+v", top)
		}
		if top.TotalQuantity != 5 || top.TotalRevenue != 75.00 || top.AveragePrice != 15.00 {
			t.Errorf("top item aggregates = %+v", top)
		}
		// Same name, different type stays a separate row.
		for _, it := range items[1:] {
			if it.TotalQuantity >= top.TotalQuantity {
				t.Errorf("items not sorted by quantity descending: %+v", items)
			}
		}
	})

	t.Run("first occurrence decides the reported casing", func(t *testing.T) {
		orders := []models.Order{
			withItems(at(10), models.OrderItem{Name: "burger", Type: "food", Quantity: 1, TotalPrice: 10.00}),
			withItems(at(11), models.OrderItem{Name: "Burger", Type: "food", Quantity: 1, TotalPrice: 10.00}),
		}
		items := calculateBestSellers(orders)
		if len(items) != 1 || items[0].ItemName != "burger" {
			t.Errorf("items = %+v", items)
		}
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		orders := []models.Order{
			withItems(at(10), models.OrderItem{Name: "A", Type: "food", Quantity: 2, TotalPrice: 10.00}),
			withItems(at(11), models.OrderItem{Name: "B", Type: "food", Quantity: 2, TotalPrice: 20.00}),
		}
		items := calculateBestSellers(orders)
		if len(items) != 2 || items[0].ItemName != "A" || items[1].ItemName != "B" {
			t.Errorf("items = %+v", items)
		}
	})

	t.Run("nameless item falls back through localized names", func(t *testing.T) {
		orders := []models.Order{
			withItems(at(10), models.OrderItem{NameEn: strPtr("Falafel"), Type: "food", Quantity: 1, TotalPrice: 7.00}),
			withItems(at(11), models.OrderItem{Type: "food", Quantity: 1, TotalPrice: 3.00}),
		}
		items := calculateBestSellers(orders)
		if len(items) != 2 {
			t.Fatalf("got %d items, want 2", len(items))
		}
		names := map[string]bool{}
		for _, it := range items {
			names[it.ItemName] = true
		}
		if !names["Falafel"] || !names["Unknown Item"] {
			t.Errorf("items = %+v", items)
		}
	})
}

func TestCalculateHourlySales(t *testing.T) {
	orders := []models.Order{
		cashOrder(10.00, 10.00, at(9)),
		cardOrder(20.00, at(9)),
		cardOrder(30.00, at(23)),
	}
	entries := calculateHourlySales(orders, time.UTC)
	if len(entries) != 24 {
		t.Fatalf("got %d entries, want 24", len(entries))
	}
	for h, e := range entries {
		if e.Hour != h {
			t.Fatalf("entry %d has hour %d", h, e.Hour)
		}
	}
	if entries[9].OrderCount != 2 || entries[9].Revenue != 30.00 {
		t.Errorf("hour 9 = %+v", entries[9])
	}
	if entries[23].OrderCount != 1 || entries[23].Revenue != 30.00 {
		t.Errorf("hour 23 = %+v", entries[23])
	}
	if entries[0].OrderCount != 0 || entries[0].Revenue != 0 {
		t.Errorf("hour 0 = %+v", entries[0])
	}
}

func TestCalculateHourlySalesRespectsLocation(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	// 22:30 UTC is 01:30 the next day in Riyadh.
	o := cardOrder(10.00, testDay.Add(22*time.Hour+30*time.Minute))
	entries := calculateHourlySales([]models.Order{o}, riyadh)
	if entries[1].OrderCount != 1 {
		t.Errorf("hour 1 = %+v", entries[1])
	}
	if entries[22].OrderCount != 0 {
		t.Errorf("hour 22 = %+v", entries[22])
	}
}

func TestCalculatePeakHour(t *testing.T) {
	tests := []struct {
		name   string
		counts map[int]int
		want   string
	}{
		{"empty window", nil, "0:00"},
		{"single busy hour", map[int]int{14: 3}, "14:00"},
		{"tie goes to the earlier hour", map[int]int{9: 2, 17: 2}, "9:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]models.HourlySalesEntry, 24)
			for h := range entries {
				entries[h].Hour = h
				entries[h].OrderCount = tt.counts[h]
			}
			if got := calculatePeakHour(entries); got != tt.want {
				t.Errorf("calculatePeakHour() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalculateAverageOrderValue(t *testing.T) {
	if got := calculateAverageOrderValue(0, 0); got != 0 {
		t.Errorf("empty window average = %v, want 0", got)
	}
	if got := calculateAverageOrderValue(100.00, 3); got != 33.33 {
		t.Errorf("average = %v, want 33.33", got)
	}
}

func TestCalculateCompletionRates(t *testing.T) {
	tests := []struct {
		name                 string
		completed, canceled  int
		wantDone, wantCancel float64
	}{
		{"no orders defaults to 100", 0, 0, 100, 0},
		{"all completed", 10, 0, 100, 0},
		{"all canceled", 0, 5, 0, 100},
		{"two thirds completed", 2, 1, 66.67, 33.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done, cancel := calculateCompletionRates(tt.completed, tt.canceled)
			if done != tt.wantDone || cancel != tt.wantCancel {
				t.Errorf("got %v/%v, want %v/%v", done, cancel, tt.wantDone, tt.wantCancel)
			}
			if sum := done + cancel; sum < 99.999 || sum > 100.001 {
				t.Errorf("rates sum to %v, want 100", sum)
			}
		})
	}
}

func TestBreakdownTotalsAreOrderIndependent(t *testing.T) {
	orders := []models.Order{
		cashOrder(12.34, 15.00, at(8)),
		mixedOrder(5.00, 7.50, at(9)),
		cardOrder(42.00, at(10)),
		deliveryOrder(19.99, models.PlatformHungerStation, at(11)),
		deliveryOrder(8.01, models.PlatformKeeta, at(12)),
	}
	reversed := make([]models.Order, len(orders))
	for i, o := range orders {
		reversed[len(orders)-1-i] = o
	}

	a := calculatePaymentBreakdown(orders, float64(calculateTotalRevenue(orders)))
	b := calculatePaymentBreakdown(reversed, float64(calculateTotalRevenue(reversed)))
	if len(a) != len(b) {
		t.Fatalf("entry counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}

	da := calculateDeliveryPlatformBreakdown(orders)
	db := calculateDeliveryPlatformBreakdown(reversed)
	if len(da) != len(db) {
		t.Fatalf("delivery entry counts differ: %d vs %d", len(da), len(db))
	}
	for i := range da {
		if da[i] != db[i] {
			t.Errorf("delivery entry %d differs: %+v vs %+v", i, da[i], db[i])
		}
	}
}
