package models

import "testing"

func TestOrderItemDisplayName(t *testing.T) {
	en := "Chicken Shawarma"
	ar := "شاورما دجاج"
	empty := ""

	tests := []struct {
		name string
		item OrderItem
		want string
	}{
		{"explicit name wins", OrderItem{Name: "Shawarma", NameEn: &en, NameAr: &ar}, "Shawarma"},
		{"falls back to english", OrderItem{NameEn: &en, NameAr: &ar}, en},
		{"falls back to arabic", OrderItem{NameAr: &ar}, ar},
		{"empty pointers are skipped", OrderItem{NameEn: &empty, NameAr: &ar}, ar},
		{"all missing", OrderItem{}, "Unknown Item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
