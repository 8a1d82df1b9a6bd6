package models

import (
	"encoding/json"
	"testing"
)

func TestMoneyString(t *testing.T) {
	tests := []struct {
		name string
		in   Money
		want string
	}{
		{"zero", 0, "0.00"},
		{"whole", 42, "42.00"},
		{"two decimals", 12.5, "12.50"},
		{"rounds up", 10.006, "10.01"},
		{"rounds down", 10.004, "10.00"},
		{"float artifact", 0.1 + 0.2, "0.30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoneyMarshalJSON(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}
	b, err := json.Marshal(payload{Amount: 19.9})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(b), `{"amount":"19.90"}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Money
		wantErr bool
	}{
		{"quoted string", `"12.50"`, 12.50, false},
		{"bare number", `12.5`, 12.50, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage", `"abc"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			err := json.Unmarshal([]byte(tt.in), &m)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && m != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, m, tt.want)
			}
		})
	}
}

func TestParseMoney(t *testing.T) {
	if m, err := ParseMoney("  7.25 "); err != nil || m != 7.25 {
		t.Errorf("ParseMoney() = %v, %v", m, err)
	}
	if m, err := ParseMoney(""); err != nil || m != 0 {
		t.Errorf("ParseMoney(empty) = %v, %v", m, err)
	}
	if _, err := ParseMoney("1,50"); err == nil {
		t.Error("ParseMoney accepted a comma decimal")
	}
}
