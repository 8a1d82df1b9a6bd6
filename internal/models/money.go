package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a monetary amount. Arithmetic happens on the underlying float64;
// values are serialized as 2-decimal strings on the wire so that clients never
// see binary floating point artifacts. Rounding is plain half-up via
// math.Round, applied once on the way out.
type Money float64

// Round2 rounds to two decimal places with half-up semantics.
func (m Money) Round2() Money {
	return Money(math.Round(float64(m)*100) / 100)
}

// String formats the amount with exactly two decimals, e.g. "123.45".
func (m Money) String() string {
	return strconv.FormatFloat(float64(m.Round2()), 'f', 2, 64)
}

// MarshalJSON emits the amount as a quoted 2-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a decimal string ("12.50") or a bare JSON
// number, since older clients send numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*m = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid monetary value %q: %w", s, err)
	}
	*m = Money(v)
	return nil
}

// ParseMoney parses a decimal string coming from storage. Empty input is zero.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid monetary value %q: %w", s, err)
	}
	return Money(v), nil
}
