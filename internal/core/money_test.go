package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,234.56", 123456, true},
		{"12,34,567", 1234567 * 100, true},
		{"₹ 99.9", 9990, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Paise != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Paise, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseBudgetAmount(t *testing.T) {
	m, err := ParseBudgetAmount("0")
	if err != nil || m.Paise != 0 {
		t.Fatalf("expected zero budget to parse, got %d (err=%v)", m.Paise, err)
	}
	m, err = ParseBudgetAmount("50000")
	if err != nil || m != Rupees(50000) {
		t.Fatalf("expected 50000 rupees, got %d (err=%v)", m.Paise, err)
	}
	if _, err := ParseBudgetAmount("-5"); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestMoneyDecimal(t *testing.T) {
	m := Money{Paise: 123456}
	if got := m.Decimal().StringFixed(2); got != "1234.56" {
		t.Fatalf("Decimal() = %s", got)
	}
	if got := m.Rupees(); got != 1234.56 {
		t.Fatalf("Rupees() = %v", got)
	}
	if got := Rupees(5).Sub(Rupees(8)); got.Paise != -300 {
		t.Fatalf("Sub() = %d", got.Paise)
	}
}
