package format

import (
	"testing"

	"kharcha/internal/core"
)

func TestINR(t *testing.T) {
	cases := []struct {
		paise int64
		want  string
	}{
		{0, "₹0.00"},
		{5, "₹0.05"},
		{123456, "₹1,234.56"},
		{50000, "₹500.00"},
		{12345600, "₹1,23,456.00"},
		{123456700, "₹12,34,567.00"},
		{-123456, "-₹1,234.56"},
	}
	for _, tc := range cases {
		if got := INR(core.Money{Paise: tc.paise}); got != tc.want {
			t.Errorf("INR(%d) = %q, want %q", tc.paise, got, tc.want)
		}
	}
}

func TestINRShort(t *testing.T) {
	cases := []struct {
		rupees int64
		want   string
	}{
		{500, "₹500"},
		{999, "₹999"},
		{1234, "₹1.2K"},
		{1000, "₹1.0K"},
		{99999, "₹100.0K"},
		{150000, "₹1.5L"},
		{12000000, "₹1.2Cr"},
		{-1500, "₹-1.5K"},
		{-20, "-₹20"},
	}
	for _, tc := range cases {
		if got := INRShort(core.Rupees(tc.rupees)); got != tc.want {
			t.Errorf("INRShort(%d) = %q, want %q", tc.rupees, got, tc.want)
		}
	}
}

func TestINRShort_RoundsSmallAmounts(t *testing.T) {
	if got := INRShort(core.Money{Paise: 99950}); got != "₹1,000" {
		t.Errorf("got %q", got)
	}
	if got := INRShort(core.Money{Paise: 1249}); got != "₹12" {
		t.Errorf("got %q", got)
	}
}
