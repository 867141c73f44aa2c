// Package format renders rupee amounts for display.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

const symbol = "₹"

var (
	crore    = decimal.New(1, 7)
	lakh     = decimal.New(1, 5)
	thousand = decimal.New(1, 3)
)

// INR renders the full form with two decimals and Indian digit grouping,
// e.g. ₹1,234.56 and ₹12,34,567.00. Negative amounts read -₹1,234.56.
func INR(m core.Money) string {
	return Decimal(m.Decimal(), 2)
}

// Decimal formats d rounded to places with the rupee symbol and Indian grouping.
func Decimal(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")
	out := symbol + groupIndian(intPart)
	if frac != "" {
		out += "." + frac
	}
	if d.Round(places).IsNegative() {
		return "-" + out
	}
	return out
}

// INRShort collapses large amounts into K, L and Cr with one decimal
// (₹1.2K, ₹1.5L, ₹1.2Cr). Smaller amounts get no decimals (₹500).
// For suffixed forms a minus sign follows the symbol, as in ₹-1.5K.
func INRShort(m core.Money) string {
	d := m.Decimal()
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(crore):
		return symbol + d.Div(crore).StringFixed(1) + "Cr"
	case abs.GreaterThanOrEqual(lakh):
		return symbol + d.Div(lakh).StringFixed(1) + "L"
	case abs.GreaterThanOrEqual(thousand):
		return symbol + d.Div(thousand).StringFixed(1) + "K"
	}
	return Decimal(d, 0)
}

// groupIndian inserts commas after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
