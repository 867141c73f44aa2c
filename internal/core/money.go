// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing rupee amounts from form input
// and converting between paise and decimal representations.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxRupees is the largest amount a NUMERIC(12,2) column holds.
var maxRupees = decimal.RequireFromString("9999999999.99")

// Rupees builds a Money from a whole rupee amount.
func Rupees(r int64) Money {
	return Money{Paise: r * 100}
}

// MoneyFromDecimal rounds d half away from zero to whole paise.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Paise: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the rupee value as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Paise, -2)
}

// Rupees returns the rupee value as a float64 for charts and spreadsheet cells.
func (m Money) Rupees() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) Add(o Money) Money { return Money{Paise: m.Paise + o.Paise} }
func (m Money) Sub(o Money) Money { return Money{Paise: m.Paise - o.Paise} }

// ParseAmount parses a strictly positive amount such as "1,234.56" or "₹ 99.9".
//
// Grouping commas and the rupee sign are ignored. A third decimal place is
// rounded half-up.
//
// Examples:
//
//	ParseAmount("12.34")    -> 1234 paise
//	ParseAmount("1,250")    -> 125000 paise
//	ParseAmount("12.345")   -> 1235 paise
//	ParseAmount("0")        -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	m, err := parseNonNegative(s)
	if err != nil {
		return Money{}, err
	}
	if m.Paise <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseBudgetAmount is ParseAmount that also accepts zero.
func ParseBudgetAmount(s string) (Money, error) {
	return parseNonNegative(s)
}

func parseNonNegative(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	if d.GreaterThan(maxRupees) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}
