package core

import (
	"strings"
	"time"
)

// ExpenseFilter is a conjunction of optional predicates. Zero fields impose no restriction.
type ExpenseFilter struct {
	Notes      string
	CategoryID string
	Start      Date
	End        Date
}

func (f ExpenseFilter) IsZero() bool {
	return f.Notes == "" && f.category() == "" && f.Start.IsZero() && f.End.IsZero()
}

func (f ExpenseFilter) category() string {
	if f.CategoryID == AllCategories {
		return ""
	}
	return f.CategoryID
}

// Matches applies all set predicates. The end date includes its whole day.
func (f ExpenseFilter) Matches(e Expense) bool {
	if f.Notes != "" && !strings.Contains(strings.ToLower(e.Notes), strings.ToLower(f.Notes)) {
		return false
	}
	if c := f.category(); c != "" && e.CategoryID != c {
		return false
	}
	if !f.Start.IsZero() && e.Date.Before(f.Start.Time) {
		return false
	}
	if !f.End.IsZero() {
		endOfDay := f.End.Add(24*time.Hour - time.Millisecond)
		if e.Date.After(endOfDay) {
			return false
		}
	}
	return true
}

// Apply returns the matching expenses in their original order.
func (f ExpenseFilter) Apply(expenses []Expense) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
