// Package sheets holds the export port and the row layout shared by every
// spreadsheet target (Google Sheets from the worker, xlsx from kharchactl).
package sheets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kharcha/internal/core"
)

// Exporter writes one user's month of expenses to an external sheet.
type Exporter interface {
	// ExportMonth appends the month's expenses and returns the range written,
	// or "" when there was nothing new to write.
	ExportMonth(ctx context.Context, m Month) (string, error)
}

// Month is the unit of export.
type Month struct {
	Email    string
	Year     int
	Month    time.Month
	Expenses []core.Expense
}

// Column order of every exported row. IDColumn is used to skip rows that
// were already written by an earlier run.
var Header = []string{"Date", "Email", "Category", "Amount", "Notes", "ID"}

const IDColumn = 5

// Label is the display name of the month, e.g. "January 2025".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Rows renders the month's expenses, oldest first.
func (m Month) Rows() [][]any {
	expenses := InMonth(m.Expenses, m.Year, m.Month)
	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []any{
			e.Date.String(),
			m.Email,
			core.CategoryFor(e.CategoryID).Name,
			e.Amount.Rupees(),
			e.Notes,
			e.ID,
		})
	}
	return rows
}

// InMonth returns the expenses dated in year/month, oldest first.
func InMonth(expenses []core.Expense, year int, month time.Month) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// PreviousMonth returns the calendar month before t, in UTC.
func PreviousMonth(t time.Time) (int, time.Month) {
	first := time.Date(t.UTC().Year(), t.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return prev.Year(), prev.Month()
}
