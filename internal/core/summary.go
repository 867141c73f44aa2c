package core

import (
	"fmt"
	"sort"
	"time"
)

// CategoryAmount is a summed amount for one category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// TrendPoint is one month of the spending trend.
type TrendPoint struct {
	Year  int
	Month time.Month
	Label string // "Jan '25"
	Total Money
}

// Overview holds the dashboard figures for the month containing Now.
type Overview struct {
	Now       time.Time
	Spent     Money
	Remaining Money
	Top       Category
	HasTop    bool
}

type BudgetLevel string

const (
	LevelOK      BudgetLevel = "ok"
	LevelWarning BudgetLevel = "warning"
	LevelDanger  BudgetLevel = "danger"
)

// Progress describes how much of a budget has been used.
type Progress struct {
	Spent      Money
	Budget     Money
	Percent    float64 // 0..100
	Level      BudgetLevel
	Exceeded   bool
	ExceededBy Money
}

// InCurrentMonth reports whether d falls in now's month, reading d in now's location.
//
// Dates are stored at UTC midnight, so for locations west of UTC the first day of a
// month reads as the previous month. MonthlyTrend groups in UTC.
func InCurrentMonth(d Date, now time.Time) bool {
	t := d.Time.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}

func CurrentMonthTotal(expenses []Expense, now time.Time) Money {
	var total Money
	for _, e := range expenses {
		if InCurrentMonth(e.Date, now) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// RemainingBudget may be negative when the budget is overspent.
func RemainingBudget(b Budget, spent Money) Money {
	return b.Amount.Sub(spent)
}

// TopCategory returns the category with the highest spend in now's month.
// Ties go to the category that appears first in expenses.
func TopCategory(expenses []Expense, now time.Time) (Category, bool) {
	totals := make(map[string]int64)
	var order []string
	for _, e := range expenses {
		if !InCurrentMonth(e.Date, now) {
			continue
		}
		if _, seen := totals[e.CategoryID]; !seen {
			order = append(order, e.CategoryID)
		}
		totals[e.CategoryID] += e.Amount.Paise
	}
	if len(order) == 0 {
		return Category{}, false
	}
	best := order[0]
	for _, id := range order[1:] {
		if totals[id] > totals[best] {
			best = id
		}
	}
	return CategoryFor(best), true
}

// CategoryBreakdown sums every expense by category, in order of first appearance.
// Unlike the monthly figures it is not limited to the current month.
func CategoryBreakdown(expenses []Expense) []CategoryAmount {
	idx := make(map[string]int)
	var out []CategoryAmount
	for _, e := range expenses {
		i, ok := idx[e.CategoryID]
		if !ok {
			i = len(out)
			idx[e.CategoryID] = i
			out = append(out, CategoryAmount{Category: CategoryFor(e.CategoryID)})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// MonthlyTrend groups expenses by UTC year and month, oldest first.
func MonthlyTrend(expenses []Expense) []TrendPoint {
	type key struct {
		year  int
		month time.Month
	}
	totals := make(map[key]int64)
	for _, e := range expenses {
		t := e.Date.UTC()
		totals[key{t.Year(), t.Month()}] += e.Amount.Paise
	}
	out := make([]TrendPoint, 0, len(totals))
	for k, v := range totals {
		out = append(out, TrendPoint{
			Year:  k.year,
			Month: k.month,
			Label: TrendLabel(k.year, k.month),
			Total: Money{Paise: v},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// TrendLabel formats a month as "Jan '25".
func TrendLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s '%02d", month.String()[:3], year%100)
}

func BudgetProgress(b Budget, spent Money) Progress {
	p := Progress{Spent: spent, Budget: b.Amount, Level: LevelOK}
	if b.Amount.Paise > 0 {
		p.Percent = float64(spent.Paise) / float64(b.Amount.Paise) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	switch {
	case p.Percent > 90:
		p.Level = LevelDanger
	case p.Percent > 75:
		p.Level = LevelWarning
	}
	if spent.Paise > b.Amount.Paise {
		p.Exceeded = true
		p.ExceededBy = spent.Sub(b.Amount)
	}
	return p
}

// Summarize computes the dashboard overview for now's month.
func Summarize(expenses []Expense, b Budget, now time.Time) Overview {
	spent := CurrentMonthTotal(expenses, now)
	top, ok := TopCategory(expenses, now)
	return Overview{
		Now:       now,
		Spent:     spent,
		Remaining: RemainingBudget(b, spent),
		Top:       top,
		HasTop:    ok,
	}
}
