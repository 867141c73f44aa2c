package views

import (
	"context"
	"fmt"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/format"
)

type BudgetModel struct {
	// Amount is the editor field, prefilled with the saved amount.
	Amount string
	Period core.Period

	Spent    string
	Of       string
	Percent  float64
	Level    core.BudgetLevel
	Exceeded string // "You've exceeded your budget by ₹…", empty when within budget
	Notice   string
}

func (s *Session) BudgetView() BudgetModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	spent := core.CurrentMonthTotal(s.expenses, s.now())
	p := core.BudgetProgress(s.budget, spent)
	m := BudgetModel{
		Amount:  s.budget.Amount.Decimal().String(),
		Period:  s.budget.Period,
		Spent:   format.INR(p.Spent),
		Of:      "spent of " + format.INR(p.Budget),
		Percent: round1(p.Percent),
		Level:   p.Level,
		Notice:  s.notice,
	}
	if p.Exceeded {
		m.Exceeded = fmt.Sprintf("You've exceeded your budget by %s.", format.INR(p.ExceededBy))
	}
	return m
}

// SaveBudget sets a new amount and keeps the current period unless period is given.
func (s *Session) SaveBudget(ctx context.Context, amount, period string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := core.ParseBudgetAmount(amount)
	if err != nil {
		return Outcome{Notice: NoticeInvalidBudget, Err: err}
	}
	b := core.Budget{Amount: m, Period: s.budget.Period}
	if strings.TrimSpace(period) != "" {
		p, err := core.ParsePeriod(period)
		if err != nil {
			return Outcome{Notice: NoticeInvalidBudget, Err: err}
		}
		b.Period = p
	}

	return commit(ctx, s, "save_budget",
		func(ctx context.Context) (core.Budget, error) {
			return s.svc.Budgets.Save(ctx, s.userID, b)
		},
		func(saved core.Budget) { s.budget = saved },
		NoticeBudgetSaved, NoticeSaveFailed)
}
