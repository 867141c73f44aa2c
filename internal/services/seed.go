package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"kharcha/internal/core"
)

// SampleExpenses builds n random expenses in now's month: days 1 to 28,
// amounts from ₹5.00 to ₹104.99, any category.
func SampleExpenses(n int, now time.Time, rng *rand.Rand) []core.Expense {
	cats := core.Categories()
	out := make([]core.Expense, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Expense{
			CategoryID: cats[rng.IntN(len(cats))].ID,
			Amount:     core.Money{Paise: 500 + rng.Int64N(10000)},
			Date:       core.NewDate(now.Year(), now.Month(), 1+rng.IntN(28)),
			Notes:      fmt.Sprintf("Sample expense entry #%d", i+1),
		})
	}
	return out
}

// Seed creates the given expenses for userID, calling progress after each one.
// It stops at the first failure and reports how many were created.
func (s *ExpenseService) Seed(ctx context.Context, userID string, expenses []core.Expense, progress func()) (int, error) {
	for i, e := range expenses {
		if _, err := s.Create(ctx, userID, e); err != nil {
			return i, fmt.Errorf("seed expense %d: %w", i+1, err)
		}
		if progress != nil {
			progress()
		}
	}
	return len(expenses), nil
}
