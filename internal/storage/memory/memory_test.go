package memory

import (
	"context"
	"testing"

	"kharcha/internal/core"
	"kharcha/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, New())
}

func TestListReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.CreateExpense(ctx, "u1", core.Expense{CategoryID: "cat1", Amount: core.Rupees(1), Date: core.NewDate(2025, 1, 1)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, _ := s.ListExpenses(ctx, "u1")
	list[0].Notes = "mutated"

	again, _ := s.ListExpenses(ctx, "u1")
	if again[0].Notes != "" {
		t.Fatalf("store shares its slice with callers: %q", again[0].Notes)
	}
}
