package services

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/storage"
)

type BudgetService struct {
	store storage.BudgetStore
	events
}

func NewBudgetService(store storage.BudgetStore, opts ...Option) *BudgetService {
	return &BudgetService{store: store, events: newEvents(opts)}
}

// Get returns the saved budget, or core.DefaultBudget when none exists.
func (s *BudgetService) Get(ctx context.Context, userID string) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	if b == nil {
		return core.DefaultBudget(), nil
	}
	return *b, nil
}

func (s *BudgetService) Save(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	saved, err := s.store.UpsertBudget(ctx, userID, b)
	s.recorder.StoreWrite("budget", "upsert", err)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"user_id", userID,
		"amount_paise", saved.Amount.Paise,
		"period", saved.Period)

	s.publish(ctx, amqp.NewBudgetEvent(userID))
	return saved, nil
}
