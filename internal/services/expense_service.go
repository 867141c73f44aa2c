package services

import (
	"context"
	"fmt"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	applog "kharcha/internal/log"
	"kharcha/internal/storage"
)

const entityExpense = "expense"

// ExpenseService validates expense writes, stores them and announces them over AMQP.
type ExpenseService struct {
	store storage.ExpenseStore
	events
}

func NewExpenseService(store storage.ExpenseStore, opts ...Option) *ExpenseService {
	return &ExpenseService{store: store, events: newEvents(opts)}
}

func (s *ExpenseService) List(ctx context.Context, userID string) ([]core.Expense, error) {
	list, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return list, nil
}

// Create stores e under a new id. Validation errors are returned before any store call.
func (s *ExpenseService) Create(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.CreateExpense(ctx, userID, e)
	s.recorder.StoreWrite(entityExpense, "create", err)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Expense created", applog.NewFields().
		WithUser(userID).
		WithOperation(applog.OpCreate).
		WithExpense(saved.ID, saved.CategoryID, saved.Amount.Paise).
		ToSlice()...)

	s.publish(ctx, amqp.NewExpenseEvent(userID, saved.ID, amqp.ActionCreate))
	return saved, nil
}

// Update replaces every field of an existing expense, keeping its id.
func (s *ExpenseService) Update(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		return core.Expense{}, storage.ErrNotFound
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.UpdateExpense(ctx, userID, e)
	s.recorder.StoreWrite(entityExpense, "update", err)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Expense updated", applog.NewFields().
		WithUser(userID).
		WithOperation(applog.OpUpdate).
		WithExpense(saved.ID, saved.CategoryID, saved.Amount.Paise).
		ToSlice()...)

	s.publish(ctx, amqp.NewExpenseEvent(userID, saved.ID, amqp.ActionUpdate))
	return saved, nil
}

// Delete is idempotent; deleting a missing or foreign id succeeds.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteExpense(ctx, userID, id)
	s.recorder.StoreWrite(entityExpense, "delete", err)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(userID, id, amqp.ActionDelete))
	return nil
}
