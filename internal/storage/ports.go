// Package storage defines the persistence ports shared by the SQLite,
// Postgres and in-memory backends.
//
// Every expense, budget and profile operation is scoped to a user id.
// A row that exists but belongs to another user is treated as missing.
package storage

import (
	"context"
	"errors"

	"kharcha/internal/core"
)

var (
	// ErrNotFound is returned when an update or lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned by CreateUser for an already registered address.
	ErrEmailTaken = errors.New("email already registered")
)

type (
	ExpenseStore interface {
		// ListExpenses returns the user's expenses by date descending.
		ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
		CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error)
		// UpdateExpense matches on both id and user; ErrNotFound otherwise.
		UpdateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error)
		// DeleteExpense succeeds even when nothing matched.
		DeleteExpense(ctx context.Context, userID, id string) error
	}

	BudgetStore interface {
		// GetBudget returns nil without error when the user has not saved one.
		GetBudget(ctx context.Context, userID string) (*core.Budget, error)
		UpsertBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error)
	}

	ProfileStore interface {
		// GetProfile returns nil without error when there is no profile row.
		GetProfile(ctx context.Context, userID string) (*core.ProfileSettings, error)
		UpdateProfile(ctx context.Context, userID string, s core.ProfileSettings) (core.ProfileSettings, error)
	}

	UserStore interface {
		// CreateUser inserts the user and a profile row with default settings.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		GetUserByID(ctx context.Context, id string) (core.User, error)
		MarkVerified(ctx context.Context, id string) error
		ListUserIDs(ctx context.Context) ([]string, error)
	}

	// Store is what a backend provides.
	Store interface {
		ExpenseStore
		BudgetStore
		ProfileStore
		UserStore
		Ping(ctx context.Context) error
		Close() error
	}
)
