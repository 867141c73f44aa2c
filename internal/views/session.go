// Package views holds the interaction state behind each page and a per-user
// projection of the stored data.
//
// A Session is loaded from the services when a page is opened and is changed
// locally only after the corresponding write has succeeded. A failed write
// leaves the projection as it was and reports a notice for the user.
package views

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/core"
)

// User-visible notices.
const (
	NoticeLoadFailed    = "Could not load your latest data. Showing what was last loaded."
	NoticeInvalidAmount = "Please enter a valid amount."
	NoticeInvalidDate   = "Please enter a valid date."
	NoticeNoCategory    = "Please choose a category."
	NoticeInvalidBudget = "Please enter a valid budget amount."
	NoticeSaveFailed    = "Could not save your changes. Please try again."
	NoticeDeleteFailed  = "Could not delete the expense. Please try again."

	NoticeExpenseAdded   = "Expense added."
	NoticeExpenseUpdated = "Expense updated."
	NoticeExpenseDeleted = "Expense deleted."
	NoticeBudgetSaved    = "Budget saved."
	NoticeAlertsOn       = "Budget alerts turned on."
	NoticeAlertsOff      = "Budget alerts turned off."
)

type (
	ExpenseService interface {
		List(ctx context.Context, userID string) ([]core.Expense, error)
		Create(ctx context.Context, userID string, e core.Expense) (core.Expense, error)
		Update(ctx context.Context, userID string, e core.Expense) (core.Expense, error)
		Delete(ctx context.Context, userID, id string) error
	}

	BudgetService interface {
		Get(ctx context.Context, userID string) (core.Budget, error)
		Save(ctx context.Context, userID string, b core.Budget) (core.Budget, error)
	}

	ProfileService interface {
		Get(ctx context.Context, userID string) (core.ProfileSettings, error)
		SetAlerts(ctx context.Context, userID string, enabled bool) (core.ProfileSettings, error)
	}

	// Services is everything a Session reads from and writes through.
	Services struct {
		Expenses ExpenseService
		Budgets  BudgetService
		Profiles ProfileService
	}
)

// Outcome is the result of a user action. Notice is shown to the user either way.
type Outcome struct {
	Notice string
	Err    error
}

func (o Outcome) Failed() bool { return o.Err != nil }

// Session is one user's projection and page state. All methods are safe for
// concurrent use; store calls run while the session lock is held, so actions
// from the same user are applied in order.
type Session struct {
	userID string
	svc    Services
	now    func() time.Time

	mu       sync.Mutex
	loaded   bool
	notice   string
	expenses []core.Expense
	budget   core.Budget
	settings core.ProfileSettings
	list     listState
}

func NewSession(userID string, svc Services) *Session {
	return &Session{
		userID:   userID,
		svc:      svc,
		now:      time.Now,
		budget:   core.DefaultBudget(),
		settings: core.DefaultProfileSettings(),
		list:     newListState(),
	}
}

// WithClock replaces the wall clock, for tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

func (s *Session) UserID() string { return s.userID }

// Load fetches expenses, budget and settings concurrently. When any read
// fails the previous projection is kept and a load notice is set.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		expenses []core.Expense
		budget   core.Budget
		settings core.ProfileSettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.svc.Expenses.List(gctx, s.userID)
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = s.svc.Budgets.Get(gctx, s.userID)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.svc.Profiles.Get(gctx, s.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Failed to load session data",
			"user_id", s.userID,
			"error", err)
		s.notice = NoticeLoadFailed
		return err
	}

	s.expenses = expenses
	s.budget = budget
	s.settings = settings
	s.loaded = true
	s.notice = ""
	s.list.clampPage(len(s.filteredLocked()))
	return nil
}

// Loaded reports whether at least one Load has succeeded.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Notice is the current load notice, empty after a successful load.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Expenses returns a copy of the projected expense list.
func (s *Session) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}

func (s *Session) Budget() core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

func (s *Session) Settings() core.ProfileSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// commit runs write and, only when it succeeds, apply. The caller holds s.mu.
func commit[T any](ctx context.Context, s *Session, action string, write func(context.Context) (T, error), apply func(T), success, failure string) Outcome {
	v, err := write(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Write failed, projection unchanged",
			"user_id", s.userID,
			"action", action,
			"error", err)
		return Outcome{Notice: failure, Err: err}
	}
	apply(v)
	return Outcome{Notice: success}
}

// invalid is the Outcome of input rejected before any store call.
func invalid(err error) Outcome {
	return Outcome{Notice: validationNotice(err), Err: err}
}

func validationNotice(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrNegativeAmount):
		return NoticeInvalidAmount
	case errors.Is(err, core.ErrInvalidDate):
		return NoticeInvalidDate
	case errors.Is(err, core.ErrUnknownCategory):
		return NoticeNoCategory
	default:
		return NoticeSaveFailed
	}
}
