package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/amqp"
	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/notify"
	"kharcha/internal/storage"
)

const (
	sentCacheSize = 10000
	// An alert key covers one month, so it only has to outlive that month.
	sentCacheTTL = 32 * 24 * time.Hour
	sweepLimit   = 4
)

// Alerts decides when a user's monthly spend warrants a budget alert and
// sends at most one alert per user, month and level.
type Alerts struct {
	store     Store
	notifier  notify.Notifier
	threshold int
	sent      *cache.LRUCache[struct{}]
	options
}

// NewAlerts creates the evaluator. threshold is the near-limit percentage.
func NewAlerts(store Store, notifier notify.Notifier, threshold int, opts ...Option) *Alerts {
	if threshold <= 0 || threshold > 100 {
		threshold = 90
	}
	return &Alerts{
		store:     store,
		notifier:  notifier,
		threshold: threshold,
		sent:      cache.NewLRUCache[struct{}](sentCacheSize, sentCacheTTL),
		options:   newOptions(opts),
	}
}

// Sent exposes the duplicate-suppression cache so it can join a cache.Manager.
func (a *Alerts) Sent() *cache.LRUCache[struct{}] { return a.sent }

// HandleEvent re-evaluates the user named by a change event.
func (a *Alerts) HandleEvent(ctx context.Context, e *amqp.Event) error {
	var err error
	switch e.Type {
	case amqp.EventExpenseChanged, amqp.EventBudgetChanged:
		if e.UserID == "" {
			a.logger.WarnContext(ctx, "Dropping event without user", "type", e.Type)
			break
		}
		_, err = a.Evaluate(ctx, e.UserID)
	default:
		a.logger.WarnContext(ctx, "Ignoring unknown event type", "type", e.Type)
	}
	a.recorder.EventConsumed(e.Type, err)
	return err
}

// Evaluate checks one user's current month and returns the level of the
// alert it sent, or "" when none was due.
func (a *Alerts) Evaluate(ctx context.Context, userID string) (string, error) {
	profile, err := a.store.GetProfile(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}
	settings := core.DefaultProfileSettings()
	if profile != nil {
		settings = *profile
	}
	if !settings.EnableBudgetAlerts {
		return "", nil
	}

	budget := core.DefaultBudget()
	b, err := a.store.GetBudget(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load budget: %w", err)
	}
	if b != nil {
		budget = *b
	}
	if budget.Amount.Paise <= 0 {
		return "", nil
	}

	expenses, err := a.store.ListExpenses(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load expenses: %w", err)
	}

	now := a.now()
	progress := core.BudgetProgress(budget, core.CurrentMonthTotal(expenses, now))
	level := a.level(progress)
	if level == "" {
		return "", nil
	}

	key := fmt.Sprintf("%s|%s|%s", userID, now.Format("2006-01"), level)
	if !a.sent.Add(key, struct{}{}) {
		return "", nil
	}

	alert := notify.Alert{
		UserID:    userID,
		Month:     now.Format("January 2006"),
		Level:     level,
		Threshold: a.threshold,
		Progress:  progress,
	}
	user, err := a.store.GetUserByID(ctx, userID)
	switch {
	case err == nil:
		alert.Email = user.Email
	case !errors.Is(err, storage.ErrNotFound):
		a.sent.Delete(key)
		return "", fmt.Errorf("load user: %w", err)
	}

	if err := a.notifier.Notify(ctx, alert); err != nil {
		// Forget the key so the next event or sweep retries.
		a.sent.Delete(key)
		return "", fmt.Errorf("notify %s: %w", a.notifier.Name(), err)
	}
	a.recorder.AlertSent(level, a.notifier.Name())
	return level, nil
}

func (a *Alerts) level(p core.Progress) string {
	switch {
	case p.Exceeded:
		return notify.LevelExceeded
	case p.Percent >= float64(a.threshold):
		return notify.LevelNearLimit
	default:
		return ""
	}
}

// Sweep evaluates every user. A failing user is logged and does not stop
// the others; the returned error counts the failures.
func (a *Alerts) Sweep(ctx context.Context) error {
	ids, err := a.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepLimit)
	for _, id := range ids {
		g.Go(func() error {
			level, err := a.Evaluate(gctx, id)
			if err != nil {
				failed.Add(1)
				a.logger.ErrorContext(gctx, "Budget alert evaluation failed", "user_id", id, "error", err)
				return nil
			}
			if level != "" {
				sent.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	a.logger.InfoContext(ctx, "Budget alert sweep finished",
		"users", len(ids),
		"alerts_sent", sent.Load(),
		"failed", failed.Load())
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("alert sweep: %d of %d users failed", n, len(ids))
	}
	return nil
}
