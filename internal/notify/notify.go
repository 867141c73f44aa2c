// Package notify delivers budget alerts. The log channel is always present;
// Telegram is added when a bot token and chat id are configured.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kharcha/internal/core"
	"kharcha/internal/format"
)

// Alert levels, ordered by severity.
const (
	LevelNearLimit = "near_limit"
	LevelExceeded  = "exceeded"
)

// Alert is one budget warning for one user and month.
type Alert struct {
	UserID    string
	Email     string
	Month     string // "January 2025"
	Level     string
	Threshold int // percent
	Progress  core.Progress
}

// Notifier sends an alert over one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, a Alert) error
}

// Message renders the human-readable alert text.
func Message(a Alert) string {
	p := a.Progress
	switch a.Level {
	case LevelExceeded:
		return fmt.Sprintf("You've exceeded your %s budget by %s (%s spent of %s).",
			a.Month, format.INR(p.ExceededBy), format.INR(p.Spent), format.INR(p.Budget))
	default:
		return fmt.Sprintf("You've used %.0f%% of your %s budget: %s spent of %s.",
			p.Percent, a.Month, format.INR(p.Spent), format.INR(p.Budget))
	}
}

// Log writes alerts to the structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Name() string { return "log" }

func (l *Log) Notify(ctx context.Context, a Alert) error {
	l.logger.InfoContext(ctx, "Budget alert",
		"user_id", a.UserID,
		"email", a.Email,
		"month", a.Month,
		"budget_level", a.Level,
		"spent_paise", a.Progress.Spent.Paise,
		"budget_paise", a.Progress.Budget.Paise,
		"message", Message(a))
	return nil
}

// Fanout sends to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Name() string { return "fanout" }

func (f Fanout) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
