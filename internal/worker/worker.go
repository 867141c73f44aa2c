// Package worker runs the background side of kharcha: budget alerts driven
// by change events and a cron sweep, plus the monthly spreadsheet export.
package worker

import (
	"context"
	"log/slog"
	"time"

	"kharcha/internal/core"
)

// Store is the read side the worker needs. Every storage backend satisfies it.
type Store interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	GetBudget(ctx context.Context, userID string) (*core.Budget, error)
	GetProfile(ctx context.Context, userID string) (*core.ProfileSettings, error)
}

// Recorder counts worker outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	EventConsumed(eventType string, err error)
	AlertSent(level, channel string)
	Export(err error)
}

type nopRecorder struct{}

func (nopRecorder) EventConsumed(string, error) {}
func (nopRecorder) AlertSent(string, string)    {}
func (nopRecorder) Export(error)                {}

type options struct {
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*options)

func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{recorder: nopRecorder{}, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
