package services

import (
	"context"
	"log/slog"

	"kharcha/internal/amqp"
)

// Publisher sends change events to the worker. *amqp.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, e *amqp.Event) error
}

// Recorder counts store writes and published events. *metrics.Metrics satisfies it.
type Recorder interface {
	StoreWrite(entity, op string, err error)
	EventPublished(eventType string, err error)
}

type nopRecorder struct{}

func (nopRecorder) StoreWrite(string, string, error) {}
func (nopRecorder) EventPublished(string, error)     {}

// Option configures the optional collaborators of a service.
type Option func(*events)

// WithPublisher publishes an event after every successful write.
// A nil publisher disables publishing.
func WithPublisher(p Publisher) Option {
	return func(ev *events) { ev.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(ev *events) {
		if r != nil {
			ev.recorder = r
		}
	}
}

// events is embedded by every service that writes.
type events struct {
	publisher Publisher
	recorder  Recorder
}

func newEvents(opts []Option) events {
	ev := events{recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(&ev)
	}
	return ev
}

// publish never fails the caller: the write it reports has already happened.
func (ev events) publish(ctx context.Context, e *amqp.Event) {
	if ev.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "type", e.Type)
		return
	}
	err := ev.publisher.Publish(ctx, e)
	ev.recorder.EventPublished(e.Type, err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish event",
			"type", e.Type,
			"action", e.Action,
			"user_id", e.UserID,
			"error", err)
	}
}
