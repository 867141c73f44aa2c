package worker

import (
	"context"
	"errors"
	"time"

	"kharcha/internal/amqp"
)

// Source is a reconnecting event stream. *amqp.Client satisfies it.
type Source interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.Event) error) error
	Reconnect(ctx context.Context) error
}

// Consumer keeps a handler attached to a Source across broker restarts.
type Consumer struct {
	source  Source
	handler func(context.Context, *amqp.Event) error
	backoff func(attempt int) time.Duration
	options
}

func NewConsumer(source Source, handler func(context.Context, *amqp.Event) error, opts ...Option) *Consumer {
	return &Consumer{
		source:  source,
		handler: handler,
		backoff: amqp.ExponentialBackoff,
		options: newOptions(opts),
	}
}

// Run consumes until ctx ends. Connection failures are retried with
// exponential backoff; any other consume error is returned.
func (c *Consumer) Run(ctx context.Context) error {
	attempt := 0
	for {
		err := c.source.Consume(ctx, c.handler)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !amqp.IsConnectionError(err) {
			return err
		}
		c.logger.WarnContext(ctx, "Event stream interrupted, reconnecting", "error", err, "attempt", attempt+1)

		for {
			wait := c.backoff(attempt)
			attempt++
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			rerr := c.source.Reconnect(ctx)
			if rerr == nil {
				c.logger.InfoContext(ctx, "Reconnected to event stream", "attempts", attempt)
				attempt = 0
				break
			}
			if errors.Is(rerr, context.Canceled) {
				return nil
			}
			c.logger.ErrorContext(ctx, "Reconnect failed", "error", rerr, "attempt", attempt)
		}
	}
}
