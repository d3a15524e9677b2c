package broker

import (
	"context"

	"chatfilter/pkg/models"
)

// Producer publishes rule change events so other instances can refresh
// their index.
type Producer interface {
	Publish(ctx context.Context, topic string, event models.RuleEvent) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

// HandlerFunc handles one decoded event. Errors are retried unless they are
// fatal, then the event goes to the DLQ.
type HandlerFunc func(ctx context.Context, event models.RuleEvent) error
