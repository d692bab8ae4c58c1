package service

import (
	"context"
	"time"
)

// AccountEvent represents a lifecycle event on an account, published for
// downstream consumers (analytics, audit). Publishing is best-effort and
// never blocks the originating operation.
type AccountEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	Type       string    `json:"type"`                 // One of the constants.EventAccount* values
	AccountID  string    `json:"account_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAccountEvent publishes an account lifecycle event for async processing
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
