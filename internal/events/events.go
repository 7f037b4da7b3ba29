// Package events defines the lifecycle notifications emitted by the API and
// the publishers that fan them out (staff websocket feed, message broker).
package events

import (
	"context"
	"errors"
	"time"
)

// Event is one lifecycle notification. Type is one of the enum.Event*
// constants and doubles as the broker routing key.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New stamps an event with the current time.
func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events somewhere. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
