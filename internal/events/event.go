package events

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeAccountUpdated     = "account.updated"
	TypeAccountSnapshot    = "account.snapshot"
)

type Event struct {
	Type           string    `json:"type"`
	AccountID      uuid.UUID `json:"account_id"`
	OrderID        uuid.UUID `json:"order_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	TotalAmount    float64   `json:"total_amount,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
	// Data carries the full document for snapshot-style events.
	Data any `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

func NewNoop() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event Event) error {
	log.Debug().Str("event_type", event.Type).Stringer("account_id", event.AccountID).Msg("events: publisher disabled, event dropped")
	return nil
}

func (noopPublisher) Close() error { return nil }

type multiPublisher struct {
	publishers []Publisher
}

// NewMulti publishes every event to all publishers and joins their errors.
func NewMulti(publishers ...Publisher) Publisher {
	return &multiPublisher{publishers: publishers}
}

func (m *multiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
