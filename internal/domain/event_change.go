package domain

import (
	"context"
	"time"
)

// EventChangeType names a lifecycle transition of an event.
type EventChangeType string

const (
	EventCreated EventChangeType = "event.created"
	EventUpdated EventChangeType = "event.updated"
	EventDeleted EventChangeType = "event.deleted"
)

// EventChange is the notification emitted after a successful mutation.
type EventChange struct {
	ID         string          `json:"id"`
	Type       EventChangeType `json:"type"`
	EventID    string          `json:"eventId"`
	ActorID    string          `json:"actorId,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Event      *Event          `json:"event"`
}

// EventPublisher delivers EventChange notifications to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, change EventChange) error
	Close() error
}
