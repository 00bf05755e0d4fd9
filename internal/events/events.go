// Package events carries allocation and review outcomes to Kafka and feeds
// external cancellations back into the review and allocation services.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

const (
	AllocationTopic      = "yatra.allocation.events"
	CancellationTopic    = "yatra.registration.cancellations"
	CancellationDLQTopic = "yatra.registration.cancellations.dlq"
	SchemaVersion        = "1"
)

type Type string

const (
	RoomAssigned        Type = "room.assigned"
	RoomReassigned      Type = "room.reassigned"
	RoomUnassigned      Type = "room.unassigned"
	DocumentsApproved   Type = "documents.approved"
	DocumentsRejected   Type = "documents.rejected"
	CancellationApplied Type = "registration.cancelled.applied"
)

type Event struct {
	ID             string              `json:"id"`
	Type           Type                `json:"type"`
	RegistrationID string              `json:"registration_id"`
	Mutation       *model.Mutation     `json:"mutation,omitempty"`
	Review         *model.ReviewChange `json:"review,omitempty"`
	At             time.Time           `json:"at"`
}

func ForMutation(m *model.Mutation) Event {
	t := RoomAssigned
	switch m.Kind {
	case model.MutationReassign:
		t = RoomReassigned
	case model.MutationUnassign:
		t = RoomUnassigned
	}
	return Event{ID: uuid.NewString(), Type: t, RegistrationID: m.RegistrationID, Mutation: m, At: m.At}
}

func ForReview(c *model.ReviewChange) Event {
	t := DocumentsApproved
	switch c.To {
	case model.DocumentsRejected:
		t = DocumentsRejected
	case model.DocumentsCancelled:
		t = CancellationApplied
	}
	return Event{ID: uuid.NewString(), Type: t, RegistrationID: c.RegistrationID, Review: c, At: c.At}
}

// Publisher delivers events after the change they describe is committed.
// Callers log a failed publish; they never undo the commit.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
