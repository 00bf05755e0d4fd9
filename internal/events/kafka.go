package events

import (
	"context"

	"github.com/vinaythakkar13/yatra-sub001/pkg/kafka"
)

const Source = "yatra-accommodation"

// MessagePublisher is the part of kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher writes events to the allocation topic keyed by registration,
// so consumers see each registration's changes in commit order.
type KafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := NewEventMessage(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func NewEventMessage(event Event) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.RegistrationID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(string(event.Type)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.At).
		Build()
}
