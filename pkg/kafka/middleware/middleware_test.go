package kafkamiddleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinaythakkar13/yatra-sub001/pkg/kafka"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("boom") }

	pub := m.ProducerMiddleware()
	_ = pub(context.Background(), kafka.Message{}, ok)
	_ = pub(context.Background(), kafka.Message{}, ok)
	_ = pub(context.Background(), kafka.Message{}, fail)

	con := m.ConsumerMiddleware()
	_ = con(context.Background(), kafka.Message{}, fail)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Published)
	assert.Equal(t, int64(1), snap.PublishFailed)
	assert.Equal(t, int64(0), snap.Consumed)
	assert.Equal(t, int64(1), snap.ConsumeFailed)
}

func TestLoggingMiddleware_PassesErrorThrough(t *testing.T) {
	cause := errors.New("boom")
	next := func(context.Context, kafka.Message) error { return cause }

	err := LoggingProducerMiddleware(logger.Discard())(context.Background(), kafka.Message{}, next)
	assert.ErrorIs(t, err, cause)

	err = LoggingConsumerMiddleware(logger.Discard())(context.Background(), kafka.Message{}, next)
	assert.ErrorIs(t, err, cause)
}
