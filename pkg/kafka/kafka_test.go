package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.messages...)
}

type fakeReader struct {
	incoming  chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{incoming: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.incoming <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.incoming:
		return m, nil
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T, key string) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey(key).
		WithValue(map[string]string{"registration_id": key}).
		WithEventType("room.assigned").
		Build()
	require.NoError(t, err)
	return msg
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "allocations", logger.Discard())

	require.NoError(t, p.Publish(context.Background(), buildMessage(t, "reg-1")))

	written := w.written()
	require.Len(t, written, 1)
	assert.Equal(t, "reg-1", string(written[0].Key))
	assert.Equal(t, "room.assigned", header(written[0], HeaderEventType))
	assert.NotEmpty(t, header(written[0], HeaderEventID))
	assert.NotEmpty(t, header(written[0], HeaderTimestamp))
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "allocations", logger.Discard())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t, "reg-1")), ErrProducerClosed)
}

func TestProducer_FailedWriteIsDeadLettered(t *testing.T) {
	cause := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := newProducer(&fakeWriter{err: cause}, dlq, "allocations", logger.Discard())
	msg := buildMessage(t, "reg-1")

	err := p.Publish(context.Background(), msg)
	require.ErrorIs(t, err, cause)

	dead := dlq.written()
	require.Len(t, dead, 1)
	assert.Equal(t, "allocations", header(dead[0], HeaderOriginalTopic))
	assert.Equal(t, cause.Error(), header(dead[0], HeaderDLQError))
	_, leaked := msg.Headers[HeaderDLQError]
	assert.False(t, leaked)
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "allocations", logger.Discard())
	var calls []string
	trace := func(name string) ProducerMiddleware {
		return func(ctx context.Context, msg Message, next MessageHandler) error {
			calls = append(calls, name+":in")
			err := next(ctx, msg)
			calls = append(calls, name+":out")
			return err
		}
	}
	p.Use(trace("outer"))
	p.Use(trace("inner"))

	require.NoError(t, p.Publish(context.Background(), buildMessage(t, "reg-1")))
	assert.Equal(t, []string{"outer:in", "inner:in", "inner:out", "outer:out"}, calls)
}

func newTestConsumer(handler MessageHandler, dlq messageWriter, msgs ...kafka.Message) (*Consumer, *fakeReader) {
	r := newFakeReader(msgs...)
	c := newConsumer(r, dlq, "cancellations", "yatra", handler, logger.Discard())
	c.retryBackoff = time.Millisecond
	return c, r
}

func TestConsumer_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	handler := func(ctx context.Context, msg Message) error {
		attempts++
		if attempts < 3 {
			return NewTransientError("store busy", nil)
		}
		return nil
	}
	dlq := &fakeWriter{}
	c, _ := newTestConsumer(handler, dlq)

	require.NoError(t, c.processMessage(context.Background(), buildMessage(t, "reg-1")))
	assert.Equal(t, 3, attempts)
	assert.Empty(t, dlq.written())
}

func TestConsumer_PermanentFailureGoesToDLQ(t *testing.T) {
	attempts := 0
	handler := func(ctx context.Context, msg Message) error {
		attempts++
		return NewPermanentError("malformed payload", nil)
	}
	dlq := &fakeWriter{}
	c, _ := newTestConsumer(handler, dlq)

	require.NoError(t, c.processMessage(context.Background(), buildMessage(t, "reg-1")))
	assert.Equal(t, 1, attempts)

	dead := dlq.written()
	require.Len(t, dead, 1)
	assert.Equal(t, "cancellations", header(dead[0], HeaderOriginalTopic))
	assert.Equal(t, "yatra", header(dead[0], HeaderDLQGroup))
}

func TestConsumer_ExhaustedRetriesGoToDLQ(t *testing.T) {
	attempts := 0
	handler := func(ctx context.Context, msg Message) error {
		attempts++
		return context.DeadlineExceeded
	}
	dlq := &fakeWriter{}
	c, _ := newTestConsumer(handler, dlq)
	c.maxRetries = 2

	require.NoError(t, c.processMessage(context.Background(), buildMessage(t, "reg-1")))
	assert.Equal(t, 3, attempts)

	dead := dlq.written()
	require.Len(t, dead, 1)
	assert.Equal(t, "2", header(dead[0], HeaderRetryCount))
}

func TestConsumer_DLQFailureIsNotCommitted(t *testing.T) {
	handler := func(ctx context.Context, msg Message) error {
		return NewPermanentError("bad", nil)
	}
	c, _ := newTestConsumer(handler, &fakeWriter{err: errors.New("broker down")})

	assert.Error(t, c.processMessage(context.Background(), buildMessage(t, "reg-1")))
}

func TestConsumer_StartCommitsHandledMessages(t *testing.T) {
	first := toKafkaMessage(buildMessage(t, "reg-1"))
	first.Offset = 7
	second := toKafkaMessage(buildMessage(t, "reg-2"))
	second.Offset = 8

	var mu sync.Mutex
	var keys []string
	handler := func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, msg.Key)
		return nil
	}
	c, r := newTestConsumer(handler, nil, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Equal(t, []int64{7, 8}, r.commits())
	mu.Lock()
	assert.Equal(t, []string{"reg-1", "reg-2"}, keys)
	mu.Unlock()
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 11; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 11, msg.GetRetryCount())
	assert.Equal(t, "11", msg.Headers[HeaderRetryCount])
}

func TestMessageBuilder_EncodeFailure(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	require.Error(t, err)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("x", nil), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("x", errors.New("timeout")), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"network", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("registration id missing"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
