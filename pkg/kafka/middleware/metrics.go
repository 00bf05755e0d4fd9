package kafkamiddleware

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vinaythakkar13/yatra-sub001/pkg/kafka"
)

// Metrics counts publish and consume outcomes for the readiness report.
type Metrics struct {
	published     atomic.Int64
	publishFailed atomic.Int64
	publishNanos  atomic.Int64
	consumed      atomic.Int64
	consumeFailed atomic.Int64
	consumeNanos  atomic.Int64
}

type MetricsSnapshot struct {
	Published          int64  `json:"published"`
	PublishFailed      int64  `json:"publish_failed"`
	AvgPublishDuration string `json:"avg_publish_duration"`
	Consumed           int64  `json:"consumed"`
	ConsumeFailed      int64  `json:"consume_failed"`
	AvgConsumeDuration string `json:"avg_consume_duration"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	consumed := m.consumed.Load()
	return MetricsSnapshot{
		Published:          published,
		PublishFailed:      m.publishFailed.Load(),
		AvgPublishDuration: average(m.publishNanos.Load(), published+m.publishFailed.Load()).String(),
		Consumed:           consumed,
		ConsumeFailed:      m.consumeFailed.Load(),
		AvgConsumeDuration: average(m.consumeNanos.Load(), consumed+m.consumeFailed.Load()).String(),
	}
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.publishNanos.Add(int64(time.Since(start)))
		if err != nil {
			m.publishFailed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.consumeNanos.Add(int64(time.Since(start)))
		if err != nil {
			m.consumeFailed.Add(1)
		} else {
			m.consumed.Add(1)
		}
		return err
	}
}

func average(totalNanos, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(totalNanos / count)
}
