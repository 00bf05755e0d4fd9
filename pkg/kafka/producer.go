package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	kafkaconfig "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/config"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

type Producer struct {
	writer     messageWriter
	dlqWriter  messageWriter
	topic      string
	log        *logger.Logger
	middleware []ProducerMiddleware
	closed     bool
	mu         sync.RWMutex
}

type ProducerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewProducer(cfg *kafkaconfig.Config, log *logger.Logger, topic, dlqTopic string) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	log = log.Component("kafka_producer")
	var dlq messageWriter
	if dlqTopic != "" {
		dlq = newWriter(cfg, log, dlqTopic, true)
	}
	return newProducer(newWriter(cfg, log, topic, false), dlq, topic, log), nil
}

func newProducer(writer, dlq messageWriter, topic string, log *logger.Logger) *Producer {
	return &Producer{
		writer:    writer,
		dlqWriter: dlq,
		topic:     topic,
		log:       log,
	}
}

func (p *Producer) Topic() string {
	return p.topic
}

func (p *Producer) Use(middleware ProducerMiddleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware)
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	closed := p.closed
	chain := p.middleware
	p.mu.RUnlock()

	if closed {
		return ErrProducerClosed
	}
	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}
	msg.Topic = p.topic

	handler := MessageHandler(p.write)
	for i := len(chain) - 1; i >= 0; i-- {
		mw, next := chain[i], handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	return handler(ctx, msg)
}

func (p *Producer) write(ctx context.Context, msg Message) error {
	err := p.writer.WriteMessages(ctx, toKafkaMessage(msg))
	if err == nil {
		return nil
	}
	if p.dlqWriter != nil {
		if dlqErr := deadLetter(ctx, p.dlqWriter, msg, p.topic, "", err); dlqErr != nil {
			p.log.Error("failed to dead-letter unpublished message",
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"error", dlqErr,
			)
		}
	}
	return fmt.Errorf("publish to %s: %w", p.topic, err)
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	err := p.writer.Close()
	if p.dlqWriter != nil {
		if dlqErr := p.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func (p *Producer) Stats() kafka.WriterStats {
	if w, ok := p.writer.(*kafka.Writer); ok {
		return w.Stats()
	}
	return kafka.WriterStats{Topic: p.topic}
}
