package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	kafkaconfig "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/config"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

type Consumer struct {
	reader       messageReader
	dlqWriter    messageWriter
	topic        string
	groupID      string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafkaconfig.Config, log *logger.Logger, topic, dlqTopic string, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	log = log.Component("kafka_consumer")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             topic,
		GroupID:           cfg.GroupID,
		MinBytes:          cfg.ConsumerMinBytes,
		MaxBytes:          cfg.ConsumerMaxBytes,
		MaxWait:           cfg.ConsumerMaxWait,
		HeartbeatInterval: cfg.ConsumerHeartbeatInterval,
		SessionTimeout:    cfg.ConsumerSessionTimeout,
		StartOffset:       cfg.ConsumerStartOffset,
		Logger:            kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:       errorLogger(log, topic),
	})

	var dlq messageWriter
	if dlqTopic != "" {
		dlq = newWriter(cfg, log, dlqTopic, true)
	}

	c := newConsumer(reader, dlq, topic, cfg.GroupID, handler, log)
	c.maxRetries = cfg.ConsumerMaxRetries
	c.retryBackoff = cfg.ConsumerRetryBackoff
	return c, nil
}

func newConsumer(reader messageReader, dlq messageWriter, topic, groupID string, handler MessageHandler, log *logger.Logger) *Consumer {
	return &Consumer{
		reader:       reader,
		dlqWriter:    dlq,
		topic:        topic,
		groupID:      groupID,
		maxRetries:   kafkaconfig.DefaultConsumerMaxRetries,
		retryBackoff: kafkaconfig.DefaultConsumerRetryBackoff,
		handler:      handler,
		log:          log,
	}
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until ctx is done. Offsets are committed only once a
// message has been handled or dead-lettered, so a crash mid-handling
// redelivers it.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	c.mu.RUnlock()
	defer c.wg.Done()

	for {
		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			if c.isClosed() || errors.Is(err, io.EOF) {
				return ErrConsumerClosed
			}
			c.log.Warn("failed to fetch message", "topic", c.topic, "error", err)
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		if err := c.processMessage(ctx, fromKafkaMessage(kafkaMsg)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("message not committed", "topic", c.topic, "offset", kafkaMsg.Offset, "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			c.log.Warn("failed to commit offset",
				"topic", c.topic,
				"partition", kafkaMsg.Partition,
				"offset", kafkaMsg.Offset,
				"error", err,
			)
		}
	}
}

// processMessage runs the handler, retrying transient failures with a linear
// backoff. A message that still fails is dead-lettered and counts as handled.
// The error return is reserved for failures that must not be committed.
func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	c.mu.RLock()
	handler := c.handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw, next := c.middleware[i], handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	c.mu.RUnlock()

	for {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if ShouldRetry(err, retries, c.maxRetries) {
			msg.IncrementRetryCount()
			c.log.Warn("retrying message",
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"attempt", retries+1,
				"max_retries", c.maxRetries,
				"error", err,
			)
			if !sleep(ctx, c.retryBackoff*time.Duration(retries+1)) {
				return ctx.Err()
			}
			continue
		}

		if c.dlqWriter == nil {
			c.log.Error("dropping failed message", "key", msg.Key, "event_id", msg.GetEventID(), "error", err)
			return nil
		}
		if dlqErr := deadLetter(ctx, c.dlqWriter, msg, c.topic, c.groupID, err); dlqErr != nil {
			return fmt.Errorf("dead-letter message %s: %w (handler error: %v)", msg.GetEventID(), dlqErr, err)
		}
		c.log.Warn("message sent to DLQ",
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"retries", retries,
			"error_type", ClassifyError(err).String(),
			"error", err,
		)
		return nil
	}
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()

	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func (c *Consumer) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Consumer) Lag() int64 {
	if r, ok := c.reader.(*kafka.Reader); ok {
		return r.Stats().Lag
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
