package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	kafkaconfig "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/config"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func newWriter(cfg *kafkaconfig.Config, log *logger.Logger, topic string, reliable bool) *kafka.Writer {
	acks := requiredAcks(cfg.ProducerRequireAcks)
	attempts := cfg.ProducerMaxAttempts
	if reliable {
		acks = kafka.RequireAll
		attempts = 3
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           acks,
		Compression:            compression(cfg.ProducerCompression),
		MaxAttempts:            attempts,
		BatchTimeout:           cfg.ProducerBatchTimeout,
		AllowAutoTopicCreation: false,
		Transport:              &kafka.Transport{ClientID: cfg.ClientID},
		Logger:                 kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:            errorLogger(log, topic),
	}
}

func errorLogger(log *logger.Logger, topic string) kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...any) {
		log.Error("kafka client error", "topic", topic, "detail", fmt.Sprintf(msg, args...))
	})
}

func compression(name string) kafka.Compression {
	switch name {
	case "none":
		return 0
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Snappy
	}
}

func requiredAcks(n int) kafka.RequiredAcks {
	switch n {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

func toKafkaMessage(msg Message) kafka.Message {
	out := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		out.Headers = append(out.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

func fromKafkaMessage(in kafka.Message) Message {
	msg := Message{
		Key:       string(in.Key),
		Value:     in.Value,
		Headers:   make(map[string]string, len(in.Headers)),
		Topic:     in.Topic,
		Partition: in.Partition,
		Offset:    in.Offset,
		Timestamp: in.Time,
	}
	for _, h := range in.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// deadLetter annotates a copy of msg with the failure and writes it to w.
func deadLetter(ctx context.Context, w messageWriter, msg Message, topic, group string, cause error) error {
	dlq := msg
	dlq.Headers = msg.cloneHeaders()
	dlq.Headers[HeaderOriginalTopic] = topic
	dlq.Headers[HeaderDLQError] = cause.Error()
	dlq.Headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	if group != "" {
		dlq.Headers[HeaderDLQGroup] = group
	}
	dlq.Timestamp = time.Now().UTC()
	return w.WriteMessages(ctx, toKafkaMessage(dlq))
}
