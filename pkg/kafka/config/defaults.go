package kafkaconfig

import "time"

const (
	DefaultKafkaBrokers  = "localhost:9092"
	DefaultKafkaClientID = "yatra-accommodation"
	DefaultKafkaGroupID  = "yatra-accommodation"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	// -2 reads from the oldest retained offset so no cancellation is skipped
	// on the first start of a new consumer group.
	DefaultConsumerStartOffset       = -2
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 1 * 1024 * 1024
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerMaxRetries        = 3
	DefaultConsumerRetryBackoff      = 200 * time.Millisecond
)
