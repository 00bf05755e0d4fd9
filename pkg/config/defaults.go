package config

import "time"

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStoreBackend = StoreMemory

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "yatra"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultIdempotencyTTL = 10 * time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockTTL         = 10 * time.Second
	DefaultLockRetryWindow = 2 * time.Second

	DefaultEventsEnabled = false
)
