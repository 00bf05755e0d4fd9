package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvStoreBackend = "STORE_BACKEND"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockTTL         = "LOCK_TTL"
	EnvLockRetryWindow = "LOCK_RETRY_WINDOW"

	EnvEventsEnabled = "EVENTS_ENABLED"
	EnvSeedFile      = "SEED_FILE"
)
