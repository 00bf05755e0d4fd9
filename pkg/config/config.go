package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vinaythakkar13/yatra-sub001/pkg/client"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

type Config struct {
	Port     string
	LogLevel string

	StoreBackend string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int
	IdempotencyTTL time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// LockTTL bounds how long an advisory allocation lock survives a crashed holder.
	LockTTL time.Duration
	// LockRetryWindow is how long a writer waits for a busy hotel or registration.
	LockRetryWindow time.Duration

	EventsEnabled bool
	SeedFile      string

	Log    *logger.Logger
	Client *client.Client
}

var mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)

func Load(serviceName string) *Config {
	cfg := &Config{
		Port:     getEnvStr(EnvPort, DefaultPort),
		LogLevel: getEnvStr(EnvLogLevel, DefaultLogLevel),

		StoreBackend: strings.ToLower(getEnvStr(EnvStoreBackend, DefaultStoreBackend)),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LockTTL:         getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockRetryWindow: getEnvDuration(EnvLockRetryWindow, DefaultLockRetryWindow),

		EventsEnabled: getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		SeedFile:      getEnvStr(EnvSeedFile, ""),

		Client: client.NewClient(),
	}
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) UsesMongo() bool {
	return cfg.StoreBackend == StoreMongo
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.StoreBackend != StoreMemory && cfg.StoreBackend != StoreMongo {
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [%s, %s], got: %s", StoreMemory, StoreMongo, cfg.StoreBackend))
	}

	if cfg.StoreBackend == StoreMongo {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !mongoURIRegex.MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LockTTL", cfg.LockTTL},
		{"LockRetryWindow", cfg.LockRetryWindow},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.LockRetryWindow > 0 && cfg.LockTTL > 0 && cfg.LockRetryWindow > cfg.LockTTL {
		errors = append(errors, fmt.Sprintf("LockRetryWindow (%s) must not exceed LockTTL (%s)", cfg.LockRetryWindow, cfg.LockTTL))
	}

	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"store_backend", cfg.StoreBackend,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lock_ttl", cfg.LockTTL,
		"lock_retry_window", cfg.LockRetryWindow,
		"events_enabled", cfg.EventsEnabled,
		"seed_file", cfg.SeedFile,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
