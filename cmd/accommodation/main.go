package main

import (
	"context"

	"github.com/vinaythakkar13/yatra-sub001/internal/events"
	"github.com/vinaythakkar13/yatra-sub001/internal/health"
	"github.com/vinaythakkar13/yatra-sub001/internal/seed"
	"github.com/vinaythakkar13/yatra-sub001/pkg/app"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	kafkaconfig "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/config"
	kafkamiddleware "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/middleware"
)

const ServiceName = "accommodation"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Accommodation service", "store_backend", cfg.StoreBackend)

	if cfg.UsesMongo() {
		cfg.SetMongo()
	}
	store, locker := initStore(cfg)
	serverApp := app.NewApplication(cfg)

	if cfg.SeedFile != "" && !cfg.UsesMongo() {
		data, err := seed.ReadFile(cfg.SeedFile)
		if err != nil {
			cfg.Log.Fatal("Failed to read seed file", "path", cfg.SeedFile, "error", err)
		}
		if _, err := seed.NewLoader(store, cfg.Log).Load(context.Background(), data); err != nil {
			cfg.Log.Fatal("Failed to seed memory store", "error", err)
		}
	}

	var (
		publisher events.Publisher = events.NoopPublisher{}
		metrics   *kafkamiddleware.Metrics
		kafkaCfg  *kafkaconfig.Config
	)
	if cfg.EventsEnabled {
		var err error
		kafkaCfg, err = kafkaconfig.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		kafkaCfg.LogConfiguration(cfg.Log)
		metrics = kafkamiddleware.NewMetrics()

		producer, err := newEventProducer(kafkaCfg, cfg, metrics)
		if err != nil {
			cfg.Log.Fatal("Failed to create event producer", "error", err)
		}
		publisher = events.NewKafkaPublisher(producer)
		serverApp.OnShutdown(producer.Close)
	}

	svcs := initServices(cfg, store, locker, publisher)

	serverApp.SetApp(
		health.NewHealthHandler(store, cfg.StoreBackend, metrics, cfg.Log),
		svcs.handlers(cfg)...,
	)

	if kafkaCfg != nil {
		consumer, err := newCancellationConsumer(kafkaCfg, cfg, svcs, metrics)
		if err != nil {
			cfg.Log.Fatal("Failed to create cancellation consumer", "error", err)
		}
		serverApp.AddWorker(consumer)
	}

	serverApp.Run()
}
