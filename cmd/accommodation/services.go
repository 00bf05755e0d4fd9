package main

import (
	"context"

	allocationhandler "github.com/vinaythakkar13/yatra-sub001/internal/allocation/handler"
	allocationservice "github.com/vinaythakkar13/yatra-sub001/internal/allocation/service"
	allocationvalidator "github.com/vinaythakkar13/yatra-sub001/internal/allocation/validator"
	"github.com/vinaythakkar13/yatra-sub001/internal/events"
	occupancyhandler "github.com/vinaythakkar13/yatra-sub001/internal/occupancy/handler"
	occupancyservice "github.com/vinaythakkar13/yatra-sub001/internal/occupancy/service"
	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/internal/repository/memory"
	mongorepo "github.com/vinaythakkar13/yatra-sub001/internal/repository/mongo"
	reviewhandler "github.com/vinaythakkar13/yatra-sub001/internal/review/handler"
	reviewservice "github.com/vinaythakkar13/yatra-sub001/internal/review/service"
	reviewvalidator "github.com/vinaythakkar13/yatra-sub001/internal/review/validator"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	"github.com/vinaythakkar13/yatra-sub001/pkg/contracts"
	"github.com/vinaythakkar13/yatra-sub001/pkg/kafka"
	kafkaconfig "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/config"
	kafkamiddleware "github.com/vinaythakkar13/yatra-sub001/pkg/kafka/middleware"
	"github.com/vinaythakkar13/yatra-sub001/pkg/lock"
)

type services struct {
	allocation allocationservice.AllocationService
	review     reviewservice.ReviewService
	occupancy  occupancyservice.OccupancyService
}

// initStore picks the store and the matching locker. Instances sharing a
// Mongo database must also share their locks.
func initStore(cfg *config.Config) (repository.Store, lock.Locker) {
	if cfg.UsesMongo() {
		cfg.Log.Info("Using Mongo store", "database", cfg.MongoDatabaseName)
		return mongorepo.NewStore(cfg), mongorepo.NewAdvisoryLocker(cfg)
	}
	cfg.Log.Warn("Using in-memory store, state is lost on restart")
	return memory.NewStore(), lock.NewKeyedLocker()
}

func initServices(cfg *config.Config, store repository.Store, locker lock.Locker, publisher events.Publisher) *services {
	svcs := &services{
		allocation: allocationservice.NewAllocationService(
			store,
			locker,
			publisher,
			allocationvalidator.NewAllocationValidator(cfg.Log),
			cfg,
		),
		review: reviewservice.NewReviewService(
			store,
			publisher,
			reviewvalidator.NewReviewValidator(cfg.Log),
			cfg,
		),
		occupancy: occupancyservice.NewOccupancyService(store, cfg),
	}

	cfg.Log.Info("Accommodation services initialized", "store_backend", cfg.StoreBackend)
	return svcs
}

func (s *services) handlers(cfg *config.Config) []contracts.Handler {
	return []contracts.Handler{
		allocationhandler.NewAllocationHandler(s.allocation, cfg.Log),
		reviewhandler.NewReviewHandler(s.review, cfg.Log),
		occupancyhandler.NewOccupancyHandler(s.occupancy, cfg.Log),
	}
}

// releaseRooms adapts Unassign to the cancellation intake.
func releaseRooms(allocation allocationservice.AllocationService) events.ReleaseFunc {
	return func(ctx context.Context, registrationID string) error {
		_, err := allocation.Unassign(ctx, registrationID)
		return err
	}
}

func newEventProducer(kafkaCfg *kafkaconfig.Config, cfg *config.Config, metrics *kafkamiddleware.Metrics) (*kafka.Producer, error) {
	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, events.AllocationTopic, "")
	if err != nil {
		return nil, err
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.ProducerMiddleware())
	return producer, nil
}

func newCancellationConsumer(kafkaCfg *kafkaconfig.Config, cfg *config.Config, svcs *services, metrics *kafkamiddleware.Metrics) (*kafka.Consumer, error) {
	intake := events.NewCancellationHandler(svcs.review, releaseRooms(svcs.allocation), cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, events.CancellationTopic, events.CancellationDLQTopic, intake.Handle)
	if err != nil {
		return nil, err
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.ConsumerMiddleware())
	return consumer, nil
}
