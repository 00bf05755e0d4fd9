package main

import (
	"context"
	"time"

	mongoMigration "github.com/vinaythakkar13/yatra-sub001/internal/migrations/mongo"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		return
	}
	cfg.Log.Info("Migration completed successfully")
}
