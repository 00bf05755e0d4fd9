package main

import (
	"context"
	"time"

	mongorepo "github.com/vinaythakkar13/yatra-sub001/internal/repository/mongo"
	"github.com/vinaythakkar13/yatra-sub001/internal/seed"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
)

const JobName = "seed"

// Seeds a Mongo database from SEED_FILE. Run the migration job first so the
// collections carry their validators and indexes.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	if cfg.SeedFile == "" {
		cfg.Log.Fatal("SEED_FILE is required")
	}
	if !cfg.UsesMongo() {
		cfg.Log.Fatal("Seeding requires STORE_BACKEND=mongo; the memory store seeds itself at startup")
	}

	data, err := seed.ReadFile(cfg.SeedFile)
	if err != nil {
		cfg.Log.Fatal("Failed to read seed file", "path", cfg.SeedFile, "error", err)
	}

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	report, err := seed.NewLoader(mongorepo.NewStore(cfg), cfg.Log).Load(ctx, data)
	if err != nil {
		cfg.Log.Error("Seed failed", "error", err)
		return
	}
	cfg.Log.Info("Seed completed",
		"hotels", report.Hotels,
		"registrations", report.Registrations,
		"skipped", report.Skipped,
	)
}
