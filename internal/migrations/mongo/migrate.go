package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vinaythakkar13/yatra-sub001/internal/migrations/mongo/validators"
	mongorepo "github.com/vinaythakkar13/yatra-sub001/internal/repository/mongo"
	"github.com/vinaythakkar13/yatra-sub001/pkg/logger"
)

var (
	HotelsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "floors.rooms.occupied_by", Value: 1}}},
	}

	RegistrationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "trip_id", Value: 1},
			{Key: "created_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "hotel_id", Value: 1},
			{Key: "room_number", Value: 1},
		}},
		{Keys: bson.D{{Key: "document_status", Value: 1}}},
	}

	MutationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "registration_id", Value: 1},
			{Key: "at", Value: 1},
		}},
	}

	// A crashed holder's lock is reaped once expires_at passes.
	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		mongorepo.HotelsCollection: {
			Indexes:   HotelsIndexes,
			Validator: validators.HotelValidator,
		},
		mongorepo.RegistrationsCollection: {
			Indexes:   RegistrationsIndexes,
			Validator: validators.RegistrationValidator,
		},
		mongorepo.MutationsCollection: {
			Indexes:   MutationsIndexes,
			Validator: validators.MutationValidator,
		},
		mongorepo.LocksCollection: {
			Indexes:   LocksIndexes,
			Validator: validators.LockValidator,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully", "database", dbName)
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Debug("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
