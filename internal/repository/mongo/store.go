package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vinaythakkar13/yatra-sub001/internal/repository"
	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	mongotx "github.com/vinaythakkar13/yatra-sub001/pkg/db/mongo"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

const (
	HotelsCollection        = "hotels"
	RegistrationsCollection = "registrations"
	MutationsCollection     = "allocation_mutations"
	LocksCollection         = "allocation_locks"
)

type mongoStore struct {
	cfg           *config.Config
	db            *mongo.Database
	hotels        *mongo.Collection
	registrations *mongo.Collection
	mutations     *mongo.Collection
	txManager     mongotx.TransactionManager
}

func NewStore(cfg *config.Config) repository.Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStore{
		cfg:           cfg,
		db:            db,
		hotels:        db.Collection(HotelsCollection),
		registrations: db.Collection(RegistrationsCollection),
		mutations:     db.Collection(MutationsCollection),
		txManager:     mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds a call by the configured timeout unless it runs inside a
// transaction, where wrapping the SessionContext would detach it from the
// session.
func (s *mongoStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *mongoStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *mongoStore) Hotel(ctx context.Context, id string) (*model.Hotel, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var hotel model.Hotel
	if err := s.hotels.FindOne(ctx, bson.M{"_id": id}).Decode(&hotel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}
	return &hotel, nil
}

// Hotels reads the inventory with snapshot read concern so counts and room
// listings built from it agree.
func (s *mongoStore) Hotels(ctx context.Context) ([]*model.Hotel, error) {
	var hotels []*model.Hotel
	err := s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
		cursor, err := s.hotels.Find(sessCtx, bson.M{}, opts)
		if err != nil {
			return fmt.Errorf("failed to find hotels: %w", err)
		}
		defer cursor.Close(sessCtx)

		hotels = nil
		if err := cursor.All(sessCtx, &hotels); err != nil {
			return fmt.Errorf("failed to decode hotels: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hotels, nil
}

func (s *mongoStore) SaveHotel(ctx context.Context, hotel *model.Hotel) error {
	if hotel == nil || hotel.ID == "" {
		return fmt.Errorf("%w: hotel id is required", repository.ErrInvalidInventory)
	}
	if err := hotel.Validate(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInventory, err)
	}

	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.hotels.ReplaceOne(ctx, bson.M{"_id": hotel.ID}, hotel, opts); err != nil {
		return fmt.Errorf("failed to save hotel: %w", err)
	}
	return nil
}

func (s *mongoStore) RegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var registration model.Registration
	if err := s.registrations.FindOne(ctx, bson.M{"_id": id}).Decode(&registration); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return &registration, nil
}

func (s *mongoStore) RegistrationsByTrip(ctx context.Context, tripID string) ([]*model.Registration, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.registrations.Find(ctx, bson.M{"trip_id": tripID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find registrations: %w", err)
	}
	defer cursor.Close(ctx)

	var registrations []*model.Registration
	if err := cursor.All(ctx, &registrations); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}
	return registrations, nil
}

func (s *mongoStore) CreateRegistration(ctx context.Context, registration *model.Registration) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = now
	}
	registration.UpdatedAt = now

	if _, err := s.registrations.InsertOne(ctx, registration); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateRegistration
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (s *mongoStore) ApplyReview(ctx context.Context, change *model.ReviewChange) (*model.Registration, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": change.RegistrationID, "document_status": change.From}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Registration
	err := s.registrations.FindOneAndUpdate(ctx, filter, reviewUpdate(change), opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to apply review: %w", err)
	}
	return nil, s.missingOrStale(ctx, s.registrations, bson.M{"_id": change.RegistrationID}, repository.ErrRegistrationNotFound)
}

// Commit writes every room change and the registration update in one
// transaction. Each write is filtered on the state the mutation was built
// from; a write that matches nothing aborts the transaction.
func (s *mongoStore) Commit(ctx context.Context, mutation *model.Mutation) error {
	return s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, change := range mutation.RoomChanges {
			if err := s.applyRoomChange(sessCtx, change); err != nil {
				return err
			}
		}

		filter := assignmentFilter(mutation.RegistrationID, mutation.Before)
		res, err := s.registrations.UpdateOne(sessCtx, filter, assignmentUpdate(mutation.After, mutation.At))
		if err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		if res.MatchedCount != 1 {
			return s.missingOrStale(sessCtx, s.registrations, bson.M{"_id": mutation.RegistrationID}, repository.ErrRegistrationNotFound)
		}

		if _, err := s.mutations.InsertOne(sessCtx, mutation); err != nil {
			return fmt.Errorf("failed to record mutation: %w", err)
		}
		return nil
	})
}

func (s *mongoStore) applyRoomChange(sessCtx mongo.SessionContext, change model.RoomChange) error {
	filter, update, opts := roomChangeUpdate(change)
	res, err := s.hotels.UpdateOne(sessCtx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to update room %s: %w", change.Ref(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrHotelNotFound
	}
	if res.ModifiedCount == 1 {
		return nil
	}

	roomFilter := bson.M{"_id": change.HotelID, "floors.rooms.number": change.RoomNumber}
	if err := s.missingOrStale(sessCtx, s.hotels, roomFilter, repository.ErrRoomNotFound); err != nil {
		return fmt.Errorf("room %s: %w", change.Ref(), err)
	}
	return nil
}

// missingOrStale tells a document that is gone from one whose state moved.
func (s *mongoStore) missingOrStale(ctx context.Context, coll *mongo.Collection, filter bson.M, notFound error) error {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return repository.ErrStaleState
}
