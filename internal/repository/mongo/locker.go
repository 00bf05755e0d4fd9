package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vinaythakkar13/yatra-sub001/pkg/config"
	apperrors "github.com/vinaythakkar13/yatra-sub001/pkg/errors"
	"github.com/vinaythakkar13/yatra-sub001/pkg/lock"
	"github.com/vinaythakkar13/yatra-sub001/pkg/model"
)

const lockRetryInterval = 25 * time.Millisecond

// AdvisoryLocker is a lock.Locker shared by every instance pointed at the
// same database. A lock is a document whose _id is the key; the TTL index on
// expires_at reaps locks left behind by a crashed holder.
type AdvisoryLocker struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

var _ lock.Locker = (*AdvisoryLocker)(nil)

func NewAdvisoryLocker(cfg *config.Config) *AdvisoryLocker {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &AdvisoryLocker{
		cfg:        cfg,
		collection: db.Collection(LocksCollection),
		now:        time.Now,
	}
}

func (l *AdvisoryLocker) Acquire(ctx context.Context, keys ...string) (lock.Unlock, error) {
	owner := uuid.NewString()
	keys = lock.Normalize(keys)
	held := make([]string, 0, len(keys))

	for _, key := range keys {
		if err := l.acquireOne(ctx, key, owner); err != nil {
			l.release(held, owner)
			return nil, err
		}
		held = append(held, key)
	}

	return func() { l.release(held, owner) }, nil
}

func (l *AdvisoryLocker) acquireOne(ctx context.Context, key, owner string) error {
	deadline := l.now().Add(l.cfg.LockRetryWindow)
	for {
		now := l.now().UTC()
		_, err := l.collection.InsertOne(ctx, &model.AllocationLock{
			ID:        key,
			Owner:     owner,
			ExpiresAt: now.Add(l.cfg.LockTTL),
			CreatedAt: now,
		})
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return apperrors.Internal("Failed to acquire allocation lock", err)
		}

		// The TTL monitor only runs once a minute; clear an expired holder here.
		if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": now}}); err != nil {
			l.cfg.Log.Warn("Failed to clear expired allocation lock", "key", key, "error", err)
		}

		if l.now().After(deadline) {
			return apperrors.Conflict(fmt.Sprintf("%s is being modified by another operator, try again", key))
		}
		select {
		case <-ctx.Done():
			return apperrors.Timeout("Timed out waiting for allocation lock")
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *AdvisoryLocker) release(keys []string, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.WriteTimeout)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": keys[i], "owner": owner}); err != nil {
			l.cfg.Log.Warn("Failed to release allocation lock", "key", keys[i], "error", err)
		}
	}
}
