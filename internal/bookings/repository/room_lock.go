package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "hostelbook/internal/bookings/errors"
	"hostelbook/pkg/config"
	mongodb "hostelbook/pkg/db/mongo"
	"hostelbook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const roomLockPrefix = "room_lock_"

// RoomLockRepository provides per-room advisory locks. A lock is a document
// keyed by room and stamped with the owner token of its current holder.
type RoomLockRepository interface {
	Acquire(ctx context.Context, roomID string, ttl time.Duration) (string, error)
	Release(ctx context.Context, roomID, owner string) error
}

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
	newOwner   func() string
}

func NewRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.RoomLocksCollection),
		now:        time.Now,
		newOwner:   uuid.NewString,
	}
}

func RoomLockID(roomID string) string {
	return roomLockPrefix + roomID
}

// Acquire takes the lock for roomID and returns the owner token Release needs,
// or ErrRoomLocked. A lock whose expiry has passed but that the TTL monitor
// has not yet removed is taken over under a new owner.
func (r *mongoRoomLockRepository) Acquire(ctx context.Context, roomID string, ttl time.Duration) (string, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.now().UTC().Truncate(time.Millisecond)
	lock := &model.RoomLock{
		ID:        RoomLockID(roomID),
		Owner:     r.newOwner(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return lock.Owner, nil
	}
	if _, dup := mongodb.DuplicateKeyIndex(err); !dup {
		return "", fmt.Errorf("failed to acquire room lock: %w", err)
	}

	filter := bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{
		"owner":      lock.Owner,
		"expires_at": lock.ExpiresAt,
		"created_at": lock.CreatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return "", fmt.Errorf("failed to take over expired room lock: %w", err)
	}
	if result.MatchedCount == 0 {
		return "", bookingserrors.ErrRoomLocked
	}
	return lock.Owner, nil
}

// Release drops the lock only while owner still holds it, so a holder that
// outlived its TTL cannot remove the lock of whoever took it over.
func (r *mongoRoomLockRepository) Release(ctx context.Context, roomID, owner string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": RoomLockID(roomID), "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	if result.DeletedCount == 0 {
		r.cfg.Log.Warn("Room lock already taken over or expired", "room_id", roomID)
	}
	return nil
}
