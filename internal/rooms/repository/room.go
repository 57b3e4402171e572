package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomserrors "hostelbook/internal/rooms/errors"
	"hostelbook/pkg/config"
	mongodb "hostelbook/pkg/db/mongo"
	"hostelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindByHostel(ctx context.Context, hostelID string) ([]*model.Room, error)
	FindAllWithHostel(ctx context.Context) ([]*model.RoomDetails, error)
	FindDetailsByID(ctx context.Context, id string) (*model.RoomDetails, error)
	Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
	SetOccupied(ctx context.Context, id string, occupied bool) error
	CountByHostel(ctx context.Context, hostelID string) (int64, error)
	CountOccupiedByHostel(ctx context.Context, hostelID string) (int64, error)
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.RoomsCollection),
	}
}

func (r *mongoRoomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	room.CreatedAt = now
	room.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, room)
	if err != nil {
		if _, dup := mongodb.DuplicateKeyIndex(err); dup {
			return roomserrors.ErrDuplicateRoomNumber
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		room.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	var room model.Room
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoRoomRepository) FindByHostel(ctx context.Context, hostelID string) ([]*model.Room, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "room_number", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"hostel_id": hostelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []*model.Room{}
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (r *mongoRoomRepository) FindAllWithHostel(ctx context.Context) ([]*model.RoomDetails, error) {
	return r.aggregateDetails(ctx, bson.D{}, true)
}

func (r *mongoRoomRepository) FindDetailsByID(ctx context.Context, id string) (*model.RoomDetails, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	rooms, err := r.aggregateDetails(ctx, bson.D{{Key: "_id", Value: objectID}}, false)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, roomserrors.ErrNotFound
	}
	return rooms[0], nil
}

// aggregateDetails joins each matched room with its hostel.
func (r *mongoRoomRepository) aggregateDetails(ctx context.Context, match bson.D, sorted bool) ([]*model.RoomDetails, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}
	if sorted {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
			{Key: "hostel_id", Value: 1},
			{Key: "room_number", Value: 1},
		}}})
	}
	pipeline = append(pipeline, mongodb.LookupByHexID(mongodb.HostelsCollection, "hostel_id", "hostel")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []*model.RoomDetails{}
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (r *mongoRoomRepository) Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.RoomNumber != nil {
		set["room_number"] = *update.RoomNumber
	}
	if update.RoomType != nil {
		set["room_type"] = *update.RoomType
	}
	if update.Capacity != nil {
		set["capacity"] = *update.Capacity
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Images != nil {
		set["images"] = *update.Images
	}
	if update.Amenities != nil {
		set["amenities"] = *update.Amenities
	}
	if update.IsAvailable != nil {
		set["is_available"] = *update.IsAvailable
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var room model.Room
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomserrors.ErrNotFound
		}
		if _, dup := mongodb.DuplicateKeyIndex(err); dup {
			return nil, roomserrors.ErrDuplicateRoomNumber
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return &room, nil
}

func (r *mongoRoomRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if result.DeletedCount == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

// SetOccupied is the only write path for is_occupied. It is called by the
// booking lifecycle inside its transactions.
func (r *mongoRoomRepository) SetOccupied(ctx context.Context, id string, occupied bool) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"is_occupied": occupied,
		"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update room occupancy: %w", err)
	}
	if result.MatchedCount == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoomRepository) CountByHostel(ctx context.Context, hostelID string) (int64, error) {
	return r.count(ctx, bson.M{"hostel_id": hostelID})
}

func (r *mongoRoomRepository) CountOccupiedByHostel(ctx context.Context, hostelID string) (int64, error) {
	return r.count(ctx, bson.M{"hostel_id": hostelID, "is_occupied": true})
}

func (r *mongoRoomRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

