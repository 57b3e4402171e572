package mongo

import (
	"context"
	"fmt"

	mongodb "hostelbook/pkg/db/mongo"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/model"

	"hostelbook/internal/migrations/mongo/validators"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var activeBookingFilter = bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: model.ActiveBookingStatuses}}}}

var (
	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(mongodb.IndexUniqueUserEmail).SetUnique(true),
		},
		{Keys: bson.D{{Key: "admin.hostel_id", Value: 1}}},
	}

	HostelsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName(mongodb.IndexUniqueHostelName).SetUnique(true),
		},
	}

	RoomsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "hostel_id", Value: 1}, {Key: "room_number", Value: 1}},
			Options: options.Index().SetName(mongodb.IndexUniqueRoomNumberPerHostel).SetUnique(true),
		},
		{Keys: bson.D{{Key: "hostel_id", Value: 1}, {Key: "is_occupied", Value: 1}}},
		{Keys: bson.D{{Key: "is_available", Value: 1}, {Key: "is_occupied", Value: 1}}},
	}

	// The two partial unique indexes are the storage-level guarantee of at most
	// one active booking per student and per room. $in inside a partial filter
	// needs MongoDB 6.0 or later.
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().
				SetName(mongodb.IndexActiveBookingPerStudent).
				SetUnique(true).
				SetPartialFilterExpression(activeBookingFilter),
		},
		{
			Keys: bson.D{{Key: "room_id", Value: 1}},
			Options: options.Index().
				SetName(mongodb.IndexActiveBookingPerRoom).
				SetUnique(true).
				SetPartialFilterExpression(activeBookingFilter),
		},
		{Keys: bson.D{{Key: "hostel_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	RoomLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type collectionDefinition struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collectionDefinitions() []collectionDefinition {
	return []collectionDefinition{
		{Name: mongodb.HostelsCollection, Indexes: HostelsIndexes, Validator: validators.HostelValidator},
		{Name: mongodb.UsersCollection, Indexes: UsersIndexes, Validator: validators.UserValidator},
		{Name: mongodb.RoomsCollection, Indexes: RoomsIndexes, Validator: validators.RoomValidator},
		{Name: mongodb.BookingsCollection, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: mongodb.RoomLocksCollection, Indexes: RoomLocksIndexes, Validator: validators.RoomLockValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range collectionDefinitions() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
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

	log.Info("Collection exists, updating validator", "collection", name)
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
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
