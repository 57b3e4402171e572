package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hostelbook/internal/bookings/errors"
	"hostelbook/pkg/config"
	mongodb "hostelbook/pkg/db/mongo"
	"hostelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingFilter selects bookings for listing. Empty fields match everything.
type BookingFilter struct {
	StudentID string
	HostelID  string
	Statuses  []string
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindActiveByStudent(ctx context.Context, studentID string) (*model.Booking, error)
	FindActiveByRoom(ctx context.Context, roomID string) (*model.Booking, error)
	UpdateStatusIfPending(ctx context.Context, id string, status string) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	FindDetailsByID(ctx context.Context, id string) (*model.BookingDetails, error)
	FindDetails(ctx context.Context, filter BookingFilter, limit int64) ([]*model.BookingDetails, error)
	CountByStatus(ctx context.Context, hostelID string) (map[string]int64, error)
	DistinctStudents(ctx context.Context, hostelID string) ([]string, error)
	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.BookingsCollection),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// Create inserts a booking. A violation of either active-booking index is
// reported as the matching duplicate sentinel.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if index, dup := mongodb.DuplicateKeyIndex(err); dup {
			if index == mongodb.IndexActiveBookingPerRoom {
				return bookingserrors.ErrDuplicateActiveRoom
			}
			return bookingserrors.ErrDuplicateActiveStudent
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoBookingRepository) FindActiveByStudent(ctx context.Context, studentID string) (*model.Booking, error) {
	return r.findOne(ctx, bson.M{
		"student_id": studentID,
		"status":     bson.M{"$in": model.ActiveBookingStatuses},
	})
}

func (r *mongoBookingRepository) FindActiveByRoom(ctx context.Context, roomID string) (*model.Booking, error) {
	return r.findOne(ctx, bson.M{
		"room_id": roomID,
		"status":  bson.M{"$in": model.ActiveBookingStatuses},
	})
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

// UpdateStatusIfPending moves a pending booking to status. It returns
// ErrNotPending when the booking exists but has already left pending, so two
// admins acting on the same booking cannot both succeed.
func (r *mongoBookingRepository) UpdateStatusIfPending(ctx context.Context, id string, status string) (*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.BookingStatusPending}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotPending
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) FindDetailsByID(ctx context.Context, id string) (*model.BookingDetails, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	details, err := r.aggregateDetails(ctx, bson.D{{Key: "_id", Value: objectID}}, 1)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return details[0], nil
}

// FindDetails lists bookings newest first with student, room and hostel resolved.
// A limit of zero returns every match.
func (r *mongoBookingRepository) FindDetails(ctx context.Context, filter BookingFilter, limit int64) ([]*model.BookingDetails, error) {
	match := bson.D{}
	if filter.StudentID != "" {
		match = append(match, bson.E{Key: "student_id", Value: filter.StudentID})
	}
	if filter.HostelID != "" {
		match = append(match, bson.E{Key: "hostel_id", Value: filter.HostelID})
	}
	if len(filter.Statuses) > 0 {
		match = append(match, bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: filter.Statuses}}})
	}
	return r.aggregateDetails(ctx, match, limit)
}

func (r *mongoBookingRepository) aggregateDetails(ctx context.Context, match bson.D, limit int64) ([]*model.BookingDetails, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, mongodb.LookupByHexID(mongodb.UsersCollection, "student_id", "student", "password_hash")...)
	pipeline = append(pipeline, mongodb.LookupByHexID(mongodb.RoomsCollection, "room_id", "room")...)
	pipeline = append(pipeline, mongodb.LookupByHexID(mongodb.HostelsCollection, "hostel_id", "hostel")...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	defer cursor.Close(ctx)

	details := []*model.BookingDetails{}
	if err = cursor.All(ctx, &details); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return details, nil
}

// CountByStatus returns the number of bookings per status for a hostel.
// Statuses without bookings are absent from the map.
func (r *mongoBookingRepository) CountByStatus(ctx context.Context, hostelID string) (map[string]int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "hostel_id", Value: hostelID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *mongoBookingRepository) DistinctStudents(ctx context.Context, hostelID string) ([]string, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "student_id", bson.M{"hostel_id": hostelID})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct students: %w", err)
	}

	students := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			students = append(students, id)
		}
	}
	return students, nil
}
