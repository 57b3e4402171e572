package service

import (
	"context"
	"errors"
	"strings"
	"time"

	bookingserrors "hostelbook/internal/bookings/errors"
	roomserrors "hostelbook/internal/rooms/errors"
	"hostelbook/internal/rooms/repository"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/model"
	"hostelbook/pkg/sanitizer"
	"hostelbook/pkg/validation"
)

// RoomLocker serializes writes on one room with the booking lifecycle.
type RoomLocker interface {
	Acquire(ctx context.Context, roomID string, ttl time.Duration) (string, error)
	Release(ctx context.Context, roomID, owner string) error
}

type ActiveBookingFinder interface {
	FindActiveByRoom(ctx context.Context, roomID string) (*model.Booking, error)
}

type RoomService interface {
	Create(ctx context.Context, adminID, hostelID string, req *model.RoomCreate) (*model.Room, error)
	ListForHostel(ctx context.Context, hostelID string) ([]*model.Room, error)
	GetForHostel(ctx context.Context, id, hostelID string) (*model.Room, error)
	Update(ctx context.Context, id, hostelID string, update *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id, hostelID string) error
	ListAll(ctx context.Context) ([]*model.RoomDetails, error)
	GetDetails(ctx context.Context, id string) (*model.RoomDetails, error)
}

type roomService struct {
	repo      repository.RoomRepository
	bookings  ActiveBookingFinder
	locks     RoomLocker
	validator *validation.Validator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	bookings ActiveBookingFinder,
	locks RoomLocker,
	validator *validation.Validator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		bookings:  bookings,
		locks:     locks,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, adminID, hostelID string, req *model.RoomCreate) (*model.Room, error) {
	if hostelID == "" {
		return nil, apperrors.Forbidden("Admin is not assigned to a hostel")
	}

	s.sanitizeCreate(req)
	if err := s.validator.Check(req, "Invalid room input"); err != nil {
		s.cfg.Log.Warn("Room validation failed", "hostel_id", hostelID, "error", err)
		return nil, err
	}

	room := &model.Room{
		HostelID:    hostelID,
		RoomNumber:  req.RoomNumber,
		RoomType:    req.RoomType,
		Capacity:    req.Capacity,
		Price:       req.Price,
		Description: req.Description,
		Images:      req.Images,
		Amenities:   req.Amenities,
		IsAvailable: true,
		CreatedBy:   adminID,
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateRoomNumber) {
			return nil, apperrors.Conflict("Room number already exists in this hostel").
				WithDetails(map[string]any{"roomNumber": room.RoomNumber})
		}
		s.cfg.Log.Error("Failed to create room", "hostel_id", hostelID, "error", err)
		return nil, apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "hostel_id", hostelID, "room_number", room.RoomNumber)
	return room, nil
}

func (s *roomService) ListForHostel(ctx context.Context, hostelID string) ([]*model.Room, error) {
	rooms, err := s.repo.FindByHostel(ctx, hostelID)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "hostel_id", hostelID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) GetForHostel(ctx context.Context, id, hostelID string) (*model.Room, error) {
	room, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.HostelID != hostelID {
		return nil, apperrors.Forbidden("Access denied")
	}
	return room, nil
}

// Update applies an admin edit. Occupancy is not part of RoomUpdate and can
// only change through bookings.
func (s *roomService) Update(ctx context.Context, id, hostelID string, update *model.RoomUpdate) (*model.Room, error) {
	if update == nil || update.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}

	s.sanitizeUpdate(update)
	if err := s.validator.Check(update, "Invalid room update"); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, err
	}

	if _, err := s.GetForHostel(ctx, id, hostelID); err != nil {
		return nil, err
	}

	room, err := s.repo.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Room", id)
		case errors.Is(err, roomserrors.ErrDuplicateRoomNumber):
			return nil, apperrors.Conflict("Room number already exists in this hostel")
		}
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "hostel_id", hostelID)
	return room, nil
}

// Delete removes a room that no active booking targets. The room lock keeps a
// booking from being created while the check and delete run.
func (s *roomService) Delete(ctx context.Context, id, hostelID string) error {
	if _, err := s.GetForHostel(ctx, id, hostelID); err != nil {
		return err
	}

	owner, err := s.locks.Acquire(ctx, id, s.cfg.RoomLockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomLocked) {
			return apperrors.Conflict("Room is being booked right now. Please try again.")
		}
		return apperrors.Internal("Failed to lock room", err)
	}
	defer func() {
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), id, owner); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "room_id", id, "error", releaseErr)
		}
	}()

	active, err := s.bookings.FindActiveByRoom(ctx, id)
	if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check room bookings", "id", id, "error", err)
		return apperrors.Internal("Failed to check room bookings", err)
	}
	if active != nil {
		return apperrors.Conflict("Room has an active booking and cannot be deleted").
			WithDetails(map[string]any{"bookingId": active.ID, "status": active.Status})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to delete room", "id", id, "error", err)
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id, "hostel_id", hostelID)
	return nil
}

func (s *roomService) ListAll(ctx context.Context) ([]*model.RoomDetails, error) {
	rooms, err := s.repo.FindAllWithHostel(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list all rooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) GetDetails(ctx context.Context, id string) (*model.RoomDetails, error) {
	room, err := s.repo.FindDetailsByID(ctx, id)
	if err != nil {
		return nil, s.mapFindError(id, err)
	}
	return room, nil
}

func (s *roomService) find(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapFindError(id, err)
	}
	return room, nil
}

func (s *roomService) mapFindError(id string, err error) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	default:
		s.cfg.Log.Error("Failed to retrieve room", "id", id, "error", err)
		return apperrors.Internal("Failed to retrieve room", err)
	}
}

func (s *roomService) sanitizeCreate(req *model.RoomCreate) {
	req.RoomNumber = sanitizer.NormalizeRoomNumber(req.RoomNumber)
	req.RoomType = strings.ToLower(sanitizer.TrimAndNormalize(req.RoomType))
	req.Description = sanitizer.TrimAndNormalize(req.Description)
	req.Images = sanitizer.NormalizeImageURLs(req.Images)
	req.Amenities = sanitizer.NormalizeAmenities(req.Amenities)
}

func (s *roomService) sanitizeUpdate(update *model.RoomUpdate) {
	if update.RoomNumber != nil {
		v := sanitizer.NormalizeRoomNumber(*update.RoomNumber)
		update.RoomNumber = &v
	}
	if update.RoomType != nil {
		v := strings.ToLower(sanitizer.TrimAndNormalize(*update.RoomType))
		update.RoomType = &v
	}
	if update.Description != nil {
		v := sanitizer.TrimAndNormalize(*update.Description)
		update.Description = &v
	}
	if update.Images != nil {
		v := sanitizer.NormalizeImageURLs(*update.Images)
		update.Images = &v
	}
	if update.Amenities != nil {
		v := sanitizer.NormalizeAmenities(*update.Amenities)
		update.Amenities = &v
	}
}
