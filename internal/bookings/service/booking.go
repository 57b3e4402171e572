package service

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "hostelbook/internal/bookings/errors"
	"hostelbook/internal/bookings/events"
	"hostelbook/internal/bookings/repository"
	roomserrors "hostelbook/internal/rooms/errors"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// RoomStore is the part of the room repository the booking lifecycle needs.
// SetOccupied must not be called from anywhere else.
type RoomStore interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
	SetOccupied(ctx context.Context, id string, occupied bool) error
}

type BookingService interface {
	Create(ctx context.Context, studentID, roomID string) (*model.Booking, error)
	GetActive(ctx context.Context, studentID string) (*model.BookingDetails, error)
	Cancel(ctx context.Context, bookingID, studentID string) error
	ListPendingForHostel(ctx context.Context, hostelID string) ([]*model.BookingDetails, error)
	UpdateStatus(ctx context.Context, bookingID, action, adminHostelID string) (*model.BookingDetails, error)
	ListForHostel(ctx context.Context, hostelID string) ([]*model.BookingDetails, error)
	ListForStudent(ctx context.Context, studentID string) ([]*model.BookingDetails, error)
	ReleaseForStudent(ctx context.Context, studentID string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	rooms     RoomStore
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	rooms RoomStore,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create books roomID for studentID. Checks run in a fixed order inside one
// transaction while the room lock is held: room exists, room listed, room not
// occupied, student has no active booking, room has no active booking.
func (s *bookingService) Create(ctx context.Context, studentID, roomID string) (*model.Booking, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	var booking *model.Booking
	err := s.withRoomLock(ctx, roomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			room, err := s.findRoom(sessCtx, roomID)
			if err != nil {
				return err
			}
			if !room.IsAvailable {
				return apperrors.Conflict("Room is not available for booking")
			}
			if room.IsOccupied {
				return apperrors.Conflict("Room is already occupied")
			}
			if err := s.ensureNoActiveStudentBooking(sessCtx, studentID); err != nil {
				return err
			}
			if err := s.ensureNoActiveRoomBooking(sessCtx, roomID); err != nil {
				return err
			}

			booking = &model.Booking{
				StudentID: studentID,
				RoomID:    roomID,
				HostelID:  room.HostelID,
				Status:    model.BookingStatusPending,
			}
			if err := s.repo.Create(sessCtx, booking); err != nil {
				return s.mapCreateError(err)
			}
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to create booking", err, "student_id", studentID, "room_id", roomID)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"student_id", studentID,
		"room_id", roomID,
		"hostel_id", booking.HostelID,
	)
	s.publish(ctx, events.TypeCreated, booking)
	return booking, nil
}

func (s *bookingService) GetActive(ctx context.Context, studentID string) (*model.BookingDetails, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	details, err := s.repo.FindDetails(ctx, repository.BookingFilter{
		StudentID: studentID,
		Statuses:  model.ActiveBookingStatuses,
	}, 1)
	if err != nil {
		s.cfg.Log.Error("Failed to load active booking", "student_id", studentID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking status", err)
	}
	if len(details) == 0 {
		return nil, nil
	}
	return details[0], nil
}

// Cancel deletes the student's booking. Cancelling an approved booking frees
// the room in the same transaction.
func (s *bookingService) Cancel(ctx context.Context, bookingID, studentID string) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.StudentID != studentID {
		s.cfg.Log.Warn("Booking cancel denied", "id", bookingID, "student_id", studentID)
		return apperrors.Forbidden("Access denied")
	}

	err = s.withRoomLock(ctx, booking.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			current, err := s.findBooking(sessCtx, bookingID)
			if err != nil {
				return err
			}
			if current.Status == model.BookingStatusApproved {
				if err := s.rooms.SetOccupied(sessCtx, current.RoomID, false); err != nil && !errors.Is(err, roomserrors.ErrNotFound) {
					return apperrors.Internal("Failed to release room", err)
				}
			}
			if err := s.repo.Delete(sessCtx, bookingID); err != nil {
				if errors.Is(err, bookingserrors.ErrNotFound) {
					return apperrors.NotFoundWithID("Booking", bookingID)
				}
				return apperrors.Internal("Failed to cancel booking", err)
			}
			booking = current
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to cancel booking", err, "id", bookingID, "student_id", studentID)
		return err
	}

	s.cfg.Log.Info("Booking cancelled successfully",
		"id", bookingID,
		"student_id", studentID,
		"room_id", booking.RoomID,
		"previous_status", booking.Status,
	)
	s.publish(ctx, events.TypeCancelled, booking)
	return nil
}

// ReleaseForStudent drops the student's active booking, if any, before the
// account is removed. An approved booking gives its room back.
func (s *bookingService) ReleaseForStudent(ctx context.Context, studentID string) error {
	if studentID == "" {
		return apperrors.InvalidInput("Student ID cannot be empty")
	}

	active, err := s.repo.FindActiveByStudent(ctx, studentID)
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.cfg.Log.Error("Failed to load active booking", "student_id", studentID, "error", err)
		return apperrors.Internal("Failed to release student booking", err)
	}

	var released *model.Booking
	err = s.withRoomLock(ctx, active.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			current, err := s.repo.FindActiveByStudent(sessCtx, studentID)
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return nil
			}
			if err != nil {
				return apperrors.Internal("Failed to release student booking", err)
			}
			if current.Status == model.BookingStatusApproved {
				if err := s.rooms.SetOccupied(sessCtx, current.RoomID, false); err != nil && !errors.Is(err, roomserrors.ErrNotFound) {
					return apperrors.Internal("Failed to release room", err)
				}
			}
			if err := s.repo.Delete(sessCtx, current.ID); err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.Internal("Failed to release student booking", err)
			}
			released = current
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to release student booking", err, "student_id", studentID)
		return err
	}
	if released == nil {
		return nil
	}

	s.cfg.Log.Info("Student booking released",
		"id", released.ID,
		"student_id", studentID,
		"room_id", released.RoomID,
		"previous_status", released.Status,
	)
	s.publish(ctx, events.TypeCancelled, released)
	return nil
}

func (s *bookingService) ListPendingForHostel(ctx context.Context, hostelID string) ([]*model.BookingDetails, error) {
	return s.list(ctx, repository.BookingFilter{
		HostelID: hostelID,
		Statuses: []string{model.BookingStatusPending},
	}, "hostel_id", hostelID)
}

// UpdateStatus approves or rejects a pending booking of the admin's hostel.
// The status change and the room occupancy write commit together.
func (s *bookingService) UpdateStatus(ctx context.Context, bookingID, action, adminHostelID string) (*model.BookingDetails, error) {
	status, ok := model.StatusForAction(action)
	if !ok {
		return nil, apperrors.InvalidInput("Action must be 'approve' or 'reject'")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.HostelID != adminHostelID {
		s.cfg.Log.Warn("Booking status update denied",
			"id", bookingID,
			"booking_hostel_id", booking.HostelID,
			"admin_hostel_id", adminHostelID,
		)
		return nil, apperrors.Forbidden("Access denied - Not your hostel")
	}
	if booking.Status != model.BookingStatusPending {
		return nil, notPending(booking.Status)
	}

	var updated *model.Booking
	err = s.withRoomLock(ctx, booking.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			result, err := s.repo.UpdateStatusIfPending(sessCtx, bookingID, status)
			if err != nil {
				if errors.Is(err, bookingserrors.ErrNotPending) {
					return notPending("")
				}
				return apperrors.Internal("Failed to update booking status", err)
			}

			occupied := status == model.BookingStatusApproved
			if err := s.rooms.SetOccupied(sessCtx, result.RoomID, occupied); err != nil {
				if errors.Is(err, roomserrors.ErrNotFound) {
					if occupied {
						return apperrors.NotFoundWithID("Room", result.RoomID)
					}
				} else {
					return apperrors.Internal("Failed to update room occupancy", err)
				}
			}
			updated = result
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to update booking status", err, "id", bookingID, "action", action)
		return nil, err
	}

	s.cfg.Log.Info("Booking status updated successfully",
		"id", bookingID,
		"status", updated.Status,
		"room_id", updated.RoomID,
		"hostel_id", updated.HostelID,
	)
	s.publish(ctx, events.TypeForStatus(updated.Status), updated)

	details, err := s.repo.FindDetailsByID(ctx, bookingID)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve updated booking details", "id", bookingID, "error", err)
		return &model.BookingDetails{Booking: *updated}, nil
	}
	return details, nil
}

func (s *bookingService) ListForHostel(ctx context.Context, hostelID string) ([]*model.BookingDetails, error) {
	return s.list(ctx, repository.BookingFilter{HostelID: hostelID}, "hostel_id", hostelID)
}

func (s *bookingService) ListForStudent(ctx context.Context, studentID string) ([]*model.BookingDetails, error) {
	return s.list(ctx, repository.BookingFilter{StudentID: studentID}, "student_id", studentID)
}

func (s *bookingService) list(ctx context.Context, filter repository.BookingFilter, scope, id string) ([]*model.BookingDetails, error) {
	if id == "" {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s cannot be empty", scope))
	}

	bookings, err := s.repo.FindDetails(ctx, filter, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", scope, id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// withRoomLock runs fn while holding the advisory lock of roomID. The lock is
// released even if ctx is cancelled meanwhile.
func (s *bookingService) withRoomLock(ctx context.Context, roomID string, fn func() error) error {
	owner, err := s.lockRepo.Acquire(ctx, roomID, s.cfg.RoomLockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomLocked) {
			return apperrors.Conflict("Room is being booked by another request. Please try again.")
		}
		return apperrors.Internal("Failed to lock room", err)
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(context.WithoutCancel(ctx), roomID, owner); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "room_id", roomID, "error", releaseErr)
		}
	}()

	return fn()
}

func (s *bookingService) findRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}
	return room, nil
}

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

// ensureNoActiveStudentBooking rejects the request when the student already
// holds a booking, naming its room and status so the client can guide them.
func (s *bookingService) ensureNoActiveStudentBooking(ctx context.Context, studentID string) error {
	existing, err := s.repo.FindActiveByStudent(ctx, studentID)
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	details := map[string]any{
		"bookingId": existing.ID,
		"status":    existing.Status,
	}
	message := fmt.Sprintf("You already have a %s booking. Cancel it before booking a new room.", existing.Status)

	if room, roomErr := s.rooms.FindByID(ctx, existing.RoomID); roomErr == nil {
		details["roomNumber"] = room.RoomNumber
		details["hostelId"] = room.HostelID
		message = fmt.Sprintf("You already have a %s booking for Room %s. Cancel it before booking a new room.",
			existing.Status, room.RoomNumber)
	}

	return apperrors.Conflict(message).WithDetails(details)
}

func (s *bookingService) ensureNoActiveRoomBooking(ctx context.Context, roomID string) error {
	_, err := s.repo.FindActiveByRoom(ctx, roomID)
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal("Failed to check room bookings", err)
	}
	return apperrors.Conflict("Room is already booked by another student. Please try another room.")
}

func (s *bookingService) mapCreateError(err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrDuplicateActiveStudent):
		return apperrors.Conflict("You already have an active booking. Please cancel it first.").
			WithDetails(map[string]any{"constraint": "student"})
	case errors.Is(err, bookingserrors.ErrDuplicateActiveRoom):
		return apperrors.Conflict("Room is already booked by another student. Please try another room.").
			WithDetails(map[string]any{"constraint": "room"})
	default:
		return apperrors.Internal("Failed to create booking", err)
	}
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), events.NewEvent(eventType, booking)); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "type", eventType, "id", booking.ID, "error", err)
	}
}

// logFailure logs expected rejections as warnings and everything else as errors.
func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal || appErr.Code == apperrors.CodeTimeout {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}

func notPending(status string) *apperrors.AppError {
	if status == "" {
		return apperrors.Conflict("Booking is no longer pending")
	}
	return apperrors.Conflict(fmt.Sprintf("Booking is already %s", status)).
		WithDetails(map[string]any{"status": status})
}
