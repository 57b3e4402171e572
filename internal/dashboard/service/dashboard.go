package service

import (
	"context"

	"hostelbook/internal/bookings/repository"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/model"
)

const recentBookingsLimit = 5

type RoomCounter interface {
	CountByHostel(ctx context.Context, hostelID string) (int64, error)
	CountOccupiedByHostel(ctx context.Context, hostelID string) (int64, error)
}

type BookingStats interface {
	CountByStatus(ctx context.Context, hostelID string) (map[string]int64, error)
	DistinctStudents(ctx context.Context, hostelID string) ([]string, error)
	FindDetails(ctx context.Context, filter repository.BookingFilter, limit int64) ([]*model.BookingDetails, error)
}

type DashboardService interface {
	Stats(ctx context.Context, hostelID string) (*model.DashboardStats, error)
}

type dashboardService struct {
	rooms    RoomCounter
	bookings BookingStats
	cfg      *config.Config
}

func NewDashboardService(rooms RoomCounter, bookings BookingStats, cfg *config.Config) DashboardService {
	return &dashboardService{rooms: rooms, bookings: bookings, cfg: cfg}
}

// Stats summarizes occupancy and booking activity for one hostel.
func (s *dashboardService) Stats(ctx context.Context, hostelID string) (*model.DashboardStats, error) {
	total, err := s.rooms.CountByHostel(ctx, hostelID)
	if err != nil {
		return nil, s.fail(hostelID, "CountByHostel", err)
	}
	occupied, err := s.rooms.CountOccupiedByHostel(ctx, hostelID)
	if err != nil {
		return nil, s.fail(hostelID, "CountOccupiedByHostel", err)
	}
	counts, err := s.bookings.CountByStatus(ctx, hostelID)
	if err != nil {
		return nil, s.fail(hostelID, "CountByStatus", err)
	}
	students, err := s.bookings.DistinctStudents(ctx, hostelID)
	if err != nil {
		return nil, s.fail(hostelID, "DistinctStudents", err)
	}
	recent, err := s.bookings.FindDetails(ctx, repository.BookingFilter{HostelID: hostelID}, recentBookingsLimit)
	if err != nil {
		return nil, s.fail(hostelID, "FindDetails", err)
	}
	if recent == nil {
		recent = []*model.BookingDetails{}
	}

	available := total - occupied
	if available < 0 {
		available = 0
	}

	return &model.DashboardStats{
		TotalRooms:       total,
		OccupiedRooms:    occupied,
		AvailableRooms:   available,
		PendingBookings:  counts[model.BookingStatusPending],
		ApprovedBookings: counts[model.BookingStatusApproved],
		RejectedBookings: counts[model.BookingStatusRejected],
		TotalStudents:    len(students),
		RecentBookings:   recent,
	}, nil
}

func (s *dashboardService) fail(hostelID, operation string, err error) error {
	s.cfg.Log.Error("Failed to build dashboard", "hostel_id", hostelID, "operation", operation, "error", err)
	return apperrors.Internal("Failed to load dashboard", err)
}
