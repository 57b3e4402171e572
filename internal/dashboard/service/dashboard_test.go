package service

import (
	"context"
	"errors"
	"testing"

	"hostelbook/internal/bookings/repository"
	"hostelbook/pkg/config"
	apperrors "hostelbook/pkg/errors"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRooms struct {
	total, occupied int64
	err             error
}

func (s stubRooms) CountByHostel(context.Context, string) (int64, error) {
	return s.total, s.err
}

func (s stubRooms) CountOccupiedByHostel(context.Context, string) (int64, error) {
	return s.occupied, nil
}

type stubBookings struct {
	counts    map[string]int64
	students  []string
	recent    []*model.BookingDetails
	gotFilter repository.BookingFilter
	gotLimit  int64
}

func (s *stubBookings) CountByStatus(context.Context, string) (map[string]int64, error) {
	return s.counts, nil
}

func (s *stubBookings) DistinctStudents(context.Context, string) ([]string, error) {
	return s.students, nil
}

func (s *stubBookings) FindDetails(_ context.Context, filter repository.BookingFilter, limit int64) ([]*model.BookingDetails, error) {
	s.gotFilter, s.gotLimit = filter, limit
	return s.recent, nil
}

func TestStats(t *testing.T) {
	bookings := &stubBookings{
		counts:   map[string]int64{model.BookingStatusPending: 2, model.BookingStatusApproved: 3},
		students: []string{"s1", "s2", "s3", "s4"},
	}
	svc := NewDashboardService(stubRooms{total: 10, occupied: 3}, bookings, &config.Config{Log: logger.Discard()})

	stats, err := svc.Stats(context.Background(), "h1")
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalRooms)
	assert.Equal(t, int64(3), stats.OccupiedRooms)
	assert.Equal(t, int64(7), stats.AvailableRooms)
	assert.Equal(t, int64(2), stats.PendingBookings)
	assert.Equal(t, int64(3), stats.ApprovedBookings)
	assert.Zero(t, stats.RejectedBookings)
	assert.Equal(t, 4, stats.TotalStudents)
	assert.NotNil(t, stats.RecentBookings)

	assert.Equal(t, "h1", bookings.gotFilter.HostelID)
	assert.Equal(t, int64(recentBookingsLimit), bookings.gotLimit)
}

func TestStats_StorageFailure(t *testing.T) {
	svc := NewDashboardService(stubRooms{err: errors.New("timeout")}, &stubBookings{}, &config.Config{Log: logger.Discard()})

	_, err := svc.Stats(context.Background(), "h1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal), "got %v", err)
}
