package notifications

import (
	"context"
	"errors"
	"testing"

	"hostelbook/internal/bookings/events"
	"hostelbook/pkg/kafka"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	delivered []Notification
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func eventMessage(t *testing.T, event events.Event) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().WithKey(event.RoomID).WithValue(event).Build()
	require.NoError(t, err)
	return msg
}

func sampleBooking(status string) *model.Booking {
	return &model.Booking{ID: "b1", StudentID: "s1", RoomID: "r1", HostelID: "h1", Status: status}
}

func TestBuild_Audience(t *testing.T) {
	tests := []struct {
		eventType string
		status    string
		audience  string
		recipient string
	}{
		{events.TypeCreated, model.BookingStatusPending, "hostel", "h1"},
		{events.TypeCancelled, model.BookingStatusPending, "hostel", "h1"},
		{events.TypeApproved, model.BookingStatusApproved, "student", "s1"},
		{events.TypeRejected, model.BookingStatusRejected, "student", "s1"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			n, err := Build(events.NewEvent(tt.eventType, sampleBooking(tt.status)))
			require.NoError(t, err)
			assert.Equal(t, tt.audience, n.Audience)
			assert.Equal(t, tt.recipient, n.Recipient)
			assert.Equal(t, "b1", n.BookingID)
			assert.NotEmpty(t, n.Text)
		})
	}
}

func TestHandle_DeliversNotification(t *testing.T) {
	sink := &recordingSink{}
	notifier := NewNotifier(sink, logger.Discard())

	err := notifier.Handle(context.Background(), eventMessage(t, events.NewEvent(events.TypeApproved, sampleBooking(model.BookingStatusApproved))))
	require.NoError(t, err)
	require.Len(t, sink.delivered, 1)
	assert.Equal(t, "s1", sink.delivered[0].Recipient)
}

func TestHandle_PermanentFailures(t *testing.T) {
	notifier := NewNotifier(&recordingSink{}, logger.Discard())

	garbage := kafka.Message{Key: "r1", Value: []byte("{not json")}
	err := notifier.Handle(context.Background(), garbage)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))

	unknown := events.NewEvent("booking.teleported", sampleBooking(model.BookingStatusPending))
	err = notifier.Handle(context.Background(), eventMessage(t, unknown))
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}

func TestHandle_SinkFailureIsRetried(t *testing.T) {
	notifier := NewNotifier(&recordingSink{err: errors.New("smtp down")}, logger.Discard())

	err := notifier.Handle(context.Background(), eventMessage(t, events.NewEvent(events.TypeCreated, sampleBooking(model.BookingStatusPending))))
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
}
