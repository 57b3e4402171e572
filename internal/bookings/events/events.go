package events

import (
	"context"
	"fmt"
	"time"

	"hostelbook/pkg/kafka"
	"hostelbook/pkg/logger"
	"hostelbook/pkg/model"
)

const (
	TypeCreated   = "booking.created"
	TypeApproved  = "booking.approved"
	TypeRejected  = "booking.rejected"
	TypeCancelled = "booking.cancelled"

	SchemaVersion = "1"
	Source        = "hostelbook.bookings"
)

// Event describes one booking lifecycle transition.
type Event struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId"`
	StudentID  string    `json:"studentId"`
	RoomID     string    `json:"roomId"`
	HostelID   string    `json:"hostelId"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(eventType string, booking *model.Booking) Event {
	return Event{
		Type:       eventType,
		BookingID:  booking.ID,
		StudentID:  booking.StudentID,
		RoomID:     booking.RoomID,
		HostelID:   booking.HostelID,
		Status:     booking.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// TypeForStatus maps the status an admin action produced to its event type.
func TypeForStatus(status string) string {
	if status == model.BookingStatusApproved {
		return TypeApproved
	}
	return TypeRejected
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher writes events keyed by room id so that transitions of the
// same room stay ordered within a partition.
type KafkaPublisher struct {
	producer messagePublisher
	log      *logger.Logger
}

func NewKafkaPublisher(producer messagePublisher, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.RoomID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build booking event: %w", err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	p.log.Debug("Booking event published", "type", event.Type, "booking_id", event.BookingID)
	return nil
}

// NopPublisher drops every event. Used when event streaming is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
