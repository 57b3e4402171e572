package notifications

import (
	"context"
	"fmt"

	"hostelbook/internal/bookings/events"
	"hostelbook/pkg/kafka"
	"hostelbook/pkg/logger"
)

// Notification is what a recipient is told about a booking transition.
type Notification struct {
	Recipient string
	Audience  string
	BookingID string
	EventType string
	Text      string
}

type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// LogSink writes notifications as structured log records.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, n Notification) error {
	s.log.Info("Notification",
		"recipient", n.Recipient,
		"audience", n.Audience,
		"booking_id", n.BookingID,
		"event_type", n.EventType,
		"text", n.Text,
	)
	return nil
}

type Notifier struct {
	sink Sink
	log  *logger.Logger
}

func NewNotifier(sink Sink, log *logger.Logger) *Notifier {
	return &Notifier{sink: sink, log: log}
}

// Handle is a kafka.MessageHandler. Undecodable or unknown events are
// permanent failures and end up in the dead letter topic.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.Event
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}

	notification, err := Build(event)
	if err != nil {
		return kafka.NewPermanentError("unsupported booking event", err)
	}

	if err := n.sink.Deliver(ctx, notification); err != nil {
		return kafka.NewTransientError("notification delivery failed", err)
	}
	return nil
}

// Build turns a booking event into the notification for whoever has to act
// on it: the hostel's admins for new or cancelled bookings, the student for decisions.
func Build(event events.Event) (Notification, error) {
	n := Notification{BookingID: event.BookingID, EventType: event.Type}
	switch event.Type {
	case events.TypeCreated:
		n.Audience, n.Recipient = "hostel", event.HostelID
		n.Text = fmt.Sprintf("New booking request %s for room %s", event.BookingID, event.RoomID)
	case events.TypeCancelled:
		n.Audience, n.Recipient = "hostel", event.HostelID
		n.Text = fmt.Sprintf("Booking %s for room %s was cancelled by the student", event.BookingID, event.RoomID)
	case events.TypeApproved:
		n.Audience, n.Recipient = "student", event.StudentID
		n.Text = "Your booking request has been approved"
	case events.TypeRejected:
		n.Audience, n.Recipient = "student", event.StudentID
		n.Text = "Your booking request has been rejected"
	default:
		return Notification{}, fmt.Errorf("unknown event type %q", event.Type)
	}
	return n, nil
}
