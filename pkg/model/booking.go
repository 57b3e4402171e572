package model

import "time"

const (
	BookingStatusPending  = "pending"
	BookingStatusApproved = "approved"
	BookingStatusRejected = "rejected"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ActiveBookingStatuses are the statuses that hold a room and block a student
// from booking again.
var ActiveBookingStatuses = []string{BookingStatusPending, BookingStatusApproved}

type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID string    `json:"studentId" bson:"student_id"`
	RoomID    string    `json:"roomId" bson:"room_id"`
	HostelID  string    `json:"hostelId" bson:"hostel_id"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

func IsActiveStatus(status string) bool {
	return status == BookingStatusPending || status == BookingStatusApproved
}

// StatusForAction maps an admin action to the resulting status.
func StatusForAction(action string) (string, bool) {
	switch action {
	case ActionApprove:
		return BookingStatusApproved, true
	case ActionReject:
		return BookingStatusRejected, true
	default:
		return "", false
	}
}

// BookingDetails is a booking with its student, room and hostel resolved.
// Any of the references may be nil if the referenced document is gone.
type BookingDetails struct {
	Booking `bson:",inline"`
	Student *User   `json:"student,omitempty" bson:"student,omitempty"`
	Room    *Room   `json:"room,omitempty" bson:"room,omitempty"`
	Hostel  *Hostel `json:"hostel,omitempty" bson:"hostel,omitempty"`
}

type ActiveBookingStatus struct {
	HasActiveBooking bool            `json:"hasActiveBooking"`
	ActiveBooking    *BookingDetails `json:"activeBooking"`
}
