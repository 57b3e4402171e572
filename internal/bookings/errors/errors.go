package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrNotPending = errors.New("booking is no longer pending")

	// ErrDuplicateActiveStudent and ErrDuplicateActiveRoom are raised by the
	// partial unique indexes on active bookings.
	ErrDuplicateActiveStudent = errors.New("student already has an active booking")

	ErrDuplicateActiveRoom = errors.New("room already has an active booking")

	ErrRoomLocked = errors.New("room is locked by another booking request")
)
