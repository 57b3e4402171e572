package errors

import "errors"

var (
	ErrNotFound = errors.New("hostel not found")

	ErrInvalidID = errors.New("invalid hostel ID format")

	ErrDuplicateName = errors.New("hostel name already exists")
)
