package repository

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrDuplicateID    = errors.New("identifier already exists")
	ErrDuplicateEmail = errors.New("email already exists")

	ErrIneligible       = errors.New("no valid subscription")
	ErrAlreadyCheckedIn = errors.New("already checked in")
	ErrNoSeatAvailable  = errors.New("no seat available")
	ErrNotCheckedIn     = errors.New("not checked in")
)
