package seating

import "errors"

var (
	ErrZoneNotFound = errors.New("zone not found")
	ErrInvalidInput = errors.New("invalid input")
)
