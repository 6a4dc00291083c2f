package members

import "errors"

var (
	ErrDuplicateID    = errors.New("identifier already registered")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidInput   = errors.New("invalid input")
)
