package subscriptions

import "errors"

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidTerm    = errors.New("invalid subscription term")
)
