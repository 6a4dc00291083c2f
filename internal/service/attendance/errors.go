package attendance

import "errors"

var (
	ErrIneligibleMember = errors.New("member has no valid subscription")
	ErrAlreadyCheckedIn = errors.New("member is already checked in")
	ErrNoSeatAvailable  = errors.New("no seat available")
	ErrNotCheckedIn     = errors.New("member is not checked in")
)
