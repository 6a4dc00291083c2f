package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/kdanyliuk/studyhall/internal/domain"
	redisx "github.com/kdanyliuk/studyhall/internal/redis"
	"github.com/kdanyliuk/studyhall/internal/repository"
	redisrepo "github.com/kdanyliuk/studyhall/internal/repository/redis"
)

// Allocator executes the atomic check-in/check-out transitions. Satisfied by
// *postgres.AttendanceRepo; both operations either fully commit or leave state
// untouched.
type Allocator interface {
	CheckIn(ctx context.Context, memberID string) (string, error)
	CheckOut(ctx context.Context, memberID string) (*domain.AttendanceSession, error)
}

type Service struct {
	alloc   Allocator
	cache   *redisrepo.Cache
	pubsub  *redisx.AttendancePubSub
	limiter *redisrepo.SlidingWindowLimiter
}

func New(
	alloc Allocator,
	cache *redisrepo.Cache,
	pubsub *redisx.AttendancePubSub,
	limiter *redisrepo.SlidingWindowLimiter,
) *Service {
	return &Service{
		alloc:   alloc,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
	}
}

// CheckIn assigns the lowest free seat to an eligible member and opens an
// attendance session. Eligibility and the member's open-session state are
// re-checked inside the storage transaction, never cached.
//
// Parameters:
//   - ctx: request-scoped context.
//   - memberID: ID of the member checking in.
//   - rlKey: rate-limit bucket key; empty disables limiting.
//
// Returns:
//   - string: the assigned seat ID.
//   - error: attendance.ErrIneligibleMember if no valid subscription exists.
//   - error: attendance.ErrAlreadyCheckedIn if a session is already open.
//   - error: attendance.ErrNoSeatAvailable if every seat is taken.
func (s *Service) CheckIn(ctx context.Context, memberID, rlKey string) (string, error) {
	const op = "service.attendance.CheckIn"

	if memberID == "" {
		return "", fmt.Errorf("%s: %s", op, "member id required")
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return "", fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return "", fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	seatID, err := s.alloc.CheckIn(ctx, memberID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrIneligible):
			return "", fmt.Errorf("%s:%w", op, ErrIneligibleMember)
		case errors.Is(err, repository.ErrAlreadyCheckedIn):
			return "", fmt.Errorf("%s:%w", op, ErrAlreadyCheckedIn)
		case errors.Is(err, repository.ErrNoSeatAvailable):
			return "", fmt.Errorf("%s:%w", op, ErrNoSeatAvailable)
		}

		return "", fmt.Errorf("%s:%w", op, err)
	}

	s.afterTransition(ctx, func(ctx context.Context) error {
		return s.pubsub.PublishCheckIn(ctx, memberID, seatID)
	})

	return seatID, nil
}

// CheckOut seals the member's open session and frees the seat.
//
// Returns:
//   - *domain.AttendanceSession: the sealed session.
//   - error: attendance.ErrNotCheckedIn if the member has no open session.
func (s *Service) CheckOut(ctx context.Context, memberID string) (*domain.AttendanceSession, error) {
	const op = "service.attendance.CheckOut"

	if memberID == "" {
		return nil, fmt.Errorf("%s: %s", op, "member id required")
	}

	sess, err := s.alloc.CheckOut(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotCheckedIn) {
			return nil, fmt.Errorf("%s:%w", op, ErrNotCheckedIn)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.afterTransition(ctx, func(ctx context.Context) error {
		return s.pubsub.PublishCheckOut(ctx, memberID, sess.SeatID)
	})

	return sess, nil
}

// afterTransition runs best-effort side effects once a transition has
// committed: cache invalidation and a change broadcast. Failures here must not
// fail the request.
func (s *Service) afterTransition(ctx context.Context, publish func(ctx context.Context) error) {
	if s.cache != nil {
		_ = s.cache.InvalidateOccupancy(ctx)
	}
	if s.pubsub != nil {
		_ = publish(ctx)
	}
}
