package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kdanyliuk/studyhall/internal/domain"
	"github.com/kdanyliuk/studyhall/internal/repository"
	postgresrepo "github.com/kdanyliuk/studyhall/internal/repository/postgres"
	redisrepo "github.com/kdanyliuk/studyhall/internal/repository/redis"
	"github.com/kdanyliuk/studyhall/internal/uow"
)

type Config struct {
	DefaultPage int
	MaxPage     int
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	uow   *uow.UoW
	cfg   Config

	// now is swappable for tests.
	now func() time.Time
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.DefaultPage <= 0 {
		cfg.DefaultPage = 100
	}

	if cfg.MaxPage <= 0 {
		cfg.MaxPage = 500
	}

	return &Service{
		store: store,
		cache: cache,
		uow:   uow.NewUoW(store),
		cfg:   cfg,
		now:   time.Now,
	}
}

// Activate records a paid subscription for the member: every prior active row
// is expired and a fresh one is inserted, in one transaction. A concurrent
// eligibility read never observes two active rows for the member.
//
// Parameters:
//   - ctx: request-scoped context.
//   - memberID: ID of the paying member.
//   - amountCents: amount paid.
//   - months: subscription length; the end date is start + months, inclusive.
//
// Returns:
//   - *domain.Subscription: the activated subscription.
//   - error: subscriptions.ErrMemberNotFound if the member does not exist.
//   - error: subscriptions.ErrInvalidTerm if months or amount are out of range.
func (s *Service) Activate(
	ctx context.Context,
	memberID string,
	amountCents int,
	months int,
) (*domain.Subscription, error) {
	const op = "service.subscriptions.Activate"

	if months <= 0 {
		months = 1
	}
	if months > 36 || amountCents < 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidTerm)
	}

	start := s.now()
	end := start.AddDate(0, months, 0)

	var sub *domain.Subscription

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		if _, err := s.store.Members().With(tx).GetMember(ctx, memberID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrMemberNotFound)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		if _, err := s.store.Subscriptions().With(tx).ExpireActive(ctx, memberID); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		created, err := s.store.Subscriptions().
			With(tx).
			Insert(ctx, memberID, start, end, amountCents)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		sub = created

		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateSubscriptions(ctx)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// Ledger lists all subscriptions with member names, newest first.
func (s *Service) Ledger(ctx context.Context, limit, offset int) ([]domain.SubscriptionWithMember, error) {
	const op = "service.subscriptions.Ledger"

	if limit <= 0 {
		limit = s.cfg.DefaultPage
	}

	if limit > s.cfg.MaxPage {
		limit = s.cfg.MaxPage
	}

	out, err := s.store.Subscriptions().Ledger(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
