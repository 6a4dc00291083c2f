package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/kdanyliuk/studyhall/internal/domain"
	redisx "github.com/kdanyliuk/studyhall/internal/redis"
	postgresrepo "github.com/kdanyliuk/studyhall/internal/repository/postgres"
	redisrepo "github.com/kdanyliuk/studyhall/internal/repository/redis"
)

type Config struct {
	OccupancyTTL         time.Duration
	SubscriptionStatsTTL time.Duration
	DefaultLogPage       int
	MaxLogPage           int
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.OccupancyTTL <= 0 {
		cfg.OccupancyTTL = 15 * time.Second
	}

	if cfg.SubscriptionStatsTTL <= 0 {
		cfg.SubscriptionStatsTTL = 60 * time.Second
	}

	if cfg.DefaultLogPage <= 0 {
		cfg.DefaultLogPage = 100
	}

	if cfg.MaxLogPage <= 0 {
		cfg.MaxLogPage = 500
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// Occupancy returns total/occupied seat counts, cached briefly; the cache is
// invalidated after every committed check-in and check-out.
func (s *Service) Occupancy(ctx context.Context) (*domain.OccupancyCounts, error) {
	const op = "service.reports.Occupancy"

	if s.cache == nil {
		oc, err := s.store.Reports().OccupancyCounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return oc, nil
	}

	counts, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyOccupancy(),
		s.cfg.OccupancyTTL,
		func(ctx context.Context) (domain.OccupancyCounts, error) {
			oc, err := s.store.Reports().OccupancyCounts(ctx)
			if err != nil {
				return domain.OccupancyCounts{}, err
			}

			return *oc, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &counts, nil
}

// SubscriptionStats returns subscription counts by stored status.
func (s *Service) SubscriptionStats(ctx context.Context) (*domain.SubscriptionStats, error) {
	const op = "service.reports.SubscriptionStats"

	if s.cache == nil {
		st, err := s.store.Reports().SubscriptionStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return st, nil
	}

	stats, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeySubscriptionStats(),
		s.cfg.SubscriptionStatsTTL,
		func(ctx context.Context) (domain.SubscriptionStats, error) {
			st, err := s.store.Reports().SubscriptionStats(ctx)
			if err != nil {
				return domain.SubscriptionStats{}, err
			}

			return *st, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &stats, nil
}

// AttendanceLog lists occupancy sessions newest first with display fields.
// Never cached: the ledger is the audit surface.
func (s *Service) AttendanceLog(ctx context.Context, limit, offset int) ([]domain.AttendanceEntry, error) {
	const op = "service.reports.AttendanceLog"

	if limit <= 0 {
		limit = s.cfg.DefaultLogPage
	}

	if limit > s.cfg.MaxLogPage {
		limit = s.cfg.MaxLogPage
	}

	entries, err := s.store.Attendance().Log(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return entries, nil
}
