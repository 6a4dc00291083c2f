package seating

import (
	"context"
	"errors"
	"fmt"

	"github.com/kdanyliuk/studyhall/internal/domain"
	"github.com/kdanyliuk/studyhall/internal/repository"
	postgresrepo "github.com/kdanyliuk/studyhall/internal/repository/postgres"
	"github.com/kdanyliuk/studyhall/internal/uow"
)

const maxBulkSeats = 500

type Config struct {
	DefaultPage int
	MaxPage     int
}

type Service struct {
	store *postgresrepo.Store
	uow   *uow.UoW
	cfg   Config
}

func New(store *postgresrepo.Store, cfg Config) *Service {
	if cfg.DefaultPage <= 0 {
		cfg.DefaultPage = 200
	}

	if cfg.MaxPage <= 0 {
		cfg.MaxPage = 1000
	}

	return &Service{
		store: store,
		uow:   uow.NewUoW(store),
		cfg:   cfg,
	}
}

func (s *Service) CreateZone(ctx context.Context, name string) (int64, error) {
	const op = "service.seating.CreateZone"

	if name == "" {
		return 0, fmt.Errorf("%s: name required: %w", op, ErrInvalidInput)
	}

	id, err := s.store.Seating().CreateZone(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return id, nil
}

func (s *Service) ListZones(ctx context.Context) ([]domain.Zone, error) {
	const op = "service.seating.ListZones"

	zones, err := s.store.Seating().ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return zones, nil
}

// ProvisionSeats bulk-creates count seats in a zone section, numbering them
// after the highest existing seat number. The zone row is locked for the
// transaction so concurrent provisioning of the same zone cannot interleave
// numbering.
//
// Returns:
//   - []domain.Seat: the created seats in allocation order.
//   - error: seating.ErrZoneNotFound if the zone does not exist.
func (s *Service) ProvisionSeats(
	ctx context.Context,
	zoneID int64,
	section string,
	count int,
) ([]domain.Seat, error) {
	const op = "service.seating.ProvisionSeats"

	if section == "" || count <= 0 {
		return nil, fmt.Errorf("%s: section and positive count required: %w", op, ErrInvalidInput)
	}
	if count > maxBulkSeats {
		return nil, fmt.Errorf("%s: at most %d seats per request: %w", op, maxBulkSeats, ErrInvalidInput)
	}

	var created []domain.Seat

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		repo := s.store.Seating().With(tx)

		if err := repo.LockZone(ctx, zoneID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrZoneNotFound)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		next, err := repo.NextSeatNumber(ctx, zoneID, section)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		seats := make([]domain.Seat, 0, count)
		for i := 0; i < count; i++ {
			key := domain.SeatKey{ZoneID: zoneID, Section: section, Number: next + i}
			seats = append(seats, domain.Seat{
				ID:      key.SeatID(),
				ZoneID:  zoneID,
				Section: section,
				Number:  key.Number,
				Status:  domain.SeatAvailable,
			})
		}

		if err := repo.BatchCreateSeats(ctx, seats); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		created = seats

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ListSeats lists seats with zone names in allocation order.
func (s *Service) ListSeats(ctx context.Context, limit, offset int) ([]domain.SeatWithZone, error) {
	const op = "service.seating.ListSeats"

	if limit <= 0 {
		limit = s.cfg.DefaultPage
	}

	if limit > s.cfg.MaxPage {
		limit = s.cfg.MaxPage
	}

	seats, err := s.store.Seating().ListSeats(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return seats, nil
}
