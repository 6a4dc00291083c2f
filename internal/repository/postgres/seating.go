package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kdanyliuk/studyhall/internal/domain"
)

type SeatingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SeatingRepo) With(db DB) *SeatingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SeatingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *SeatingRepo) CreateZone(ctx context.Context, name string) (int64, error) {
	const op = "postgres.SeatingRepo.CreateZone"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO zones (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *SeatingRepo) ListZones(ctx context.Context) ([]domain.Zone, error) {
	const op = "postgres.SeatingRepo.ListZones"

	db := r.handle()

	rows, err := db.Query(ctx, `SELECT id, name FROM zones ORDER BY id`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Zone
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.Name); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, z)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// LockZone locks the zone row for the duration of the transaction, serializing
// concurrent bulk provisioning of the same zone.
//
// Returns:
//   - error: repository.ErrNotFound if the zone does not exist.
func (r *SeatingRepo) LockZone(ctx context.Context, zoneID int64) error {
	const op = "postgres.SeatingRepo.LockZone"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`SELECT id FROM zones WHERE id = $1 FOR UPDATE`,
		zoneID,
	).Scan(&id); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// NextSeatNumber returns one past the highest seat number in the zone section,
// starting at 1 for an empty section.
func (r *SeatingRepo) NextSeatNumber(ctx context.Context, zoneID int64, section string) (int, error) {
	const op = "postgres.SeatingRepo.NextSeatNumber"

	db := r.handle()

	var maxNum int
	if err := db.QueryRow(ctx,
		`SELECT COALESCE(MAX(seat_number), 0) FROM seats
         WHERE zone_id = $1 AND section = $2`,
		zoneID, section,
	).Scan(&maxNum); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return maxNum + 1, nil
}

// BatchCreateSeats inserts the given seats; duplicates of the composite key
// are skipped.
func (r *SeatingRepo) BatchCreateSeats(ctx context.Context, seats []domain.Seat) error {
	const op = "postgres.SeatingRepo.BatchCreateSeats"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, s := range seats {
		batch.Queue(
			`INSERT INTO seats (id, zone_id, section, seat_number)
             VALUES ($1, $2, $3, $4)
             ON CONFLICT (zone_id, section, seat_number) DO NOTHING`,
			s.ID, s.ZoneID, s.Section, s.Number,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// ListSeats lists seats with zone names in allocation order.
func (r *SeatingRepo) ListSeats(ctx context.Context, limit, offset int) ([]domain.SeatWithZone, error) {
	const op = "postgres.SeatingRepo.ListSeats"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT s.id, s.zone_id, s.section, s.seat_number, s.status,
                s.occupant_id, z.name
         FROM seats s
         JOIN zones z ON z.id = s.zone_id
         ORDER BY s.zone_id, s.section, s.seat_number
         LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.SeatWithZone
	for rows.Next() {
		var swz domain.SeatWithZone
		var status string

		if err := rows.Scan(
			&swz.ID,
			&swz.ZoneID,
			&swz.Section,
			&swz.Number,
			&status,
			&swz.OccupantID,
			&swz.ZoneName,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		swz.Status = domain.SeatStatus(status)
		out = append(out, swz)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// GetSeat retrieves a seat by its composite ID.
//
// Returns:
//   - error: repository.ErrNotFound if the seat does not exist.
func (r *SeatingRepo) GetSeat(ctx context.Context, id string) (*domain.Seat, error) {
	const op = "postgres.SeatingRepo.GetSeat"

	db := r.handle()

	var s domain.Seat
	var status string
	err := db.QueryRow(ctx,
		`SELECT id, zone_id, section, seat_number, status, occupant_id
         FROM seats WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.ZoneID, &s.Section, &s.Number, &status, &s.OccupantID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	s.Status = domain.SeatStatus(status)

	return &s, nil
}
