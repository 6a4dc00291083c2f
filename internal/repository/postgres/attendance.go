package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kdanyliuk/studyhall/internal/domain"
	"github.com/kdanyliuk/studyhall/internal/repository"
)

type AttendanceRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AttendanceRepo) With(db DB) *AttendanceRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AttendanceRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CheckIn runs the full check-in transition: eligibility gate, open-session
// gate, lowest-free-seat pick and the seat/session double write, all inside
// one transaction. When not already bound to a tx via With, it opens its own.
//
// Returns:
//   - string: the assigned seat ID when successful.
//   - error: repository.ErrIneligible if no currently valid subscription exists.
//   - error: repository.ErrAlreadyCheckedIn if the member holds an open session.
//   - error: repository.ErrNoSeatAvailable if no seat can be claimed.
func (r *AttendanceRepo) CheckIn(ctx context.Context, memberID string) (string, error) {
	const op = "postgres.AttendanceRepo.CheckIn"

	if r.db != nil {
		seatID, err := r.checkInCore(ctx, r.db, memberID)
		if err != nil {
			return "", fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return seatID, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	seatID, err := r.checkInCore(ctx, tx, memberID)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return seatID, nil
}

// CheckOut reverses the transition for the member's open session: the seat goes
// back to available with its occupant cleared and the session is sealed.
//
// Returns:
//   - *domain.AttendanceSession: the sealed session when successful.
//   - error: repository.ErrNotCheckedIn if the member has no open session.
func (r *AttendanceRepo) CheckOut(ctx context.Context, memberID string) (*domain.AttendanceSession, error) {
	const op = "postgres.AttendanceRepo.CheckOut"

	if r.db != nil {
		sess, err := r.checkOutCore(ctx, r.db, memberID)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return sess, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	sess, err := r.checkOutCore(ctx, tx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return sess, nil
}

// OpenSession returns the member's open session, if any.
func (r *AttendanceRepo) OpenSession(ctx context.Context, memberID string) (*domain.AttendanceSession, error) {
	const op = "postgres.AttendanceRepo.OpenSession"

	db := r.handle()

	var a domain.AttendanceSession
	err := db.QueryRow(ctx,
		`SELECT id, member_id, seat_id, check_in, check_out
         FROM attendance
         WHERE member_id = $1 AND check_out IS NULL`,
		memberID,
	).Scan(&a.ID, &a.MemberID, &a.SeatID, &a.CheckIn, &a.CheckOut)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &a, nil
}

// Log lists attendance sessions newest first, joined with display fields.
func (r *AttendanceRepo) Log(ctx context.Context, limit, offset int) ([]domain.AttendanceEntry, error) {
	const op = "postgres.AttendanceRepo.Log"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT a.id, a.member_id, a.seat_id, a.check_in, a.check_out,
                m.name, z.name, s.section, s.seat_number
         FROM attendance a
         JOIN members m ON m.id = a.member_id
         JOIN seats s ON s.id = a.seat_id
         JOIN zones z ON z.id = s.zone_id
         ORDER BY a.check_in DESC
         LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.AttendanceEntry
	for rows.Next() {
		var e domain.AttendanceEntry
		if err := rows.Scan(
			&e.ID,
			&e.MemberID,
			&e.SeatID,
			&e.CheckIn,
			&e.CheckOut,
			&e.MemberName,
			&e.ZoneName,
			&e.Section,
			&e.SeatNumber,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *AttendanceRepo) checkInCore(ctx context.Context, db DB, memberID string) (string, error) {
	// Eligibility is evaluated here, inside the transaction, so it reflects
	// the exact instant of check-in. Stored status alone is not enough: a
	// superseded-but-stale 'active' row past its end date must not pass.
	var eligible bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (
           SELECT 1 FROM subscriptions
           WHERE member_id = $1 AND status = 'active' AND end_date >= CURRENT_DATE
         )`,
		memberID,
	).Scan(&eligible); err != nil {
		return "", err
	}
	if !eligible {
		return "", repository.ErrIneligible
	}

	var open bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (
           SELECT 1 FROM attendance
           WHERE member_id = $1 AND check_out IS NULL
         )`,
		memberID,
	).Scan(&open); err != nil {
		return "", err
	}
	if open {
		return "", repository.ErrAlreadyCheckedIn
	}

	// Lowest free seat in (zone, section, number) order. SKIP LOCKED makes a
	// last-seat race terminate: the loser skips the claimed row, finds nothing
	// and fails with ErrNoSeatAvailable instead of blocking on the winner.
	var seatID string
	err := db.QueryRow(ctx,
		`SELECT id FROM seats
         WHERE status = 'available'
         ORDER BY zone_id, section, seat_number
         LIMIT 1
         FOR UPDATE SKIP LOCKED`,
	).Scan(&seatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNoSeatAvailable
		}
		return "", err
	}

	tag, err := db.Exec(ctx,
		`UPDATE seats
         SET status = 'occupied', occupant_id = $1
         WHERE id = $2 AND status = 'available'`,
		memberID, seatID,
	)
	if err != nil {
		return "", err
	}
	if tag.RowsAffected() != 1 {
		return "", repository.ErrNoSeatAvailable
	}

	// The attendance_open_member partial index kills a same-member race here:
	// the second transaction gets a unique violation and rolls back fully,
	// including the seat update above.
	if _, err := db.Exec(ctx,
		`INSERT INTO attendance (member_id, seat_id) VALUES ($1, $2)`,
		memberID, seatID,
	); err != nil {
		return "", err
	}

	return seatID, nil
}

func (r *AttendanceRepo) checkOutCore(ctx context.Context, db DB, memberID string) (*domain.AttendanceSession, error) {
	var a domain.AttendanceSession
	err := db.QueryRow(ctx,
		`SELECT id, member_id, seat_id, check_in
         FROM attendance
         WHERE member_id = $1 AND check_out IS NULL
         FOR UPDATE`,
		memberID,
	).Scan(&a.ID, &a.MemberID, &a.SeatID, &a.CheckIn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotCheckedIn
		}
		return nil, err
	}

	if _, err := db.Exec(ctx,
		`UPDATE seats
         SET status = 'available', occupant_id = NULL
         WHERE id = $1`,
		a.SeatID,
	); err != nil {
		return nil, err
	}

	if err := db.QueryRow(ctx,
		`UPDATE attendance SET check_out = now()
         WHERE id = $1
         RETURNING check_out`,
		a.ID,
	).Scan(&a.CheckOut); err != nil {
		return nil, err
	}

	return &a, nil
}
