package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kdanyliuk/studyhall/internal/domain"
)

type SubscriptionRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SubscriptionRepo) With(db DB) *SubscriptionRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SubscriptionRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ExpireActive marks every active subscription of the member as expired.
// Activation runs this before inserting the replacement row so the
// one-active-per-member index never trips (last-write-wins supersession).
func (r *SubscriptionRepo) ExpireActive(ctx context.Context, memberID string) (int64, error) {
	const op = "postgres.SubscriptionRepo.ExpireActive"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE subscriptions SET status = 'expired'
         WHERE member_id = $1 AND status = 'active'`,
		memberID,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// Insert creates a new active subscription and returns it.
//
// Returns:
//   - error: repository.ErrConflict if another active row exists for the member.
func (r *SubscriptionRepo) Insert(
	ctx context.Context,
	memberID string,
	start, end time.Time,
	amountCents int,
) (*domain.Subscription, error) {
	const op = "postgres.SubscriptionRepo.Insert"

	db := r.handle()

	sub := domain.Subscription{
		MemberID:    memberID,
		Status:      domain.SubscriptionActive,
		AmountCents: amountCents,
	}
	err := db.QueryRow(ctx,
		`INSERT INTO subscriptions (member_id, start_date, end_date, status, amount_cents)
         VALUES ($1, $2, $3, 'active', $4)
         RETURNING id, start_date, end_date`,
		memberID, start, end, amountCents,
	).Scan(&sub.ID, &sub.StartDate, &sub.EndDate)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &sub, nil
}

// HasValid reports whether the member holds a subscription that is active and
// not past its end date as of the database's current date.
func (r *SubscriptionRepo) HasValid(ctx context.Context, memberID string) (bool, error) {
	const op = "postgres.SubscriptionRepo.HasValid"

	db := r.handle()

	var ok bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
           SELECT 1 FROM subscriptions
           WHERE member_id = $1 AND status = 'active' AND end_date >= CURRENT_DATE
         )`,
		memberID,
	).Scan(&ok)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return ok, nil
}

// Ledger lists all subscriptions joined with member names, newest first.
func (r *SubscriptionRepo) Ledger(ctx context.Context, limit, offset int) ([]domain.SubscriptionWithMember, error) {
	const op = "postgres.SubscriptionRepo.Ledger"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT sub.id, sub.member_id, sub.start_date, sub.end_date,
                sub.status, sub.amount_cents, m.name
         FROM subscriptions sub
         JOIN members m ON m.id = sub.member_id
         ORDER BY sub.id DESC
         LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.SubscriptionWithMember
	for rows.Next() {
		var row domain.SubscriptionWithMember
		if err := rows.Scan(
			&row.ID,
			&row.MemberID,
			&row.StartDate,
			&row.EndDate,
			&row.Status,
			&row.AmountCents,
			&row.MemberName,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
