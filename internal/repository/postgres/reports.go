package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kdanyliuk/studyhall/internal/domain"
)

type ReportsRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ReportsRepo) With(db DB) *ReportsRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ReportsRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// OccupancyCounts returns total and occupied seat counts. Reserved seats count
// toward the total but not the occupied figure.
func (r *ReportsRepo) OccupancyCounts(ctx context.Context) (*domain.OccupancyCounts, error) {
	const op = "postgres.ReportsRepo.OccupancyCounts"

	db := r.handle()

	var oc domain.OccupancyCounts
	err := db.QueryRow(ctx,
		`SELECT COUNT(*),
                COALESCE(SUM(CASE WHEN status = 'occupied' THEN 1 ELSE 0 END), 0)
         FROM seats`,
	).Scan(&oc.Total, &oc.Occupied)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &oc, nil
}

// SubscriptionStats counts subscriptions by stored status. Stale 'active' rows
// past their end date still count as active here: the report mirrors storage,
// eligibility is the allocator's two-part predicate.
func (r *ReportsRepo) SubscriptionStats(ctx context.Context) (*domain.SubscriptionStats, error) {
	const op = "postgres.ReportsRepo.SubscriptionStats"

	db := r.handle()

	var st domain.SubscriptionStats
	err := db.QueryRow(ctx,
		`SELECT COUNT(*),
                COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN status = 'expired' THEN 1 ELSE 0 END), 0)
         FROM subscriptions`,
	).Scan(&st.Total, &st.Active, &st.Expired)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &st, nil
}
