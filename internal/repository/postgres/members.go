package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kdanyliuk/studyhall/internal/domain"
)

type MemberRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *MemberRepo) With(db DB) *MemberRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *MemberRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateMember registers a member.
//
// Returns:
//   - error: repository.ErrDuplicateID if the identifier is taken.
//   - error: repository.ErrDuplicateEmail if the email is taken.
func (r *MemberRepo) CreateMember(ctx context.Context, m domain.Member) error {
	const op = "postgres.MemberRepo.CreateMember"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO members (id, name, father_name, address, state, email,
                              contact, blood_group, emergency_contact)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Name, m.FatherName, m.Address, m.State, m.Email,
		m.Contact, m.BloodGroup, m.EmergencyContact,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// CreateStaff registers a staff entry. The password must already be hashed.
//
// Returns:
//   - error: repository.ErrDuplicateID if the identifier is taken.
//   - error: repository.ErrDuplicateEmail if the email is taken.
func (r *MemberRepo) CreateStaff(ctx context.Context, s domain.Staff, passwordHash string) error {
	const op = "postgres.MemberRepo.CreateStaff"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO staff (id, name, father_name, address, state, email,
                            contact, password_hash, blood_group, emergency_contact, role)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Name, s.FatherName, s.Address, s.State, s.Email,
		s.Contact, passwordHash, s.BloodGroup, s.EmergencyContact, s.Role,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// GetMember retrieves a member by ID.
//
// Returns:
//   - error: repository.ErrNotFound if the member does not exist.
func (r *MemberRepo) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	const op = "postgres.MemberRepo.GetMember"

	db := r.handle()

	var m domain.Member
	err := db.QueryRow(ctx,
		`SELECT id, name, father_name, address, state, email,
                contact, blood_group, emergency_contact, created_at
         FROM members WHERE id = $1`,
		id,
	).Scan(
		&m.ID, &m.Name, &m.FatherName, &m.Address, &m.State, &m.Email,
		&m.Contact, &m.BloodGroup, &m.EmergencyContact, &m.CreatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &m, nil
}

// ListOverviews lists members joined with their current active subscription
// and open session, if any. Derived fields are left NULL when absent.
func (r *MemberRepo) ListOverviews(ctx context.Context, limit, offset int) ([]domain.MemberOverview, error) {
	const op = "postgres.MemberRepo.ListOverviews"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT m.id, m.name, m.father_name, m.address, m.state, m.email,
                m.contact, m.blood_group, m.emergency_contact, m.created_at,
                sub.status, sub.end_date, a.seat_id, a.check_in
         FROM members m
         LEFT JOIN subscriptions sub
                ON sub.member_id = m.id AND sub.status = 'active'
         LEFT JOIN attendance a
                ON a.member_id = m.id AND a.check_out IS NULL
         ORDER BY m.created_at, m.id
         LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.MemberOverview
	for rows.Next() {
		var mo domain.MemberOverview
		if err := rows.Scan(
			&mo.ID, &mo.Name, &mo.FatherName, &mo.Address, &mo.State, &mo.Email,
			&mo.Contact, &mo.BloodGroup, &mo.EmergencyContact, &mo.CreatedAt,
			&mo.SubscriptionStatus, &mo.SubscriptionEnd, &mo.CurrentSeatID, &mo.LastCheckIn,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, mo)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ListStaff lists all staff entries. Password hashes never leave the store.
func (r *MemberRepo) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	const op = "postgres.MemberRepo.ListStaff"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, name, father_name, address, state, email,
                contact, blood_group, emergency_contact, role
         FROM staff
         ORDER BY id`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Staff
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(
			&s.ID, &s.Name, &s.FatherName, &s.Address, &s.State, &s.Email,
			&s.Contact, &s.BloodGroup, &s.EmergencyContact, &s.Role,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
