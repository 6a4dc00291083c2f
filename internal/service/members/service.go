package members

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/kdanyliuk/studyhall/internal/domain"
	"github.com/kdanyliuk/studyhall/internal/repository"
)

const defaultStaffRole = "librarian"

// Registry is the storage surface for member and staff registration.
// Satisfied by *postgres.MemberRepo.
type Registry interface {
	CreateMember(ctx context.Context, m domain.Member) error
	CreateStaff(ctx context.Context, s domain.Staff, passwordHash string) error
	ListOverviews(ctx context.Context, limit, offset int) ([]domain.MemberOverview, error)
	ListStaff(ctx context.Context) ([]domain.Staff, error)
}

type Config struct {
	DefaultPage int
	MaxPage     int
}

type Service struct {
	registry Registry
	cfg      Config
}

func New(registry Registry, cfg Config) *Service {
	if cfg.DefaultPage <= 0 {
		cfg.DefaultPage = 100
	}

	if cfg.MaxPage <= 0 {
		cfg.MaxPage = 500
	}

	return &Service{registry: registry, cfg: cfg}
}

// RegisterMember registers a member. Demographic fields are pass-through; the
// only validated invariants are presence of id/name/email and uniqueness.
//
// Returns:
//   - error: members.ErrDuplicateID if the identifier is taken.
//   - error: members.ErrDuplicateEmail if the email is taken.
func (s *Service) RegisterMember(ctx context.Context, m domain.Member) error {
	const op = "service.members.RegisterMember"

	if m.ID == "" || m.Name == "" || m.Email == "" {
		return fmt.Errorf("%s: id, name and email required: %w", op, ErrInvalidInput)
	}

	if err := s.registry.CreateMember(ctx, m); err != nil {
		return fmt.Errorf("%s:%w", op, translateErr(err))
	}

	return nil
}

// RegisterStaff registers a staff entry with a bcrypt-hashed password.
//
// Returns:
//   - error: members.ErrDuplicateID if the identifier is taken.
//   - error: members.ErrDuplicateEmail if the email is taken.
func (s *Service) RegisterStaff(ctx context.Context, st domain.Staff, password string) error {
	const op = "service.members.RegisterStaff"

	if st.ID == "" || st.Name == "" || st.Email == "" || password == "" {
		return fmt.Errorf("%s: id, name, email and password required: %w", op, ErrInvalidInput)
	}

	if st.Role == "" {
		st.Role = defaultStaffRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.registry.CreateStaff(ctx, st, string(hash)); err != nil {
		return fmt.Errorf("%s:%w", op, translateErr(err))
	}

	return nil
}

// ListMembers lists members with derived subscription and seating state.
func (s *Service) ListMembers(ctx context.Context, limit, offset int) ([]domain.MemberOverview, error) {
	const op = "service.members.ListMembers"

	if limit <= 0 {
		limit = s.cfg.DefaultPage
	}

	if limit > s.cfg.MaxPage {
		limit = s.cfg.MaxPage
	}

	out, err := s.registry.ListOverviews(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ListStaff lists all staff entries.
func (s *Service) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	const op = "service.members.ListStaff"

	out, err := s.registry.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func translateErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateID):
		return ErrDuplicateID
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	}

	return err
}
