package members

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kdanyliuk/studyhall/internal/domain"
	"github.com/kdanyliuk/studyhall/internal/repository"
)

type stubRegistry struct {
	createMemberErr error
	createStaffErr  error

	lastMember domain.Member
	lastStaff  domain.Staff
	lastHash   string
}

func (r *stubRegistry) CreateMember(_ context.Context, m domain.Member) error {
	r.lastMember = m
	return r.createMemberErr
}

func (r *stubRegistry) CreateStaff(_ context.Context, s domain.Staff, passwordHash string) error {
	r.lastStaff = s
	r.lastHash = passwordHash
	return r.createStaffErr
}

func (r *stubRegistry) ListOverviews(_ context.Context, _, _ int) ([]domain.MemberOverview, error) {
	return nil, nil
}

func (r *stubRegistry) ListStaff(_ context.Context) ([]domain.Staff, error) {
	return nil, nil
}

func TestRegisterMember(t *testing.T) {
	reg := &stubRegistry{}
	svc := New(reg, Config{})

	m := domain.Member{ID: "S1", Name: "Asha Rao", Email: "asha@example.com"}
	require.NoError(t, svc.RegisterMember(context.Background(), m))
	require.Equal(t, "S1", reg.lastMember.ID)
}

func TestRegisterMemberValidation(t *testing.T) {
	svc := New(&stubRegistry{}, Config{})

	err := svc.RegisterMember(context.Background(), domain.Member{ID: "S1", Name: "Asha Rao"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterMemberDuplicateMapping(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"duplicate id", repository.ErrDuplicateID, ErrDuplicateID},
		{"duplicate email", repository.ErrDuplicateEmail, ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &stubRegistry{createMemberErr: tt.repoErr}
			svc := New(reg, Config{})

			m := domain.Member{ID: "S1", Name: "Asha Rao", Email: "asha@example.com"}
			err := svc.RegisterMember(context.Background(), m)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterStaffHashesPassword(t *testing.T) {
	reg := &stubRegistry{}
	svc := New(reg, Config{})

	st := domain.Staff{ID: "L1", Name: "Marta Iles", Email: "marta@example.com"}
	require.NoError(t, svc.RegisterStaff(context.Background(), st, "sesame-open"))

	require.NotEqual(t, "sesame-open", reg.lastHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(reg.lastHash), []byte("sesame-open")))
}

func TestRegisterStaffDefaultRole(t *testing.T) {
	reg := &stubRegistry{}
	svc := New(reg, Config{})

	st := domain.Staff{ID: "L1", Name: "Marta Iles", Email: "marta@example.com"}
	require.NoError(t, svc.RegisterStaff(context.Background(), st, "sesame-open"))
	require.Equal(t, "librarian", reg.lastStaff.Role)

	st.Role = "admin"
	require.NoError(t, svc.RegisterStaff(context.Background(), st, "sesame-open"))
	require.Equal(t, "admin", reg.lastStaff.Role)
}

func TestRegisterStaffRequiresPassword(t *testing.T) {
	svc := New(&stubRegistry{}, Config{})

	st := domain.Staff{ID: "L1", Name: "Marta Iles", Email: "marta@example.com"}
	err := svc.RegisterStaff(context.Background(), st, "")
	require.ErrorIs(t, err, ErrInvalidInput)
}
