package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kdanyliuk/studyhall/internal/domain"
	"github.com/kdanyliuk/studyhall/internal/repository"
)

type stubAllocator struct {
	seatID      string
	checkInErr  error
	session     *domain.AttendanceSession
	checkOutErr error

	lastMemberID string
	checkInCalls int
}

func (a *stubAllocator) CheckIn(_ context.Context, memberID string) (string, error) {
	a.lastMemberID = memberID
	a.checkInCalls++
	return a.seatID, a.checkInErr
}

func (a *stubAllocator) CheckOut(_ context.Context, memberID string) (*domain.AttendanceSession, error) {
	a.lastMemberID = memberID
	return a.session, a.checkOutErr
}

func TestCheckInSuccess(t *testing.T) {
	alloc := &stubAllocator{seatID: "Z1-A-1"}
	svc := New(alloc, nil, nil, nil)

	seatID, err := svc.CheckIn(context.Background(), "S1", "")
	require.NoError(t, err)
	require.Equal(t, "Z1-A-1", seatID)
	require.Equal(t, "S1", alloc.lastMemberID)
}

func TestCheckInRequiresMemberID(t *testing.T) {
	alloc := &stubAllocator{seatID: "Z1-A-1"}
	svc := New(alloc, nil, nil, nil)

	_, err := svc.CheckIn(context.Background(), "", "")
	require.Error(t, err)
	require.Zero(t, alloc.checkInCalls)
}

func TestCheckInErrorTranslation(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"ineligible", repository.ErrIneligible, ErrIneligibleMember},
		{"already checked in", repository.ErrAlreadyCheckedIn, ErrAlreadyCheckedIn},
		{"no seat", repository.ErrNoSeatAvailable, ErrNoSeatAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := &stubAllocator{checkInErr: tt.repoErr}
			svc := New(alloc, nil, nil, nil)

			_, err := svc.CheckIn(context.Background(), "S1", "")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckInStorageFaultPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	alloc := &stubAllocator{checkInErr: boom}
	svc := New(alloc, nil, nil, nil)

	_, err := svc.CheckIn(context.Background(), "S1", "")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrIneligibleMember)
	require.NotErrorIs(t, err, ErrAlreadyCheckedIn)
	require.NotErrorIs(t, err, ErrNoSeatAvailable)
}

func TestCheckOutSuccess(t *testing.T) {
	out := time.Now()
	alloc := &stubAllocator{session: &domain.AttendanceSession{
		ID:       1,
		MemberID: "S1",
		SeatID:   "Z1-A-1",
		CheckIn:  out.Add(-time.Hour),
		CheckOut: &out,
	}}
	svc := New(alloc, nil, nil, nil)

	sess, err := svc.CheckOut(context.Background(), "S1")
	require.NoError(t, err)
	require.Equal(t, "Z1-A-1", sess.SeatID)
	require.False(t, sess.Open())
}

func TestCheckOutNotCheckedIn(t *testing.T) {
	alloc := &stubAllocator{checkOutErr: repository.ErrNotCheckedIn}
	svc := New(alloc, nil, nil, nil)

	_, err := svc.CheckOut(context.Background(), "S1")
	require.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestCheckOutRequiresMemberID(t *testing.T) {
	svc := New(&stubAllocator{}, nil, nil, nil)

	_, err := svc.CheckOut(context.Background(), "")
	require.Error(t, err)
}
