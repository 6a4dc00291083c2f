package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kdanyliuk/studyhall/internal/domain"
	"github.com/kdanyliuk/studyhall/internal/repository"
)

func TestCreateMemberDuplicates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seedMember(t, store, "S1")

	err := store.Members().CreateMember(ctx, domain.Member{
		ID:    "S1",
		Name:  "Someone Else",
		Email: "other@example.com",
	})
	require.ErrorIs(t, err, repository.ErrDuplicateID)

	err = store.Members().CreateMember(ctx, domain.Member{
		ID:    "S2",
		Name:  "Someone Else",
		Email: "S1@example.com",
	})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestCreateStaffAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	st := domain.Staff{
		ID:    "L1",
		Name:  "Marta Iles",
		Email: "marta@example.com",
		Role:  "librarian",
	}
	require.NoError(t, store.Members().CreateStaff(ctx, st, "$2a$10$fakehash"))

	staff, err := store.Members().ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	require.Equal(t, "L1", staff[0].ID)
	require.Equal(t, "librarian", staff[0].Role)
}

func TestGetMemberNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Members().GetMember(context.Background(), "ghost")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListOverviewsDerivedFields(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seedMember(t, store, "S1")
	seedMember(t, store, "S2")
	seedValidSubscription(t, store, "S1", 1)
	seedZoneWithSeats(t, store, "Reading Hall", "A", 1)

	_, err := store.Attendance().CheckIn(ctx, "S1")
	require.NoError(t, err)

	overviews, err := store.Members().ListOverviews(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, overviews, 2)

	byID := make(map[string]domain.MemberOverview, len(overviews))
	for _, o := range overviews {
		byID[o.ID] = o
	}

	require.NotNil(t, byID["S1"].SubscriptionStatus)
	require.NotNil(t, byID["S1"].CurrentSeatID)
	require.Equal(t, "Z1-A-1", *byID["S1"].CurrentSeatID)

	require.Nil(t, byID["S2"].SubscriptionStatus)
	require.Nil(t, byID["S2"].CurrentSeatID)
}

func TestSubscriptionSupersession(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seedMember(t, store, "S1")

	start := time.Now()
	end := start.AddDate(0, 1, 0)
	first, err := store.Subscriptions().Insert(ctx, "S1", start, end, 5000)
	require.NoError(t, err)

	// A second active row for the same member trips the partial index.
	_, err = store.Subscriptions().Insert(ctx, "S1", start, end.AddDate(0, 2, 0), 9000)
	require.ErrorIs(t, err, repository.ErrConflict)

	// Expiring first makes room; the old row stays in the ledger.
	n, err := store.Subscriptions().ExpireActive(ctx, "S1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	second, err := store.Subscriptions().Insert(ctx, "S1", start, end.AddDate(0, 2, 0), 9000)
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	ledger, err := store.Subscriptions().Ledger(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	require.Equal(t, second.ID, ledger[0].ID, "newest first")
	require.Equal(t, domain.SubscriptionExpired, ledger[1].Status)

	ok, err := store.Subscriptions().HasValid(ctx, "S1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSeatNumberingContinues(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	zoneID := seedZoneWithSeats(t, store, "Reading Hall", "A", 3)

	next, err := store.Seating().NextSeatNumber(ctx, zoneID, "A")
	require.NoError(t, err)
	require.Equal(t, 4, next)

	// A different section starts from scratch.
	next, err = store.Seating().NextSeatNumber(ctx, zoneID, "B")
	require.NoError(t, err)
	require.Equal(t, 1, next)
}

func TestBatchCreateSeatsSkipsDuplicates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	zoneID := seedZoneWithSeats(t, store, "Reading Hall", "A", 2)

	key := domain.SeatKey{ZoneID: zoneID, Section: "A", Number: 2}
	dup := domain.Seat{ID: key.SeatID(), ZoneID: zoneID, Section: "A", Number: 2}
	require.NoError(t, store.Seating().BatchCreateSeats(ctx, []domain.Seat{dup}))

	seats, err := store.Seating().ListSeats(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, seats, 2)
}

func TestLockZoneNotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.RunTx(context.Background(), nil, func(ctx context.Context, tx DB) error {
		return store.Seating().With(tx).LockZone(ctx, 999)
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOccupancyCounts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seedMember(t, store, "S1")
	seedValidSubscription(t, store, "S1", 1)
	seedZoneWithSeats(t, store, "Reading Hall", "A", 3)

	_, err := store.Attendance().CheckIn(ctx, "S1")
	require.NoError(t, err)

	oc, err := store.Reports().OccupancyCounts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, oc.Total)
	require.EqualValues(t, 1, oc.Occupied)
}

func TestSubscriptionStatsMirrorStorage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seedMember(t, store, "S1")
	seedMember(t, store, "S2")

	start := time.Now().AddDate(0, -1, 0)
	_, err := store.Subscriptions().Insert(ctx, "S1", start, start.AddDate(0, 2, 0), 5000)
	require.NoError(t, err)

	// A stored-active row past its end date still reports as active.
	_, err = store.Subscriptions().Insert(ctx, "S2", start, start.AddDate(0, 0, 1), 5000)
	require.NoError(t, err)

	st, err := store.Reports().SubscriptionStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, st.Total)
	require.EqualValues(t, 2, st.Active)
	require.EqualValues(t, 0, st.Expired)
}
