package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSeatKeyID(t *testing.T) {
	k := SeatKey{ZoneID: 1, Section: "A", Number: 1}
	require.Equal(t, "Z1-A-1", k.SeatID())

	k = SeatKey{ZoneID: 12, Section: "B", Number: 40}
	require.Equal(t, "Z12-B-40", k.SeatID())
}

func TestSeatKeyLess(t *testing.T) {
	a := SeatKey{ZoneID: 1, Section: "A", Number: 1}
	b := SeatKey{ZoneID: 1, Section: "A", Number: 2}
	c := SeatKey{ZoneID: 1, Section: "B", Number: 1}
	d := SeatKey{ZoneID: 2, Section: "A", Number: 1}

	require.True(t, a.Less(b))
	require.True(t, b.Less(c))
	require.True(t, c.Less(d))
	require.False(t, b.Less(a))
	require.False(t, a.Less(a))
}

func TestSeatKeyLessIsTotalOrder(t *testing.T) {
	gen := rapid.Custom(func(t *rapid.T) SeatKey {
		return SeatKey{
			ZoneID:  rapid.Int64Range(1, 50).Draw(t, "zone"),
			Section: rapid.StringMatching(`[A-E]`).Draw(t, "section"),
			Number:  rapid.IntRange(1, 200).Draw(t, "number"),
		}
	})

	rapid.Check(t, func(t *rapid.T) {
		a := gen.Draw(t, "a")
		b := gen.Draw(t, "b")

		// Antisymmetry: at most one of a<b, b<a.
		if a.Less(b) && b.Less(a) {
			t.Fatalf("both %v < %v and %v < %v", a, b, b, a)
		}

		// Totality: distinct keys are ordered one way or the other.
		if a != b && !a.Less(b) && !b.Less(a) {
			t.Fatalf("%v and %v unordered", a, b)
		}

		// Agreement with the composite tuple rendering used by the schema.
		tupleA := fmt.Sprintf("%05d|%s|%05d", a.ZoneID, a.Section, a.Number)
		tupleB := fmt.Sprintf("%05d|%s|%05d", b.ZoneID, b.Section, b.Number)
		if a.Less(b) != (tupleA < tupleB) {
			t.Fatalf("Less(%v, %v) disagrees with tuple order", a, b)
		}
	})
}

func TestSubscriptionCurrentlyValid(t *testing.T) {
	today := time.Date(2025, 6, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		name   string
		status SubscriptionStatus
		end    time.Time
		want   bool
	}{
		{"active ending later", SubscriptionActive, today.AddDate(0, 1, 0), true},
		{"active ending today", SubscriptionActive, time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local), true},
		{"active ended yesterday", SubscriptionActive, today.AddDate(0, 0, -1), false},
		{"expired ending later", SubscriptionExpired, today.AddDate(0, 1, 0), false},
		{"expired and ended", SubscriptionExpired, today.AddDate(0, 0, -1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := Subscription{Status: tt.status, EndDate: tt.end}
			require.Equal(t, tt.want, sub.CurrentlyValid(today))
		})
	}
}

func TestAttendanceSessionOpen(t *testing.T) {
	sess := AttendanceSession{CheckIn: time.Now()}
	require.True(t, sess.Open())

	out := time.Now()
	sess.CheckOut = &out
	require.False(t, sess.Open())
}

func TestSeatKeyFromSeat(t *testing.T) {
	s := Seat{ID: "Z3-C-7", ZoneID: 3, Section: "C", Number: 7, Status: SeatAvailable}
	require.Equal(t, SeatKey{ZoneID: 3, Section: "C", Number: 7}, s.Key())
	require.Equal(t, s.ID, s.Key().SeatID())
}
