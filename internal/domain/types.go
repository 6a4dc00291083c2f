package domain

import (
	"fmt"
	"time"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatOccupied  SeatStatus = "occupied"
	// SeatReserved exists in the schema but no transition sets it yet.
	SeatReserved SeatStatus = "reserved"
)

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

type Member struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	FatherName       string    `json:"father_name,omitempty"`
	Address          string    `json:"address,omitempty"`
	State            string    `json:"state,omitempty"`
	Email            string    `json:"email"`
	Contact          string    `json:"contact,omitempty"`
	BloodGroup       string    `json:"blood_group,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type Staff struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	FatherName       string `json:"father_name,omitempty"`
	Address          string `json:"address,omitempty"`
	State            string `json:"state,omitempty"`
	Email            string `json:"email"`
	Contact          string `json:"contact,omitempty"`
	BloodGroup       string `json:"blood_group,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	Role             string `json:"role"`
}

type Subscription struct {
	ID          int64              `json:"id"`
	MemberID    string             `json:"member_id"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	Status      SubscriptionStatus `json:"status"`
	AmountCents int                `json:"amount_cents"`
}

// CurrentlyValid reports whether the subscription grants check-in eligibility
// on the given date. Expiry is a read-time predicate: a stale 'active' row past
// its end date stays 'active' in storage until a new subscription supersedes it.
func (s Subscription) CurrentlyValid(today time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	y1, m1, d1 := s.EndDate.Date()
	y2, m2, d2 := today.Date()
	end := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	day := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return !end.Before(day)
}

type Zone struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SeatKey is the composite identity of a seat. Its ascending tuple order
// (zone, section, number) is the "lowest free seat" allocation order.
type SeatKey struct {
	ZoneID  int64  `json:"zone_id"`
	Section string `json:"section"`
	Number  int    `json:"number"`
}

// SeatID renders the canonical seat identifier, e.g. "Z1-A-1".
func (k SeatKey) SeatID() string {
	return fmt.Sprintf("Z%d-%s-%d", k.ZoneID, k.Section, k.Number)
}

// Less orders seat keys by (zone, section, number).
func (k SeatKey) Less(o SeatKey) bool {
	if k.ZoneID != o.ZoneID {
		return k.ZoneID < o.ZoneID
	}
	if k.Section != o.Section {
		return k.Section < o.Section
	}
	return k.Number < o.Number
}

type Seat struct {
	ID         string     `json:"id"`
	ZoneID     int64      `json:"zone_id"`
	Section    string     `json:"section"`
	Number     int        `json:"number"`
	Status     SeatStatus `json:"status"`
	OccupantID *string    `json:"occupant_id,omitempty"`
}

func (s Seat) Key() SeatKey {
	return SeatKey{ZoneID: s.ZoneID, Section: s.Section, Number: s.Number}
}

type SeatWithZone struct {
	Seat
	ZoneName string `json:"zone_name"`
}

type AttendanceSession struct {
	ID       int64      `json:"id"`
	MemberID string     `json:"member_id"`
	SeatID   string     `json:"seat_id"`
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// Open reports whether the session has not been sealed by a check-out.
func (a AttendanceSession) Open() bool { return a.CheckOut == nil }

// AttendanceEntry is a ledger row joined with display fields for reporting.
type AttendanceEntry struct {
	AttendanceSession
	MemberName string `json:"member_name"`
	ZoneName   string `json:"zone_name"`
	Section    string `json:"section"`
	SeatNumber int    `json:"seat_number"`
}

// MemberOverview is a member joined with derived subscription and seating state.
type MemberOverview struct {
	Member
	SubscriptionStatus *SubscriptionStatus `json:"subscription_status,omitempty"`
	SubscriptionEnd    *time.Time          `json:"subscription_end,omitempty"`
	CurrentSeatID      *string             `json:"current_seat_id,omitempty"`
	LastCheckIn        *time.Time          `json:"last_check_in,omitempty"`
}

// SubscriptionWithMember is a subscription ledger row.
type SubscriptionWithMember struct {
	Subscription
	MemberName string `json:"member_name"`
}

type OccupancyCounts struct {
	Total    int64 `json:"total"`
	Occupied int64 `json:"occupied"`
}

type SubscriptionStats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Expired int64 `json:"expired"`
}
