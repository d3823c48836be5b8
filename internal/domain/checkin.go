package domain

import "time"

type CheckInStatus string

const (
	CheckInStatusPending     CheckInStatus = "pending"
	CheckInStatusPassed      CheckInStatus = "passed"
	CheckInStatusNeedsReview CheckInStatus = "needs_review"
	CheckInStatusBlocked     CheckInStatus = "blocked"
)

type TimingStatus string

const (
	TimingOnTime TimingStatus = "on_time"
	TimingEarly  TimingStatus = "early"
	TimingLate   TimingStatus = "late"
	TimingNoShow TimingStatus = "no_show"
)

// CheckInRecord is the 1:1 check-in sub-record of a booking, created lazily
// on the first check-in attempt and kept for the life of the booking.
type CheckInRecord struct {
	BookingID          string
	IdentityVerified   bool
	LicenseVerified    bool
	LicenseNameMatches bool
	LicenseValid       bool
	AgeVerified        bool
	ArrivalTime        *time.Time
	TimingStatus       TimingStatus
	CheckInStatus      CheckInStatus
	BlockedReason      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validation is one named check (identity, license, age, timing) scored
// during check-in.
type Validation struct {
	Name     string
	Label    string
	Required bool
	Passed   bool
}
