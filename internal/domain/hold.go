package domain

import "time"

type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "active"
	HoldStatusExpired   HoldStatus = "expired"
	HoldStatusConverted HoldStatus = "converted"
)

// ReservationHold reserves a vehicle for a date range while a customer
// completes checkout. Holds are never deleted; they are flipped to expired
// or converted so the audit history survives.
type ReservationHold struct {
	ID         string
	VehicleID  string
	CustomerID string
	StartAt    time.Time
	EndAt      time.Time
	Status     HoldStatus
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// ExpiredAt reports whether the hold should be treated as expired at the
// given instant. Readers must use this rather than Status alone: expiry is
// lazy and a stale row may still say active.
func (h ReservationHold) ExpiredAt(now time.Time) bool {
	if h.Status == HoldStatusExpired {
		return true
	}
	return h.Status == HoldStatusActive && !h.ExpiresAt.After(now)
}
