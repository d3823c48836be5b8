package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrHoldNotFound         = errors.New("hold not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrCheckInNotFound      = errors.New("check-in record not found")
	ErrAlertNotFound        = errors.New("alert not found")
	ErrHoldExpired          = errors.New("hold expired")
	ErrHoldAlreadyConverted = errors.New("hold already converted")
	ErrActorRequired        = errors.New("actor identity required")
	ErrBookingNotReady      = errors.New("booking not ready for activation")
	ErrInvalidWindow        = errors.New("invalid rental window")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidID            = errors.New("invalid id")
	ErrDepositNotAuthorized = errors.New("no deposit authorized")

	// ErrConflict and ErrIllegalTransition are matched via errors.Is against
	// the structured ConflictError and IllegalTransitionError values.
	ErrConflict          = errors.New("date range conflicts with an existing hold or booking")
	ErrIllegalTransition = errors.New("illegal booking status transition")
)

// ConflictError reports which vehicle and window collided so callers can
// surface an actionable message instead of a generic failure.
type ConflictError struct {
	VehicleID string
	StartAt   time.Time
	EndAt     time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %s is unavailable between %s and %s",
		e.VehicleID, e.StartAt.Format(time.RFC3339), e.EndAt.Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// IllegalTransitionError names the rejected edge.
type IllegalTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("booking status cannot move from %s to %s", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}
