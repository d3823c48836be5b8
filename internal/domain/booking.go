package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// OccupyingBookingStatuses are the statuses that keep a vehicle's calendar
// blocked for conflict purposes. Completed and cancelled bookings free the
// window.
var OccupyingBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusActive,
}

// Booking is the durable record of a reservation. Status moves only through
// the lifecycle service; other fields may be written by collaborating
// subsystems (vehicle assignment, payment capture).
type Booking struct {
	ID                    string
	Code                  string
	VehicleID             string
	CustomerID            string
	Status                BookingStatus
	StartAt               time.Time
	EndAt                 time.Time
	ActualReturnAt        *time.Time
	TotalAmountCents      int64
	DepositAmountCents    int64
	DepositStatus         string
	ReturnIsException     bool
	ReturnExceptionReason string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Overlaps applies the half-open interval test: touching endpoints do not
// conflict, so a 10:00 return and a 10:00 pickup on the same vehicle is legal.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
