package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// fakeStore is an in-memory stand-in for the postgres store, shared by the
// service tests. Row locking is a no-op: the tests exercise the decisions
// made under the lock, not the lock itself.
type fakeStore struct {
	vehicles map[string]domain.Vehicle
	holds    map[string]domain.ReservationHold
	bookings map[string]domain.Booking
	checkIns map[string]domain.CheckInRecord
	alerts   map[string]domain.Alert
	entries  []domain.DepositEntry
	audits   []domain.AuditEntry

	snapshots map[string]BookingSnapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vehicles:  make(map[string]domain.Vehicle),
		holds:     make(map[string]domain.ReservationHold),
		bookings:  make(map[string]domain.Booking),
		checkIns:  make(map[string]domain.CheckInRecord),
		alerts:    make(map[string]domain.Alert),
		snapshots: make(map[string]BookingSnapshot),
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) GetVehicle(_ context.Context, vehicleID string) (domain.Vehicle, error) {
	v, ok := f.vehicles[vehicleID]
	if !ok {
		return domain.Vehicle{}, domain.ErrVehicleNotFound
	}
	return v, nil
}

func (f *fakeStore) GetVehicleForUpdate(ctx context.Context, vehicleID string) (domain.Vehicle, error) {
	return f.GetVehicle(ctx, vehicleID)
}

func (f *fakeStore) GetHoldForUpdate(_ context.Context, holdID string) (domain.ReservationHold, error) {
	h, ok := f.holds[holdID]
	if !ok {
		return domain.ReservationHold{}, domain.ErrHoldNotFound
	}
	return h, nil
}

func (f *fakeStore) CreateHold(_ context.Context, hold domain.ReservationHold) error {
	if _, ok := f.vehicles[hold.VehicleID]; !ok {
		return domain.ErrVehicleNotFound
	}
	f.holds[hold.ID] = hold
	return nil
}

func (f *fakeStore) UpdateHoldStatus(_ context.Context, holdID string, status domain.HoldStatus) error {
	h, ok := f.holds[holdID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	h.Status = status
	f.holds[holdID] = h
	return nil
}

func (f *fakeStore) CountOverlappingActiveHolds(_ context.Context, vehicleID string, startAt, endAt, now time.Time) (int, error) {
	count := 0
	for _, h := range f.holds {
		if h.VehicleID != vehicleID || h.Status != domain.HoldStatusActive || !h.ExpiresAt.After(now) {
			continue
		}
		if domain.Overlaps(h.StartAt, h.EndAt, startAt, endAt) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountOverlappingBookings(_ context.Context, vehicleID string, startAt, endAt time.Time, excludeBookingID string) (int, error) {
	count := 0
	for _, b := range f.bookings {
		if b.VehicleID != vehicleID || b.ID == excludeBookingID {
			continue
		}
		occupying := false
		for _, status := range domain.OccupyingBookingStatuses {
			if b.Status == status {
				occupying = true
				break
			}
		}
		if !occupying {
			continue
		}
		if domain.Overlaps(b.StartAt, b.EndAt, startAt, endAt) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) GetBooking(_ context.Context, bookingID string) (domain.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeStore) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	return f.GetBooking(ctx, bookingID)
}

func (f *fakeStore) CreateBooking(_ context.Context, booking domain.Booking) error {
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, bookingID string, status domain.BookingStatus, actualReturnAt *time.Time) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	if actualReturnAt != nil {
		b.ActualReturnAt = actualReturnAt
	}
	f.bookings[bookingID] = b
	return nil
}

func (f *fakeStore) UpdateBookingVehicle(_ context.Context, bookingID, vehicleID string) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.VehicleID = vehicleID
	f.bookings[bookingID] = b
	return nil
}

func (f *fakeStore) UpdateBookingIntake(_ context.Context, bookingID string, flags IntakeFlags) error {
	if _, ok := f.bookings[bookingID]; !ok {
		return domain.ErrBookingNotFound
	}
	snap := f.snapshots[bookingID]
	if flags.PrepComplete != nil {
		snap.PrepComplete = *flags.PrepComplete
	}
	if flags.PhotosComplete != nil {
		snap.PhotosComplete = *flags.PhotosComplete
	}
	if flags.AgreementSigned != nil {
		snap.AgreementSigned = *flags.AgreementSigned
	}
	if flags.WalkaroundComplete != nil {
		snap.WalkaroundComplete = *flags.WalkaroundComplete
	}
	if flags.WalkaroundAcknowledged != nil {
		snap.WalkaroundAcknowledged = *flags.WalkaroundAcknowledged
	}
	f.snapshots[bookingID] = snap
	return nil
}

func (f *fakeStore) SetReturnException(_ context.Context, bookingID, reason string) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.ReturnIsException = true
	b.ReturnExceptionReason = reason
	f.bookings[bookingID] = b
	return nil
}

func (f *fakeStore) UpdateDepositStatus(_ context.Context, bookingID, depositStatus string) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.DepositStatus = depositStatus
	f.bookings[bookingID] = b
	return nil
}

func (f *fakeStore) MarkPaymentCollected(_ context.Context, bookingID string) error {
	if _, ok := f.bookings[bookingID]; !ok {
		return domain.ErrBookingNotFound
	}
	snap := f.snapshots[bookingID]
	snap.PaymentCollected = true
	f.snapshots[bookingID] = snap
	return nil
}

func (f *fakeStore) GetReadinessSnapshot(_ context.Context, bookingID string) (BookingSnapshot, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return BookingSnapshot{}, domain.ErrBookingNotFound
	}
	snap := f.snapshots[bookingID]
	snap.Status = b.Status
	snap.VehicleAssigned = b.VehicleID != ""
	if record, ok := f.checkIns[bookingID]; ok {
		snap.CheckInComplete = record.CheckInStatus == domain.CheckInStatusPassed ||
			record.CheckInStatus == domain.CheckInStatusNeedsReview
	}
	for _, e := range f.entries {
		if e.BookingID == bookingID && e.Action == domain.DepositActionHold {
			snap.DepositCollected = true
		}
	}
	return snap, nil
}

func (f *fakeStore) GetCheckIn(_ context.Context, bookingID string) (*domain.CheckInRecord, error) {
	record, ok := f.checkIns[bookingID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (f *fakeStore) CreateCheckIn(_ context.Context, record domain.CheckInRecord) error {
	if _, ok := f.checkIns[record.BookingID]; ok {
		return fmt.Errorf("check-in already exists for booking %s", record.BookingID)
	}
	f.checkIns[record.BookingID] = record
	return nil
}

func (f *fakeStore) UpdateCheckIn(_ context.Context, record domain.CheckInRecord) error {
	if _, ok := f.checkIns[record.BookingID]; !ok {
		return domain.ErrCheckInNotFound
	}
	f.checkIns[record.BookingID] = record
	return nil
}

func (f *fakeStore) ListDepositEntries(_ context.Context, bookingID string) ([]domain.DepositEntry, error) {
	var out []domain.DepositEntry
	for _, e := range f.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateDepositEntry(_ context.Context, entry domain.DepositEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeStore) CreateAlert(_ context.Context, alert domain.Alert) error {
	f.alerts[alert.ID] = alert
	return nil
}

func (f *fakeStore) GetAlertForUpdate(_ context.Context, alertID string) (domain.Alert, error) {
	a, ok := f.alerts[alertID]
	if !ok {
		return domain.Alert{}, domain.ErrAlertNotFound
	}
	return a, nil
}

func (f *fakeStore) UpdateAlertStatus(_ context.Context, alertID string, status domain.AlertStatus) error {
	a, ok := f.alerts[alertID]
	if !ok {
		return domain.ErrAlertNotFound
	}
	a.Status = status
	f.alerts[alertID] = a
	return nil
}

func (f *fakeStore) CountOpenAlerts(_ context.Context, bookingID string, alertType domain.AlertType) (int, error) {
	count := 0
	for _, a := range f.alerts {
		if a.BookingID == bookingID && a.Type == alertType && a.Status != domain.AlertStatusResolved {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListAlertsByBooking(_ context.Context, bookingID string) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, a := range f.alerts {
		if a.BookingID == bookingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) AppendAudit(_ context.Context, entry domain.AuditEntry) error {
	f.audits = append(f.audits, entry)
	return nil
}

func (f *fakeStore) alertsOfType(alertType domain.AlertType) []domain.Alert {
	var out []domain.Alert
	for _, a := range f.alerts {
		if a.Type == alertType {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeStore) entriesFor(bookingID string) []domain.DepositEntry {
	var out []domain.DepositEntry
	for _, e := range f.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out
}
