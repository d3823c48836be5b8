package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

const bookingColumns = `
id, code, COALESCE(vehicle_id::text, ''), customer_id, status, start_at, end_at,
actual_return_at, total_amount_cents, deposit_amount_cents, deposit_status,
return_is_exception, return_exception_reason, created_at, updated_at`

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.Code, &b.VehicleID, &b.CustomerID, &b.Status, &b.StartAt, &b.EndAt,
		&b.ActualReturnAt, &b.TotalAmountCents, &b.DepositAmountCents, &b.DepositStatus,
		&b.ReturnIsException, &b.ReturnExceptionReason, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (s *Store) GetBooking(ctx context.Context, bookingID string) (domain.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	return s.getBooking(ctx, query, bookingID, "get booking")
}

func (s *Store) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 FOR UPDATE`, bookingColumns)
	return s.getBooking(ctx, query, bookingID, "get booking for update")
}

func (s *Store) getBooking(ctx context.Context, query, bookingID, op string) (domain.Booking, error) {
	b, err := scanBooking(s.queryRow(ctx, query, bookingID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// CountOverlappingBookings counts occupying bookings intersecting
// [startAt, endAt) on the vehicle, half-open so touching endpoints are
// legal. Completed and cancelled bookings free the window.
func (s *Store) CountOverlappingBookings(ctx context.Context, vehicleID string, startAt, endAt time.Time, excludeBookingID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM bookings
WHERE vehicle_id = $1
  AND status IN ('pending', 'confirmed', 'active')
  AND start_at < $3
  AND end_at > $2
  AND ($4 = '' OR id::text <> $4)`

	var count int
	if err := s.queryRow(ctx, query, vehicleID, startAt, endAt, excludeBookingID).Scan(&count); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return count, nil
}

func (s *Store) CreateBooking(ctx context.Context, booking domain.Booking) error {
	const stmt = `
INSERT INTO bookings (
	id, code, vehicle_id, customer_id, status, start_at, end_at,
	total_amount_cents, deposit_amount_cents, created_at, updated_at
)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $10)`

	_, err := s.exec(ctx, stmt,
		booking.ID,
		booking.Code,
		booking.VehicleID,
		booking.CustomerID,
		booking.Status,
		booking.StartAt,
		booking.EndAt,
		booking.TotalAmountCents,
		booking.DepositAmountCents,
		booking.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrVehicleNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("booking code collision: %w", err)
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, actualReturnAt *time.Time) error {
	const stmt = `
UPDATE bookings
SET status = $2, actual_return_at = COALESCE($3, actual_return_at), updated_at = NOW()
WHERE id = $1`

	tag, err := s.exec(ctx, stmt, bookingID, status, actualReturnAt)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *Store) UpdateBookingVehicle(ctx context.Context, bookingID, vehicleID string) error {
	const stmt = `UPDATE bookings SET vehicle_id = $2, updated_at = NOW() WHERE id = $1`

	tag, err := s.exec(ctx, stmt, bookingID, vehicleID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrVehicleNotFound
		}
		return fmt.Errorf("update booking vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *Store) UpdateBookingIntake(ctx context.Context, bookingID string, flags app.IntakeFlags) error {
	const stmt = `
UPDATE bookings
SET prep_complete = COALESCE($2, prep_complete),
    photos_complete = COALESCE($3, photos_complete),
    agreement_signed = COALESCE($4, agreement_signed),
    walkaround_complete = COALESCE($5, walkaround_complete),
    walkaround_acknowledged = COALESCE($6, walkaround_acknowledged),
    updated_at = NOW()
WHERE id = $1`

	tag, err := s.exec(ctx, stmt, bookingID,
		flags.PrepComplete,
		flags.PhotosComplete,
		flags.AgreementSigned,
		flags.WalkaroundComplete,
		flags.WalkaroundAcknowledged,
	)
	if err != nil {
		return fmt.Errorf("update booking intake: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *Store) SetReturnException(ctx context.Context, bookingID, reason string) error {
	const stmt = `
UPDATE bookings
SET return_is_exception = TRUE, return_exception_reason = $2, updated_at = NOW()
WHERE id = $1`

	tag, err := s.exec(ctx, stmt, bookingID, reason)
	if err != nil {
		return fmt.Errorf("set return exception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *Store) UpdateDepositStatus(ctx context.Context, bookingID, depositStatus string) error {
	const stmt = `UPDATE bookings SET deposit_status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := s.exec(ctx, stmt, bookingID, depositStatus)
	if err != nil {
		return fmt.Errorf("update deposit status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *Store) MarkPaymentCollected(ctx context.Context, bookingID string) error {
	const stmt = `UPDATE bookings SET payment_collected = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := s.exec(ctx, stmt, bookingID)
	if err != nil {
		return fmt.Errorf("mark payment collected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// GetReadinessSnapshot gathers the pre-activation booleans in one query so
// the readiness gate decides over a consistent view. A needs_review check-in
// counts as complete here: review outcomes alert staff instead of blocking
// activation.
func (s *Store) GetReadinessSnapshot(ctx context.Context, bookingID string) (app.BookingSnapshot, error) {
	const query = `
SELECT
	b.status,
	b.vehicle_id IS NOT NULL,
	b.prep_complete,
	b.photos_complete,
	COALESCE(c.check_in_status IN ('passed', 'needs_review'), FALSE),
	b.payment_collected,
	EXISTS (
		SELECT 1 FROM deposit_entries d
		WHERE d.booking_id = b.id AND d.action = 'hold'
	),
	b.agreement_signed,
	b.walkaround_complete,
	b.walkaround_acknowledged
FROM bookings b
LEFT JOIN check_in_records c ON c.booking_id = b.id
WHERE b.id = $1`

	var snap app.BookingSnapshot
	err := s.queryRow(ctx, query, bookingID).Scan(
		&snap.Status,
		&snap.VehicleAssigned,
		&snap.PrepComplete,
		&snap.PhotosComplete,
		&snap.CheckInComplete,
		&snap.PaymentCollected,
		&snap.DepositCollected,
		&snap.AgreementSigned,
		&snap.WalkaroundComplete,
		&snap.WalkaroundAcknowledged,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return app.BookingSnapshot{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return app.BookingSnapshot{}, domain.ErrBookingNotFound
		}
		return app.BookingSnapshot{}, fmt.Errorf("readiness snapshot: %w", err)
	}
	return snap, nil
}
