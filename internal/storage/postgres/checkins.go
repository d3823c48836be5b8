package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

func (s *Store) GetCheckIn(ctx context.Context, bookingID string) (*domain.CheckInRecord, error) {
	const query = `
SELECT booking_id, identity_verified, license_verified, license_name_matches,
       license_valid, age_verified, arrival_time, timing_status, check_in_status,
       blocked_reason, created_at, updated_at
FROM check_in_records
WHERE booking_id = $1`

	var r domain.CheckInRecord
	err := s.queryRow(ctx, query, bookingID).Scan(
		&r.BookingID, &r.IdentityVerified, &r.LicenseVerified, &r.LicenseNameMatches,
		&r.LicenseValid, &r.AgeVerified, &r.ArrivalTime, &r.TimingStatus, &r.CheckInStatus,
		&r.BlockedReason, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get check-in: %w", err)
	}
	return &r, nil
}

func (s *Store) CreateCheckIn(ctx context.Context, record domain.CheckInRecord) error {
	const stmt = `
INSERT INTO check_in_records (
	booking_id, identity_verified, license_verified, license_name_matches,
	license_valid, age_verified, arrival_time, timing_status, check_in_status,
	blocked_reason, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.exec(ctx, stmt,
		record.BookingID, record.IdentityVerified, record.LicenseVerified, record.LicenseNameMatches,
		record.LicenseValid, record.AgeVerified, record.ArrivalTime, record.TimingStatus, record.CheckInStatus,
		record.BlockedReason, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("create check-in: %w", err)
	}
	return nil
}

func (s *Store) UpdateCheckIn(ctx context.Context, record domain.CheckInRecord) error {
	const stmt = `
UPDATE check_in_records
SET identity_verified = $2, license_verified = $3, license_name_matches = $4,
    license_valid = $5, age_verified = $6, arrival_time = $7, timing_status = $8,
    check_in_status = $9, blocked_reason = $10, updated_at = $11
WHERE booking_id = $1`

	tag, err := s.exec(ctx, stmt,
		record.BookingID, record.IdentityVerified, record.LicenseVerified, record.LicenseNameMatches,
		record.LicenseValid, record.AgeVerified, record.ArrivalTime, record.TimingStatus,
		record.CheckInStatus, record.BlockedReason, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update check-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCheckInNotFound
	}
	return nil
}
