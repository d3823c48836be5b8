package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

func (s *Store) CreateAlert(ctx context.Context, alert domain.Alert) error {
	const stmt = `
INSERT INTO alerts (id, type, status, booking_id, message, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7)`

	_, err := s.exec(ctx, stmt,
		alert.ID, alert.Type, alert.Status, alert.BookingID, alert.Message,
		alert.CreatedAt, alert.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (s *Store) GetAlertForUpdate(ctx context.Context, alertID string) (domain.Alert, error) {
	const query = `
SELECT id, type, status, COALESCE(booking_id::text, ''), message, created_at, updated_at
FROM alerts
WHERE id = $1
FOR UPDATE`

	var a domain.Alert
	err := s.queryRow(ctx, query, alertID).Scan(
		&a.ID, &a.Type, &a.Status, &a.BookingID, &a.Message, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Alert{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Alert{}, domain.ErrAlertNotFound
		}
		return domain.Alert{}, fmt.Errorf("get alert for update: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateAlertStatus(ctx context.Context, alertID string, status domain.AlertStatus) error {
	const stmt = `UPDATE alerts SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := s.exec(ctx, stmt, alertID, status)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// CountOpenAlerts counts a booking's alerts of the given type that have not
// been resolved; the auto-release check uses this for unresolved damage.
func (s *Store) CountOpenAlerts(ctx context.Context, bookingID string, alertType domain.AlertType) (int, error) {
	const query = `
SELECT COUNT(*)
FROM alerts
WHERE booking_id = $1 AND type = $2 AND status <> 'resolved'`

	var count int
	if err := s.queryRow(ctx, query, bookingID, alertType).Scan(&count); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count open alerts: %w", err)
	}
	return count, nil
}

func (s *Store) ListAlertsByBooking(ctx context.Context, bookingID string) ([]domain.Alert, error) {
	const query = `
SELECT id, type, status, COALESCE(booking_id::text, ''), message, created_at, updated_at
FROM alerts
WHERE booking_id = $1
ORDER BY created_at DESC`

	rows, err := s.query(ctx, query, bookingID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.Type, &a.Status, &a.BookingID, &a.Message, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}
