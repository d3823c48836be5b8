package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

const holdColumns = `id, vehicle_id, customer_id, start_at, end_at, status, expires_at, created_at`

func scanHold(row pgx.Row) (domain.ReservationHold, error) {
	var h domain.ReservationHold
	err := row.Scan(&h.ID, &h.VehicleID, &h.CustomerID, &h.StartAt, &h.EndAt, &h.Status, &h.ExpiresAt, &h.CreatedAt)
	return h, err
}

func (s *Store) GetHold(ctx context.Context, holdID string) (domain.ReservationHold, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservation_holds WHERE id = $1`, holdColumns)
	h, err := scanHold(s.queryRow(ctx, query, holdID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ReservationHold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.ReservationHold{}, domain.ErrHoldNotFound
		}
		return domain.ReservationHold{}, fmt.Errorf("get hold: %w", err)
	}
	return h, nil
}

func (s *Store) GetHoldForUpdate(ctx context.Context, holdID string) (domain.ReservationHold, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservation_holds WHERE id = $1 FOR UPDATE`, holdColumns)
	h, err := scanHold(s.queryRow(ctx, query, holdID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ReservationHold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.ReservationHold{}, domain.ErrHoldNotFound
		}
		return domain.ReservationHold{}, fmt.Errorf("get hold for update: %w", err)
	}
	return h, nil
}

// CountOverlappingActiveHolds counts live holds intersecting [startAt, endAt)
// on the vehicle. The expires_at guard makes lazy expiry safe: a lapsed hold
// stops counting the moment its TTL passes, whatever its status row says.
func (s *Store) CountOverlappingActiveHolds(ctx context.Context, vehicleID string, startAt, endAt time.Time, now time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM reservation_holds
WHERE vehicle_id = $1
  AND status = 'active'
  AND expires_at > $4
  AND start_at < $3
  AND end_at > $2`

	var count int
	if err := s.queryRow(ctx, query, vehicleID, startAt, endAt, now).Scan(&count); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count overlapping holds: %w", err)
	}
	return count, nil
}

func (s *Store) CreateHold(ctx context.Context, hold domain.ReservationHold) error {
	const stmt = `
INSERT INTO reservation_holds (id, vehicle_id, customer_id, start_at, end_at, status, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.exec(ctx, stmt,
		hold.ID,
		hold.VehicleID,
		hold.CustomerID,
		hold.StartAt,
		hold.EndAt,
		hold.Status,
		hold.ExpiresAt,
		hold.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrVehicleNotFound
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (s *Store) UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error {
	const stmt = `UPDATE reservation_holds SET status = $2 WHERE id = $1`

	tag, err := s.exec(ctx, stmt, holdID, status)
	if err != nil {
		return fmt.Errorf("update hold status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}
