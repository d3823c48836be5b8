package postgres

import (
	"context"
	"fmt"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// ListDepositEntries returns the booking's ledger in insertion order. The
// (created_at, id) sort keeps the fold deterministic when two entries share
// a timestamp.
func (s *Store) ListDepositEntries(ctx context.Context, bookingID string) ([]domain.DepositEntry, error) {
	const query = `
SELECT id, booking_id, action, amount_cents, reason, category, created_by, created_at
FROM deposit_entries
WHERE booking_id = $1
ORDER BY created_at, id`

	rows, err := s.query(ctx, query, bookingID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list deposit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.DepositEntry
	for rows.Next() {
		var e domain.DepositEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Action, &e.AmountCents, &e.Reason, &e.Category, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deposit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deposit entries: %w", err)
	}
	return entries, nil
}

// CreateDepositEntry is the ledger's only write. There is deliberately no
// update or delete statement for deposit_entries anywhere in this package.
func (s *Store) CreateDepositEntry(ctx context.Context, entry domain.DepositEntry) error {
	const stmt = `
INSERT INTO deposit_entries (id, booking_id, action, amount_cents, reason, category, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.exec(ctx, stmt,
		entry.ID,
		entry.BookingID,
		entry.Action,
		entry.AmountCents,
		entry.Reason,
		entry.Category,
		entry.CreatedBy,
		entry.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("create deposit entry: %w", err)
	}
	return nil
}
