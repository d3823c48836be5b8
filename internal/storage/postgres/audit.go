package postgres

import (
	"context"
	"fmt"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// AppendAudit writes one audit row. Like the deposit ledger, audit_entries
// is append-only; nothing in this package updates or deletes it.
func (s *Store) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	const stmt = `
INSERT INTO audit_entries (id, action, entity_type, entity_id, actor, old_data, new_data, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.exec(ctx, stmt,
		entry.ID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Actor,
		entry.OldData,
		entry.NewData,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}
