package domain

import "time"

// AuditEntry is one row of the append-only audit sink. Every status
// transition and ledger append writes one.
type AuditEntry struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	Actor      string
	OldData    string
	NewData    string
	CreatedAt  time.Time
}
