package ports

import (
	"context"

	"prodflow/internal/core/domain/model/audit"
	"prodflow/internal/core/domain/model/kernel"
)

// AuditRepository defines the persistence contract for the transition ledger.
// Append-only: there is no update or delete.
type AuditRepository interface {
	// Append persists one transition record.
	Append(ctx context.Context, record *audit.TransitionRecord) error

	// HasTransition reports whether the ledger holds a record of the given
	// transition for the aggregate. Lets handlers tell a redelivered event
	// (the transition already fired) from one that arrived too early.
	HasTransition(ctx context.Context, aggregateID string, transitionID kernel.UUID) (bool, error)
}
