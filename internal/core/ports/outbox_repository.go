package ports

import (
	"context"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/outbox"
)

// OutboxRepository defines the persistence contract for outbox events.
type OutboxRepository interface {
	// Add appends an event inside the caller's transaction. The event
	// becomes visible to the processor only when that transaction commits.
	Add(ctx context.Context, event *outbox.Event) error

	// ClaimUnprocessed selects up to limit unprocessed events in creation
	// order and row-locks them for the duration of the transaction, skipping
	// rows already locked by a competing processor.
	ClaimUnprocessed(ctx context.Context, limit int) ([]*outbox.Event, error)

	// MarkProcessed flips the processed flag. Idempotent: marking an
	// already processed event is not an error.
	MarkProcessed(ctx context.Context, id kernel.UUID) error
}
