package ports

import (
	"context"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Counter increments and boundary claims are expressed as conditional
// updates executed in the database, not as read-modify-write on the
// aggregate, so concurrent cascades stay correct without locks.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateStatusCAS sets the order status only when the current status
	// matches fromStatus. Reports whether a row was updated, which makes
	// re-delivered transition events idempotent.
	UpdateStatusCAS(ctx context.Context, id kernel.UUID, fromStatus, toStatus string) (bool, error)

	// IncrementCompletedProcesses unconditionally bumps the completed
	// process counter by one.
	IncrementCompletedProcesses(ctx context.Context, id kernel.UUID) error

	// ClaimCompletionBoundary sets completedAt to at only when every process
	// has completed and the boundary has not been claimed yet. Exactly one
	// concurrent caller observes true.
	ClaimCompletionBoundary(ctx context.Context, id kernel.UUID, at time.Time) (bool, error)

	// ClaimLifecycleStart sets lifecycleStartedAt to at only when it is
	// still null. The single winner triggers the order's first lifecycle
	// transition.
	ClaimLifecycleStart(ctx context.Context, id kernel.UUID, at time.Time) (bool, error)
}

// ProcessRepository defines the persistence contract for order processes.
// A process tracks two completion counters over the same set of runs: one
// for the configuration stage and one for the production lifecycle stage.
type ProcessRepository interface {
	// Add persists a new process aggregate to storage.
	Add(ctx context.Context, aggregate *order.OrderProcess) error

	// Get retrieves a process aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.OrderProcess, error)

	// UpdateStatusCAS sets the process status only when the current status
	// matches fromStatus. Reports whether a row was updated.
	UpdateStatusCAS(ctx context.Context, id kernel.UUID, fromStatus, toStatus string) (bool, error)

	// IncrementConfigCompleted unconditionally bumps the configuration-stage
	// completion counter by one.
	IncrementConfigCompleted(ctx context.Context, id kernel.UUID) error

	// IncrementLifecycleCompleted unconditionally bumps the lifecycle-stage
	// completion counter by one.
	IncrementLifecycleCompleted(ctx context.Context, id kernel.UUID) error

	// ClaimConfigBoundary sets configCompletedAt to at only when the
	// configuration counter equals the run total and the boundary is
	// unclaimed. Exactly one concurrent caller observes true.
	ClaimConfigBoundary(ctx context.Context, id kernel.UUID, at time.Time) (bool, error)

	// ClaimLifecycleBoundary sets lifecycleCompletedAt to at only when the
	// lifecycle counter equals the run total and the boundary is unclaimed.
	ClaimLifecycleBoundary(ctx context.Context, id kernel.UUID, at time.Time) (bool, error)
}

// RunRepository defines the persistence contract for process runs.
type RunRepository interface {
	// Add persists a new run aggregate to storage.
	Add(ctx context.Context, aggregate *order.ProcessRun) error

	// Get retrieves a run aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.ProcessRun, error)

	// UpdateStatusVersioned sets the configuration status only when the
	// stored status version matches expectedVersion, bumping the version on
	// success. A false result means a concurrent writer got there first.
	UpdateStatusVersioned(ctx context.Context, id kernel.UUID, newStatus string, expectedVersion int) (bool, error)

	// UpdateLifecycleStatusCAS sets the lifecycle status only when the
	// current lifecycle status matches fromStatus. Reports whether a row
	// was updated.
	UpdateLifecycleStatusCAS(ctx context.Context, id kernel.UUID, fromStatus, toStatus string) (bool, error)
}
