package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// All repository access within one unit shares a single database transaction,
// so an outbox event appended next to a business mutation commits or rolls
// back together with it. Client code must explicitly manage the lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// SavePoint records a named savepoint inside the current transaction.
	// Used by the outbox processor to isolate per-event failures within a
	// claimed batch.
	SavePoint(ctx context.Context, name string) error

	// RollbackTo rolls the transaction back to a named savepoint without
	// releasing row locks taken before it.
	RollbackTo(ctx context.Context, name string) error

	// OrderRepository returns an OrderRepository bound to the current transaction.
	OrderRepository() OrderRepository

	// ProcessRepository returns a ProcessRepository bound to the current transaction.
	ProcessRepository() ProcessRepository

	// RunRepository returns a RunRepository bound to the current transaction.
	RunRepository() RunRepository

	// OutboxRepository returns an OutboxRepository bound to the current transaction.
	OutboxRepository() OutboxRepository

	// WorkflowRepository returns a WorkflowRepository bound to the current transaction.
	WorkflowRepository() WorkflowRepository

	// AuditRepository returns an AuditRepository bound to the current transaction.
	AuditRepository() AuditRepository
}
