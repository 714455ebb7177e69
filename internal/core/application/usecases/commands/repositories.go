// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: validation,
// transaction management, and persistence.
//
// Handlers that react to outbox events expose a HandleIn variant taking an
// already open unit of work, so the transition they apply, the audit record,
// and any follow-up events commit atomically with the event's processed flag.
package commands

import (
	"context"
	"errors"

	"prodflow/internal/core/ports"
)

// ErrStaleWrite is returned when a conditional status update affected zero
// rows: another writer advanced the aggregate first. Callers swallow it, the
// losing transition simply does not happen and must not cascade.
var ErrStaleWrite = errors.New("aggregate was modified by a concurrent writer")

// Completion stages of a run. A run finishes configuration long before it
// finishes production, and each stage rolls up through its own counters.
const (
	StageConfig    = "config"
	StageLifecycle = "lifecycle"

	// StageLifecycleStart marks the one-time order-level rollup fired when
	// the first run of an order enters production.
	StageLifecycleStart = "lifecycle_start"

	// StageCreated marks the order-level activation fired right after
	// placement, driven by the order.created event.
	StageCreated = "created"
)

// Rollup levels carried in rollup.boundary.crossed payloads.
const (
	LevelProcess = "process"
	LevelOrder   = "order"
)

// Unit of Work interfaces provide transaction management for command
// handlers. These abstractions ensure data consistency across aggregate
// boundaries.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OutboxRepoFactory provides access to the outbox repository within a
	// transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// OutboxUoW manages transactions for commands that only append events,
	// such as the user-facing transition request.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	// OutboxUoWFactory creates new outbox unit of work instances.
	OutboxUoWFactory interface {
		Create() OutboxUoW
	}

	// WorkflowUoW manages transactions for workflow definition commands.
	WorkflowUoW interface {
		TxManager
		WorkflowRepository() ports.WorkflowRepository
	}

	// WorkflowUoWFactory creates new workflow unit of work instances.
	WorkflowUoWFactory interface {
		Create() WorkflowUoW
	}

	// UoWFactory creates full unit of work instances for commands that span
	// the order hierarchy, the outbox, and the audit ledger.
	UoWFactory interface {
		Create() ports.UnitOfWork
	}
)
