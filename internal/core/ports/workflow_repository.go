package ports

import (
	"context"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/workflow"
)

// WorkflowRepository defines the persistence contract for workflow type
// definitions. Types are loaded whole: a Type is only useful with all of its
// statuses and transitions, and definitions are small.
type WorkflowRepository interface {
	// Add persists a new workflow type with its statuses and transitions.
	// Fails when the type code is already taken.
	Add(ctx context.Context, aggregate *workflow.Type) error

	// GetByCode retrieves a workflow type by its unique code.
	GetByCode(ctx context.Context, code string) (*workflow.Type, error)

	// GetByID retrieves a workflow type by its identifier.
	GetByID(ctx context.Context, id kernel.UUID) (*workflow.Type, error)
}
