// Package orderrepo provides data transfer objects and mapping functions for
// the order hierarchy: orders, their processes, and process runs. Counter
// columns are only ever advanced by atomic SQL increments and the completion
// timestamps only by conditional claims, so the DTOs carry state out of the
// database but never write it back wholesale.
package orderrepo

import (
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	StatusCode         string    `gorm:"index"`
	TotalProcesses     int
	CompletedProcesses int
	LifecycleStartedAt *time.Time
	CompletedAt        *time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// ProcessDTO represents the database structure for persisting order processes.
// The two counter/timestamp pairs track configuration-stage and
// lifecycle-stage completion independently.
type ProcessDTO struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID                uuid.UUID `gorm:"type:uuid;index"`
	WorkflowTypeID         uuid.UUID `gorm:"type:uuid"`
	StatusCode             string    `gorm:"index"`
	TotalRuns              int
	ConfigCompletedRuns    int
	ConfigCompletedAt      *time.Time
	LifecycleCompletedRuns int
	LifecycleCompletedAt   *time.Time
}

// TableName specifies the database table name for process entities.
func (ProcessDTO) TableName() string {
	return "order_processes"
}

// RunDTO represents the database structure for persisting process runs.
// StatusVersion is the optimistic-concurrency counter for configuration
// transitions.
type RunDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProcessID           uuid.UUID `gorm:"type:uuid;index"`
	StatusCode          string
	LifecycleStatusCode string
	StatusVersion       int
}

// TableName specifies the database table name for run entities.
func (RunDTO) TableName() string {
	return "process_runs"
}

func orderFromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:                 aggregate.ID().Bytes(),
		StatusCode:         aggregate.StatusCode(),
		TotalProcesses:     aggregate.TotalProcesses(),
		CompletedProcesses: aggregate.CompletedProcesses(),
		LifecycleStartedAt: aggregate.LifecycleStartedAt(),
		CompletedAt:        aggregate.CompletedAt(),
	}
}

func orderToDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id, dto.StatusCode, dto.TotalProcesses, dto.CompletedProcesses,
		dto.LifecycleStartedAt, dto.CompletedAt)
}

func processFromDomain(aggregate *order.OrderProcess) ProcessDTO {
	return ProcessDTO{
		ID:                     aggregate.ID().Bytes(),
		OrderID:                aggregate.OrderID().Bytes(),
		WorkflowTypeID:         aggregate.WorkflowTypeID().Bytes(),
		StatusCode:             aggregate.StatusCode(),
		TotalRuns:              aggregate.TotalRuns(),
		ConfigCompletedRuns:    aggregate.ConfigCompletedRuns(),
		ConfigCompletedAt:      aggregate.ConfigCompletedAt(),
		LifecycleCompletedRuns: aggregate.LifecycleCompletedRuns(),
		LifecycleCompletedAt:   aggregate.LifecycleCompletedAt(),
	}
}

func processToDomain(dto ProcessDTO) (*order.OrderProcess, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	workflowTypeID, err := kernel.UUIDFromBytes(dto.WorkflowTypeID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreOrderProcess(
		id, orderID, workflowTypeID, dto.StatusCode,
		dto.TotalRuns, dto.ConfigCompletedRuns, dto.ConfigCompletedAt,
		dto.LifecycleCompletedRuns, dto.LifecycleCompletedAt)
}

func runFromDomain(aggregate *order.ProcessRun) RunDTO {
	return RunDTO{
		ID:                  aggregate.ID().Bytes(),
		ProcessID:           aggregate.ProcessID().Bytes(),
		StatusCode:          aggregate.StatusCode(),
		LifecycleStatusCode: aggregate.LifecycleStatusCode(),
		StatusVersion:       aggregate.StatusVersion(),
	}
}

func runToDomain(dto RunDTO) (*order.ProcessRun, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	processID, err := kernel.UUIDFromBytes(dto.ProcessID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreProcessRun(
		id, processID, dto.StatusCode, dto.LifecycleStatusCode, dto.StatusVersion)
}
