package order

import (
	"errors"
	"fmt"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
)

// ErrProcessIsNotConstructed is returned when an OrderProcess was not created
// through NewOrderProcess or RestoreOrderProcess.
var ErrProcessIsNotConstructed = errors.New("OrderProcess must be created via NewOrderProcess constructor")

// OrderProcess is the middle level of the hierarchy: one production process
// of an order, decomposing into ProcessRun rows. Its workflowTypeID names the
// per-process-template workflow type that governs the configuration statuses
// of its runs.
//
// Completion tracking is double-booked: configuration and lifecycle each have
// their own counter and completion timestamp, because a run finishes
// configuration long before it finishes production. The counters are advanced
// by atomic repository increments; the timestamps flip from nil exactly once
// via conditional updates. The aggregate exposes the state, the repository
// owns the races.
type OrderProcess struct {
	id                     kernel.UUID
	orderID                kernel.UUID
	workflowTypeID         kernel.UUID
	statusCode             string
	totalRuns              int
	configCompletedRuns    int
	configCompletedAt      *time.Time
	lifecycleCompletedRuns int
	lifecycleCompletedAt   *time.Time
	isConstructed          bool
}

// NewOrderProcess creates a process at the given initial status with zero
// completed runs.
func NewOrderProcess(
	id, orderID, workflowTypeID kernel.UUID,
	statusCode string,
	totalRuns int,
) (*OrderProcess, error) {
	process := &OrderProcess{isConstructed: true}

	if err := errors.Join(
		process.setID(id),
		process.setOrderID(orderID),
		process.setWorkflowTypeID(workflowTypeID),
		process.setStatusCode(statusCode),
		process.setTotalRuns(totalRuns),
	); err != nil {
		return nil, err
	}

	return process, nil
}

// RestoreOrderProcess reconstructs a process from persistence.
func RestoreOrderProcess(
	id, orderID, workflowTypeID kernel.UUID,
	statusCode string,
	totalRuns, configCompletedRuns int,
	configCompletedAt *time.Time,
	lifecycleCompletedRuns int,
	lifecycleCompletedAt *time.Time,
) (*OrderProcess, error) {
	process, err := NewOrderProcess(id, orderID, workflowTypeID, statusCode, totalRuns)
	if err != nil {
		return nil, err
	}

	if configCompletedRuns < 0 || configCompletedRuns > totalRuns {
		return nil, errs.NewValueIsOutOfRangeError(
			"configCompletedRuns", configCompletedRuns, 0, totalRuns)
	}
	if lifecycleCompletedRuns < 0 || lifecycleCompletedRuns > totalRuns {
		return nil, errs.NewValueIsOutOfRangeError(
			"lifecycleCompletedRuns", lifecycleCompletedRuns, 0, totalRuns)
	}

	process.configCompletedRuns = configCompletedRuns
	process.configCompletedAt = configCompletedAt
	process.lifecycleCompletedRuns = lifecycleCompletedRuns
	process.lifecycleCompletedAt = lifecycleCompletedAt
	return process, nil
}

// Validate ensures the OrderProcess was properly constructed.
func (p *OrderProcess) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrProcessIsNotConstructed
	}
	return nil
}

// ID returns the process identifier.
func (p *OrderProcess) ID() kernel.UUID { return p.id }

// OrderID returns the identifier of the owning order.
func (p *OrderProcess) OrderID() kernel.UUID { return p.orderID }

// WorkflowTypeID returns the workflow type governing this process's runs.
func (p *OrderProcess) WorkflowTypeID() kernel.UUID { return p.workflowTypeID }

// StatusCode returns the current PROCESS workflow status code.
func (p *OrderProcess) StatusCode() string { return p.statusCode }

// TotalRuns returns the number of runs the process decomposes into.
func (p *OrderProcess) TotalRuns() int { return p.totalRuns }

// ConfigCompletedRuns returns how many runs completed configuration.
func (p *OrderProcess) ConfigCompletedRuns() int { return p.configCompletedRuns }

// ConfigCompletedAt returns when the last run completed configuration, or nil.
func (p *OrderProcess) ConfigCompletedAt() *time.Time { return p.configCompletedAt }

// LifecycleCompletedRuns returns how many runs completed production.
func (p *OrderProcess) LifecycleCompletedRuns() int { return p.lifecycleCompletedRuns }

// LifecycleCompletedAt returns when the last run completed production, or nil.
func (p *OrderProcess) LifecycleCompletedAt() *time.Time { return p.lifecycleCompletedAt }

// AllRunsConfigured reports whether every run has completed configuration.
func (p *OrderProcess) AllRunsConfigured() bool {
	return p.configCompletedRuns == p.totalRuns
}

// AllRunsProduced reports whether every run has completed production.
func (p *OrderProcess) AllRunsProduced() bool {
	return p.lifecycleCompletedRuns == p.totalRuns
}

// ApplyStatus records a workflow transition decided by the engine.
func (p *OrderProcess) ApplyStatus(statusCode string) error {
	return p.setStatusCode(statusCode)
}

func (p *OrderProcess) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *OrderProcess) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	p.orderID = orderID
	return nil
}

func (p *OrderProcess) setWorkflowTypeID(workflowTypeID kernel.UUID) error {
	if err := workflowTypeID.Validate(); err != nil {
		return err
	}
	p.workflowTypeID = workflowTypeID
	return nil
}

func (p *OrderProcess) setStatusCode(statusCode string) error {
	if statusCode == "" {
		return errs.NewValueIsRequiredError("statusCode")
	}
	p.statusCode = statusCode
	return nil
}

func (p *OrderProcess) setTotalRuns(totalRuns int) error {
	if totalRuns <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalRuns",
			fmt.Errorf("%d is not greater than 0", totalRuns))
	}
	p.totalRuns = totalRuns
	return nil
}
