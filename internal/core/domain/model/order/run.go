package order

import (
	"errors"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
)

// ErrRunIsNotConstructed is returned when a ProcessRun was not created
// through NewProcessRun or RestoreProcessRun.
var ErrRunIsNotConstructed = errors.New("ProcessRun must be created via NewProcessRun constructor")

// ProcessRun is the leaf of the hierarchy: one run of a production process.
// It carries two independent status codes: the configuration status governed
// by the process's template workflow, and the lifecycle status governed by
// the RUN_LIFECYCLE workflow.
//
// statusVersion is the optimistic-concurrency counter for configuration
// transitions: every applied transition increments it, and a writer whose
// expected version no longer matches has lost the race and must not cascade.
type ProcessRun struct {
	id                  kernel.UUID
	processID           kernel.UUID
	statusCode          string
	lifecycleStatusCode string
	statusVersion       int
	isConstructed       bool
}

// NewProcessRun creates a run at the given initial statuses with version zero.
func NewProcessRun(id, processID kernel.UUID, statusCode, lifecycleStatusCode string) (*ProcessRun, error) {
	run := &ProcessRun{isConstructed: true}

	if err := errors.Join(
		run.setID(id),
		run.setProcessID(processID),
		run.setStatusCode(statusCode),
		run.setLifecycleStatusCode(lifecycleStatusCode),
	); err != nil {
		return nil, err
	}

	return run, nil
}

// RestoreProcessRun reconstructs a run from persistence.
func RestoreProcessRun(
	id, processID kernel.UUID,
	statusCode, lifecycleStatusCode string,
	statusVersion int,
) (*ProcessRun, error) {
	run, err := NewProcessRun(id, processID, statusCode, lifecycleStatusCode)
	if err != nil {
		return nil, err
	}

	if statusVersion < 0 {
		return nil, errs.NewValueIsInvalidError("statusVersion")
	}

	run.statusVersion = statusVersion
	return run, nil
}

// Validate ensures the ProcessRun was properly constructed.
func (r *ProcessRun) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRunIsNotConstructed
	}
	return nil
}

// ID returns the run identifier.
func (r *ProcessRun) ID() kernel.UUID { return r.id }

// ProcessID returns the identifier of the owning process.
func (r *ProcessRun) ProcessID() kernel.UUID { return r.processID }

// StatusCode returns the current configuration status code.
func (r *ProcessRun) StatusCode() string { return r.statusCode }

// LifecycleStatusCode returns the current lifecycle status code.
func (r *ProcessRun) LifecycleStatusCode() string { return r.lifecycleStatusCode }

// StatusVersion returns the optimistic-concurrency counter for configuration
// transitions.
func (r *ProcessRun) StatusVersion() int { return r.statusVersion }

// ApplyStatus records a configuration transition decided by the engine and
// bumps the version. It mirrors the conditional update performed by the
// repository so the in-memory aggregate stays consistent after a successful
// compare-and-swap.
func (r *ProcessRun) ApplyStatus(statusCode string) error {
	if err := r.setStatusCode(statusCode); err != nil {
		return err
	}
	r.statusVersion++
	return nil
}

// ApplyLifecycleStatus records a lifecycle transition decided by the engine.
func (r *ProcessRun) ApplyLifecycleStatus(statusCode string) error {
	return r.setLifecycleStatusCode(statusCode)
}

func (r *ProcessRun) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *ProcessRun) setProcessID(processID kernel.UUID) error {
	if err := processID.Validate(); err != nil {
		return err
	}
	r.processID = processID
	return nil
}

func (r *ProcessRun) setStatusCode(statusCode string) error {
	if statusCode == "" {
		return errs.NewValueIsRequiredError("statusCode")
	}
	r.statusCode = statusCode
	return nil
}

func (r *ProcessRun) setLifecycleStatusCode(lifecycleStatusCode string) error {
	if lifecycleStatusCode == "" {
		return errs.NewValueIsRequiredError("lifecycleStatusCode")
	}
	r.lifecycleStatusCode = lifecycleStatusCode
	return nil
}
