// Package audit models the append-only transition ledger. Every workflow
// transition actually applied by the orchestrator is recorded here; records
// are never updated or deleted; nothing reads them at runtime.
package audit

import (
	"errors"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
)

// ErrRecordIsNotConstructed is returned when a TransitionRecord was not
// created through NewTransitionRecord or RestoreTransitionRecord.
var ErrRecordIsNotConstructed = errors.New("TransitionRecord must be created via NewTransitionRecord constructor")

// TransitionRecord is one immutable audit entry: which aggregate moved from
// which status to which, under which workflow type, through which transition.
// FromStatus is empty for creation entries (an aggregate entering its initial
// status). TransitionID is nil for creation entries as well.
type TransitionRecord struct {
	id             kernel.UUID
	workflowTypeID kernel.UUID
	aggregateType  string
	aggregateID    string
	fromStatus     string
	toStatus       string
	transitionID   *kernel.UUID
	payload        map[string]any
	createdAt      time.Time
	isConstructed  bool
}

// NewTransitionRecord creates an audit record with a fresh identifier and
// creation timestamp.
func NewTransitionRecord(
	workflowTypeID kernel.UUID,
	aggregateType, aggregateID, fromStatus, toStatus string,
	transitionID *kernel.UUID,
	payload map[string]any,
) (*TransitionRecord, error) {
	if err := workflowTypeID.Validate(); err != nil {
		return nil, err
	}
	if aggregateType == "" {
		return nil, errs.NewValueIsRequiredError("aggregateType")
	}
	if aggregateID == "" {
		return nil, errs.NewValueIsRequiredError("aggregateID")
	}
	if toStatus == "" {
		return nil, errs.NewValueIsRequiredError("toStatus")
	}
	if transitionID != nil {
		if err := transitionID.Validate(); err != nil {
			return nil, err
		}
	}

	return &TransitionRecord{
		id:             kernel.NewUUID(),
		workflowTypeID: workflowTypeID,
		aggregateType:  aggregateType,
		aggregateID:    aggregateID,
		fromStatus:     fromStatus,
		toStatus:       toStatus,
		transitionID:   transitionID,
		payload:        payload,
		createdAt:      time.Now().UTC(),
		isConstructed:  true,
	}, nil
}

// RestoreTransitionRecord reconstructs a record from persistence.
func RestoreTransitionRecord(
	id, workflowTypeID kernel.UUID,
	aggregateType, aggregateID, fromStatus, toStatus string,
	transitionID *kernel.UUID,
	payload map[string]any,
	createdAt time.Time,
) (*TransitionRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	record, err := NewTransitionRecord(
		workflowTypeID, aggregateType, aggregateID, fromStatus, toStatus, transitionID, payload)
	if err != nil {
		return nil, err
	}

	record.id = id
	record.createdAt = createdAt
	return record, nil
}

// Validate ensures the TransitionRecord was properly constructed.
func (r *TransitionRecord) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRecordIsNotConstructed
	}
	return nil
}

// ID returns the record identifier.
func (r *TransitionRecord) ID() kernel.UUID { return r.id }

// WorkflowTypeID returns the workflow type the transition belongs to.
func (r *TransitionRecord) WorkflowTypeID() kernel.UUID { return r.workflowTypeID }

// AggregateType returns the hierarchy level of the aggregate.
func (r *TransitionRecord) AggregateType() string { return r.aggregateType }

// AggregateID returns the identifier of the transitioned aggregate.
func (r *TransitionRecord) AggregateID() string { return r.aggregateID }

// FromStatus returns the source status, empty for creation entries.
func (r *TransitionRecord) FromStatus() string { return r.fromStatus }

// ToStatus returns the target status.
func (r *TransitionRecord) ToStatus() string { return r.toStatus }

// TransitionID returns the transition edge taken, nil for creation entries.
func (r *TransitionRecord) TransitionID() *kernel.UUID { return r.transitionID }

// Payload returns the context the transition was decided with, or nil.
func (r *TransitionRecord) Payload() map[string]any { return r.payload }

// CreatedAt returns when the transition was applied.
func (r *TransitionRecord) CreatedAt() time.Time { return r.createdAt }
