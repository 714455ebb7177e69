package workflow

import (
	"errors"
	"fmt"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
)

// Well-known workflow type codes. Run configuration statuses are governed by
// per-process-template workflow types created administratively, so their codes
// are not listed here.
const (
	TypeCodeOrder        = "ORDER"
	TypeCodeProcess      = "PROCESS"
	TypeCodeRunLifecycle = "RUN_LIFECYCLE"
)

var (
	// ErrInvalidWorkflowType is returned when a workflow type does not exist
	// or is not active.
	ErrInvalidWorkflowType = errors.New("workflow type is missing or inactive")

	// ErrInvalidState is returned when a status code does not belong to the
	// workflow type being consulted.
	ErrInvalidState = errors.New("status does not belong to workflow type")

	// ErrNoTransition is returned when no transition edge allows the requested
	// status change.
	ErrNoTransition = errors.New("no transition allows the requested status change")

	// ErrConditionFailed is returned when a matching transition exists but its
	// guard condition evaluated to false. Distinct from ErrNoTransition so
	// callers can surface a clearer message.
	ErrConditionFailed = errors.New("transition guard condition evaluated to false")

	// ErrTypeIsNotConstructed is returned when a Type instance was not created
	// through NewType or RestoreType.
	ErrTypeIsNotConstructed = errors.New("workflow Type must be created via NewType")
)

// Status is one state of a workflow type.
type Status struct {
	id         kernel.UUID
	code       string
	isInitial  bool
	isTerminal bool
}

// NewStatus creates a workflow status value.
func NewStatus(id kernel.UUID, code string, isInitial, isTerminal bool) (Status, error) {
	if err := id.Validate(); err != nil {
		return Status{}, err
	}
	if code == "" {
		return Status{}, errs.NewValueIsRequiredError("status code")
	}
	return Status{id: id, code: code, isInitial: isInitial, isTerminal: isTerminal}, nil
}

// ID returns the status identifier.
func (s Status) ID() kernel.UUID { return s.id }

// Code returns the status code.
func (s Status) Code() string { return s.code }

// IsInitial reports whether aggregates enter the machine at this status.
func (s Status) IsInitial() bool { return s.isInitial }

// IsTerminal reports whether this status ends the machine.
func (s Status) IsTerminal() bool { return s.isTerminal }

// Transition is a directed edge between two statuses of one workflow type.
// An empty condition means the edge is unconditionally enabled; otherwise the
// condition is a side-effect-free boolean expression evaluated against a
// context map (see Evaluate).
type Transition struct {
	id             kernel.UUID
	fromStatusCode string
	toStatusCode   string
	condition      string
}

// NewTransition creates a transition edge.
func NewTransition(id kernel.UUID, fromStatusCode, toStatusCode, condition string) (Transition, error) {
	if err := id.Validate(); err != nil {
		return Transition{}, err
	}
	if fromStatusCode == "" {
		return Transition{}, errs.NewValueIsRequiredError("transition from status")
	}
	if toStatusCode == "" {
		return Transition{}, errs.NewValueIsRequiredError("transition to status")
	}
	return Transition{
		id:             id,
		fromStatusCode: fromStatusCode,
		toStatusCode:   toStatusCode,
		condition:      condition,
	}, nil
}

// ID returns the transition identifier.
func (t Transition) ID() kernel.UUID { return t.id }

// FromStatusCode returns the source status code.
func (t Transition) FromStatusCode() string { return t.fromStatusCode }

// ToStatusCode returns the target status code.
func (t Transition) ToStatusCode() string { return t.toStatusCode }

// Condition returns the guard expression, or "" when unconditional.
func (t Transition) Condition() string { return t.condition }

// Type is a named, data-defined state machine. Statuses and transitions are
// loaded from storage rather than compiled into code, so new machines can be
// created administratively without redeployment.
//
// Invariants enforced at construction:
//   - the code is non-empty and unique per store (uniqueness is a storage concern)
//   - exactly one status is marked initial
//   - every transition references statuses that belong to the type
//   - no transition leaves a terminal status
//
// Transition order is significant: when several edges leave the same status,
// they are consulted in the order given here and the first enabled edge wins.
type Type struct {
	id            kernel.UUID
	code          string
	isActive      bool
	statuses      []Status
	transitions   []Transition
	isConstructed bool
}

// NewType creates a workflow type with full invariant validation.
func NewType(
	id kernel.UUID,
	code string,
	isActive bool,
	statuses []Status,
	transitions []Transition,
) (*Type, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errs.NewValueIsRequiredError("workflow type code")
	}
	if len(statuses) == 0 {
		return nil, errs.NewValueIsRequiredError("workflow statuses")
	}

	byCode := make(map[string]Status, len(statuses))
	initialCount := 0
	for _, s := range statuses {
		if _, exists := byCode[s.Code()]; exists {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"workflow statuses",
				fmt.Errorf("duplicate status code %q", s.Code()),
			)
		}
		byCode[s.Code()] = s
		if s.IsInitial() {
			initialCount++
		}
	}
	if initialCount != 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"workflow statuses",
			fmt.Errorf("exactly one initial status required, found %d", initialCount),
		)
	}

	for _, t := range transitions {
		from, ok := byCode[t.FromStatusCode()]
		if !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"workflow transitions",
				fmt.Errorf("transition from unknown status %q", t.FromStatusCode()),
			)
		}
		if _, ok = byCode[t.ToStatusCode()]; !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"workflow transitions",
				fmt.Errorf("transition to unknown status %q", t.ToStatusCode()),
			)
		}
		if from.IsTerminal() {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"workflow transitions",
				fmt.Errorf("transition out of terminal status %q", t.FromStatusCode()),
			)
		}
	}

	return &Type{
		id:            id,
		code:          code,
		isActive:      isActive,
		statuses:      statuses,
		transitions:   transitions,
		isConstructed: true,
	}, nil
}

// RestoreType reconstructs a workflow type from persistence. The same
// invariants apply; rows that no longer satisfy them fail rehydration rather
// than producing a machine with undefined behavior.
func RestoreType(
	id kernel.UUID,
	code string,
	isActive bool,
	statuses []Status,
	transitions []Transition,
) (*Type, error) {
	return NewType(id, code, isActive, statuses, transitions)
}

// Validate ensures the Type was created through NewType or RestoreType.
func (w *Type) Validate() error {
	if w == nil || !w.isConstructed {
		return ErrTypeIsNotConstructed
	}
	return nil
}

// ID returns the workflow type identifier.
func (w *Type) ID() kernel.UUID { return w.id }

// Code returns the unique workflow type code.
func (w *Type) Code() string { return w.code }

// IsActive reports whether the type may be used for transitions.
func (w *Type) IsActive() bool { return w.isActive }

// Statuses returns the statuses of the type in stored order.
func (w *Type) Statuses() []Status { return w.statuses }

// Transitions returns the transition edges of the type in stored order.
func (w *Type) Transitions() []Transition { return w.transitions }

// StatusByCode looks up a status by its code.
func (w *Type) StatusByCode(code string) (Status, bool) {
	for _, s := range w.statuses {
		if s.Code() == code {
			return s, true
		}
	}
	return Status{}, false
}

// InitialStatus returns the single status marked initial.
func (w *Type) InitialStatus() Status {
	for _, s := range w.statuses {
		if s.IsInitial() {
			return s
		}
	}
	// Unreachable for constructed types; NewType guarantees one initial.
	return Status{}
}

// TransitionsFrom returns all edges leaving the given status, in stored order.
func (w *Type) TransitionsFrom(fromStatusCode string) []Transition {
	var out []Transition
	for _, t := range w.transitions {
		if t.FromStatusCode() == fromStatusCode {
			out = append(out, t)
		}
	}
	return out
}

// TransitionsBetween returns all edges from one status to another, in stored order.
func (w *Type) TransitionsBetween(fromStatusCode, toStatusCode string) []Transition {
	var out []Transition
	for _, t := range w.transitions {
		if t.FromStatusCode() == fromStatusCode && t.ToStatusCode() == toStatusCode {
			out = append(out, t)
		}
	}
	return out
}

// DeadEndStatuses returns non-terminal statuses with no outgoing transition.
// Such statuses park an aggregate forever. They are reported rather than
// rejected because administratively seeded machines may use them on purpose;
// callers decide whether to warn.
func (w *Type) DeadEndStatuses() []Status {
	var out []Status
	for _, s := range w.statuses {
		if s.IsTerminal() {
			continue
		}
		if len(w.TransitionsFrom(s.Code())) == 0 {
			out = append(out, s)
		}
	}
	return out
}
