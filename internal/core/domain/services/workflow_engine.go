package services

import (
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/workflow"
)

// Decision is the outcome of a transition request: the status the aggregate
// should move to and the transition edge that allowed it. The engine only
// decides; writing the new status is the caller's job.
type Decision struct {
	ToStatusCode string
	TransitionID kernel.UUID
}

// WorkflowEngine is a domain service that validates and computes status
// transitions against a data-defined workflow type. It is pure: it never
// loads or writes state, so handlers can call it inside any transaction.
//
// Two request shapes are supported:
//   - explicit target: toStatusCode names the desired status, and an edge
//     from the current status to that target must exist and be enabled
//   - auto-advance: toStatusCode is empty, and the first enabled edge
//     leaving the current status wins, in stored order
//
// A transition is enabled when its guard condition is empty or evaluates to
// true against the given context. The current status is always available to
// guards under the key "status".
type WorkflowEngine struct{}

// NewWorkflowEngine creates a new WorkflowEngine instance.
func NewWorkflowEngine() WorkflowEngine {
	return WorkflowEngine{}
}

// Decide validates a transition request and returns the decision.
//
// Errors:
//   - workflow.ErrInvalidWorkflowType: wf is nil, unconstructed, or inactive
//   - workflow.ErrInvalidState: fromStatusCode or a non-empty toStatusCode
//     does not belong to wf
//   - workflow.ErrNoTransition: no edge matches the request
//   - workflow.ErrConditionInvalid: a guard could not be evaluated; the
//     request fails rather than falling through to the next edge
//   - workflow.ErrConditionFailed: matching edges exist but every guard
//     evaluated to false
func (e WorkflowEngine) Decide(
	wf *workflow.Type,
	fromStatusCode, toStatusCode string,
	condCtx map[string]any,
) (Decision, error) {
	if wf.Validate() != nil || !wf.IsActive() {
		return Decision{}, workflow.ErrInvalidWorkflowType
	}
	if _, ok := wf.StatusByCode(fromStatusCode); !ok {
		return Decision{}, workflow.ErrInvalidState
	}

	var candidates []workflow.Transition
	if toStatusCode == "" {
		candidates = wf.TransitionsFrom(fromStatusCode)
	} else {
		if _, ok := wf.StatusByCode(toStatusCode); !ok {
			return Decision{}, workflow.ErrInvalidState
		}
		candidates = wf.TransitionsBetween(fromStatusCode, toStatusCode)
	}
	if len(candidates) == 0 {
		return Decision{}, workflow.ErrNoTransition
	}

	guardCtx := make(map[string]any, len(condCtx)+1)
	for k, v := range condCtx {
		guardCtx[k] = v
	}
	guardCtx["status"] = fromStatusCode

	for _, t := range candidates {
		if t.Condition() == "" {
			return Decision{ToStatusCode: t.ToStatusCode(), TransitionID: t.ID()}, nil
		}

		enabled, err := workflow.Evaluate(t.Condition(), guardCtx)
		if err != nil {
			return Decision{}, err
		}
		if enabled {
			return Decision{ToStatusCode: t.ToStatusCode(), TransitionID: t.ID()}, nil
		}
	}

	return Decision{}, workflow.ErrConditionFailed
}
