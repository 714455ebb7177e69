package commands

import (
	"errors"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
	"prodflow/internal/pkg/guard"
)

// ErrRequestRunTransitionCommandIsNotConstructed is returned when the command
// was not created via NewRequestRunTransitionCommand.
var ErrRequestRunTransitionCommandIsNotConstructed = errors.New(
	"RequestRunTransitionCommand must be created via NewRequestRunTransitionCommand constructor",
)

// RequestRunTransitionCommand represents a caller's request to advance a run
// in one of its two stages. The request is durable: handling it only appends
// a run.transition.requested event, and the outbox processor performs the
// actual transition asynchronously.
type RequestRunTransitionCommand struct { //nolint:recvcheck //using for validation
	runID        kernel.UUID
	stage        string
	toStatusCode string
	condCtx      map[string]any

	guard guard.ConstructorGuard
}

// NewRequestRunTransitionCommand creates a transition request for a run.
// toStatusCode may be empty, in which case the workflow engine auto-advances
// along the first enabled edge. condCtx supplies values for guard conditions.
func NewRequestRunTransitionCommand(
	runID kernel.UUID,
	stage, toStatusCode string,
	condCtx map[string]any,
) (RequestRunTransitionCommand, error) {
	command := RequestRunTransitionCommand{
		toStatusCode: toStatusCode,
		condCtx:      condCtx,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRunID(runID),
		command.setStage(stage),
	); err != nil {
		return RequestRunTransitionCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestRunTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestRunTransitionCommandIsNotConstructed)
}

// RunID returns the identifier of the run to advance.
func (c RequestRunTransitionCommand) RunID() kernel.UUID {
	return c.runID
}

// Stage returns which stage to advance: StageConfig or StageLifecycle.
func (c RequestRunTransitionCommand) Stage() string {
	return c.stage
}

// ToStatusCode returns the requested target status, or "" for auto-advance.
func (c RequestRunTransitionCommand) ToStatusCode() string {
	return c.toStatusCode
}

// ConditionContext returns the values guard conditions are evaluated against.
func (c RequestRunTransitionCommand) ConditionContext() map[string]any {
	return c.condCtx
}

func (c *RequestRunTransitionCommand) setRunID(runID kernel.UUID) error {
	if err := runID.Validate(); err != nil {
		return err
	}

	c.runID = runID
	return nil
}

func (c *RequestRunTransitionCommand) setStage(stage string) error {
	if stage != StageConfig && stage != StageLifecycle {
		return errs.NewValueIsInvalidError("stage")
	}

	c.stage = stage
	return nil
}
