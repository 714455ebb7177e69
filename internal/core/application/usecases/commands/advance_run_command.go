package commands

import (
	"errors"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
	"prodflow/internal/pkg/guard"
)

// ErrAdvanceRunCommandIsNotConstructed is returned when the command was not
// created via NewAdvanceRunCommand.
var ErrAdvanceRunCommandIsNotConstructed = errors.New(
	"AdvanceRunCommand must be created via NewAdvanceRunCommand constructor",
)

// AdvanceRunCommand carries a validated transition request into the
// orchestrator. It is built from a run.transition.requested event payload.
type AdvanceRunCommand struct { //nolint:recvcheck //using for validation
	runID        kernel.UUID
	stage        string
	toStatusCode string
	condCtx      map[string]any

	guard guard.ConstructorGuard
}

// NewAdvanceRunCommand creates a command to advance a run in one stage.
func NewAdvanceRunCommand(
	runID kernel.UUID,
	stage, toStatusCode string,
	condCtx map[string]any,
) (AdvanceRunCommand, error) {
	command := AdvanceRunCommand{
		toStatusCode: toStatusCode,
		condCtx:      condCtx,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRunID(runID),
		command.setStage(stage),
	); err != nil {
		return AdvanceRunCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceRunCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceRunCommandIsNotConstructed)
}

// RunID returns the identifier of the run to advance.
func (c AdvanceRunCommand) RunID() kernel.UUID {
	return c.runID
}

// Stage returns which stage to advance: StageConfig or StageLifecycle.
func (c AdvanceRunCommand) Stage() string {
	return c.stage
}

// ToStatusCode returns the requested target status, or "" for auto-advance.
func (c AdvanceRunCommand) ToStatusCode() string {
	return c.toStatusCode
}

// ConditionContext returns the values guard conditions are evaluated against.
func (c AdvanceRunCommand) ConditionContext() map[string]any {
	return c.condCtx
}

func (c *AdvanceRunCommand) setRunID(runID kernel.UUID) error {
	if err := runID.Validate(); err != nil {
		return err
	}

	c.runID = runID
	return nil
}

func (c *AdvanceRunCommand) setStage(stage string) error {
	if stage != StageConfig && stage != StageLifecycle {
		return errs.NewValueIsInvalidError("stage")
	}

	c.stage = stage
	return nil
}
