package commands

import (
	"errors"

	"prodflow/internal/pkg/errs"
	"prodflow/internal/pkg/guard"
)

// ErrBootstrapWorkflowCommandIsNotConstructed is returned when the command
// was not created via NewBootstrapWorkflowCommand.
var ErrBootstrapWorkflowCommandIsNotConstructed = errors.New(
	"BootstrapWorkflowCommand must be created via NewBootstrapWorkflowCommand constructor",
)

// StatusSpec describes one status of a workflow definition to create.
type StatusSpec struct {
	Code       string
	IsInitial  bool
	IsTerminal bool
}

// TransitionSpec describes one transition edge of a workflow definition to
// create. Order is significant: the engine consults edges in this order.
type TransitionSpec struct {
	FromStatusCode string
	ToStatusCode   string
	Condition      string
}

// BootstrapWorkflowCommand represents a request to create a workflow
// definition. Structural validation happens in the workflow domain model when
// the handler assembles the type; the command only rejects obviously empty
// input.
type BootstrapWorkflowCommand struct { //nolint:recvcheck //using for validation
	code        string
	isActive    bool
	statuses    []StatusSpec
	transitions []TransitionSpec

	guard guard.ConstructorGuard
}

// NewBootstrapWorkflowCommand creates a command to bootstrap a workflow
// definition.
func NewBootstrapWorkflowCommand(
	code string,
	isActive bool,
	statuses []StatusSpec,
	transitions []TransitionSpec,
) (BootstrapWorkflowCommand, error) {
	command := BootstrapWorkflowCommand{
		isActive:    isActive,
		transitions: transitions,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCode(code),
		command.setStatuses(statuses),
	); err != nil {
		return BootstrapWorkflowCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c BootstrapWorkflowCommand) Validate() error {
	return c.guard.Validate(ErrBootstrapWorkflowCommandIsNotConstructed)
}

// Code returns the unique workflow type code.
func (c BootstrapWorkflowCommand) Code() string {
	return c.code
}

// IsActive returns whether the new type may be used for transitions.
func (c BootstrapWorkflowCommand) IsActive() bool {
	return c.isActive
}

// Statuses returns the status specifications in stored order.
func (c BootstrapWorkflowCommand) Statuses() []StatusSpec {
	return c.statuses
}

// Transitions returns the transition specifications in stored order.
func (c BootstrapWorkflowCommand) Transitions() []TransitionSpec {
	return c.transitions
}

func (c *BootstrapWorkflowCommand) setCode(code string) error {
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}

	c.code = code
	return nil
}

func (c *BootstrapWorkflowCommand) setStatuses(statuses []StatusSpec) error {
	if len(statuses) == 0 {
		return errs.NewValueIsRequiredError("statuses")
	}

	c.statuses = statuses
	return nil
}
