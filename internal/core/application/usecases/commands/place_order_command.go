package commands

import (
	"errors"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
	"prodflow/internal/pkg/guard"
)

// ErrPlaceOrderCommandIsNotConstructed is returned when a PlaceOrderCommand
// was not created via NewPlaceOrderCommand.
var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// ProcessSpec describes one production process of a new order: the workflow
// type governing its runs' configuration statuses, and how many runs it
// decomposes into.
type ProcessSpec struct {
	WorkflowTypeCode string
	TotalRuns        int
}

// PlaceOrderCommand represents a request to create a new production order
// with its full process/run hierarchy.
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	processes []ProcessSpec

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a command to place a new production order.
// The order must decompose into at least one process, and every process into
// at least one run.
func NewPlaceOrderCommand(orderID kernel.UUID, processes []ProcessSpec) (PlaceOrderCommand, error) {
	command := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setProcesses(processes),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// OrderID returns the identifier for the new order.
func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Processes returns the process specifications of the order.
func (c PlaceOrderCommand) Processes() []ProcessSpec {
	return c.processes
}

func (c *PlaceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *PlaceOrderCommand) setProcesses(processes []ProcessSpec) error {
	if len(processes) == 0 {
		return errs.NewValueIsRequiredError("processes")
	}

	for _, spec := range processes {
		if spec.WorkflowTypeCode == "" {
			return errs.NewValueIsRequiredError("process workflow type code")
		}
		if spec.TotalRuns <= 0 {
			return errs.NewValueIsInvalidError("process total runs")
		}
	}

	c.processes = processes
	return nil
}
