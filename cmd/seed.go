package cmd

import (
	"context"
	"errors"
	"fmt"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/core/ports"
	"prodflow/internal/pkg/errs"
)

// builtinWorkflowCommands returns the three machines the orchestrator itself
// depends on. Per-process-template RUN machines are created administratively
// through workflow.bootstrap.requested events instead.
//
// PROCESS and ORDER guards read the crossed stage from the rollup context, so
// a configuration boundary and a production boundary advance the parent to
// different statuses through one machine.
func builtinWorkflowCommands() ([]commands.BootstrapWorkflowCommand, error) {
	orderMachine, err := commands.NewBootstrapWorkflowCommand(
		workflow.TypeCodeOrder, true,
		[]commands.StatusSpec{
			{Code: "CREATED", IsInitial: true},
			{Code: "ACTIVE"},
			{Code: "IN_PRODUCTION"},
			{Code: "COMPLETE", IsTerminal: true},
		},
		[]commands.TransitionSpec{
			{FromStatusCode: "CREATED", ToStatusCode: "ACTIVE", Condition: "stage == 'created'"},
			{FromStatusCode: "ACTIVE", ToStatusCode: "IN_PRODUCTION", Condition: "stage == 'lifecycle_start'"},
			{FromStatusCode: "IN_PRODUCTION", ToStatusCode: "COMPLETE", Condition: "stage == 'lifecycle'"},
		},
	)
	if err != nil {
		return nil, err
	}

	processMachine, err := commands.NewBootstrapWorkflowCommand(
		workflow.TypeCodeProcess, true,
		[]commands.StatusSpec{
			{Code: "PENDING", IsInitial: true},
			{Code: "CONFIGURED"},
			{Code: "COMPLETE", IsTerminal: true},
		},
		[]commands.TransitionSpec{
			{FromStatusCode: "PENDING", ToStatusCode: "CONFIGURED", Condition: "stage == 'config'"},
			{FromStatusCode: "CONFIGURED", ToStatusCode: "COMPLETE", Condition: "stage == 'lifecycle'"},
		},
	)
	if err != nil {
		return nil, err
	}

	lifecycleMachine, err := commands.NewBootstrapWorkflowCommand(
		workflow.TypeCodeRunLifecycle, true,
		[]commands.StatusSpec{
			{Code: "PENDING", IsInitial: true},
			{Code: "IN_PRODUCTION"},
			{Code: "PRODUCED", IsTerminal: true},
		},
		[]commands.TransitionSpec{
			{FromStatusCode: "PENDING", ToStatusCode: "IN_PRODUCTION"},
			{FromStatusCode: "IN_PRODUCTION", ToStatusCode: "PRODUCED"},
		},
	)
	if err != nil {
		return nil, err
	}

	return []commands.BootstrapWorkflowCommand{orderMachine, processMachine, lifecycleMachine}, nil
}

// SeedBuiltinWorkflows creates the built-in workflow definitions unless they
// already exist. Safe to run on every startup and alongside other instances
// starting at the same time.
func (c *CompositionRoot) SeedBuiltinWorkflows(ctx context.Context) error {
	seeds, err := builtinWorkflowCommands()
	if err != nil {
		return err
	}

	uow := c.uowFactory.Create()
	handler := c.CreateBootstrapWorkflowCommandHandler()

	return seedWorkflows(ctx, uow.WorkflowRepository(), handler.Handle, seeds)
}

// seedWorkflows inserts each seed whose code is not taken yet. The existence
// check and the insert run in separate transactions, so a concurrent instance
// can win the unique-code race in between; a failed insert whose code exists
// afterwards is treated as already seeded.
func seedWorkflows(
	ctx context.Context,
	repo ports.WorkflowRepository,
	apply func(context.Context, commands.BootstrapWorkflowCommand) error,
	seeds []commands.BootstrapWorkflowCommand,
) error {
	for _, seed := range seeds {
		_, err := repo.GetByCode(ctx, seed.Code())
		if err == nil {
			continue
		}
		if !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}

		if err = apply(ctx, seed); err != nil {
			if _, checkErr := repo.GetByCode(ctx, seed.Code()); checkErr == nil {
				continue
			}
			return fmt.Errorf("failed to seed workflow %s: %w", seed.Code(), err)
		}
	}

	return nil
}
