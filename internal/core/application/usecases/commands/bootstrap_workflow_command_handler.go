package commands

import (
	"context"
	"log/slog"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/core/ports"
)

// BootstrapWorkflowCommandHandler creates workflow definitions. The domain
// model enforces the structural invariants (one initial status, no edges out
// of terminal statuses, edges between known statuses); dead-end statuses are
// legal but logged, because an aggregate reaching one parks there forever.
type BootstrapWorkflowCommandHandler struct {
	uowFactory WorkflowUoWFactory
	logger     *slog.Logger
}

// NewBootstrapWorkflowCommandHandler creates a handler for workflow
// bootstrap.
func NewBootstrapWorkflowCommandHandler(
	uowFactory WorkflowUoWFactory,
	logger *slog.Logger,
) BootstrapWorkflowCommandHandler {
	return BootstrapWorkflowCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "bootstrap_workflow"),
	}
}

// Handle processes the command in its own transaction.
func (h *BootstrapWorkflowCommandHandler) Handle(ctx context.Context, cmd BootstrapWorkflowCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := h.handleWith(ctx, uow.WorkflowRepository(), cmd); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// HandleIn processes the command inside the caller's transaction.
func (h *BootstrapWorkflowCommandHandler) HandleIn(ctx context.Context, uow ports.UnitOfWork, cmd BootstrapWorkflowCommand) error {
	return h.handleWith(ctx, uow.WorkflowRepository(), cmd)
}

func (h *BootstrapWorkflowCommandHandler) handleWith(
	ctx context.Context, repo ports.WorkflowRepository, cmd BootstrapWorkflowCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	wf, err := h.assemble(cmd)
	if err != nil {
		return err
	}

	for _, deadEnd := range wf.DeadEndStatuses() {
		h.logger.Warn("workflow has a dead-end status",
			"workflow", wf.Code(),
			"status", deadEnd.Code())
	}

	return repo.Add(ctx, wf)
}

func (h *BootstrapWorkflowCommandHandler) assemble(cmd BootstrapWorkflowCommand) (*workflow.Type, error) {
	statuses := make([]workflow.Status, 0, len(cmd.Statuses()))
	for _, spec := range cmd.Statuses() {
		status, err := workflow.NewStatus(kernel.NewUUID(), spec.Code, spec.IsInitial, spec.IsTerminal)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	transitions := make([]workflow.Transition, 0, len(cmd.Transitions()))
	for _, spec := range cmd.Transitions() {
		transition, err := workflow.NewTransition(
			kernel.NewUUID(), spec.FromStatusCode, spec.ToStatusCode, spec.Condition)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, transition)
	}

	return workflow.NewType(kernel.NewUUID(), cmd.Code(), cmd.IsActive(), statuses, transitions)
}
