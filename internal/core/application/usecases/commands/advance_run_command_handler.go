package commands

import (
	"context"
	"time"

	"prodflow/internal/core/domain/model/audit"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/core/domain/services"
	"prodflow/internal/core/ports"
)

// AdvanceRunCommandHandler is the heart of the orchestrator: it applies one
// validated workflow transition to a run and cascades completion upward.
//
// The write path is built on conditional updates rather than locks:
//
//   - configuration transitions go through a versioned compare-and-swap; a
//     writer holding a stale version gets ErrStaleWrite and must not cascade
//   - lifecycle transitions compare-and-swap on the current status code, so a
//     redelivered event affects zero rows and is equally harmless
//   - when a run reaches a terminal status of its stage, the parent process
//     counter is incremented unconditionally and the completion boundary is
//     claimed conditionally; exactly one writer wins the claim and appends
//     the rollup.boundary.crossed event that advances the parent
//
// HandleIn runs inside the outbox processor's transaction. Handle wraps it in
// a transaction of its own for direct invocation.
type AdvanceRunCommandHandler struct {
	uowFactory UoWFactory
	engine     services.WorkflowEngine
	now        func() time.Time
}

// NewAdvanceRunCommandHandler creates a handler for run transitions.
func NewAdvanceRunCommandHandler(uowFactory UoWFactory) AdvanceRunCommandHandler {
	return AdvanceRunCommandHandler{
		uowFactory: uowFactory,
		engine:     services.NewWorkflowEngine(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes the command in its own transaction.
func (h *AdvanceRunCommandHandler) Handle(ctx context.Context, cmd AdvanceRunCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := h.HandleIn(ctx, uow, cmd); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// HandleIn processes the command inside the caller's transaction.
func (h *AdvanceRunCommandHandler) HandleIn(ctx context.Context, uow ports.UnitOfWork, cmd AdvanceRunCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	run, err := uow.RunRepository().Get(ctx, cmd.RunID())
	if err != nil {
		return err
	}
	process, err := uow.ProcessRepository().Get(ctx, run.ProcessID())
	if err != nil {
		return err
	}

	wf, fromStatus, err := h.stageWorkflow(ctx, uow, run, process, cmd.Stage())
	if err != nil {
		return err
	}

	decision, err := h.engine.Decide(wf, fromStatus, cmd.ToStatusCode(), cmd.ConditionContext())
	if err != nil {
		return err
	}

	if err = h.applyTransition(ctx, uow, run, fromStatus, decision, cmd.Stage()); err != nil {
		return err
	}

	record, err := audit.NewTransitionRecord(
		wf.ID(), outbox.AggregateTypeProcessRun, run.ID().String(),
		fromStatus, decision.ToStatusCode, &decision.TransitionID, cmd.ConditionContext())
	if err != nil {
		return err
	}
	if err = uow.AuditRepository().Append(ctx, record); err != nil {
		return err
	}

	// The first run leaving the lifecycle's initial status starts the
	// order's production clock, once.
	if cmd.Stage() == StageLifecycle && fromStatus == wf.InitialStatus().Code() {
		if err = h.claimLifecycleStart(ctx, uow, process.OrderID()); err != nil {
			return err
		}
	}

	target, _ := wf.StatusByCode(decision.ToStatusCode)
	if target.IsTerminal() {
		return h.rollupToProcess(ctx, uow, process.ID(), cmd.Stage())
	}

	return nil
}

// stageWorkflow resolves which machine governs the requested stage: the
// process's template workflow for configuration, the shared RUN_LIFECYCLE
// workflow for production.
func (h *AdvanceRunCommandHandler) stageWorkflow(
	ctx context.Context,
	uow ports.UnitOfWork,
	run *order.ProcessRun,
	process *order.OrderProcess,
	stage string,
) (*workflow.Type, string, error) {
	if stage == StageConfig {
		wf, err := uow.WorkflowRepository().GetByID(ctx, process.WorkflowTypeID())
		if err != nil {
			return nil, "", err
		}
		return wf, run.StatusCode(), nil
	}

	wf, err := uow.WorkflowRepository().GetByCode(ctx, workflow.TypeCodeRunLifecycle)
	if err != nil {
		return nil, "", err
	}
	return wf, run.LifecycleStatusCode(), nil
}

func (h *AdvanceRunCommandHandler) applyTransition(
	ctx context.Context,
	uow ports.UnitOfWork,
	run *order.ProcessRun,
	fromStatus string,
	decision services.Decision,
	stage string,
) error {
	var (
		updated bool
		err     error
	)

	if stage == StageConfig {
		updated, err = uow.RunRepository().UpdateStatusVersioned(
			ctx, run.ID(), decision.ToStatusCode, run.StatusVersion())
	} else {
		updated, err = uow.RunRepository().UpdateLifecycleStatusCAS(
			ctx, run.ID(), fromStatus, decision.ToStatusCode)
	}
	if err != nil {
		return err
	}
	if !updated {
		return ErrStaleWrite
	}

	return nil
}

// claimLifecycleStart flips the order's lifecycleStartedAt from null, and on
// a win appends the order-level rollup event that fires the order's first
// lifecycle transition.
func (h *AdvanceRunCommandHandler) claimLifecycleStart(
	ctx context.Context, uow ports.UnitOfWork, orderID kernel.UUID,
) error {
	won, err := uow.OrderRepository().ClaimLifecycleStart(ctx, orderID, h.now())
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	event, err := outbox.NewEvent(
		outbox.AggregateTypeOrder,
		orderID.String(),
		outbox.EventTypeRollupBoundaryCrossed,
		map[string]any{
			"level":    LevelOrder,
			"stage":    StageLifecycleStart,
			"order_id": orderID.String(),
		},
	)
	if err != nil {
		return err
	}

	return uow.OutboxRepository().Add(ctx, event)
}

// rollupToProcess performs the two-step completion rollup: an unconditional
// counter increment followed by a conditional boundary claim. The single
// claim winner appends the rollup event; losers do nothing.
func (h *AdvanceRunCommandHandler) rollupToProcess(
	ctx context.Context, uow ports.UnitOfWork, processID kernel.UUID, stage string,
) error {
	processRepo := uow.ProcessRepository()

	var (
		won bool
		err error
	)
	if stage == StageConfig {
		if err = processRepo.IncrementConfigCompleted(ctx, processID); err != nil {
			return err
		}
		won, err = processRepo.ClaimConfigBoundary(ctx, processID, h.now())
	} else {
		if err = processRepo.IncrementLifecycleCompleted(ctx, processID); err != nil {
			return err
		}
		won, err = processRepo.ClaimLifecycleBoundary(ctx, processID, h.now())
	}
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	event, err := outbox.NewEvent(
		outbox.AggregateTypeOrderProcess,
		processID.String(),
		outbox.EventTypeRollupBoundaryCrossed,
		map[string]any{
			"level":      LevelProcess,
			"stage":      stage,
			"process_id": processID.String(),
		},
	)
	if err != nil {
		return err
	}

	return uow.OutboxRepository().Add(ctx, event)
}
