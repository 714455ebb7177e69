package commands

import (
	"context"
	"errors"
	"time"

	"prodflow/internal/core/domain/model/audit"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/core/domain/services"
	"prodflow/internal/core/ports"
)

// RollupCommandHandler advances a parent aggregate after a completion
// boundary below it was crossed. Guard conditions on PROCESS and ORDER
// transitions see the crossed stage under the key "stage", so one machine can
// route configuration completion and production completion to different
// statuses.
//
// Rollup events are delivered at least once and may arrive out of order: a
// lifecycle boundary can reach the handler while the config rollup for the
// same process sits in another worker's uncommitted batch. The handler stays
// idempotent without remembering deliveries: the parent transition is applied
// with a status compare-and-swap, and when no transition is enabled for the
// stage it consults the audit ledger. A stage edge already on record means a
// redelivery, a completed no-op; no record means the parent has not caught up
// yet, so the error is surfaced and the event stays unprocessed for retry.
type RollupCommandHandler struct {
	uowFactory UoWFactory
	engine     services.WorkflowEngine
	now        func() time.Time
}

// NewRollupCommandHandler creates a handler for rollup events.
func NewRollupCommandHandler(uowFactory UoWFactory) RollupCommandHandler {
	return RollupCommandHandler{
		uowFactory: uowFactory,
		engine:     services.NewWorkflowEngine(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes the command in its own transaction.
func (h *RollupCommandHandler) Handle(ctx context.Context, cmd RollupCommand) error {
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
func (h *RollupCommandHandler) HandleIn(ctx context.Context, uow ports.UnitOfWork, cmd RollupCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if cmd.Level() == LevelProcess {
		return h.advanceProcess(ctx, uow, cmd)
	}
	return h.advanceOrder(ctx, uow, cmd)
}

func (h *RollupCommandHandler) advanceProcess(ctx context.Context, uow ports.UnitOfWork, cmd RollupCommand) error {
	process, err := uow.ProcessRepository().Get(ctx, cmd.AggregateID())
	if err != nil {
		return err
	}

	wf, err := uow.WorkflowRepository().GetByCode(ctx, workflow.TypeCodeProcess)
	if err != nil {
		return err
	}

	decision, err := h.engine.Decide(wf, process.StatusCode(), "", map[string]any{"stage": cmd.Stage()})
	if err != nil {
		if errors.Is(err, workflow.ErrNoTransition) || errors.Is(err, workflow.ErrConditionFailed) {
			return h.resolveDisabledStage(ctx, uow, wf, process.ID().String(), cmd.Stage(), err)
		}
		return err
	}

	updated, err := uow.ProcessRepository().UpdateStatusCAS(
		ctx, process.ID(), process.StatusCode(), decision.ToStatusCode)
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}

	record, err := audit.NewTransitionRecord(
		wf.ID(), outbox.AggregateTypeOrderProcess, process.ID().String(),
		process.StatusCode(), decision.ToStatusCode, &decision.TransitionID,
		map[string]any{"stage": cmd.Stage()})
	if err != nil {
		return err
	}
	if err = uow.AuditRepository().Append(ctx, record); err != nil {
		return err
	}

	target, _ := wf.StatusByCode(decision.ToStatusCode)
	if target.IsTerminal() {
		return h.rollupToOrder(ctx, uow, process.OrderID(), cmd.Stage())
	}

	return nil
}

func (h *RollupCommandHandler) advanceOrder(ctx context.Context, uow ports.UnitOfWork, cmd RollupCommand) error {
	orderAggregate, err := uow.OrderRepository().Get(ctx, cmd.AggregateID())
	if err != nil {
		return err
	}

	wf, err := uow.WorkflowRepository().GetByCode(ctx, workflow.TypeCodeOrder)
	if err != nil {
		return err
	}

	decision, err := h.engine.Decide(wf, orderAggregate.StatusCode(), "", map[string]any{"stage": cmd.Stage()})
	if err != nil {
		if errors.Is(err, workflow.ErrNoTransition) || errors.Is(err, workflow.ErrConditionFailed) {
			return h.resolveDisabledStage(ctx, uow, wf, orderAggregate.ID().String(), cmd.Stage(), err)
		}
		return err
	}

	updated, err := uow.OrderRepository().UpdateStatusCAS(
		ctx, orderAggregate.ID(), orderAggregate.StatusCode(), decision.ToStatusCode)
	if err != nil {
		return err
	}
	if !updated {
		return nil
	}

	record, err := audit.NewTransitionRecord(
		wf.ID(), outbox.AggregateTypeOrder, orderAggregate.ID().String(),
		orderAggregate.StatusCode(), decision.ToStatusCode, &decision.TransitionID,
		map[string]any{"stage": cmd.Stage()})
	if err != nil {
		return err
	}

	return uow.AuditRepository().Append(ctx, record)
}

// resolveDisabledStage decides what to do when no transition is enabled for
// the crossed stage. The machine's edges for the stage are located by
// evaluating each guard with the edge's own source status; if one of them is
// already on the aggregate's audit ledger the event is a redelivery and a
// completed no-op. If none fired yet the aggregate has not caught up with an
// earlier boundary, so decideErr is surfaced and the event stays unprocessed
// until it has. A machine with no edge for the stage parks it deliberately,
// also a no-op.
func (h *RollupCommandHandler) resolveDisabledStage(
	ctx context.Context,
	uow ports.UnitOfWork,
	wf *workflow.Type,
	aggregateID, stage string,
	decideErr error,
) error {
	routed := false
	for _, transition := range wf.Transitions() {
		if transition.Condition() != "" {
			enabled, evalErr := workflow.Evaluate(transition.Condition(), map[string]any{
				"stage":  stage,
				"status": transition.FromStatusCode(),
			})
			if evalErr != nil || !enabled {
				continue
			}
		}
		routed = true

		applied, err := uow.AuditRepository().HasTransition(ctx, aggregateID, transition.ID())
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}

	if !routed {
		return nil
	}

	return decideErr
}

// rollupToOrder repeats the two-step rollup one level up: unconditional
// counter increment, then a conditional completion claim whose single winner
// appends the order-level rollup event.
func (h *RollupCommandHandler) rollupToOrder(
	ctx context.Context, uow ports.UnitOfWork, orderID kernel.UUID, stage string,
) error {
	orderRepo := uow.OrderRepository()

	if err := orderRepo.IncrementCompletedProcesses(ctx, orderID); err != nil {
		return err
	}

	won, err := orderRepo.ClaimCompletionBoundary(ctx, orderID, h.now())
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
			"stage":    stage,
			"order_id": orderID.String(),
		},
	)
	if err != nil {
		return err
	}

	return uow.OutboxRepository().Add(ctx, event)
}
