package commands

import (
	"context"

	"prodflow/internal/core/domain/model/audit"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/core/ports"
)

// PlaceOrderCommandHandler creates a production order with its full
// process/run hierarchy. Every aggregate starts at the initial status of its
// governing workflow type, creation entries are written to the audit ledger,
// and an order.created event is appended to the outbox, all in one
// transaction.
type PlaceOrderCommandHandler struct {
	uowFactory UoWFactory
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
func NewPlaceOrderCommandHandler(uowFactory UoWFactory) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order placement command.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	workflowRepo := uow.WorkflowRepository()

	orderWf, err := workflowRepo.GetByCode(ctx, workflow.TypeCodeOrder)
	if err != nil {
		return err
	}
	processWf, err := workflowRepo.GetByCode(ctx, workflow.TypeCodeProcess)
	if err != nil {
		return err
	}
	lifecycleWf, err := workflowRepo.GetByCode(ctx, workflow.TypeCodeRunLifecycle)
	if err != nil {
		return err
	}

	newOrder, err := order.NewOrder(cmd.OrderID(), orderWf.InitialStatus().Code(), len(cmd.Processes()))
	if err != nil {
		return err
	}
	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}
	if err = h.auditCreation(ctx, uow, orderWf.ID(),
		outbox.AggregateTypeOrder, newOrder.ID().String(), newOrder.StatusCode()); err != nil {
		return err
	}

	for _, spec := range cmd.Processes() {
		templateWf, wfErr := workflowRepo.GetByCode(ctx, spec.WorkflowTypeCode)
		if wfErr != nil {
			return wfErr
		}

		if err = h.addProcess(ctx, uow, newOrder.ID(), spec, processWf, templateWf, lifecycleWf); err != nil {
			return err
		}
	}

	event, err := outbox.NewEvent(
		outbox.AggregateTypeOrder,
		newOrder.ID().String(),
		outbox.EventTypeOrderCreated,
		map[string]any{
			"order_id":        newOrder.ID().String(),
			"total_processes": len(cmd.Processes()),
		},
	)
	if err != nil {
		return err
	}
	if err = uow.OutboxRepository().Add(ctx, event); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *PlaceOrderCommandHandler) addProcess(
	ctx context.Context,
	uow ports.UnitOfWork,
	orderID kernel.UUID,
	spec ProcessSpec,
	processWf, templateWf, lifecycleWf *workflow.Type,
) error {
	process, err := order.NewOrderProcess(
		kernel.NewUUID(), orderID, templateWf.ID(),
		processWf.InitialStatus().Code(), spec.TotalRuns)
	if err != nil {
		return err
	}
	if err = uow.ProcessRepository().Add(ctx, process); err != nil {
		return err
	}
	if err = h.auditCreation(ctx, uow, processWf.ID(),
		outbox.AggregateTypeOrderProcess, process.ID().String(), process.StatusCode()); err != nil {
		return err
	}

	for i := 0; i < spec.TotalRuns; i++ {
		run, runErr := order.NewProcessRun(
			kernel.NewUUID(), process.ID(),
			templateWf.InitialStatus().Code(), lifecycleWf.InitialStatus().Code())
		if runErr != nil {
			return runErr
		}
		if err = uow.RunRepository().Add(ctx, run); err != nil {
			return err
		}
		if err = h.auditCreation(ctx, uow, templateWf.ID(),
			outbox.AggregateTypeProcessRun, run.ID().String(), run.StatusCode()); err != nil {
			return err
		}
	}

	return nil
}

// auditCreation appends a creation ledger entry: no source status, no
// transition edge.
func (h *PlaceOrderCommandHandler) auditCreation(
	ctx context.Context,
	uow ports.UnitOfWork,
	workflowTypeID kernel.UUID,
	aggregateType, aggregateID, toStatus string,
) error {
	record, err := audit.NewTransitionRecord(
		workflowTypeID, aggregateType, aggregateID, "", toStatus, nil, nil)
	if err != nil {
		return err
	}
	return uow.AuditRepository().Append(ctx, record)
}
