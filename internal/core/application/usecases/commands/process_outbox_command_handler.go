package commands

import (
	"context"
	"fmt"
	"log/slog"

	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"
)

// EventDispatcher routes a claimed outbox event to its handler. The handler
// runs inside the processor's transaction, so its writes commit atomically
// with the event's processed flag.
type EventDispatcher interface {
	Dispatch(ctx context.Context, uow ports.UnitOfWork, event *outbox.Event) error
}

// ProcessOutboxCommandHandler drains the outbox. One invocation claims a
// batch of unprocessed events with row locks, dispatches each, and marks the
// successful ones processed, all in a single transaction.
//
// Failures are isolated per event with savepoints: a handler error rolls the
// transaction back to the savepoint taken before that event, the failure is
// logged, and the remaining events still go through. The failed event keeps
// processed = false and is retried on a later poll. Events claimed by a
// competing processor instance are skipped, not waited on.
type ProcessOutboxCommandHandler struct {
	uowFactory UoWFactory
	dispatcher EventDispatcher
	batchSize  int
	logger     *slog.Logger
}

// NewProcessOutboxCommandHandler creates a handler that drains the outbox in
// batches of batchSize.
func NewProcessOutboxCommandHandler(
	uowFactory UoWFactory,
	dispatcher EventDispatcher,
	batchSize int,
	logger *slog.Logger,
) ProcessOutboxCommandHandler {
	return ProcessOutboxCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		batchSize:  batchSize,
		logger:     logger.With("component", "outbox_processor"),
	}
}

// Handle claims and processes one batch of outbox events.
func (h *ProcessOutboxCommandHandler) Handle(ctx context.Context) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	events, err := uow.OutboxRepository().ClaimUnprocessed(ctx, h.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return uow.Commit(ctx)
	}

	for i, event := range events {
		savepoint := fmt.Sprintf("outbox_event_%d", i)
		if err = uow.SavePoint(ctx, savepoint); err != nil {
			return err
		}

		if dispatchErr := h.dispatchOne(ctx, uow, event); dispatchErr != nil {
			h.logger.Error("event processing failed, will retry",
				"event_id", event.ID().String(),
				"event_type", event.EventType(),
				"error", dispatchErr)

			if err = uow.RollbackTo(ctx, savepoint); err != nil {
				return err
			}
		}
	}

	return uow.Commit(ctx)
}

func (h *ProcessOutboxCommandHandler) dispatchOne(
	ctx context.Context, uow ports.UnitOfWork, event *outbox.Event,
) error {
	if err := h.dispatcher.Dispatch(ctx, uow, event); err != nil {
		return err
	}

	return uow.OutboxRepository().MarkProcessed(ctx, event.ID())
}
