package commands

import (
	"context"

	"prodflow/internal/core/domain/model/outbox"
)

// RequestRunTransitionCommandHandler durably records a transition request.
// It appends a run.transition.requested outbox event and nothing else; the
// outbox processor picks the event up and drives the transition through
// AdvanceRunCommandHandler.
type RequestRunTransitionCommandHandler struct {
	uowFactory OutboxUoWFactory
}

// NewRequestRunTransitionCommandHandler creates a handler for transition
// requests.
func NewRequestRunTransitionCommandHandler(uowFactory OutboxUoWFactory) RequestRunTransitionCommandHandler {
	return RequestRunTransitionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle appends the transition request to the outbox.
func (h *RequestRunTransitionCommandHandler) Handle(ctx context.Context, cmd RequestRunTransitionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	payload := map[string]any{
		"run_id": cmd.RunID().String(),
		"stage":  cmd.Stage(),
	}
	if cmd.ToStatusCode() != "" {
		payload["to_status"] = cmd.ToStatusCode()
	}
	if cmd.ConditionContext() != nil {
		payload["context"] = cmd.ConditionContext()
	}

	event, err := outbox.NewEvent(
		outbox.AggregateTypeProcessRun,
		cmd.RunID().String(),
		outbox.EventTypeRunTransitionRequested,
		payload,
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OutboxRepository().Add(ctx, event); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
