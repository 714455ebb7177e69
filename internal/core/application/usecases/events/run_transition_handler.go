package events

import (
	"context"
	"errors"
	"log/slog"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"
)

// RunTransitionHandler reacts to run.transition.requested by advancing the
// run through AdvanceRunCommandHandler. A stale write means a concurrent
// request won the race for this run; the losing request is logged and
// dropped rather than retried, because retrying it against the new status
// would apply a transition nobody asked for.
type RunTransitionHandler struct {
	advance commands.AdvanceRunCommandHandler
	logger  *slog.Logger
}

// NewRunTransitionHandler creates a handler for run.transition.requested
// events.
func NewRunTransitionHandler(advance commands.AdvanceRunCommandHandler, logger *slog.Logger) *RunTransitionHandler {
	return &RunTransitionHandler{
		advance: advance,
		logger:  logger.With("component", "run_transition_handler"),
	}
}

// Handle processes one run.transition.requested event.
func (h *RunTransitionHandler) Handle(ctx context.Context, uow ports.UnitOfWork, event *outbox.Event) error {
	payload := event.Payload()

	runID, err := payloadUUID(payload, "run_id")
	if err != nil {
		return err
	}
	stage, err := payloadString(payload, "stage")
	if err != nil {
		return err
	}

	toStatus := ""
	if raw, ok := payload["to_status"].(string); ok {
		toStatus = raw
	}

	var condCtx map[string]any
	if raw, ok := payload["context"].(map[string]any); ok {
		condCtx = raw
	}

	cmd, err := commands.NewAdvanceRunCommand(runID, stage, toStatus, condCtx)
	if err != nil {
		return err
	}

	if err = h.advance.HandleIn(ctx, uow, cmd); err != nil {
		if errors.Is(err, commands.ErrStaleWrite) {
			h.logger.Info("transition lost the race, dropping request",
				"run_id", runID.String(),
				"stage", stage)
			return nil
		}
		return err
	}

	return nil
}
