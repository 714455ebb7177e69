package events

import (
	"context"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"
)

// RollupHandler reacts to rollup.boundary.crossed by advancing the parent
// aggregate named in the payload.
type RollupHandler struct {
	rollup commands.RollupCommandHandler
}

// NewRollupHandler creates a handler for rollup.boundary.crossed events.
func NewRollupHandler(rollup commands.RollupCommandHandler) *RollupHandler {
	return &RollupHandler{rollup: rollup}
}

// Handle processes one rollup.boundary.crossed event.
func (h *RollupHandler) Handle(ctx context.Context, uow ports.UnitOfWork, event *outbox.Event) error {
	payload := event.Payload()

	level, err := payloadString(payload, "level")
	if err != nil {
		return err
	}
	stage, err := payloadString(payload, "stage")
	if err != nil {
		return err
	}

	idKey := "process_id"
	if level == commands.LevelOrder {
		idKey = "order_id"
	}
	aggregateID, err := payloadUUID(payload, idKey)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRollupCommand(level, stage, aggregateID)
	if err != nil {
		return err
	}

	return h.rollup.HandleIn(ctx, uow, cmd)
}
