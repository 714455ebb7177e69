package events

import (
	"context"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"
)

// OrderCreatedHandler reacts to order.created by firing the order's
// activation transition. The hierarchy rows already exist, the placement
// transaction wrote them; what remains is moving the order out of its
// initial status once the machine allows it. Machines that keep fresh orders
// parked simply define no enabled edge for the "created" stage, which the
// rollup command treats as a no-op.
type OrderCreatedHandler struct {
	rollup commands.RollupCommandHandler
}

// NewOrderCreatedHandler creates a handler for order.created events.
func NewOrderCreatedHandler(rollup commands.RollupCommandHandler) *OrderCreatedHandler {
	return &OrderCreatedHandler{rollup: rollup}
}

// Handle processes one order.created event.
func (h *OrderCreatedHandler) Handle(ctx context.Context, uow ports.UnitOfWork, event *outbox.Event) error {
	orderID, err := payloadUUID(event.Payload(), "order_id")
	if err != nil {
		return err
	}

	cmd, err := commands.NewRollupCommand(commands.LevelOrder, commands.StageCreated, orderID)
	if err != nil {
		return err
	}

	return h.rollup.HandleIn(ctx, uow, cmd)
}
