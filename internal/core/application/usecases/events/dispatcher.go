// Package events routes claimed outbox events to their handlers. Each
// handler parses the event payload into a command and runs the corresponding
// command handler inside the processor's transaction, so handlers inherit
// the commands' idempotency guarantees on redelivery.
package events

import (
	"context"
	"fmt"
	"log/slog"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"
	"prodflow/internal/pkg/errs"
)

// Handler processes one outbox event inside the given transaction.
type Handler interface {
	Handle(ctx context.Context, uow ports.UnitOfWork, event *outbox.Event) error
}

// Dispatcher maps event types to handlers. Events of an unknown type are
// logged and accepted, so a malformed producer cannot wedge the outbox with
// an event nobody will ever handle.
type Dispatcher struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher with the given type-to-handler mapping.
func NewDispatcher(handlers map[string]Handler, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
		logger:   logger.With("component", "event_dispatcher"),
	}
}

// Dispatch routes the event to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, uow ports.UnitOfWork, event *outbox.Event) error {
	handler, ok := d.handlers[event.EventType()]
	if !ok {
		d.logger.Warn("unknown event type, shedding event",
			"event_id", event.ID().String(),
			"event_type", event.EventType())
		return nil
	}

	return handler.Handle(ctx, uow, event)
}

// payloadString extracts a required string field from an event payload.
func payloadString(payload map[string]any, key string) (string, error) {
	raw, ok := payload[key]
	if !ok {
		return "", errs.NewValueIsRequiredError(key)
	}

	value, ok := raw.(string)
	if !ok || value == "" {
		return "", errs.NewValueIsInvalidErrorWithCause(key, fmt.Errorf("%v is not a string", raw))
	}

	return value, nil
}

// payloadUUID extracts a required UUID field from an event payload.
func payloadUUID(payload map[string]any, key string) (kernel.UUID, error) {
	value, err := payloadString(payload, key)
	if err != nil {
		return kernel.UUID{}, err
	}

	return kernel.UUIDFromString(value)
}
