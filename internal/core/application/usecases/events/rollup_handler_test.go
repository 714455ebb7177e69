package events_test

import (
	"testing"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/application/usecases/events"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

func TestRollupHandler_MissingLevel(t *testing.T) {
	handler := events.NewRollupHandler(commands.RollupCommandHandler{})
	event := newEvent(t, outbox.EventTypeRollupBoundaryCrossed, map[string]any{
		"stage":      commands.StageConfig,
		"process_id": kernel.NewUUID().String(),
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRollupHandler_ProcessLevelRequiresProcessID(t *testing.T) {
	handler := events.NewRollupHandler(commands.RollupCommandHandler{})
	event := newEvent(t, outbox.EventTypeRollupBoundaryCrossed, map[string]any{
		"level":    commands.LevelProcess,
		"stage":    commands.StageConfig,
		"order_id": kernel.NewUUID().String(),
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRollupHandler_OrderLevelRequiresOrderID(t *testing.T) {
	handler := events.NewRollupHandler(commands.RollupCommandHandler{})
	event := newEvent(t, outbox.EventTypeRollupBoundaryCrossed, map[string]any{
		"level":      commands.LevelOrder,
		"stage":      commands.StageLifecycle,
		"process_id": kernel.NewUUID().String(),
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRollupHandler_UnknownLevel(t *testing.T) {
	handler := events.NewRollupHandler(commands.RollupCommandHandler{})
	event := newEvent(t, outbox.EventTypeRollupBoundaryCrossed, map[string]any{
		"level":      "run",
		"stage":      commands.StageConfig,
		"process_id": kernel.NewUUID().String(),
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
