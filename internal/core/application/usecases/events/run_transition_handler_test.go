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

func TestRunTransitionHandler_MissingRunID(t *testing.T) {
	handler := events.NewRunTransitionHandler(commands.AdvanceRunCommandHandler{}, discardLogger())
	event := newEvent(t, outbox.EventTypeRunTransitionRequested, map[string]any{
		"stage": commands.StageConfig,
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRunTransitionHandler_MalformedRunID(t *testing.T) {
	handler := events.NewRunTransitionHandler(commands.AdvanceRunCommandHandler{}, discardLogger())
	event := newEvent(t, outbox.EventTypeRunTransitionRequested, map[string]any{
		"run_id": "not-a-uuid",
		"stage":  commands.StageConfig,
	})

	require.Error(t, handler.Handle(t.Context(), nil, event))
}

func TestRunTransitionHandler_NonStringRunID(t *testing.T) {
	handler := events.NewRunTransitionHandler(commands.AdvanceRunCommandHandler{}, discardLogger())
	event := newEvent(t, outbox.EventTypeRunTransitionRequested, map[string]any{
		"run_id": 42,
		"stage":  commands.StageConfig,
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestRunTransitionHandler_MissingStage(t *testing.T) {
	handler := events.NewRunTransitionHandler(commands.AdvanceRunCommandHandler{}, discardLogger())
	event := newEvent(t, outbox.EventTypeRunTransitionRequested, map[string]any{
		"run_id": kernel.NewUUID().String(),
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRunTransitionHandler_UnknownStage(t *testing.T) {
	handler := events.NewRunTransitionHandler(commands.AdvanceRunCommandHandler{}, discardLogger())
	event := newEvent(t, outbox.EventTypeRunTransitionRequested, map[string]any{
		"run_id": kernel.NewUUID().String(),
		"stage":  "shipping",
	})

	err := handler.Handle(t.Context(), nil, event)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
