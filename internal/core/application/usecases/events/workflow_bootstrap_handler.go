package events

import (
	"context"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"
	"prodflow/internal/pkg/errs"
)

// WorkflowBootstrapHandler reacts to workflow.bootstrap.requested by creating
// a workflow definition from the event payload.
type WorkflowBootstrapHandler struct {
	bootstrap commands.BootstrapWorkflowCommandHandler
}

// NewWorkflowBootstrapHandler creates a handler for
// workflow.bootstrap.requested events.
func NewWorkflowBootstrapHandler(bootstrap commands.BootstrapWorkflowCommandHandler) *WorkflowBootstrapHandler {
	return &WorkflowBootstrapHandler{bootstrap: bootstrap}
}

// Handle processes one workflow.bootstrap.requested event.
func (h *WorkflowBootstrapHandler) Handle(ctx context.Context, uow ports.UnitOfWork, event *outbox.Event) error {
	cmd, err := h.parse(event.Payload())
	if err != nil {
		return err
	}

	return h.bootstrap.HandleIn(ctx, uow, cmd)
}

func (h *WorkflowBootstrapHandler) parse(payload map[string]any) (commands.BootstrapWorkflowCommand, error) {
	code, err := payloadString(payload, "code")
	if err != nil {
		return commands.BootstrapWorkflowCommand{}, err
	}

	isActive := true
	if raw, ok := payload["is_active"].(bool); ok {
		isActive = raw
	}

	statuses, err := h.parseStatuses(payload)
	if err != nil {
		return commands.BootstrapWorkflowCommand{}, err
	}
	transitions, err := h.parseTransitions(payload)
	if err != nil {
		return commands.BootstrapWorkflowCommand{}, err
	}

	return commands.NewBootstrapWorkflowCommand(code, isActive, statuses, transitions)
}

func (h *WorkflowBootstrapHandler) parseStatuses(payload map[string]any) ([]commands.StatusSpec, error) {
	raw, ok := payload["statuses"].([]any)
	if !ok {
		return nil, errs.NewValueIsRequiredError("statuses")
	}

	specs := make([]commands.StatusSpec, 0, len(raw))
	for _, item := range raw {
		entry, entryOk := item.(map[string]any)
		if !entryOk {
			return nil, errs.NewValueIsInvalidError("statuses")
		}

		code, err := payloadString(entry, "code")
		if err != nil {
			return nil, err
		}

		isInitial, _ := entry["is_initial"].(bool)
		isTerminal, _ := entry["is_terminal"].(bool)
		specs = append(specs, commands.StatusSpec{
			Code:       code,
			IsInitial:  isInitial,
			IsTerminal: isTerminal,
		})
	}

	return specs, nil
}

func (h *WorkflowBootstrapHandler) parseTransitions(payload map[string]any) ([]commands.TransitionSpec, error) {
	raw, ok := payload["transitions"].([]any)
	if !ok {
		// A machine with no transitions is legal, every status just parks.
		return nil, nil
	}

	specs := make([]commands.TransitionSpec, 0, len(raw))
	for _, item := range raw {
		entry, entryOk := item.(map[string]any)
		if !entryOk {
			return nil, errs.NewValueIsInvalidError("transitions")
		}

		from, err := payloadString(entry, "from")
		if err != nil {
			return nil, err
		}
		to, err := payloadString(entry, "to")
		if err != nil {
			return nil, err
		}

		condition, _ := entry["condition"].(string)
		specs = append(specs, commands.TransitionSpec{
			FromStatusCode: from,
			ToStatusCode:   to,
			Condition:      condition,
		})
	}

	return specs, nil
}
