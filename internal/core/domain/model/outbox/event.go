// Package outbox models the durable event envelope of the transactional
// outbox: business operations append events inside their own transaction, a
// background processor claims and dispatches them afterwards. An event is
// therefore never lost if the business mutation commits, and never recorded
// if it rolls back.
package outbox

import (
	"errors"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
)

// Aggregate types carried in the event envelope and the audit ledger.
const (
	AggregateTypeOrder        = "Order"
	AggregateTypeOrderProcess = "OrderProcess"
	AggregateTypeProcessRun   = "ProcessRun"
	AggregateTypeWorkflowType = "WorkflowType"
)

// Recognized event types. Each maps to exactly one handler in the event
// dispatcher; handlers must tolerate re-delivery.
const (
	// EventTypeOrderCreated announces a freshly placed order hierarchy.
	EventTypeOrderCreated = "order.created"

	// EventTypeRunTransitionRequested asks the orchestrator to advance a run.
	EventTypeRunTransitionRequested = "run.transition.requested"

	// EventTypeRollupBoundaryCrossed is appended by the single winner of a
	// completion-boundary claim and triggers the parent-level transition.
	EventTypeRollupBoundaryCrossed = "rollup.boundary.crossed"

	// EventTypeWorkflowBootstrapRequested asks for a workflow definition to be
	// created from the event payload.
	EventTypeWorkflowBootstrapRequested = "workflow.bootstrap.requested"
)

// ErrEventIsNotConstructed is returned when an Event was not created through
// NewEvent or RestoreEvent.
var ErrEventIsNotConstructed = errors.New("Event must be created via NewEvent constructor")

// Event is one durable outbox message. Events are append-only: the only
// mutation ever applied is flipping processed to true, and rows are never
// physically deleted.
type Event struct {
	id            kernel.UUID
	aggregateType string
	aggregateID   string
	eventType     string
	payload       map[string]any
	processed     bool
	createdAt     time.Time
	isConstructed bool
}

// NewEvent creates an unprocessed event with a fresh identifier and creation
// timestamp.
func NewEvent(aggregateType, aggregateID, eventType string, payload map[string]any) (*Event, error) {
	event := &Event{
		id:            kernel.NewUUID(),
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		event.setAggregateType(aggregateType),
		event.setAggregateID(aggregateID),
		event.setEventType(eventType),
	); err != nil {
		return nil, err
	}

	event.payload = payload
	return event, nil
}

// RestoreEvent reconstructs an event from persistence.
func RestoreEvent(
	id kernel.UUID,
	aggregateType, aggregateID, eventType string,
	payload map[string]any,
	processed bool,
	createdAt time.Time,
) (*Event, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	event, err := NewEvent(aggregateType, aggregateID, eventType, payload)
	if err != nil {
		return nil, err
	}

	event.id = id
	event.processed = processed
	event.createdAt = createdAt
	return event, nil
}

// Validate ensures the Event was properly constructed.
func (e *Event) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEventIsNotConstructed
	}
	return nil
}

// ID returns the event identifier.
func (e *Event) ID() kernel.UUID { return e.id }

// AggregateType returns the hierarchy level the event concerns.
func (e *Event) AggregateType() string { return e.aggregateType }

// AggregateID returns the identifier of the aggregate the event concerns.
func (e *Event) AggregateID() string { return e.aggregateID }

// EventType returns the event type code.
func (e *Event) EventType() string { return e.eventType }

// Payload returns the opaque structured payload, or nil.
func (e *Event) Payload() map[string]any { return e.payload }

// Processed reports whether the event has been dispatched.
func (e *Event) Processed() bool { return e.processed }

// CreatedAt returns when the event was appended.
func (e *Event) CreatedAt() time.Time { return e.createdAt }

func (e *Event) setAggregateType(aggregateType string) error {
	if aggregateType == "" {
		return errs.NewValueIsRequiredError("aggregateType")
	}
	e.aggregateType = aggregateType
	return nil
}

func (e *Event) setAggregateID(aggregateID string) error {
	if aggregateID == "" {
		return errs.NewValueIsRequiredError("aggregateID")
	}
	e.aggregateID = aggregateID
	return nil
}

func (e *Event) setEventType(eventType string) error {
	if eventType == "" {
		return errs.NewValueIsRequiredError("eventType")
	}
	e.eventType = eventType
	return nil
}
