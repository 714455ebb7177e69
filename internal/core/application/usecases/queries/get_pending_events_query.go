package queries

import (
	"errors"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
	"prodflow/internal/pkg/guard"
)

// ErrGetPendingEventsQueryIsNotConstructed is returned when the query was not
// created via NewGetPendingEventsQuery.
var ErrGetPendingEventsQueryIsNotConstructed = errors.New(
	"GetPendingEventsQuery must be created via NewGetPendingEventsQuery constructor",
)

// GetPendingEventsQuery retrieves unprocessed outbox events, oldest first.
// A growing result set is the operational signal that the processor has
// fallen behind or an event is failing repeatedly.
type GetPendingEventsQuery struct {
	limit int

	guard guard.ConstructorGuard
}

// NewGetPendingEventsQuery creates a query for the outbox backlog.
func NewGetPendingEventsQuery(limit int) (GetPendingEventsQuery, error) {
	if limit <= 0 {
		return GetPendingEventsQuery{}, errs.NewValueIsInvalidError("limit")
	}

	return GetPendingEventsQuery{
		limit: limit,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetPendingEventsQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingEventsQueryIsNotConstructed)
}

// Limit returns the maximum number of events to return.
func (q GetPendingEventsQuery) Limit() int {
	return q.limit
}

// GetPendingEventsQueryResponse is one unprocessed outbox event.
type GetPendingEventsQueryResponse struct {
	ID            kernel.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	CreatedAt     time.Time
}
