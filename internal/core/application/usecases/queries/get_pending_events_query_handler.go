package queries

import (
	"context"

	"prodflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPendingEventsQueryHandler reads the unprocessed outbox backlog. The
// read takes no locks, so it never interferes with a processor claiming the
// same rows.
type GetPendingEventsQueryHandler struct {
	db *gorm.DB
}

// NewGetPendingEventsQueryHandler creates a handler for backlog queries.
func NewGetPendingEventsQueryHandler(db *gorm.DB) GetPendingEventsQueryHandler {
	return GetPendingEventsQueryHandler{db: db}
}

// Handle executes the query.
func (h GetPendingEventsQueryHandler) Handle(
	ctx context.Context,
	query GetPendingEventsQuery,
) ([]GetPendingEventsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	events := make([]GetPendingEventsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			aggregate_type,
			aggregate_id,
			event_type,
			created_at
		FROM outbox_events
		WHERE processed = false
		ORDER BY created_at
		LIMIT ?
	`, query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event GetPendingEventsQueryResponse
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&event.AggregateType,
			&event.AggregateID,
			&event.EventType,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		eventID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		event.ID = eventID

		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
