// Package outboxrepo provides data transfer objects and mapping functions for
// outbox event persistence. Events are appended inside the caller's
// transaction and claimed by the processor with row locks, so a claimed event
// is invisible to competing processors until the claiming transaction ends.
package outboxrepo

import (
	"encoding/json"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/outbox"

	"github.com/google/uuid"
)

// EventDTO represents the database structure for persisting outbox events.
// Payload is stored as jsonb so handlers get structured data back.
type EventDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte `gorm:"type:jsonb"`
	Processed     bool   `gorm:"index"`
	CreatedAt     time.Time
}

// TableName specifies the database table name for outbox events.
func (EventDTO) TableName() string {
	return "outbox_events"
}

func fromDomain(event *outbox.Event) (EventDTO, error) {
	var payload []byte
	if event.Payload() != nil {
		raw, err := json.Marshal(event.Payload())
		if err != nil {
			return EventDTO{}, err
		}
		payload = raw
	}

	return EventDTO{
		ID:            event.ID().Bytes(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.EventType(),
		Payload:       payload,
		Processed:     event.Processed(),
		CreatedAt:     event.CreatedAt(),
	}, nil
}

func toDomain(dto EventDTO) (*outbox.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if len(dto.Payload) > 0 {
		if err = json.Unmarshal(dto.Payload, &payload); err != nil {
			return nil, err
		}
	}

	return outbox.RestoreEvent(
		id, dto.AggregateType, dto.AggregateID, dto.EventType,
		payload, dto.Processed, dto.CreatedAt)
}
