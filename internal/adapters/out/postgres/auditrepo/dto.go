// Package auditrepo provides data transfer objects and mapping functions for
// the transition ledger. The table is append-only.
package auditrepo

import (
	"encoding/json"
	"time"

	"prodflow/internal/core/domain/model/audit"

	"github.com/google/uuid"
)

// RecordDTO represents the database structure for persisting transition
// records.
type RecordDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkflowTypeID uuid.UUID `gorm:"type:uuid"`
	AggregateType  string
	AggregateID    string `gorm:"index"`
	FromStatus     string
	ToStatus       string
	TransitionID   *uuid.UUID `gorm:"type:uuid"`
	Payload        []byte     `gorm:"type:jsonb"`
	CreatedAt      time.Time
}

// TableName specifies the database table name for transition records.
func (RecordDTO) TableName() string {
	return "transition_records"
}

func fromDomain(record *audit.TransitionRecord) (RecordDTO, error) {
	var payload []byte
	if record.Payload() != nil {
		raw, err := json.Marshal(record.Payload())
		if err != nil {
			return RecordDTO{}, err
		}
		payload = raw
	}

	var transitionID *uuid.UUID
	if id := record.TransitionID(); id != nil {
		raw := id.Bytes()
		transitionID = &raw
	}

	return RecordDTO{
		ID:             record.ID().Bytes(),
		WorkflowTypeID: record.WorkflowTypeID().Bytes(),
		AggregateType:  record.AggregateType(),
		AggregateID:    record.AggregateID(),
		FromStatus:     record.FromStatus(),
		ToStatus:       record.ToStatus(),
		TransitionID:   transitionID,
		Payload:        payload,
		CreatedAt:      record.CreatedAt(),
	}, nil
}
