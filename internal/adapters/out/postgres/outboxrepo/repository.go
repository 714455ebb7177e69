package outboxrepo

import (
	"context"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/outbox"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM outbox repository.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add appends an event. Called inside the business transaction so the event
// and the mutation that produced it commit atomically.
func (r *GormOutboxRepository) Add(ctx context.Context, event *outbox.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(event)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(&dto).Error
}

// ClaimUnprocessed selects up to limit unprocessed events in creation order
// and locks their rows with FOR UPDATE SKIP LOCKED. Rows locked by a
// competing processor are skipped rather than waited on, so multiple
// processor instances partition the backlog instead of serializing on it.
func (r *GormOutboxRepository) ClaimUnprocessed(ctx context.Context, limit int) ([]*outbox.Event, error) {
	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("processed = ?", false).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]*outbox.Event, 0, len(dtos))
	for _, dto := range dtos {
		event, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		events = append(events, event)
	}

	return events, nil
}

// MarkProcessed flips the processed flag. Marking an already processed event
// affects zero rows and is not an error, which keeps redelivery harmless.
func (r *GormOutboxRepository) MarkProcessed(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&EventDTO{}).
		Where("id = ?", id.Bytes()).
		Update("processed", true).Error
}
