package auditrepo

import (
	"context"

	"prodflow/internal/core/domain/model/audit"
	"prodflow/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormAuditRepository implements AuditRepository using GORM.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GORM audit repository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append persists one transition record.
func (r *GormAuditRepository) Append(ctx context.Context, record *audit.TransitionRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(record)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(&dto).Error
}

// HasTransition reports whether a record of the given transition exists for
// the aggregate.
func (r *GormAuditRepository) HasTransition(
	ctx context.Context, aggregateID string, transitionID kernel.UUID,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RecordDTO{}).
		Where("aggregate_id = ? AND transition_id = ?", aggregateID, transitionID.Bytes()).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
