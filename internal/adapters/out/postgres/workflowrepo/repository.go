package workflowrepo

import (
	"context"
	"errors"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormWorkflowRepository implements WorkflowRepository using GORM.
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewGormWorkflowRepository creates a new GORM workflow repository.
func NewGormWorkflowRepository(db *gorm.DB) *GormWorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// Add persists a workflow type with its statuses and transitions. The unique
// index on the code column rejects duplicates.
func (r *GormWorkflowRepository) Add(ctx context.Context, aggregate *workflow.Type) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	typeDTO, statusDTOs, transitionDTOs := fromDomain(aggregate)

	db := r.db.WithContext(ctx)
	if err := db.Create(&typeDTO).Error; err != nil {
		return err
	}
	if err := db.Create(&statusDTOs).Error; err != nil {
		return err
	}
	if len(transitionDTOs) > 0 {
		if err := db.Create(&transitionDTOs).Error; err != nil {
			return err
		}
	}

	return nil
}

// GetByCode retrieves a workflow type by its unique code.
func (r *GormWorkflowRepository) GetByCode(ctx context.Context, code string) (*workflow.Type, error) {
	if code == "" {
		return nil, errs.NewValueIsRequiredError("code")
	}

	var typeDTO TypeDTO
	if err := r.db.WithContext(ctx).First(&typeDTO, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("workflow type", code)
		}
		return nil, err
	}

	return r.load(ctx, typeDTO)
}

// GetByID retrieves a workflow type by its identifier.
func (r *GormWorkflowRepository) GetByID(ctx context.Context, id kernel.UUID) (*workflow.Type, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var typeDTO TypeDTO
	if err := r.db.WithContext(ctx).First(&typeDTO, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("workflow type", id.String())
		}
		return nil, err
	}

	return r.load(ctx, typeDTO)
}

func (r *GormWorkflowRepository) load(ctx context.Context, typeDTO TypeDTO) (*workflow.Type, error) {
	var statusDTOs []StatusDTO
	err := r.db.WithContext(ctx).
		Where("workflow_type_id = ?", typeDTO.ID).
		Order("position").
		Find(&statusDTOs).Error
	if err != nil {
		return nil, err
	}

	var transitionDTOs []TransitionDTO
	err = r.db.WithContext(ctx).
		Where("workflow_type_id = ?", typeDTO.ID).
		Order("position").
		Find(&transitionDTOs).Error
	if err != nil {
		return nil, err
	}

	return toDomain(typeDTO, statusDTOs, transitionDTOs)
}
