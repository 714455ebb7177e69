package orderrepo

import (
	"context"
	"errors"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"
	"prodflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := orderFromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return orderToDomain(dto)
}

// UpdateStatusCAS sets the order status only when the current status matches
// fromStatus. The single UPDATE makes redelivered transition events no-ops.
func (r *GormOrderRepository) UpdateStatusCAS(
	ctx context.Context, id kernel.UUID, fromStatus, toStatus string,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND status_code = ?", id.Bytes(), fromStatus).
		Update("status_code", toStatus)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// IncrementCompletedProcesses bumps the completed process counter by one.
func (r *GormOrderRepository) IncrementCompletedProcesses(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", id.Bytes()).
		Update("completed_processes", gorm.Expr("completed_processes + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}

	return nil
}

// ClaimCompletionBoundary sets completed_at only when every process has
// completed and the boundary is still unclaimed. Exactly one concurrent
// caller gets RowsAffected == 1.
func (r *GormOrderRepository) ClaimCompletionBoundary(
	ctx context.Context, id kernel.UUID, at time.Time,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND completed_processes = total_processes AND completed_at IS NULL", id.Bytes()).
		Update("completed_at", at)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ClaimLifecycleStart sets lifecycle_started_at only when it is still null.
func (r *GormOrderRepository) ClaimLifecycleStart(
	ctx context.Context, id kernel.UUID, at time.Time,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND lifecycle_started_at IS NULL", id.Bytes()).
		Update("lifecycle_started_at", at)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// GormProcessRepository implements ProcessRepository using GORM.
type GormProcessRepository struct {
	db *gorm.DB
}

// NewGormProcessRepository creates a new GORM process repository.
func NewGormProcessRepository(db *gorm.DB) *GormProcessRepository {
	return &GormProcessRepository{db: db}
}

// Add saves a new process to the database.
func (r *GormProcessRepository) Add(ctx context.Context, aggregate *order.OrderProcess) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := processFromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves a process by ID.
func (r *GormProcessRepository) Get(ctx context.Context, id kernel.UUID) (*order.OrderProcess, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProcessDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("process", id.String())
		}
		return nil, err
	}

	return processToDomain(dto)
}

// UpdateStatusCAS sets the process status only when the current status
// matches fromStatus.
func (r *GormProcessRepository) UpdateStatusCAS(
	ctx context.Context, id kernel.UUID, fromStatus, toStatus string,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&ProcessDTO{}).
		Where("id = ? AND status_code = ?", id.Bytes(), fromStatus).
		Update("status_code", toStatus)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// IncrementConfigCompleted bumps the configuration-stage completion counter.
func (r *GormProcessRepository) IncrementConfigCompleted(ctx context.Context, id kernel.UUID) error {
	return r.increment(ctx, id, "config_completed_runs")
}

// IncrementLifecycleCompleted bumps the lifecycle-stage completion counter.
func (r *GormProcessRepository) IncrementLifecycleCompleted(ctx context.Context, id kernel.UUID) error {
	return r.increment(ctx, id, "lifecycle_completed_runs")
}

func (r *GormProcessRepository) increment(ctx context.Context, id kernel.UUID, column string) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&ProcessDTO{}).
		Where("id = ?", id.Bytes()).
		Update(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("process", id.String())
	}

	return nil
}

// ClaimConfigBoundary sets config_completed_at only when the configuration
// counter equals the run total and the boundary is still unclaimed.
func (r *GormProcessRepository) ClaimConfigBoundary(
	ctx context.Context, id kernel.UUID, at time.Time,
) (bool, error) {
	return r.claim(ctx, id, "config_completed_runs", "config_completed_at", at)
}

// ClaimLifecycleBoundary sets lifecycle_completed_at only when the lifecycle
// counter equals the run total and the boundary is still unclaimed.
func (r *GormProcessRepository) ClaimLifecycleBoundary(
	ctx context.Context, id kernel.UUID, at time.Time,
) (bool, error) {
	return r.claim(ctx, id, "lifecycle_completed_runs", "lifecycle_completed_at", at)
}

func (r *GormProcessRepository) claim(
	ctx context.Context, id kernel.UUID, counterColumn, claimColumn string, at time.Time,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&ProcessDTO{}).
		Where("id = ? AND "+counterColumn+" = total_runs AND "+claimColumn+" IS NULL", id.Bytes()).
		Update(claimColumn, at)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GORM run repository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Add saves a new run to the database.
func (r *GormRunRepository) Add(ctx context.Context, aggregate *order.ProcessRun) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := runFromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves a run by ID.
func (r *GormRunRepository) Get(ctx context.Context, id kernel.UUID) (*order.ProcessRun, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RunDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("run", id.String())
		}
		return nil, err
	}

	return runToDomain(dto)
}

// UpdateStatusVersioned sets the configuration status only when the stored
// version matches expectedVersion, bumping the version in the same UPDATE.
// A false result means another writer advanced the run first.
func (r *GormRunRepository) UpdateStatusVersioned(
	ctx context.Context, id kernel.UUID, newStatus string, expectedVersion int,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&RunDTO{}).
		Where("id = ? AND status_version = ?", id.Bytes(), expectedVersion).
		Updates(map[string]any{
			"status_code":    newStatus,
			"status_version": gorm.Expr("status_version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// UpdateLifecycleStatusCAS sets the lifecycle status only when the current
// lifecycle status matches fromStatus.
func (r *GormRunRepository) UpdateLifecycleStatusCAS(
	ctx context.Context, id kernel.UUID, fromStatus, toStatus string,
) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&RunDTO{}).
		Where("id = ? AND lifecycle_status_code = ?", id.Bytes(), fromStatus).
		Update("lifecycle_status_code", toStatus)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
