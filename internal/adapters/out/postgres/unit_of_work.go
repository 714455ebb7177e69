// Package postgres provides the GORM-based implementation of the Unit of Work
// pattern. A unit of work binds all repositories to one database transaction,
// which is what makes the transactional outbox work: an event appended via
// OutboxRepository commits or rolls back together with the business mutation
// that produced it.
//
// Basic usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//
//	if err := uow.OrderRepository().Add(ctx, order); err != nil {
//	    uow.Rollback(ctx)
//	    return err
//	}
//	if err := uow.OutboxRepository().Add(ctx, event); err != nil {
//	    uow.Rollback(ctx)
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// The outbox processor additionally uses SavePoint/RollbackTo to isolate a
// failing event inside a claimed batch without losing the batch's row locks.
package postgres

import (
	"context"

	"prodflow/internal/adapters/out/postgres/auditrepo"
	"prodflow/internal/adapters/out/postgres/orderrepo"
	"prodflow/internal/adapters/out/postgres/outboxrepo"
	"prodflow/internal/adapters/out/postgres/workflowrepo"
	"prodflow/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database
// connections. Each business operation gets a fresh unit of work instance
// with proper isolation from other concurrent operations.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work
// instances. The provided database connection is shared by all created
// instances; each instance opens its own transaction.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork instance ready for business transaction
// management.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction across all repositories.
// Repositories obtained before Begin run against the main connection in
// auto-commit mode; after Begin they share the transaction until Commit or
// Rollback closes it.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin starts a new database transaction. Multiple calls on the same
// instance are safe and will not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes all changes made within the current transaction.
// Returns error if no active transaction exists or if the commit fails.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards all changes made within the current transaction.
// Returns error if no active transaction exists or if the rollback fails.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// SavePoint records a named savepoint inside the current transaction.
func (uow *GormUnitOfWork) SavePoint(_ context.Context, name string) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return uow.tx.SavePoint(name).Error
}

// RollbackTo rolls the transaction back to a named savepoint. Changes made
// after the savepoint are discarded; row locks taken before it are kept.
func (uow *GormUnitOfWork) RollbackTo(_ context.Context, name string) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return uow.tx.RollbackTo(name).Error
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// OrderRepository returns an OrderRepository bound to the current transaction.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn())
}

// ProcessRepository returns a ProcessRepository bound to the current transaction.
func (uow *GormUnitOfWork) ProcessRepository() ports.ProcessRepository {
	return orderrepo.NewGormProcessRepository(uow.conn())
}

// RunRepository returns a RunRepository bound to the current transaction.
func (uow *GormUnitOfWork) RunRepository() ports.RunRepository {
	return orderrepo.NewGormRunRepository(uow.conn())
}

// OutboxRepository returns an OutboxRepository bound to the current transaction.
func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// WorkflowRepository returns a WorkflowRepository bound to the current transaction.
func (uow *GormUnitOfWork) WorkflowRepository() ports.WorkflowRepository {
	return workflowrepo.NewGormWorkflowRepository(uow.conn())
}

// AuditRepository returns an AuditRepository bound to the current transaction.
func (uow *GormUnitOfWork) AuditRepository() ports.AuditRepository {
	return auditrepo.NewGormAuditRepository(uow.conn())
}
