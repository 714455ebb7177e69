package cmd

import (
	"log/slog"
	"time"

	"prodflow/internal/adapters/out/postgres"
	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/application/usecases/events"
	"prodflow/internal/core/application/usecases/queries"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"
	"prodflow/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
	}
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.createUoWFactory())
}

func (c *CompositionRoot) CreateRequestRunTransitionCommandHandler() commands.RequestRunTransitionCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestRunTransitionCommandHandler(f)
}

func (c *CompositionRoot) CreateBootstrapWorkflowCommandHandler() commands.BootstrapWorkflowCommandHandler {
	var f commands.WorkflowUoWFactory = FuncWorkflowUoWFactory(func() commands.WorkflowUoW {
		return c.uowFactory.Create()
	})
	return commands.NewBootstrapWorkflowCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateAdvanceRunCommandHandler() commands.AdvanceRunCommandHandler {
	return commands.NewAdvanceRunCommandHandler(c.createUoWFactory())
}

func (c *CompositionRoot) CreateRollupCommandHandler() commands.RollupCommandHandler {
	return commands.NewRollupCommandHandler(c.createUoWFactory())
}

func (c *CompositionRoot) CreateProcessOutboxCommandHandler() commands.ProcessOutboxCommandHandler {
	rollup := c.CreateRollupCommandHandler()

	dispatcher := events.NewDispatcher(map[string]events.Handler{
		outbox.EventTypeOrderCreated:               events.NewOrderCreatedHandler(rollup),
		outbox.EventTypeRunTransitionRequested:     events.NewRunTransitionHandler(c.CreateAdvanceRunCommandHandler(), c.logger),
		outbox.EventTypeRollupBoundaryCrossed:      events.NewRollupHandler(rollup),
		outbox.EventTypeWorkflowBootstrapRequested: events.NewWorkflowBootstrapHandler(c.CreateBootstrapWorkflowCommandHandler()),
	}, c.logger)

	return commands.NewProcessOutboxCommandHandler(
		c.createUoWFactory(), dispatcher, c.config.OutboxBatchSize, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	txTimeout := time.Duration(c.config.TxTimeoutSeconds) * time.Second
	return jobs.NewJobManager(
		c.CreateProcessOutboxCommandHandler(), c.config.OutboxPollSpec, txTimeout, c.logger)
}

func (c *CompositionRoot) CreateGetAuditTrailQueryHandler() queries.GetAuditTrailQueryHandler {
	return queries.NewGetAuditTrailQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPendingEventsQueryHandler() queries.GetPendingEventsQueryHandler {
	return queries.NewGetPendingEventsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) createUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() ports.UnitOfWork {
		return c.uowFactory.Create()
	})
}

type FuncUoWFactory func() ports.UnitOfWork

func (f FuncUoWFactory) Create() ports.UnitOfWork {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

type FuncWorkflowUoWFactory func() commands.WorkflowUoW

func (f FuncWorkflowUoWFactory) Create() commands.WorkflowUoW {
	return f()
}
