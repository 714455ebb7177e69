package postgres_test

import (
	"context"
	"testing"

	postgres_adapter "prodflow/internal/adapters/out/postgres"
	"prodflow/internal/adapters/out/postgres/auditrepo"
	"prodflow/internal/adapters/out/postgres/orderrepo"
	"prodflow/internal/adapters/out/postgres/outboxrepo"
	"prodflow/internal/adapters/out/postgres/workflowrepo"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite exercises the GORM unit of work against a
// real PostgreSQL instance, with particular attention to the property the
// outbox depends on: an event appended in a transaction is only visible if
// the transaction commits.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite starts a PostgreSQL container and migrates the schema.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{}, &orderrepo.ProcessDTO{}, &orderrepo.RunDTO{},
		&outboxrepo.EventDTO{},
		&workflowrepo.TypeDTO{}, &workflowrepo.StatusDTO{}, &workflowrepo.TransitionDTO{},
		&auditrepo.RecordDTO{},
	)
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(`TRUNCATE TABLE orders, order_processes, process_runs,
		outbox_events, workflow_types, workflow_statuses, workflow_transitions,
		transition_records`).Error
	suite.Require().NoError(err)
}

// TearDownSuite terminates the PostgreSQL container.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.OutboxRepository())
	suite.NotNil(uow2.WorkflowRepository())
	suite.NotNil(uow2.AuditRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	// Multiple begin calls are safe.
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "Should error when committing without active transaction")
	suite.Require().Error(uow.Rollback(ctx), "Should error when rolling back without active transaction")
	suite.Require().Error(uow.SavePoint(ctx, "sp"), "Should error when no transaction is active")
}

// TestUnitOfWork_OutboxAtomicity verifies the outbox guarantee: the business
// row and the event commit together or not at all.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_OutboxAtomicity() {
	ctx := context.Background()

	suite.Run("commit persists both", func() {
		uow := suite.factory.Create()
		suite.Require().NoError(uow.Begin(ctx))

		testOrder := createTestOrder(suite.T())
		suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

		event, err := outbox.NewEvent(
			outbox.AggregateTypeOrder, testOrder.ID().String(), outbox.EventTypeOrderCreated, nil)
		suite.Require().NoError(err)
		suite.Require().NoError(uow.OutboxRepository().Add(ctx, event))

		suite.Require().NoError(uow.Commit(ctx))

		check := suite.factory.Create()
		_, err = check.OrderRepository().Get(ctx, testOrder.ID())
		suite.Require().NoError(err)

		events, err := check.OutboxRepository().ClaimUnprocessed(ctx, 10)
		suite.Require().NoError(err)
		suite.Require().Len(events, 1)
		suite.Equal(event.ID().String(), events[0].ID().String())
	})

	suite.Run("rollback discards both", func() {
		suite.SetupTest()

		uow := suite.factory.Create()
		suite.Require().NoError(uow.Begin(ctx))

		testOrder := createTestOrder(suite.T())
		suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

		event, err := outbox.NewEvent(
			outbox.AggregateTypeOrder, testOrder.ID().String(), outbox.EventTypeOrderCreated, nil)
		suite.Require().NoError(err)
		suite.Require().NoError(uow.OutboxRepository().Add(ctx, event))

		suite.Require().NoError(uow.Rollback(ctx))

		check := suite.factory.Create()
		_, err = check.OrderRepository().Get(ctx, testOrder.ID())
		suite.Require().Error(err, "Order should not exist after rollback")

		events, err := check.OutboxRepository().ClaimUnprocessed(ctx, 10)
		suite.Require().NoError(err)
		suite.Empty(events, "Event should not exist after rollback")
	})
}

// TestUnitOfWork_SavePointIsolation verifies that rolling back to a savepoint
// discards only the changes made after it.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_SavePointIsolation() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))

	kept := createTestOrder(suite.T())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, kept))

	suite.Require().NoError(uow.SavePoint(ctx, "sp_event"))

	discarded := createTestOrder(suite.T())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, discarded))

	suite.Require().NoError(uow.RollbackTo(ctx, "sp_event"))
	suite.Require().NoError(uow.Commit(ctx))

	check := suite.factory.Create()
	_, err := check.OrderRepository().Get(ctx, kept.ID())
	suite.Require().NoError(err, "Order added before savepoint should persist")

	_, err = check.OrderRepository().Get(ctx, discarded.ID())
	suite.Require().Error(err, "Order added after savepoint should be discarded")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := createTestOrder(suite.T())
	order2 := createTestOrder(suite.T())

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	suite.Require().NoError(uow1.OrderRepository().Add(ctx, order1))
	suite.Require().NoError(uow2.OrderRepository().Add(ctx, order2))

	_, err := uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see uncommitted order2")

	_, err = uow2.OrderRepository().Get(ctx, order1.ID())
	suite.Require().Error(err, "UOW2 should not see uncommitted order1")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	check := suite.factory.Create()
	_, err = check.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err)

	_, err = check.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder(suite.T())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

	check := suite.factory.Create()
	retrieved, err := check.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(retrieved.ID().IsEqual(testOrder.ID()))
}

func createTestOrder(t *testing.T) *order.Order {
	t.Helper()
	testOrder, err := order.NewOrder(kernel.NewUUID(), "CREATED", 2)
	if err != nil {
		t.Fatal(err)
	}
	return testOrder
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
