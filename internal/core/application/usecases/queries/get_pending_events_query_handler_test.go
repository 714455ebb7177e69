package queries_test

import (
	"context"
	"testing"
	"time"

	"prodflow/internal/adapters/out/postgres/outboxrepo"
	"prodflow/internal/core/application/usecases/queries"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/outbox"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetPendingEventsQueryHandlerTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	handler    queries.GetPendingEventsQueryHandler
	outboxRepo *outboxrepo.GormOutboxRepository
}

func (suite *GetPendingEventsQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&outboxrepo.EventDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetPendingEventsQueryHandler(db)
	suite.outboxRepo = outboxrepo.NewGormOutboxRepository(db)
}

func (suite *GetPendingEventsQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetPendingEventsQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE outbox_events").Error
	suite.Require().NoError(err)
}

func (suite *GetPendingEventsQueryHandlerTestSuite) addEvent(eventType string) *outbox.Event {
	event, err := outbox.NewEvent(
		outbox.AggregateTypeProcessRun,
		kernel.NewUUID().String(),
		eventType,
		map[string]any{"run_id": kernel.NewUUID().String()},
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.outboxRepo.Add(context.Background(), event))
	return event
}

func (suite *GetPendingEventsQueryHandlerTestSuite) TestHandle_EmptyOutbox_ReturnsEmptySlice() {
	query, err := queries.NewGetPendingEventsQuery(10)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetPendingEventsQueryHandlerTestSuite) TestHandle_SkipsProcessedEvents() {
	pending := suite.addEvent(outbox.EventTypeRunTransitionRequested)
	dispatched := suite.addEvent(outbox.EventTypeRunTransitionRequested)
	suite.Require().NoError(suite.outboxRepo.MarkProcessed(context.Background(), dispatched.ID()))

	query, err := queries.NewGetPendingEventsQuery(10)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.True(result[0].ID.IsEqual(pending.ID()))
	suite.Equal(outbox.EventTypeRunTransitionRequested, result[0].EventType)
	suite.Equal(outbox.AggregateTypeProcessRun, result[0].AggregateType)
}

func (suite *GetPendingEventsQueryHandlerTestSuite) TestHandle_HonorsLimit() {
	for range 5 {
		suite.addEvent(outbox.EventTypeRollupBoundaryCrossed)
	}

	query, err := queries.NewGetPendingEventsQuery(3)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Len(result, 3)
}

func (suite *GetPendingEventsQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetPendingEventsQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetPendingEventsQuery constructor")
}

func TestGetPendingEventsQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetPendingEventsQueryHandlerTestSuite))
}
