package commands_test

import (
	"context"
	"testing"
	"time"

	"prodflow/internal/core/domain/model/audit"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatusCAS(ctx context.Context, id kernel.UUID, fromStatus, toStatus string) (bool, error) {
	args := m.Called(ctx, id, fromStatus, toStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) IncrementCompletedProcesses(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) ClaimCompletionBoundary(ctx context.Context, id kernel.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ClaimLifecycleStart(ctx context.Context, id kernel.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type MockProcessRepository struct{ mock.Mock }

func (m *MockProcessRepository) Add(ctx context.Context, aggregate *order.OrderProcess) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockProcessRepository) Get(ctx context.Context, id kernel.UUID) (*order.OrderProcess, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderProcess), args.Error(1)
}

func (m *MockProcessRepository) UpdateStatusCAS(ctx context.Context, id kernel.UUID, fromStatus, toStatus string) (bool, error) {
	args := m.Called(ctx, id, fromStatus, toStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessRepository) IncrementConfigCompleted(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProcessRepository) IncrementLifecycleCompleted(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProcessRepository) ClaimConfigBoundary(ctx context.Context, id kernel.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessRepository) ClaimLifecycleBoundary(ctx context.Context, id kernel.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type MockRunRepository struct{ mock.Mock }

func (m *MockRunRepository) Add(ctx context.Context, aggregate *order.ProcessRun) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockRunRepository) Get(ctx context.Context, id kernel.UUID) (*order.ProcessRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ProcessRun), args.Error(1)
}

func (m *MockRunRepository) UpdateStatusVersioned(ctx context.Context, id kernel.UUID, newStatus string, expectedVersion int) (bool, error) {
	args := m.Called(ctx, id, newStatus, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *MockRunRepository) UpdateLifecycleStatusCAS(ctx context.Context, id kernel.UUID, fromStatus, toStatus string) (bool, error) {
	args := m.Called(ctx, id, fromStatus, toStatus)
	return args.Bool(0), args.Error(1)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, event *outbox.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxRepository) ClaimUnprocessed(ctx context.Context, limit int) ([]*outbox.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Event), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockWorkflowRepository struct{ mock.Mock }

func (m *MockWorkflowRepository) Add(ctx context.Context, aggregate *workflow.Type) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockWorkflowRepository) GetByCode(ctx context.Context, code string) (*workflow.Type, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Type), args.Error(1)
}

func (m *MockWorkflowRepository) GetByID(ctx context.Context, id kernel.UUID) (*workflow.Type, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Type), args.Error(1)
}

type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) Append(ctx context.Context, record *audit.TransitionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) HasTransition(
	ctx context.Context, aggregateID string, transitionID kernel.UUID,
) (bool, error) {
	args := m.Called(ctx, aggregateID, transitionID)
	return args.Bool(0), args.Error(1)
}

// MockUnitOfWork wires the repository mocks behind the full unit of work
// contract. Repository accessors are not mocked with expectations because
// handlers call them freely; the interactions under test are the repository
// method calls themselves.
type MockUnitOfWork struct {
	mock.Mock
	orderRepo    *MockOrderRepository
	processRepo  *MockProcessRepository
	runRepo      *MockRunRepository
	outboxRepo   *MockOutboxRepository
	workflowRepo *MockWorkflowRepository
	auditRepo    *MockAuditRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		orderRepo:    new(MockOrderRepository),
		processRepo:  new(MockProcessRepository),
		runRepo:      new(MockRunRepository),
		outboxRepo:   new(MockOutboxRepository),
		workflowRepo: new(MockWorkflowRepository),
		auditRepo:    new(MockAuditRepository),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) SavePoint(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockUnitOfWork) RollbackTo(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockUnitOfWork) OrderRepository() ports.OrderRepository { return m.orderRepo }

func (m *MockUnitOfWork) ProcessRepository() ports.ProcessRepository { return m.processRepo }

func (m *MockUnitOfWork) RunRepository() ports.RunRepository { return m.runRepo }

func (m *MockUnitOfWork) OutboxRepository() ports.OutboxRepository { return m.outboxRepo }

func (m *MockUnitOfWork) WorkflowRepository() ports.WorkflowRepository { return m.workflowRepo }

func (m *MockUnitOfWork) AuditRepository() ports.AuditRepository { return m.auditRepo }

func (m *MockUnitOfWork) AssertExpectations(t *testing.T) {
	t.Helper()
	m.Mock.AssertExpectations(t)
	m.orderRepo.AssertExpectations(t)
	m.processRepo.AssertExpectations(t)
	m.runRepo.AssertExpectations(t)
	m.outboxRepo.AssertExpectations(t)
	m.workflowRepo.AssertExpectations(t)
	m.auditRepo.AssertExpectations(t)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() ports.UnitOfWork {
	args := m.Called()
	return args.Get(0).(ports.UnitOfWork)
}

// Workflow fixtures mirror the machines the engine is seeded with.

func newStatus(t *testing.T, code string, isInitial, isTerminal bool) workflow.Status {
	t.Helper()
	status, err := workflow.NewStatus(kernel.NewUUID(), code, isInitial, isTerminal)
	require.NoError(t, err)
	return status
}

func newTransition(t *testing.T, from, to, condition string) workflow.Transition {
	t.Helper()
	transition, err := workflow.NewTransition(kernel.NewUUID(), from, to, condition)
	require.NoError(t, err)
	return transition
}

func newMachine(t *testing.T, code string, statuses []workflow.Status, transitions []workflow.Transition) *workflow.Type {
	t.Helper()
	machine, err := workflow.NewType(kernel.NewUUID(), code, true, statuses, transitions)
	require.NoError(t, err)
	return machine
}

func runConfigMachine(t *testing.T) *workflow.Type {
	t.Helper()
	return newMachine(t, "RUN",
		[]workflow.Status{
			newStatus(t, "CONFIGURE", true, false),
			newStatus(t, "IN_PROGRESS", false, false),
			newStatus(t, "COMPLETE", false, true),
		},
		[]workflow.Transition{
			newTransition(t, "CONFIGURE", "IN_PROGRESS", ""),
			newTransition(t, "IN_PROGRESS", "COMPLETE", ""),
		})
}

func runLifecycleMachine(t *testing.T) *workflow.Type {
	t.Helper()
	return newMachine(t, workflow.TypeCodeRunLifecycle,
		[]workflow.Status{
			newStatus(t, "PENDING", true, false),
			newStatus(t, "IN_PRODUCTION", false, false),
			newStatus(t, "PRODUCED", false, true),
		},
		[]workflow.Transition{
			newTransition(t, "PENDING", "IN_PRODUCTION", ""),
			newTransition(t, "IN_PRODUCTION", "PRODUCED", ""),
		})
}

func processMachine(t *testing.T) *workflow.Type {
	t.Helper()
	return newMachine(t, workflow.TypeCodeProcess,
		[]workflow.Status{
			newStatus(t, "PENDING", true, false),
			newStatus(t, "CONFIGURED", false, false),
			newStatus(t, "COMPLETE", false, true),
		},
		[]workflow.Transition{
			newTransition(t, "PENDING", "CONFIGURED", "stage == 'config'"),
			newTransition(t, "CONFIGURED", "COMPLETE", "stage == 'lifecycle'"),
		})
}

func orderMachine(t *testing.T) *workflow.Type {
	t.Helper()
	return newMachine(t, workflow.TypeCodeOrder,
		[]workflow.Status{
			newStatus(t, "CREATED", true, false),
			newStatus(t, "ACTIVE", false, false),
			newStatus(t, "IN_PRODUCTION", false, false),
			newStatus(t, "COMPLETE", false, true),
		},
		[]workflow.Transition{
			newTransition(t, "CREATED", "ACTIVE", "stage == 'created'"),
			newTransition(t, "ACTIVE", "IN_PRODUCTION", "stage == 'lifecycle_start'"),
			newTransition(t, "IN_PRODUCTION", "COMPLETE", "stage == 'lifecycle'"),
		})
}

func isRollupEvent(level, stage string) func(*outbox.Event) bool {
	return func(event *outbox.Event) bool {
		return event.EventType() == outbox.EventTypeRollupBoundaryCrossed &&
			event.Payload()["level"] == level &&
			event.Payload()["stage"] == stage
	}
}
