package commands_test

import (
	"errors"
	"testing"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/audit"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/order"
	"prodflow/internal/core/domain/model/outbox"
	"prodflow/internal/core/domain/model/workflow"
	"prodflow/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()

	template := runConfigMachine(t)
	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, workflow.TypeCodeOrder).
		Return(orderMachine(t), nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, workflow.TypeCodeProcess).
		Return(processMachine(t), nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, workflow.TypeCodeRunLifecycle).
		Return(runLifecycleMachine(t), nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, "RUN").Return(template, nil).Once()

	uow.orderRepo.On("Add", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
		return o.ID().IsEqual(orderID) && o.StatusCode() == "CREATED" && o.TotalProcesses() == 1
	})).Return(nil).Once()
	uow.processRepo.On("Add", mock.Anything, mock.MatchedBy(func(p *order.OrderProcess) bool {
		return p.OrderID().IsEqual(orderID) && p.StatusCode() == "PENDING" &&
			p.TotalRuns() == 2 && p.WorkflowTypeID().IsEqual(template.ID())
	})).Return(nil).Once()
	uow.runRepo.On("Add", mock.Anything, mock.MatchedBy(func(r *order.ProcessRun) bool {
		return r.StatusCode() == "CONFIGURE" && r.LifecycleStatusCode() == "PENDING"
	})).Return(nil).Twice()

	// One creation ledger entry per aggregate: order + process + two runs.
	uow.auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(r *audit.TransitionRecord) bool {
		return r.FromStatus() == "" && r.TransitionID() == nil
	})).Return(nil).Times(4)

	uow.outboxRepo.On("Add", mock.Anything, mock.MatchedBy(func(e *outbox.Event) bool {
		return e.EventType() == outbox.EventTypeOrderCreated &&
			e.AggregateID() == orderID.String() &&
			e.Payload()["order_id"] == orderID.String()
	})).Return(nil).Once()
	uow.On("Commit", mock.Anything).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewPlaceOrderCommand(orderID, []commands.ProcessSpec{
		{WorkflowTypeCode: "RUN", TotalRuns: 2},
	})
	require.NoError(t, err)

	handler := commands.NewPlaceOrderCommandHandler(factory)
	require.NoError(t, handler.Handle(ctx, cmd))
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestPlaceOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockUoWFactory)
	handler := commands.NewPlaceOrderCommandHandler(factory)

	err := handler.Handle(t.Context(), commands.PlaceOrderCommand{})
	require.ErrorIs(t, err, commands.ErrPlaceOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestPlaceOrderCommandHandler_Handle_MissingWorkflowType(t *testing.T) {
	ctx := t.Context()

	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, workflow.TypeCodeOrder).
		Return(nil, errs.NewObjectNotFoundError(workflow.TypeCodeOrder, nil)).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), []commands.ProcessSpec{
		{WorkflowTypeCode: "RUN", TotalRuns: 1},
	})
	require.NoError(t, err)

	handler := commands.NewPlaceOrderCommandHandler(factory)
	err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.Mock.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestPlaceOrderCommandHandler_Handle_AddErrorRollsBack(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()

	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, workflow.TypeCodeOrder).
		Return(orderMachine(t), nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, workflow.TypeCodeProcess).
		Return(processMachine(t), nil).Once()
	uow.workflowRepo.On("GetByCode", mock.Anything, workflow.TypeCodeRunLifecycle).
		Return(runLifecycleMachine(t), nil).Once()
	uow.orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).
		Return(errors.New("insert failed")).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewPlaceOrderCommand(orderID, []commands.ProcessSpec{
		{WorkflowTypeCode: "RUN", TotalRuns: 1},
	})
	require.NoError(t, err)

	handler := commands.NewPlaceOrderCommandHandler(factory)
	require.Error(t, handler.Handle(ctx, cmd))
	uow.outboxRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	uow.Mock.AssertNotCalled(t, "Commit", mock.Anything)
}
