package commands_test

import (
	"testing"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/workflow"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWorkflowUoWFactory struct{ mock.Mock }

func (m *MockWorkflowUoWFactory) Create() commands.WorkflowUoW {
	args := m.Called()
	return args.Get(0).(commands.WorkflowUoW)
}

func bootstrapCmd(t *testing.T, transitions []commands.TransitionSpec) commands.BootstrapWorkflowCommand {
	t.Helper()
	cmd, err := commands.NewBootstrapWorkflowCommand("MILLING_RUN", true,
		[]commands.StatusSpec{
			{Code: "CONFIGURE", IsInitial: true},
			{Code: "IN_PROGRESS"},
			{Code: "COMPLETE", IsTerminal: true},
		}, transitions)
	require.NoError(t, err)
	return cmd
}

func TestBootstrapWorkflowCommandHandler_CreatesDefinition(t *testing.T) {
	ctx := t.Context()

	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	uow.workflowRepo.On("Add", mock.Anything, mock.MatchedBy(func(wf *workflow.Type) bool {
		edges := wf.TransitionsFrom("CONFIGURE")
		return wf.Code() == "MILLING_RUN" && wf.IsActive() &&
			wf.InitialStatus().Code() == "CONFIGURE" &&
			len(edges) == 1 && edges[0].ToStatusCode() == "IN_PROGRESS" &&
			edges[0].Condition() == "quantity > 0"
	})).Return(nil).Once()
	uow.On("Commit", mock.Anything).Return(nil).Once()

	factory := new(MockWorkflowUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBootstrapWorkflowCommandHandler(factory, discardLogger())
	cmd := bootstrapCmd(t, []commands.TransitionSpec{
		{FromStatusCode: "CONFIGURE", ToStatusCode: "IN_PROGRESS", Condition: "quantity > 0"},
		{FromStatusCode: "IN_PROGRESS", ToStatusCode: "COMPLETE"},
	})

	require.NoError(t, handler.Handle(ctx, cmd))
	uow.AssertExpectations(t)
}

func TestBootstrapWorkflowCommandHandler_RejectsTransitionOutOfTerminalStatus(t *testing.T) {
	ctx := t.Context()

	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockWorkflowUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBootstrapWorkflowCommandHandler(factory, discardLogger())
	cmd := bootstrapCmd(t, []commands.TransitionSpec{
		{FromStatusCode: "CONFIGURE", ToStatusCode: "IN_PROGRESS"},
		{FromStatusCode: "IN_PROGRESS", ToStatusCode: "COMPLETE"},
		{FromStatusCode: "COMPLETE", ToStatusCode: "CONFIGURE"},
	})

	require.Error(t, handler.Handle(ctx, cmd))
	uow.workflowRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	uow.Mock.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestBootstrapWorkflowCommandHandler_DeadEndStatusIsAllowed(t *testing.T) {
	ctx := t.Context()

	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	uow.workflowRepo.On("Add", mock.Anything, mock.AnythingOfType("*workflow.Type")).
		Return(nil).Once()
	uow.On("Commit", mock.Anything).Return(nil).Once()

	factory := new(MockWorkflowUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBootstrapWorkflowCommandHandler(factory, discardLogger())
	// IN_PROGRESS has no outgoing edge: a dead end, flagged but legal.
	cmd := bootstrapCmd(t, []commands.TransitionSpec{
		{FromStatusCode: "CONFIGURE", ToStatusCode: "IN_PROGRESS"},
	})

	require.NoError(t, handler.Handle(ctx, cmd))
	uow.AssertExpectations(t)
}

func TestBootstrapWorkflowCommandHandler_NotConstructedCommand(t *testing.T) {
	uow := NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockWorkflowUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewBootstrapWorkflowCommandHandler(factory, discardLogger())
	err := handler.Handle(t.Context(), commands.BootstrapWorkflowCommand{})
	require.ErrorIs(t, err, commands.ErrBootstrapWorkflowCommandIsNotConstructed)
}
