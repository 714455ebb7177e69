package commands_test

import (
	"testing"

	"prodflow/internal/core/application/usecases/commands"
	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	specs := []commands.ProcessSpec{
		{WorkflowTypeCode: "MILLING_RUN", TotalRuns: 2},
		{WorkflowTypeCode: "PAINT_RUN", TotalRuns: 1},
	}

	cmd, err := commands.NewPlaceOrderCommand(id, specs)
	require.NoError(t, err)
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, specs, cmd.Processes())
	require.NoError(t, cmd.Validate())
}

func TestNewPlaceOrderCommand_InvalidOrderID(t *testing.T) {
	_, err := commands.NewPlaceOrderCommand(kernel.UUID{}, []commands.ProcessSpec{
		{WorkflowTypeCode: "MILLING_RUN", TotalRuns: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewPlaceOrderCommand_EmptyProcesses(t *testing.T) {
	_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewPlaceOrderCommand_EmptyWorkflowTypeCode(t *testing.T) {
	_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), []commands.ProcessSpec{
		{WorkflowTypeCode: "", TotalRuns: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewPlaceOrderCommand_InvalidTotalRuns(t *testing.T) {
	_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), []commands.ProcessSpec{
		{WorkflowTypeCode: "MILLING_RUN", TotalRuns: 0},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestPlaceOrderCommand_NotConstructed(t *testing.T) {
	var cmd commands.PlaceOrderCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrPlaceOrderCommandIsNotConstructed)
}
