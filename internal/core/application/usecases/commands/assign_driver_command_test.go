package commands_test

import (
	"testing"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/require"
)

func TestNewAssignDriverCommand(t *testing.T) {
	batchID := kernel.NewUUID()
	driverID := kernel.NewUUID()

	cmd, err := commands.NewAssignDriverCommand(batchID, driverID)
	require.NoError(t, err)
	require.True(t, cmd.BatchID().IsEqual(batchID))
	require.True(t, cmd.DriverID().IsEqual(driverID))
	require.NoError(t, cmd.Validate())
}

func TestNewAssignDriverCommand_InvalidIDs(t *testing.T) {
	_, err := commands.NewAssignDriverCommand(kernel.UUID{}, kernel.UUID{})
	require.Error(t, err)
}

func TestAssignDriverCommand_Validate_NotConstructed(t *testing.T) {
	var cmd commands.AssignDriverCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrAssignDriverCommandIsNotConstructed)
}
