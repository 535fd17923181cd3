package commands_test

import (
	"testing"

	"kds/internal/core/application/usecases/commands"
	"kds/internal/core/domain/model/kernel"
	"kds/internal/core/domain/model/kitchen"
	"kds/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordTransitionCommand(t *testing.T) {
	t.Run("should create a valid command", func(t *testing.T) {
		orderID := kernel.NewUUID()
		notes := "extra sauce"

		cmd, err := commands.NewRecordTransitionCommand(
			orderID, kitchen.InProgress, "chef-1", &notes,
			commands.RequestMeta{IP: "10.0.0.1", UserAgent: "kds-ui/2.3"})

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.True(t, orderID.IsEqual(cmd.OrderID()))
		assert.Equal(t, kitchen.InProgress, cmd.Status())
		assert.Equal(t, "chef-1", cmd.ActorID())
		require.NotNil(t, cmd.Notes())
		assert.Equal(t, "extra sauce", *cmd.Notes())
		assert.Equal(t, "10.0.0.1", cmd.Meta().IP)
		assert.Equal(t, "kds-ui/2.3", cmd.Meta().UserAgent)
	})

	t.Run("should require an actor on mutating calls", func(t *testing.T) {
		_, err := commands.NewRecordTransitionCommand(
			kernel.NewUUID(), kitchen.InProgress, "", nil, commands.RequestMeta{})

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "actorId")
	})

	t.Run("should reject an invalid status", func(t *testing.T) {
		_, err := commands.NewRecordTransitionCommand(
			kernel.NewUUID(), kitchen.Unknown, "chef-1", nil, commands.RequestMeta{})

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a zero order id", func(t *testing.T) {
		var zero kernel.UUID

		_, err := commands.NewRecordTransitionCommand(
			zero, kitchen.InProgress, "chef-1", nil, commands.RequestMeta{})

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("zero value command fails validation", func(t *testing.T) {
		cmd := commands.RecordTransitionCommand{}

		require.Error(t, cmd.Validate())
	})
}
