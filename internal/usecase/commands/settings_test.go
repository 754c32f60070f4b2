//go:build unit

package commands_test

import (
	"context"
	"testing"

	"atelier-backend/internal/usecase/commands"
	"atelier-backend/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCommands(t *testing.T) {
	t.Run("set trims the key and stores the value", func(t *testing.T) {
		f := newFixture()
		cmds := commands.NewSettingsCommands(f.uow, discardLogger())

		require.NoError(t, cmds.Set(context.Background(), "  "+shared.SettingShippingPriceCents+"  ", "500"))
		assert.Equal(t, "500", f.tx.settings.values[shared.SettingShippingPriceCents])
	})

	t.Run("blank key is rejected", func(t *testing.T) {
		f := newFixture()
		cmds := commands.NewSettingsCommands(f.uow, discardLogger())

		err := cmds.Set(context.Background(), "   ", "500")
		assert.ErrorIs(t, err, commands.ErrDomainValidation)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		f := newFixture()
		f.tx.settings.values["obsolete"] = "1"
		cmds := commands.NewSettingsCommands(f.uow, discardLogger())

		require.NoError(t, cmds.Delete(context.Background(), "obsolete"))
		assert.NotContains(t, f.tx.settings.values, "obsolete")
	})
}
