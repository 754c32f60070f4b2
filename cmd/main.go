package main

import (
	"log/slog"

	"atelier-backend/cmd/bootstrap"
	"atelier-backend/internal/usecase/commands"
	"atelier-backend/internal/usecase/queries"

	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		bootstrap.Module,
		// Anchor the command and query services so the graph builds them
		// even with no inbound transport wired yet.
		fx.Invoke(func(
			log *slog.Logger,
			_ commands.MachineCommands,
			_ commands.RentalCommands,
			_ commands.InstallationCommands,
			_ commands.CallbackCommands,
			_ commands.SettingsCommands,
			_ queries.MachineQueries,
			_ queries.RentalQueries,
		) {
			log.Info("atelier backend ready")
		}),
	)
	app.Run()
}
