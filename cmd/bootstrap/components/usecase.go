package components

import (
	"time"

	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/pkg/clock"
	"atelier-backend/internal/usecase/commands"
	"atelier-backend/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(loc *time.Location) *rental.PriceCalculator {
		return rental.NewPriceCalculator(loc)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewMachineCommands,
		commands.NewRentalCommands,
		commands.NewInstallationCommands,
		commands.NewCallbackCommands,
		commands.NewSettingsCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewMachineQueries,
		queries.NewRentalQueries,
	),
)
