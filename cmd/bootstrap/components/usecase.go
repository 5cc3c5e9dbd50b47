package components

import (
	"openbook/internal/pkg/clock"
	"openbook/internal/usecase/commands"
	"openbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewBookingCommands,
		commands.NewResourceCommands,
		commands.NewStatusSweeper,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewCalendarQueries,
		queries.NewResourceQueries,
		queries.NewAuditQueries,
		queries.NewUserQueries,
	),
)
