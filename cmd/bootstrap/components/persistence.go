package components

import (
	"openbook/internal/infra/db"
	"openbook/internal/infra/readstore"
	"openbook/internal/infra/uow"
	"openbook/internal/usecase/commands"
	"openbook/internal/usecase/queries"
	"openbook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	uowModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Booking
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		// Resource
		fx.Annotate(
			readstore.NewResourceReadStore,
			fx.As(new(queries.ResourceReadStore)),
		),
		// User: query views plus credential lookup for auth
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
			fx.As(new(commands.UserCredentialStore)),
		),
		// Audit
		fx.Annotate(
			readstore.NewAuditReadStore,
			fx.As(new(queries.AuditReadStore)),
		),
	),
)

var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		uow.NewPostgresUoW,
		func(u shared.UnitOfWork) shared.CommandReads { return u.Reads() },
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
