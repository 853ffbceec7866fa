package publication

import (
	"go.uber.org/fx"
)

var Module = fx.Module("publication_repository",
	fx.Provide(
		fx.Annotate(
			NewPgx,
			fx.As(new(Repository)),
		),
	),
)
