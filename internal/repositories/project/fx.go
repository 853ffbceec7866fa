package project

import (
	"go.uber.org/fx"
)

var Module = fx.Module("project_repository",
	fx.Provide(
		fx.Annotate(
			NewPgx,
			fx.As(new(Repository)),
		),
	),
)
