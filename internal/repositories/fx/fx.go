package fx

import (
	"github.com/orgball2608/reel-studio/internal/repositories/project"
	"github.com/orgball2608/reel-studio/internal/repositories/publication"
	"go.uber.org/fx"
)

var Module = fx.Options(
	project.Module,
	publication.Module,
)
