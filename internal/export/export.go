package export

import (
	"context"

	"github.com/orgball2608/reel-studio/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=export.go -destination=mocks/mock.go

// Sink receives a rendered package. A returned error marks the publication
// against this sink as failed; other sinks are unaffected.
type Sink interface {
	Name() string
	Publish(ctx context.Context, pkg domain.Package) error
}

// Renderer flattens a composition into a single encoded artifact.
type Renderer interface {
	Render(ctx context.Context, comp domain.Composition) (domain.Artifact, error)
}

type Request struct {
	ProjectID string
	Metadata  domain.PublishMetadata
}

type Result struct {
	Artifact     domain.Artifact
	Publications []domain.Publication
}

// Service renders a stored project and publishes it to every configured sink.
type Service interface {
	Export(ctx context.Context, req Request) (Result, error)
}
