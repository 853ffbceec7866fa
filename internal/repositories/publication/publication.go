package publication

import (
	"context"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=publication.go -destination=mocks/mock.go
type Repository interface {
	// Create records one export attempt and returns it with ID and CreatedAt set
	Create(ctx context.Context, pub domain.Publication) (domain.Publication, error)

	// ListByProject returns a project's publications, newest first
	ListByProject(ctx context.Context, projectID string) ([]domain.Publication, error)

	// ArtifactURIs returns the artifacts of successful publications newer than since
	ArtifactURIs(ctx context.Context, since time.Time) ([]string, error)

	// CleanupOldRecords deletes records older than the given time
	CleanupOldRecords(ctx context.Context, before time.Time) (int64, error)
}
