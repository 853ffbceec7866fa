package project

import (
	"context"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

var (
	ErrAlreadyExists = errors.Wrap(errors.ErrAlreadyExists, "project already exists")
	ErrNotFound      = errors.Wrap(errors.ErrNotFound, "project not found")
)

//go:generate go run go.uber.org/mock/mockgen -source=project.go -destination=mocks/mock.go
type Repository interface {
	// Create stores a new project; CreatedAt and UpdatedAt are set by the store.
	Create(ctx context.Context, p domain.Project) (domain.Project, error)

	// Get returns the project with the given ID or ErrNotFound
	Get(ctx context.Context, id string) (domain.Project, error)

	// Update replaces title and composition
	Update(ctx context.Context, p domain.Project) error

	// List returns the most recently updated projects
	List(ctx context.Context, limit int) ([]domain.Project, error)

	Delete(ctx context.Context, id string) error
}
