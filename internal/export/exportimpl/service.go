package exportimpl

import (
	"context"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export"
	"github.com/orgball2608/reel-studio/internal/repositories/project"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

type ServiceOpts struct {
	Logger    logger.Logger
	Projects  project.Repository
	Renderer  export.Renderer
	Publisher *Publisher
	// Workers bounds how many renders run at once.
	Workers int
}

// ServiceImpl renders projects on a bounded worker pool and publishes the
// result.
type ServiceImpl struct {
	log       logger.Logger
	projects  project.Repository
	renderer  export.Renderer
	publisher *Publisher
	pool      *ants.Pool
}

var _ export.Service = (*ServiceImpl)(nil)

func NewService(opts ServiceOpts) (*ServiceImpl, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 2
	}
	pool, err := ants.NewPool(workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, errors.Wrap(err, "create render pool")
	}
	return &ServiceImpl{
		log:       opts.Logger.WithComponent("export"),
		projects:  opts.Projects,
		renderer:  opts.Renderer,
		publisher: opts.Publisher,
		pool:      pool,
	}, nil
}

func (s *ServiceImpl) Export(ctx context.Context, req export.Request) (export.Result, error) {
	p, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return export.Result{}, errors.Wrapf(err, "load project %s", req.ProjectID)
	}
	s.log.Info("Exporting project", "project", p.ID, "title", p.Title, "duration", p.Composition.MasterDuration())

	artifact, err := s.Render(ctx, p.Composition)
	if err != nil {
		return export.Result{}, errors.Wrapf(err, "render project %s", p.ID)
	}

	pubs, err := s.publisher.Publish(ctx, domain.Package{
		ProjectID:   p.ID,
		Artifact:    artifact,
		Composition: p.Composition,
		Metadata:    req.Metadata,
	})
	return export.Result{Artifact: artifact, Publications: pubs}, err
}

type renderResult struct {
	artifact domain.Artifact
	err      error
}

// Render runs one render job on the pool and waits for it.
func (s *ServiceImpl) Render(ctx context.Context, comp domain.Composition) (domain.Artifact, error) {
	done := make(chan renderResult, 1)
	err := s.pool.Submit(func() {
		if ctx.Err() != nil {
			done <- renderResult{err: ctx.Err()}
			return
		}
		artifact, err := s.renderer.Render(ctx, comp)
		done <- renderResult{artifact: artifact, err: err}
	})
	if err != nil {
		return domain.Artifact{}, errors.Wrap(err, "submit render job")
	}

	select {
	case <-ctx.Done():
		return domain.Artifact{}, ctx.Err()
	case res := <-done:
		return res.artifact, res.err
	}
}

// Close waits up to timeout for running renders to drain.
func (s *ServiceImpl) Close(timeout time.Duration) error {
	return s.pool.ReleaseTimeout(timeout)
}
