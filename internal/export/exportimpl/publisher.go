package exportimpl

import (
	"context"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export"
	"github.com/orgball2608/reel-studio/internal/repositories/publication"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Publisher hands one package to every sink concurrently and records each
// attempt. A failing sink never cancels the others.
type Publisher struct {
	log          logger.Logger
	sinks        []export.Sink
	publications publication.Repository
}

// NewPublisher drops nil sinks, which stand for unconfigured ones.
// publications may be nil when attempts need not be recorded.
func NewPublisher(log logger.Logger, publications publication.Repository, sinks ...export.Sink) *Publisher {
	p := &Publisher{log: log.WithComponent("publisher"), publications: publications}
	for _, s := range sinks {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
	return p
}

func (p *Publisher) Sinks() []string {
	names := make([]string, 0, len(p.sinks))
	for _, s := range p.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Publish returns one publication per sink in sink order. The error is
// non-nil only when every sink failed.
func (p *Publisher) Publish(ctx context.Context, pkg domain.Package) ([]domain.Publication, error) {
	if len(p.sinks) == 0 {
		p.log.Warn("No sinks configured, package not published", "project", pkg.ProjectID)
		return nil, nil
	}

	pubs := make([]domain.Publication, len(p.sinks))
	errs := make([]error, len(p.sinks))
	var g errgroup.Group
	for i, sink := range p.sinks {
		g.Go(func() error {
			errs[i] = sink.Publish(ctx, pkg)
			pubs[i] = domain.Publication{
				ProjectID:   pkg.ProjectID,
				Sink:        sink.Name(),
				ArtifactURI: pkg.Artifact.URI,
				Status:      domain.PublicationSucceeded,
			}
			if errs[i] != nil {
				pubs[i].Status = domain.PublicationFailed
				pubs[i].Error = errs[i].Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range pubs {
		if errs[i] != nil {
			failed++
			p.log.Error("Sink failed", "sink", pubs[i].Sink, "project", pkg.ProjectID, "error", errs[i])
		} else {
			p.log.Info("Package published", "sink", pubs[i].Sink, "project", pkg.ProjectID)
		}
		pubs[i] = p.record(ctx, pubs[i])
	}

	if failed == len(p.sinks) {
		return pubs, errors.Wrap(errors.Join(errs...), "every sink failed")
	}
	return pubs, nil
}

func (p *Publisher) record(ctx context.Context, pub domain.Publication) domain.Publication {
	if p.publications == nil {
		return pub
	}
	stored, err := p.publications.Create(ctx, pub)
	if err != nil {
		p.log.Error("Failed to record publication", "sink", pub.Sink, "project", pub.ProjectID, "error", err)
		return pub
	}
	return stored
}
