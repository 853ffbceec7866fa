package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/repositories/publication"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

type RetentionOpts struct {
	// Retention is how long unpublished artifacts are kept.
	Retention time.Duration
	// Published is how long published artifacts and their records are kept.
	Published time.Duration
	Interval  time.Duration
	Clock     clockwork.Clock
}

// Retention periodically deletes stale artifacts and publication records.
type Retention struct {
	log          logger.Logger
	store        *Store
	publications publication.Repository
	opts         RetentionOpts
}

func NewRetention(log logger.Logger, store *Store, publications publication.Repository, opts RetentionOpts) *Retention {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Published < opts.Retention {
		opts.Published = opts.Retention
	}
	return &Retention{
		log:          log.WithComponent("retention"),
		store:        store,
		publications: publications,
		opts:         opts,
	}
}

// Schedule starts the sweep job and stops it when ctx is done.
func (r *Retention) Schedule(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithClock(r.opts.Clock))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.opts.Interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			taskCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			if err := r.Sweep(taskCtx); err != nil {
				r.log.Error("Artifact sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule artifact sweep: %w", err)
	}

	scheduler.Start()
	r.log.Info("Artifact retention scheduled", "interval", r.opts.Interval, "retention", r.opts.Retention)

	go func() {
		<-ctx.Done()
		r.log.Info("Stopping artifact retention scheduler")
		if err := scheduler.Shutdown(); err != nil {
			r.log.Error("Failed to shut down scheduler", "error", err)
		}
	}()

	return nil
}

// Sweep runs one retention pass.
func (r *Retention) Sweep(ctx context.Context) error {
	now := r.opts.Clock.Now()
	publishedCutoff := now.Add(-r.opts.Published)

	uris, err := r.publications.ArtifactURIs(ctx, publishedCutoff)
	if err != nil {
		return fmt.Errorf("failed to list published artifacts: %w", err)
	}
	keep := make(map[string]bool, len(uris))
	for _, uri := range uris {
		keep[uri] = true
	}

	removed, err := r.store.Sweep(ctx, now.Add(-r.opts.Retention), keep)
	if err != nil {
		return err
	}

	records, err := r.publications.CleanupOldRecords(ctx, publishedCutoff)
	if err != nil {
		return fmt.Errorf("failed to clean publication records: %w", err)
	}

	r.log.Info("Artifact sweep finished", "removed", removed, "kept", len(keep), "records_removed", records)
	return nil
}
