package app

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/compositor"
	"github.com/orgball2608/reel-studio/internal/export"
	"github.com/orgball2608/reel-studio/internal/export/exportimpl"
	"github.com/orgball2608/reel-studio/internal/generative"
	"github.com/orgball2608/reel-studio/internal/generative/generativeimpl"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/internal/migrations"
	"github.com/orgball2608/reel-studio/internal/pgx"
	"github.com/orgball2608/reel-studio/internal/ratelimit"
	repositories "github.com/orgball2608/reel-studio/internal/repositories/fx"
	"github.com/orgball2608/reel-studio/internal/repositories/project"
	"github.com/orgball2608/reel-studio/internal/repositories/publication"
	"github.com/orgball2608/reel-studio/internal/storage"
	"github.com/orgball2608/reel-studio/internal/telegram/telegramimpl"
	"github.com/orgball2608/reel-studio/pkg/config"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/orgball2608/reel-studio/pkg/retry"
	"go.uber.org/fx"
)

const shutdownTimeout = 30 * time.Second

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	repositories.Module,
	fx.Provide(
		newStore,
		newFFmpeg,
		newProber,
		newLoader,
		fx.Annotate(
			newFactory,
			fx.As(new(media.EncoderFactory)),
		),
		compositor.DefaultCatalog,
		fx.Annotate(
			newRenderer,
			fx.As(new(export.Renderer)),
		),
		fx.Annotate(
			newStorageSink,
			fx.ResultTags(`group:"sinks"`),
		),
		fx.Annotate(
			newTelegramSinks,
			fx.ResultTags(`group:"sinks,flatten"`),
		),
		newPublisher,
		newExportService,
		fx.Annotate(
			newLimiter,
			fx.As(new(ratelimit.Limiter)),
		),
		fx.Annotate(
			newGenerativeClient,
			fx.As(new(generative.Client)),
		),
		newEnhancer,
		newRetention,
		NewServer,
	),
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func newStore(cfg *config.Config, log logger.Logger) (*storage.Store, error) {
	return storage.NewStore(log, cfg.Storage.Root)
}

func newFFmpeg(cfg *config.Config, log logger.Logger) *mediaio.FFmpeg {
	return mediaio.NewFFmpeg(log, cfg.Studio.FFmpegPath)
}

func newProber(cfg *config.Config, log logger.Logger) *mediaio.Prober {
	return mediaio.NewProber(log, cfg.Studio.FFprobePath, cfg.Studio.FallbackDuration)
}

func newLoader(cfg *config.Config, log logger.Logger, prober *mediaio.Prober, ffmpeg *mediaio.FFmpeg) *mediaio.Loader {
	return mediaio.NewLoader(log, prober, ffmpeg, mediaio.LoaderOpts{
		Root:     cfg.Storage.Root,
		CacheDir: filepath.Join(cfg.Storage.Root, "cache"),
		FPS:      cfg.Studio.ExportFPS,
	})
}

func newFactory(log logger.Logger, store *storage.Store, ffmpeg *mediaio.FFmpeg) *mediaio.Factory {
	return mediaio.NewFactory(log, store.ArtifactsDir(), ffmpeg)
}

func newRenderer(cfg *config.Config, log logger.Logger, loader *mediaio.Loader, encoders media.EncoderFactory, catalog *compositor.Catalog) *exportimpl.Renderer {
	return exportimpl.NewRenderer(log, LoaderFor(loader), encoders, catalog, exportimpl.RenderOpts{
		FPS:                cfg.Studio.ExportFPS,
		Width:              cfg.Studio.OutputWidth,
		Height:             cfg.Studio.OutputHeight,
		Codecs:             cfg.Studio.Codecs,
		ResyncTolerance:    cfg.Studio.ResyncTolerance,
		NarrationTolerance: cfg.Studio.NarrationTolerance,
	})
}

// LoaderFor drives a shared loader's handles from the renderer's clock.
func LoaderFor(loader *mediaio.Loader) exportimpl.LoaderFor {
	return func(clock clockwork.Clock) media.Loader {
		return loader.WithClock(clock)
	}
}

func newStorageSink(store *storage.Store) export.Sink {
	return store
}

// newTelegramSinks is empty unless a bot token and channel are configured.
func newTelegramSinks(cfg *config.Config, log logger.Logger) ([]export.Sink, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.Channel == "" {
		log.Info("Telegram sink disabled")
		return nil, nil
	}
	client, err := telegramimpl.New(telegramimpl.Opts{Config: cfg, Logger: log})
	if err != nil {
		return nil, err
	}
	return []export.Sink{exportimpl.NewTelegramSink(log, client, retry.DefaultConfig())}, nil
}

type PublisherOpts struct {
	fx.In

	Logger       logger.Logger
	Publications publication.Repository
	Sinks        []export.Sink `group:"sinks"`
}

func newPublisher(opts PublisherOpts) *exportimpl.Publisher {
	return exportimpl.NewPublisher(opts.Logger, opts.Publications, opts.Sinks...)
}

func newExportService(lc fx.Lifecycle, cfg *config.Config, log logger.Logger, projects project.Repository,
	renderer export.Renderer, publisher *exportimpl.Publisher) (export.Service, error) {
	svc, err := exportimpl.NewService(exportimpl.ServiceOpts{
		Logger:    log,
		Projects:  projects,
		Renderer:  renderer,
		Publisher: publisher,
		Workers:   cfg.Studio.RenderWorkers,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return svc.Close(shutdownTimeout)
		},
	})
	return svc, nil
}

func newLimiter(cfg *config.Config) *ratelimit.InMemoryLimiter {
	return ratelimit.NewInMemoryLimiter(cfg.Generative.RequestsPerMinute, time.Minute, cfg.Generative.Burst)
}

func newGenerativeClient(cfg *config.Config, log logger.Logger, limiter ratelimit.Limiter) *generativeimpl.HTTPClient {
	return generativeimpl.NewHTTPClient(log, generativeimpl.ClientOpts{
		BaseURL: cfg.Generative.BaseURL,
		APIKey:  cfg.Generative.APIKey,
		Limiter: limiter,
		Retry:   retry.DefaultConfig(),
	})
}

// newEnhancer returns nil when no generative service is configured; the
// server then answers enhancement requests with 503.
func newEnhancer(cfg *config.Config, log logger.Logger, client generative.Client) Enhancer {
	if cfg.Generative.BaseURL == "" {
		log.Info("Generative service not configured, narration and captions disabled")
		return nil
	}
	dir := filepath.Join(cfg.Storage.Root, "narration")
	return generativeimpl.NewEnhancer(log, client, dir, cfg.Generative.Workers)
}

func newRetention(cfg *config.Config, log logger.Logger, store *storage.Store, publications publication.Repository) *storage.Retention {
	return storage.NewRetention(log, store, publications, storage.RetentionOpts{
		Retention: cfg.Storage.Retention,
		Published: cfg.Storage.PublishedRetention,
		Interval:  cfg.Storage.SweepInterval,
	})
}

func migrate(cfg *config.Config, log logger.Logger) error {
	db, err := migrations.Open(cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(context.Background(), db, "up"); err != nil {
		return err
	}
	log.Info("Migrations applied")
	return nil
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, server *Server, retention *storage.Retention, publisher *exportimpl.Publisher) {
	ctx, cancel := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:              serverAddr(cfg.App.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := retention.Schedule(ctx); err != nil {
				log.Error("Retention schedule error", "error", err)
				return err
			}

			go func() {
				log.Info("Starting server", "addr", httpServer.Addr, "sinks", publisher.Sinks())
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("Server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			defer logger.Flush()
			return httpServer.Shutdown(stopCtx)
		},
	})
}
