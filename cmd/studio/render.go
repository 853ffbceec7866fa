package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/compositor"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export/exportimpl"
	"github.com/orgball2608/reel-studio/internal/generative/generativeimpl"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/internal/ratelimit"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/retry"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <project.json>",
	Short: "Render a project to a single video artifact",
	Long: `Render plays the project's timeline frame by frame at the export rate with
every overlay burned in and the background and narration mixed into one
track. The first codec in --codec that can be encoded is used; JPEG
sequences are always available, containers need ffmpeg.`,
	Args: cobra.ExactArgs(1),
	RunE: runRenderCommand,
}

var (
	renderOutput   string
	renderFPS      int
	renderCodecs   []string
	renderNarrate  bool
	renderCaptions bool
	captionY       float64
	renderKeep     bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output directory (default STORAGE_ROOT/artifacts)")
	renderCmd.Flags().IntVar(&renderFPS, "fps", 0, "Export frame rate (default STUDIO_EXPORT_FPS)")
	renderCmd.Flags().StringSliceVar(&renderCodecs, "codec", nil, "Codec priority list (default STUDIO_CODECS)")
	renderCmd.Flags().BoolVar(&renderNarrate, "narrate", false, "Synthesize narration for text overlays before rendering")
	renderCmd.Flags().BoolVar(&renderCaptions, "captions", false, "Transcribe clips and add caption overlays before rendering")
	renderCmd.Flags().Float64Var(&captionY, "caption-y", 0, "Vertical caption position (default 85% of the output height)")
	renderCmd.Flags().BoolVar(&renderKeep, "save", false, "Write generated narration and captions back to the project file")
}

func runRenderCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := env.cfg

	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	comp, err := composition.FromSnapshot(p.Composition)
	if err != nil {
		return err
	}

	if renderNarrate || renderCaptions {
		enhancer, err := newEnhancer()
		if err != nil {
			return err
		}
		if renderNarrate {
			n, err := enhancer.Narrate(ctx, comp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Narrated %d overlays\n", n)
		}
		if renderCaptions {
			y := captionY
			if y == 0 {
				y = float64(cfg.Studio.OutputHeight) * 0.85
			}
			base := domain.Transform{X: float64(cfg.Studio.OutputWidth) / 2, Y: y, Scale: 1}
			added := enhancer.Caption(ctx, comp, base)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d caption overlays\n", len(added))
		}
		if renderKeep {
			p.Composition = comp.Snapshot()
			if err := saveProject(args[0], p); err != nil {
				return err
			}
		}
	}

	out := renderOutput
	if out == "" {
		out = filepath.Join(cfg.Storage.Root, "artifacts")
	}
	fps := renderFPS
	if fps <= 0 {
		fps = cfg.Studio.ExportFPS
	}
	codecs := renderCodecs
	if len(codecs) == 0 {
		codecs = cfg.Studio.Codecs
	}

	renderer := exportimpl.NewRenderer(env.log, func(clock clockwork.Clock) media.Loader {
		return env.loader.WithClock(clock)
	}, mediaio.NewFactory(env.log, out, env.ffmpeg), compositor.DefaultCatalog(), exportimpl.RenderOpts{
		FPS:                fps,
		Width:              cfg.Studio.OutputWidth,
		Height:             cfg.Studio.OutputHeight,
		Codecs:             codecs,
		ResyncTolerance:    cfg.Studio.ResyncTolerance,
		NarrationTolerance: cfg.Studio.NarrationTolerance,
	})

	started := time.Now()
	art, err := renderer.Render(ctx, comp.Snapshot())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s (%s, %dx%d, %s) in %s\n",
		mediaio.Resolve("", art.URI), art.Codec, art.Width, art.Height, art.Duration, time.Since(started).Round(time.Millisecond))
	return nil
}

func newEnhancer() (*generativeimpl.Enhancer, error) {
	cfg := env.cfg
	if cfg.Generative.BaseURL == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "GENERATIVE_BASE_URL is not set")
	}
	client := generativeimpl.NewHTTPClient(env.log, generativeimpl.ClientOpts{
		BaseURL: cfg.Generative.BaseURL,
		APIKey:  cfg.Generative.APIKey,
		Limiter: ratelimit.NewInMemoryLimiter(cfg.Generative.RequestsPerMinute, time.Minute, cfg.Generative.Burst),
		Retry:   retry.DefaultConfig(),
	})
	dir := filepath.Join(cfg.Storage.Root, "narration")
	return generativeimpl.NewEnhancer(env.log, client, dir, cfg.Generative.Workers), nil
}
