package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/pkg/config"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/spf13/cobra"
)

// studio holds what every subcommand shares. It is filled in by the root
// command before any subcommand runs.
type studio struct {
	cfg    *config.Config
	log    logger.Logger
	ffmpeg *mediaio.FFmpeg
	prober *mediaio.Prober
	loader *mediaio.Loader
}

var (
	env     studio
	rootDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Compose, capture and render short vertical videos from the command line",
	Long: `Studio works on project files: JSON documents holding a composition of
clips or slides, overlays, speed ramps and a background track. It can import
media into a project, record segments from a rehearsal recording, render the
timeline to a single artifact and push projects to the studio database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		level := "production"
		if verbose {
			level = "development"
		}
		log := logger.New(logger.Opts{Env: level, Output: os.Stderr})
		ffmpeg := mediaio.NewFFmpeg(log, cfg.Studio.FFmpegPath)
		prober := mediaio.NewProber(log, cfg.Studio.FFprobePath, cfg.Studio.FallbackDuration)
		env = studio{
			cfg:    cfg,
			log:    log,
			ffmpeg: ffmpeg,
			prober: prober,
			loader: mediaio.NewLoader(log, prober, ffmpeg, mediaio.LoaderOpts{
				Root:     rootDir,
				CacheDir: filepath.Join(cfg.Storage.Root, "cache"),
				FPS:      cfg.Studio.ExportFPS,
			}),
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Directory relative media paths are resolved against")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(projectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
