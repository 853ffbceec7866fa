package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/capture"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/compositor"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture <project.json>",
	Short: "Record a segment from a rehearsal recording into a project",
	Long: `Capture replays a recorded JPEG sequence as the camera and microphone and
records one segment through the live pipeline: overlays and the project's
filter are burned in, the background track is mixed under the microphone
and speed ramps apply. Recording stops after --for or when the project's
duration budget is used up; the segment is appended as a clip.`,
	Args: cobra.ExactArgs(1),
	RunE: runCaptureCommand,
}

var (
	captureFrom   string
	captureFor    time.Duration
	captureOutput string
	captureFacing string
	captureUndo   bool
)

func init() {
	captureCmd.Flags().StringVar(&captureFrom, "from", "", "JPEG sequence to replay as the camera (required)")
	captureCmd.Flags().DurationVar(&captureFor, "for", 0, "Stop after this much wall time (default until the budget is full)")
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "Segment directory (default STORAGE_ROOT/captures)")
	captureCmd.Flags().StringVar(&captureFacing, "facing", string(media.FacingUser), "Camera facing; user facing frames are mirrored")
	captureCmd.Flags().BoolVar(&captureUndo, "undo", false, "Remove the last recorded segment instead of recording")
	_ = captureCmd.MarkFlagFilename("from")
}

func runCaptureCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := env.cfg
	log := env.log

	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	comp, err := composition.FromSnapshot(p.Composition)
	if err != nil {
		return err
	}

	out := captureOutput
	if out == "" {
		out = filepath.Join(cfg.Storage.Root, "captures")
	}
	filter := comp.Filter()
	if filter == "" {
		filter = cfg.Studio.Filter
	}
	surface, err := compositor.New(log, compositor.DefaultCatalog(), compositor.Opts{
		Filter: filter,
		Width:  cfg.Studio.OutputWidth,
		Height: cfg.Studio.OutputHeight,
	})
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	deps := capture.Deps{
		Log:         log,
		Source:      mediaio.NewReplaySource(mediaio.Resolve(rootDir, captureFrom), clock),
		Encoders:    mediaio.NewFactory(log, out, env.ffmpeg),
		Compositor:  surface,
		Mixer:       audiomix.NewGraph(log),
		Composition: comp,
	}
	if uri, _ := comp.Background(); uri != "" {
		bg, err := env.loader.OpenAudio(ctx, uri)
		if err != nil {
			log.Warn("Background track unavailable, recording without it", "uri", uri, "error", err)
		} else {
			deps.Background = bg
			defer bg.Close()
		}
	}

	session, err := capture.New(deps, capture.Opts{
		MaxDuration: cfg.Studio.MaxDuration,
		FPS:         cfg.Studio.CaptureFPS,
		Codecs:      cfg.Studio.Codecs,
		Facing:      media.Facing(captureFacing),
		Width:       cfg.Studio.OutputWidth,
		Height:      cfg.Studio.OutputHeight,
		Clock:       clock,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if captureUndo {
		removed, err := session.UndoLastSegment()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed segment %s (%s)\n", removed.ID, removed.Length())
		return saveCaptured(args[0], p, comp)
	}
	if captureFrom == "" {
		return errors.Wrap(errors.ErrInvalidInput, "--from is required")
	}

	if err := session.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recording with %s, %s of %s left\n", session.Codec(), cfg.Studio.MaxDuration-comp.MasterDuration(), cfg.Studio.MaxDuration)

	if err := record(cmd, session, cfg.Studio.CaptureFPS); err != nil {
		return err
	}

	clip, err := session.Await(ctx)
	if err != nil {
		return err
	}
	if clip == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing recorded")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s into %s, timeline is now %s\n", clip.Length(), mediaio.Resolve("", clip.SourceURI), comp.MasterDuration())
	return saveCaptured(args[0], p, comp)
}

// record ticks the session at the capture rate until the budget, --for or
// an interrupt ends the segment. An interrupt discards it.
func record(cmd *cobra.Command, session *capture.Session, fps int) error {
	ctx := cmd.Context()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var deadline <-chan time.Time
	if captureFor > 0 {
		timer := time.NewTimer(captureFor)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			_ = session.Discard()
			return ctx.Err()
		case <-deadline:
			return session.Stop()
		case now := <-ticker.C:
			st := session.Tick(now)
			if st.ForcedStop {
				fmt.Fprintln(cmd.OutOrStdout(), "Duration budget reached")
				return nil
			}
		}
	}
}

func saveCaptured(path string, p projectFile, comp *composition.Composition) error {
	p.Composition = comp.Snapshot()
	return saveProject(path, p)
}
