package generativeimpl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/generative"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// Enhancer adds generated narration and captions to a composition. Every
// generative failure is logged and skipped; the composition is left as it
// was for that overlay or clip.
type Enhancer struct {
	log     logger.Logger
	client  generative.Client
	dir     string
	workers int
}

// NewEnhancer stores synthesized narration under dir.
func NewEnhancer(log logger.Logger, client generative.Client, dir string, workers int) *Enhancer {
	if workers <= 0 {
		workers = 4
	}
	return &Enhancer{
		log:     log.WithComponent("enhancer"),
		client:  client,
		dir:     dir,
		workers: workers,
	}
}

// Narrate synthesizes speech for every text overlay that has none yet and
// attaches it. It returns how many overlays gained narration.
func (e *Enhancer) Narrate(ctx context.Context, comp *composition.Composition) (int, error) {
	var targets []domain.Overlay
	for _, o := range comp.Overlays() {
		if o.Kind == domain.OverlayText && o.NarrationURI == "" && strings.TrimSpace(o.Content) != "" {
			targets = append(targets, o)
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return 0, errors.Wrap(err, "create narration directory")
	}

	pool, err := ants.NewPool(e.workers, ants.WithPreAlloc(true))
	if err != nil {
		return 0, errors.Wrap(err, "create narration pool")
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		attached atomic.Int32
	)
	for _, o := range targets {
		wg.Add(1)
		overlay := o
		err := pool.Submit(func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				e.log.Info("Skipping narration due to context cancellation", "overlay", overlay.ID)
				return
			default:
			}
			if e.narrateOne(ctx, comp, overlay) {
				attached.Add(1)
			}
		})
		if err != nil {
			wg.Done()
			e.log.Error("Failed to submit narration job", "overlay", overlay.ID, "error", err)
		}
	}
	wg.Wait()

	n := int(attached.Load())
	e.log.Info("Narration finished", "overlays", len(targets), "attached", n)
	return n, ctx.Err()
}

func (e *Enhancer) narrateOne(ctx context.Context, comp *composition.Composition, o domain.Overlay) bool {
	wav, err := e.client.Narrate(ctx, o.Content)
	if err != nil {
		e.log.Warn("Narration unavailable, overlay stays silent", "overlay", o.ID, "error", err)
		return false
	}
	if len(wav) == 0 {
		e.log.Warn("Narration came back empty", "overlay", o.ID)
		return false
	}
	track, err := audiomix.DecodeWAV(bytes.NewReader(wav))
	if err != nil {
		e.log.Warn("Narration is not playable", "overlay", o.ID, "error", err)
		return false
	}
	_ = track.Close()

	path := filepath.Join(e.dir, o.ID+".wav")
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		e.log.Error("Failed to store narration", "overlay", o.ID, "error", err)
		return false
	}
	if err := comp.AttachNarration(o.ID, mediaio.URI(path)); err != nil {
		// the overlay was removed while narration was synthesized
		e.log.Warn("Narration not attached", "overlay", o.ID, "error", err)
		_ = os.Remove(path)
		return false
	}
	return true
}

// Caption transcribes every clip and adds the lines as text overlays at
// base, mapped from source time onto the timeline and cut to each clip's
// trim range.
func (e *Enhancer) Caption(ctx context.Context, comp *composition.Composition, base domain.Transform) []domain.Overlay {
	var (
		offset  time.Duration
		entries []domain.TranscriptEntry
	)
	for _, clip := range comp.Clips() {
		lines, err := e.client.Transcribe(ctx, clip.SourceURI)
		if err != nil {
			e.log.Warn("Transcript unavailable, clip left uncaptioned", "clip", clip.ID, "error", err)
		}
		for _, l := range lines {
			start, end := max(l.Start, clip.TrimStart), min(l.End, clip.TrimEnd)
			if start >= end {
				continue
			}
			entries = append(entries, domain.TranscriptEntry{
				Start: offset + start - clip.TrimStart,
				End:   offset + end - clip.TrimStart,
				Text:  l.Text,
			})
		}
		offset += clip.Length()
	}

	added := comp.AddCaptions(entries, base)
	e.log.Info("Captions added", "lines", len(entries), "overlays", len(added))
	return added
}
