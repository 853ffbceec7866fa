package mediaio

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

// DefaultFallbackDuration is used when a source reports no duration.
const DefaultFallbackDuration = 3 * time.Second

// Prober measures media durations. Sequences and WAV files are read
// directly, everything else goes through ffprobe.
type Prober struct {
	log      logger.Logger
	ffprobe  string
	fallback time.Duration
}

func NewProber(log logger.Logger, ffprobe string, fallback time.Duration) *Prober {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	if fallback <= 0 {
		fallback = DefaultFallbackDuration
	}
	return &Prober{log: log.WithComponent("prober"), ffprobe: ffprobe, fallback: fallback}
}

// Probe returns the duration of the media at path or an
// errors.ErrDurationUnmeasurable error.
func (p *Prober) Probe(ctx context.Context, path string) (time.Duration, error) {
	var (
		d   time.Duration
		err error
	)
	switch {
	case IsSequence(path):
		var m Manifest
		m, err = ReadManifest(path)
		d = m.Duration
	case strings.EqualFold(filepath.Ext(path), ".wav"):
		d, err = wavDuration(path)
	default:
		d, err = p.ffprobeDuration(ctx, path)
	}
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.CodeDurationUnmeasurable, "probe "+path)
	}
	if d <= 0 {
		return 0, errors.Wrapf(errors.ErrDurationUnmeasurable, "probe %s: no duration reported", path)
	}
	return d, nil
}

// Duration is Probe with the fallback substituted on failure.
func (p *Prober) Duration(ctx context.Context, path string) time.Duration {
	d, err := p.Probe(ctx, path)
	if err != nil {
		p.log.Warn("Duration unmeasurable, using fallback", "path", path, "fallback", p.fallback, "code", errors.GetCode(err), "error", err)
		return p.fallback
	}
	return d
}

func (p *Prober) ffprobeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, p.ffprobe, "-v", "quiet", "-print_format", "json", "-show_format", path)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}

	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func wavDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, errors.Wrap(errors.ErrDecodeFailure, "not a valid WAV file")
	}
	return dec.Duration()
}
