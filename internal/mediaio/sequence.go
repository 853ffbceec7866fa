package mediaio

import (
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

const (
	CodecJPEGSeq = "jpegseq"

	sequenceExt  = ".jpegseq"
	manifestName = "manifest.json"
	audioName    = "audio.wav"
	// framePattern is shared with ffmpeg's image2 muxer and demuxer.
	framePattern = "%06d.jpg"
)

// Manifest describes a JPEG sequence directory.
type Manifest struct {
	FPS      int           `json:"fps"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Frames   int           `json:"frames"`
	Duration time.Duration `json:"duration"`
	Audio    string        `json:"audio,omitempty"`
}

func IsSequence(path string) bool {
	return strings.HasSuffix(strings.TrimSuffix(path, "/"), sequenceExt)
}

func frameName(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf(framePattern, index+1))
}

// CoverFrame is the path of a sequence's first frame.
func CoverFrame(dir string) string {
	return frameName(dir, 0)
}

func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return m, errors.Wrapf(errors.ErrNotFound, "sequence %s", dir)
		}
		return m, errors.WrapWithCode(err, errors.CodeDecodeFailure, "read sequence manifest")
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, errors.WrapWithCode(err, errors.CodeDecodeFailure, "parse sequence manifest")
	}
	if m.FPS <= 0 || m.Frames <= 0 {
		return m, errors.Wrapf(errors.ErrDecodeFailure, "sequence %s has no frames", dir)
	}
	return m, nil
}

func writeManifest(dir string, m Manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, manifestName), raw, 0o644)
}

// sequenceHandle plays a JPEG sequence against a clock. Its position runs
// independently of master time like any other media element.
type sequenceHandle struct {
	dir      string
	manifest Manifest
	clock    clockwork.Clock

	mu      sync.Mutex
	base    time.Duration
	anchor  time.Time
	playing bool
	rate    float64
	index   int
	frame   image.Image
}

var _ media.VideoHandle = (*sequenceHandle)(nil)

// OpenSequence opens a JPEG sequence directory for playback.
func OpenSequence(dir string, clock clockwork.Clock) (media.VideoHandle, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &sequenceHandle{dir: dir, manifest: m, clock: clock, rate: 1, index: -1}, nil
}

func (h *sequenceHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

func (h *sequenceHandle) positionLocked() time.Duration {
	pos := h.base
	if h.playing {
		pos += time.Duration(float64(h.clock.Now().Sub(h.anchor)) * h.rate)
	}
	if pos > h.manifest.Duration {
		pos = h.manifest.Duration
	}
	return pos
}

func (h *sequenceHandle) Seek(pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > h.manifest.Duration {
		pos = h.manifest.Duration
	}
	h.base = pos
	h.anchor = h.clock.Now()
	return nil
}

func (h *sequenceHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.playing {
		h.anchor = h.clock.Now()
		h.playing = true
	}
	return nil
}

func (h *sequenceHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.base = h.positionLocked()
	h.playing = false
	return nil
}

func (h *sequenceHandle) SetRate(rate float64) error {
	if rate <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "rate %v must be positive", rate)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.base = h.positionLocked()
	h.anchor = h.clock.Now()
	h.rate = rate
	return nil
}

func (h *sequenceHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.frame = nil
	return nil
}

func (h *sequenceHandle) Size() (int, int) {
	return h.manifest.Width, h.manifest.Height
}

// Frame decodes the frame at the current position. The last decoded frame is
// kept so a paused handle does not hit the disk every tick.
func (h *sequenceHandle) Frame() (image.Image, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	index := int(h.positionLocked() * time.Duration(h.manifest.FPS) / time.Second)
	if index >= h.manifest.Frames {
		index = h.manifest.Frames - 1
	}
	if index == h.index && h.frame != nil {
		return h.frame, nil
	}
	f, err := os.Open(frameName(h.dir, index))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDecodeFailure, "open frame")
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDecodeFailure, fmt.Sprintf("decode frame %d", index))
	}
	h.index = index
	h.frame = img
	return img, nil
}
