package audiomix

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

const readChunk = 8192

// Track is an in-memory PCM track (background music or narration). Its
// position advances as samples are read, scaled by the playback rate.
type Track struct {
	mu      sync.Mutex
	format  *audio.Format
	samples []float64 // interleaved, normalized
	frames  int
	pos     float64 // in frames
	rate    float64
	playing bool
}

var _ media.AudioHandle = (*Track)(nil)

// NewTrack wraps interleaved samples in [-1, 1].
func NewTrack(format *audio.Format, samples []float64) *Track {
	frames := 0
	if format != nil && format.NumChannels > 0 {
		frames = len(samples) / format.NumChannels
	}
	return &Track{format: format, samples: samples, frames: frames, rate: 1}
}

// DecodeWAV reads a whole PCM WAV stream into a Track.
func DecodeWAV(r io.ReadSeeker) (*Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.Wrap(errors.ErrDecodeFailure, "not a valid WAV stream")
	}
	if dec.WavAudioFormat != 1 {
		return nil, errors.Wrapf(errors.ErrDecodeFailure, "unsupported WAV format %d, only PCM is supported", dec.WavAudioFormat)
	}
	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, errors.Wrap(errors.ErrDecodeFailure, "WAV stream has no usable format")
	}
	scale := math.Pow(2, float64(dec.BitDepth)-1)

	chunk := readChunk
	if chunk%format.NumChannels != 0 {
		chunk = (chunk/format.NumChannels + 1) * format.NumChannels
	}
	pcm := &audio.IntBuffer{Format: format, Data: make([]int, chunk)}

	var samples []float64
	for {
		n, err := dec.PCMBuffer(pcm)
		if err == io.EOF || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeDecodeFailure, "read PCM chunk")
		}
		for _, v := range pcm.Data[:n] {
			samples = append(samples, float64(v)/scale)
		}
	}
	return NewTrack(format, samples), nil
}

func (t *Track) Format() *audio.Format {
	return t.format
}

func (t *Track) Duration() time.Duration {
	if t.format == nil || t.format.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(t.frames) / float64(t.format.SampleRate) * float64(time.Second))
}

func (t *Track) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frameToTime(t.pos)
}

func (t *Track) Seek(pos time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	f := pos.Seconds() * float64(t.format.SampleRate)
	if f > float64(t.frames) {
		f = float64(t.frames)
	}
	t.pos = f
	return nil
}

func (t *Track) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = true
	return nil
}

func (t *Track) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
	return nil
}

func (t *Track) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

func (t *Track) SetRate(rate float64) error {
	if rate <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "playback rate %v must be positive", rate)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rate = rate
	return nil
}

func (t *Track) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
	return nil
}

// ReadAudio copies samples from the current position. A paused or finished
// track yields nothing. Rates other than 1 step through the source with
// nearest-frame resampling.
func (t *Track) ReadAudio(buf *audio.FloatBuffer) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		return 0, nil
	}
	ch := t.format.NumChannels
	want := len(buf.Data) / ch
	written := 0
	for written < want {
		frame := int(t.pos)
		if frame >= t.frames {
			break
		}
		copy(buf.Data[written*ch:(written+1)*ch], t.samples[frame*ch:(frame+1)*ch])
		written++
		t.pos += t.rate
	}
	if t.pos > float64(t.frames) {
		t.pos = float64(t.frames)
	}
	return written * ch, nil
}

func (t *Track) frameToTime(f float64) time.Duration {
	if t.format == nil || t.format.SampleRate == 0 {
		return 0
	}
	return time.Duration(math.Round(f / float64(t.format.SampleRate) * float64(time.Second)))
}
