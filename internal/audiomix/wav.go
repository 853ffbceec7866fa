package audiomix

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

const wavBitDepth = 16

// WAVWriter encodes normalized float PCM as 16-bit WAV.
type WAVWriter struct {
	enc    *wav.Encoder
	format *audio.Format
	pcm    *audio.IntBuffer
	frames int
}

func NewWAVWriter(w io.WriteSeeker, format *audio.Format) (*WAVWriter, error) {
	if format == nil || format.SampleRate <= 0 || format.NumChannels <= 0 {
		return nil, errors.Wrap(errors.ErrEncodeFailure, "WAV writer needs a sample rate and channel count")
	}
	return &WAVWriter{
		enc:    wav.NewEncoder(w, format.SampleRate, wavBitDepth, format.NumChannels, 1),
		format: format,
		pcm:    &audio.IntBuffer{Format: format, SourceBitDepth: wavBitDepth},
	}, nil
}

func (w *WAVWriter) Write(buf *audio.FloatBuffer) error {
	if len(buf.Data) == 0 {
		return nil
	}
	scale := math.Pow(2, wavBitDepth-1) - 1
	if cap(w.pcm.Data) < len(buf.Data) {
		w.pcm.Data = make([]int, len(buf.Data))
	}
	w.pcm.Data = w.pcm.Data[:len(buf.Data)]
	for i, v := range buf.Data {
		w.pcm.Data[i] = int(math.Round(clamp(v) * scale))
	}
	if err := w.enc.Write(w.pcm); err != nil {
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "write WAV samples")
	}
	w.frames += len(buf.Data) / w.format.NumChannels
	return nil
}

// Frames is the number of sample frames written so far.
func (w *WAVWriter) Frames() int {
	return w.frames
}

func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "finalize WAV")
	}
	return nil
}
