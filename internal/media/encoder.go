package media

import (
	"context"
	"image"
	"time"

	"github.com/go-audio/audio"
	"github.com/orgball2608/reel-studio/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=encoder.go -destination=mocks/encoder_mock.go

// Encoder muxes composed frames and mixed audio into one artifact.
// Failures are reported as errors.ErrEncodeFailure.
type Encoder interface {
	Begin(width, height, fps int, format *audio.Format) error
	EncodeFrame(img image.Image, ts time.Duration) error
	EncodeAudio(buf *audio.FloatBuffer) error
	End(ctx context.Context) (domain.Artifact, error)
	Abort() error
}

type EncoderFactory interface {
	Supports(codec string) bool
	NewEncoder(codec string) (Encoder, error)
}

// SelectCodec returns the first codec in priority order the factory supports.
func SelectCodec(f EncoderFactory, priority []string) (string, bool) {
	for _, codec := range priority {
		if f.Supports(codec) {
			return codec, true
		}
	}
	return "", false
}
