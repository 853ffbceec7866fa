package generative

import (
	"context"

	"github.com/orgball2608/reel-studio/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=generative.go -destination=mocks/mock.go

// Client talks to a speech service. Callers treat every failure and every
// empty result as "no enhancement" rather than an error of their own.
type Client interface {
	// Narrate synthesizes text to speech and returns a WAV file.
	Narrate(ctx context.Context, text string) ([]byte, error)
	// Transcribe returns timed lines spoken in the media at uri, in the
	// media's own time.
	Transcribe(ctx context.Context, uri string) ([]domain.TranscriptEntry, error)
}
