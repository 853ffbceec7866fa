// Package media declares the runtime collaborators the engine drives:
// capture devices, playback handles and loaders. Implementations live in
// mediaio (files, ffmpeg) and in tests.
package media

import (
	"context"
	"image"
	"time"

	"github.com/go-audio/audio"
)

//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=mocks/mock.go

type Facing string

const (
	FacingUser        Facing = "user"
	FacingEnvironment Facing = "environment"
)

type StreamRequest struct {
	Facing    Facing
	Width     int
	Height    int
	FrameRate int
}

// Source yields live camera and microphone streams. Open may fail with
// errors.ErrPermissionDenied or errors.ErrDeviceUnavailable; it is the only
// call in the capture path allowed to block.
type Source interface {
	Open(ctx context.Context, req StreamRequest) (Stream, error)
}

type Stream interface {
	// LatestFrame returns the most recent camera frame without blocking.
	LatestFrame() (image.Image, bool)
	// Microphone may return nil when the stream has no audio track.
	Microphone() AudioReader
	Facing() Facing
	Close() error
}

// AudioReader is a non-blocking PCM source. ReadAudio fills at most
// len(buf.Data) interleaved samples, normalized to [-1, 1], and returns how
// many were written.
type AudioReader interface {
	Format() *audio.Format
	ReadAudio(buf *audio.FloatBuffer) (int, error)
}

// PlaybackHandle is a media element running on its own clock. The engine
// only reads its position and issues seeks and transport commands.
type PlaybackHandle interface {
	Position() time.Duration
	Seek(pos time.Duration) error
	Play() error
	Pause() error
	SetRate(rate float64) error
	Close() error
}

type VideoHandle interface {
	PlaybackHandle
	// Frame returns the decoded frame at the current position.
	Frame() (image.Image, error)
	Size() (width, height int)
}

type AudioHandle interface {
	PlaybackHandle
	AudioReader
	Duration() time.Duration
}

// Loader opens media referenced by URI. Decode problems are reported as
// errors.ErrDecodeFailure.
type Loader interface {
	OpenVideo(ctx context.Context, uri string) (VideoHandle, error)
	OpenAudio(ctx context.Context, uri string) (AudioHandle, error)
	LoadImage(ctx context.Context, uri string) (image.Image, error)
}
