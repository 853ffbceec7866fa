package mediaio

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const defaultDecodeFPS = 30

type LoaderOpts struct {
	// Root resolves relative URIs.
	Root string
	// CacheDir holds sources decoded by ffmpeg.
	CacheDir string
	// FPS is the frame rate sources are decoded at.
	FPS int
	// Clock drives video handle positions; export passes a fake clock.
	Clock clockwork.Clock
}

// Loader opens media from the filesystem. JPEG sequences, WAV files and
// still images are read natively; other containers are decoded once through
// ffmpeg into the cache directory.
type Loader struct {
	log    logger.Logger
	opts   LoaderOpts
	prober *Prober
	ffmpeg *FFmpeg

	mu      sync.Mutex
	decodes map[string]*sync.Mutex
}

var _ media.Loader = (*Loader)(nil)

func NewLoader(log logger.Logger, prober *Prober, ffmpeg *FFmpeg, opts LoaderOpts) *Loader {
	if opts.FPS <= 0 {
		opts.FPS = defaultDecodeFPS
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.CacheDir == "" {
		opts.CacheDir = filepath.Join(os.TempDir(), "reel-studio-cache")
	}
	return &Loader{
		log:     log.WithComponent("loader"),
		opts:    opts,
		prober:  prober,
		ffmpeg:  ffmpeg,
		decodes: make(map[string]*sync.Mutex),
	}
}

// WithClock returns a loader sharing the cache but driving handles from
// clock.
func (l *Loader) WithClock(clock clockwork.Clock) *Loader {
	opts := l.opts
	opts.Clock = clock
	return NewLoader(l.log, l.prober, l.ffmpeg, opts)
}

func (l *Loader) OpenVideo(ctx context.Context, uri string) (media.VideoHandle, error) {
	path, err := l.existing(uri)
	if err != nil {
		return nil, err
	}
	if !IsSequence(path) {
		if path, err = l.decoded(ctx, path); err != nil {
			return nil, err
		}
	}
	return OpenSequence(path, l.opts.Clock)
}

func (l *Loader) OpenAudio(ctx context.Context, uri string) (media.AudioHandle, error) {
	path, err := l.existing(uri)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.EqualFold(filepath.Ext(path), ".wav"):
	case IsSequence(path):
		m, err := ReadManifest(path)
		if err != nil {
			return nil, err
		}
		if m.Audio == "" {
			return nil, errors.Wrapf(errors.ErrNotFound, "sequence %s has no audio", uri)
		}
		path = filepath.Join(path, m.Audio)
	default:
		dir, err := l.decoded(ctx, path)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, audioName)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDecodeFailure, "open audio")
	}
	defer f.Close()
	return audiomix.DecodeWAV(f)
}

func (l *Loader) LoadImage(_ context.Context, uri string) (image.Image, error) {
	path, err := l.existing(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDecodeFailure, "open image")
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDecodeFailure, "decode image "+filepath.Base(path))
	}
	l.log.Debug("Image loaded", "uri", uri, "format", format, "size", img.Bounds().Size().String())
	return img, nil
}

func (l *Loader) existing(uri string) (string, error) {
	path := Resolve(l.opts.Root, uri)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(errors.ErrNotFound, "media %s", uri)
		}
		return "", errors.WrapWithCode(err, errors.CodeDecodeFailure, "stat "+uri)
	}
	return path, nil
}

// decoded returns the cached sequence for src, decoding it on first use.
// Concurrent opens of one source wait for a single decode.
func (l *Loader) decoded(ctx context.Context, src string) (string, error) {
	sum := sha1.Sum([]byte(src))
	dir := filepath.Join(l.opts.CacheDir, hex.EncodeToString(sum[:8])+sequenceExt)

	l.mu.Lock()
	lock, ok := l.decodes[dir]
	if !ok {
		lock = &sync.Mutex{}
		l.decodes[dir] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	if _, err := ReadManifest(dir); err == nil {
		return dir, nil
	}
	if l.ffmpeg == nil || !l.ffmpeg.Available() {
		return "", errors.Wrapf(errors.ErrDecodeFailure, "cannot decode %s without ffmpeg", filepath.Base(src))
	}
	duration := l.prober.Duration(ctx, src)
	if err := l.ffmpeg.ToSequence(ctx, src, dir, l.opts.FPS, duration); err != nil {
		return "", err
	}
	l.log.Info("Source decoded", "src", src, "cache", dir)
	return dir, nil
}
