package mediaio

import (
	"bufio"
	"context"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

const jpegQuality = 85

// SequenceEncoder writes frames as numbered JPEGs plus a 16-bit WAV track.
// Frames are placed by timestamp on a constant-rate grid: gaps repeat the
// previous frame and a frame landing on an occupied slot is dropped.
type SequenceEncoder struct {
	dir string

	fps, width, height int
	frames             int
	scaled             *image.RGBA
	audioFile          *os.File
	wav                *audiomix.WAVWriter
	began              bool
}

var _ media.Encoder = (*SequenceEncoder)(nil)

func NewSequenceEncoder(dir string) *SequenceEncoder {
	return &SequenceEncoder{dir: dir}
}

func (e *SequenceEncoder) Dir() string {
	return e.dir
}

func (e *SequenceEncoder) Begin(width, height, fps int, format *audio.Format) error {
	if width <= 0 || height <= 0 || fps <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "sequence %dx%d at %d fps", width, height, fps)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "create sequence directory")
	}
	e.width, e.height, e.fps = width, height, fps
	if format != nil {
		f, err := os.Create(filepath.Join(e.dir, audioName))
		if err != nil {
			return errors.WrapWithCode(err, errors.CodeEncodeFailure, "create audio track")
		}
		w, err := audiomix.NewWAVWriter(f, format)
		if err != nil {
			_ = f.Close()
			return err
		}
		e.audioFile, e.wav = f, w
	}
	e.began = true
	return nil
}

func (e *SequenceEncoder) EncodeFrame(img image.Image, ts time.Duration) error {
	if !e.began {
		return errors.Wrap(errors.ErrInvalidState, "sequence encoder not started")
	}
	slot := int(ts * time.Duration(e.fps) / time.Second)
	if slot < e.frames {
		return nil
	}
	// the previous frame stays on screen until this one's slot
	for e.frames > 0 && e.frames < slot {
		if err := copyFile(frameName(e.dir, e.frames-1), frameName(e.dir, e.frames)); err != nil {
			return errors.WrapWithCode(err, errors.CodeEncodeFailure, "repeat frame")
		}
		e.frames++
	}
	if err := e.writeFrame(e.frames, e.fit(img)); err != nil {
		return err
	}
	e.frames++
	// a late first frame also covers the slots before it
	for e.frames <= slot {
		if err := copyFile(frameName(e.dir, 0), frameName(e.dir, e.frames)); err != nil {
			return errors.WrapWithCode(err, errors.CodeEncodeFailure, "repeat frame")
		}
		e.frames++
	}
	return nil
}

// fit scales img to the sequence size when they differ.
func (e *SequenceEncoder) fit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == e.width && b.Dy() == e.height {
		return img
	}
	if e.scaled == nil {
		e.scaled = image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	}
	xdraw.ApproxBiLinear.Scale(e.scaled, e.scaled.Bounds(), img, b, xdraw.Src, nil)
	return e.scaled
}

func (e *SequenceEncoder) writeFrame(index int, img image.Image) error {
	f, err := os.Create(frameName(e.dir, index))
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "create frame")
	}
	w := bufio.NewWriter(f)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = f.Close()
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "encode frame")
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "flush frame")
	}
	return f.Close()
}

func (e *SequenceEncoder) EncodeAudio(buf *audio.FloatBuffer) error {
	if e.wav == nil {
		return nil
	}
	return e.wav.Write(buf)
}

func (e *SequenceEncoder) End(_ context.Context) (domain.Artifact, error) {
	if !e.began {
		return domain.Artifact{}, errors.Wrap(errors.ErrInvalidState, "sequence encoder not started")
	}
	m := Manifest{FPS: e.fps, Width: e.width, Height: e.height, Frames: e.frames}
	m.Duration = time.Duration(e.frames) * time.Second / time.Duration(e.fps)
	if e.wav != nil {
		if err := e.closeAudio(); err != nil {
			return domain.Artifact{}, err
		}
		m.Audio = audioName
	}
	if e.frames == 0 {
		return domain.Artifact{}, errors.Wrap(errors.ErrEncodeFailure, "sequence has no frames")
	}
	if err := writeManifest(e.dir, m); err != nil {
		return domain.Artifact{}, errors.WrapWithCode(err, errors.CodeEncodeFailure, "write manifest")
	}
	return domain.Artifact{
		URI:      URI(e.dir),
		Codec:    CodecJPEGSeq,
		Duration: m.Duration,
		Width:    e.width,
		Height:   e.height,
	}, nil
}

func (e *SequenceEncoder) closeAudio() error {
	err := e.wav.Close()
	if cerr := e.audioFile.Close(); err == nil && cerr != nil {
		err = errors.WrapWithCode(cerr, errors.CodeEncodeFailure, "close audio track")
	}
	e.wav, e.audioFile = nil, nil
	return err
}

// Abort removes everything written so far.
func (e *SequenceEncoder) Abort() error {
	if e.wav != nil {
		_ = e.closeAudio()
	}
	return os.RemoveAll(e.dir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
