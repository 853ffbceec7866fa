package mediaio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-audio/audio"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

type ffmpegCodec struct {
	ext   string
	video []string
	audio []string
}

var ffmpegCodecs = map[string]ffmpegCodec{
	"mp4/h264": {
		ext:   ".mp4",
		video: []string{"-c:v", "libx264", "-preset", "veryfast", "-pix_fmt", "yuv420p", "-movflags", "+faststart"},
		audio: []string{"-c:a", "aac", "-b:a", "192k"},
	},
	"webm/vp9": {
		ext:   ".webm",
		video: []string{"-c:v", "libvpx-vp9", "-b:v", "0", "-crf", "32"},
		audio: []string{"-c:a", "libopus"},
	},
}

// FFmpeg runs the ffmpeg binary for muxing sequences and decoding sources.
type FFmpeg struct {
	log  logger.Logger
	path string
}

func NewFFmpeg(log logger.Logger, path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{log: log.WithComponent("ffmpeg"), path: path}
}

// Available reports whether the binary can be found.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.path)
	return err == nil
}

func (f *FFmpeg) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, f.path, append([]string{"-y", "-v", "error"}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, output: %s", err, stderr.String())
	}
	f.log.Debug("ffmpeg finished", "args", args, "elapsed", time.Since(start))
	return nil
}

// Mux encodes a JPEG sequence and its audio track into out.
func (f *FFmpeg) Mux(ctx context.Context, dir, codec, out string) error {
	c, ok := ffmpegCodecs[codec]
	if !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "codec %q is not muxed by ffmpeg", codec)
	}
	m, err := ReadManifest(dir)
	if err != nil {
		return err
	}
	args := []string{"-framerate", strconv.Itoa(m.FPS), "-i", filepath.Join(dir, framePattern)}
	if m.Audio != "" {
		args = append(args, "-i", filepath.Join(dir, m.Audio))
	}
	args = append(args, c.video...)
	if m.Audio != "" {
		args = append(args, c.audio...)
		args = append(args, "-shortest")
	}
	args = append(args, out)
	if err := f.run(ctx, args...); err != nil {
		return errors.WrapWithCode(err, errors.CodeEncodeFailure, "mux "+codec)
	}
	return nil
}

// ToSequence decodes src into a JPEG sequence at fps. duration is written to
// the manifest; the frame count comes from what ffmpeg produced.
func (f *FFmpeg) ToSequence(ctx context.Context, src, dir string, fps int, duration time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.CodeDecodeFailure, "create sequence directory")
	}
	err := f.run(ctx, "-i", src, "-vf", "fps="+strconv.Itoa(fps), "-q:v", "3", filepath.Join(dir, framePattern))
	if err != nil {
		_ = os.RemoveAll(dir)
		return errors.WrapWithCode(err, errors.CodeDecodeFailure, "decode "+filepath.Base(src))
	}
	frames, _ := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if len(frames) == 0 {
		_ = os.RemoveAll(dir)
		return errors.Wrapf(errors.ErrDecodeFailure, "%s has no video frames", filepath.Base(src))
	}

	m := Manifest{FPS: fps, Frames: len(frames), Duration: duration}
	if m.Duration <= 0 {
		m.Duration = time.Duration(len(frames)) * time.Second / time.Duration(fps)
	}
	if probe, err := os.Open(frames[0]); err == nil {
		if cfg, _, err := image.DecodeConfig(probe); err == nil {
			m.Width, m.Height = cfg.Width, cfg.Height
		}
		_ = probe.Close()
	}
	if err := f.ToWAV(ctx, src, filepath.Join(dir, audioName)); err == nil {
		m.Audio = audioName
	} else {
		f.log.Debug("Source has no usable audio", "src", src, "error", err)
	}
	return writeManifest(dir, m)
}

// ToWAV extracts the audio track of src as 16-bit stereo WAV.
func (f *FFmpeg) ToWAV(ctx context.Context, src, out string) error {
	err := f.run(ctx, "-i", src, "-vn", "-ac", "2", "-ar", "48000", "-c:a", "pcm_s16le", out)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeDecodeFailure, "extract audio")
	}
	return nil
}

// ffmpegEncoder stages into a JPEG sequence and muxes it in End.
type ffmpegEncoder struct {
	ffmpeg *FFmpeg
	codec  string
	out    string
	stage  *SequenceEncoder
}

var _ media.Encoder = (*ffmpegEncoder)(nil)

func (e *ffmpegEncoder) Begin(width, height, fps int, format *audio.Format) error {
	return e.stage.Begin(width, height, fps, format)
}

func (e *ffmpegEncoder) EncodeFrame(img image.Image, ts time.Duration) error {
	return e.stage.EncodeFrame(img, ts)
}

func (e *ffmpegEncoder) EncodeAudio(buf *audio.FloatBuffer) error {
	return e.stage.EncodeAudio(buf)
}

func (e *ffmpegEncoder) End(ctx context.Context) (domain.Artifact, error) {
	staged, err := e.stage.End(ctx)
	if err != nil {
		_ = e.stage.Abort()
		return domain.Artifact{}, err
	}
	defer os.RemoveAll(e.stage.Dir())
	if err := e.ffmpeg.Mux(ctx, e.stage.Dir(), e.codec, e.out); err != nil {
		return domain.Artifact{}, err
	}
	staged.URI = URI(e.out)
	staged.Codec = e.codec
	return staged, nil
}

func (e *ffmpegEncoder) Abort() error {
	_ = os.Remove(e.out)
	return e.stage.Abort()
}
