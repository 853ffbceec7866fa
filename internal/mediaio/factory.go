package mediaio

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
)

// Factory creates encoders writing into a single output directory. JPEG
// sequences are always supported; container codecs need ffmpeg.
type Factory struct {
	log    logger.Logger
	dir    string
	ffmpeg *FFmpeg
	muxing bool
}

var _ media.EncoderFactory = (*Factory)(nil)

func NewFactory(log logger.Logger, dir string, ffmpeg *FFmpeg) *Factory {
	f := &Factory{log: log.WithComponent("encoders"), dir: dir, ffmpeg: ffmpeg}
	if ffmpeg != nil {
		f.muxing = ffmpeg.Available()
	}
	if !f.muxing {
		f.log.Warn("ffmpeg not found, only JPEG sequences can be encoded")
	}
	return f
}

func (f *Factory) Supports(codec string) bool {
	if codec == CodecJPEGSeq {
		return true
	}
	_, ok := ffmpegCodecs[codec]
	return ok && f.muxing
}

func (f *Factory) NewEncoder(codec string) (media.Encoder, error) {
	if !f.Supports(codec) {
		return nil, errors.Wrapf(errors.ErrEncodeFailure, "codec %q is not supported", codec)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeEncodeFailure, "create output directory")
	}
	name := uuid.NewString()
	if codec == CodecJPEGSeq {
		return NewSequenceEncoder(filepath.Join(f.dir, name+sequenceExt)), nil
	}
	return &ffmpegEncoder{
		ffmpeg: f.ffmpeg,
		codec:  codec,
		out:    filepath.Join(f.dir, name+ffmpegCodecs[codec].ext),
		stage:  NewSequenceEncoder(filepath.Join(f.dir, "."+name+sequenceExt)),
	}, nil
}
