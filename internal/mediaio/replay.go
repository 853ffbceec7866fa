package mediaio

import (
	"context"
	"image"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/reel-studio/internal/audiomix"
	"github.com/orgball2608/reel-studio/internal/media"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

// ReplaySource serves a recorded JPEG sequence as a live camera and its
// audio track as the microphone. Each Open restarts from the beginning; the
// last frame is held once the recording runs out.
type ReplaySource struct {
	dir   string
	clock clockwork.Clock
}

var _ media.Source = (*ReplaySource)(nil)

func NewReplaySource(dir string, clock clockwork.Clock) *ReplaySource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ReplaySource{dir: dir, clock: clock}
}

func (s *ReplaySource) Open(_ context.Context, req media.StreamRequest) (media.Stream, error) {
	video, err := OpenSequence(s.dir, s.clock)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDeviceUnavailable, "open replay camera")
	}
	m, _ := ReadManifest(s.dir)

	st := &replayStream{video: video, facing: req.Facing}
	if st.facing == "" {
		st.facing = media.FacingEnvironment
	}
	if m.Audio != "" {
		f, err := os.Open(filepath.Join(s.dir, m.Audio))
		if err == nil {
			track, err := audiomix.DecodeWAV(f)
			_ = f.Close()
			if err == nil {
				_ = track.Play()
				st.mic = track
			}
		}
	}
	_ = video.Play()
	return st, nil
}

type replayStream struct {
	video  media.VideoHandle
	mic    *audiomix.Track
	facing media.Facing
}

func (s *replayStream) LatestFrame() (image.Image, bool) {
	img, err := s.video.Frame()
	if err != nil {
		return nil, false
	}
	return img, true
}

func (s *replayStream) Microphone() media.AudioReader {
	if s.mic == nil {
		return nil
	}
	return s.mic
}

func (s *replayStream) Facing() media.Facing {
	return s.facing
}

func (s *replayStream) Close() error {
	if s.mic != nil {
		_ = s.mic.Close()
	}
	return s.video.Close()
}
