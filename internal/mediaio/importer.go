package mediaio

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/pkg/errors"
)

// Import builds an untrimmed clip for the media at uri. A source whose
// duration cannot be measured gets the prober's fallback duration.
func (p *Prober) Import(ctx context.Context, root, uri string) (domain.Clip, error) {
	path := Resolve(root, uri)
	if _, err := os.Stat(path); err != nil {
		return domain.Clip{}, errors.Wrapf(errors.ErrNotFound, "media %s", uri)
	}
	d := p.Duration(ctx, path)
	clip := domain.Clip{
		ID:            uuid.NewString(),
		SourceURI:     uri,
		TotalDuration: d,
		TrimEnd:       d,
	}
	if IsSequence(path) {
		if m, err := ReadManifest(path); err == nil {
			clip.Width, clip.Height = m.Width, m.Height
			clip.Thumbnail = URI(CoverFrame(path))
		}
	}
	p.log.Info("Clip imported", "uri", uri, "duration", d)
	return clip, nil
}
