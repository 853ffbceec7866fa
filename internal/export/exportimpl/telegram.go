package exportimpl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/export"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/internal/telegram"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/formatter"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/orgball2608/reel-studio/pkg/retry"
)

// uploadLimit is the largest file the bot API accepts.
const uploadLimit = 50 << 20

// TelegramSink posts public reels to the configured channel. Containers go
// out as videos; a frame sequence is posted as its cover frame. A video over
// the upload limit is announced with a text notice instead.
type TelegramSink struct {
	log    logger.Logger
	client telegram.Client
	retry  retry.Config
	limit  int64
}

var _ export.Sink = (*TelegramSink)(nil)

func NewTelegramSink(log logger.Logger, client telegram.Client, cfg retry.Config) *TelegramSink {
	return &TelegramSink{log: log.WithComponent("telegram_sink"), client: client, retry: cfg, limit: uploadLimit}
}

func (s *TelegramSink) Name() string {
	return "telegram"
}

func (s *TelegramSink) Publish(ctx context.Context, pkg domain.Package) error {
	if pkg.Metadata.Visibility == domain.VisibilityPrivate {
		return errors.Wrap(errors.ErrInvalidInput, "private reels are not posted to channels")
	}
	path := mediaio.Resolve("", pkg.Artifact.URI)
	caption := Caption(pkg.Metadata)

	send := func() error { return s.client.SendVideo(path, caption) }
	if pkg.Artifact.Codec == mediaio.CodecJPEGSeq {
		cover := mediaio.CoverFrame(path)
		send = func() error { return s.client.SendPhoto(cover, caption) }
	} else if info, err := os.Stat(path); err == nil && info.Size() > s.limit {
		s.log.Warn("Artifact exceeds the upload limit, posting a notice", "uri", pkg.Artifact.URI, "size", info.Size())
		text := Notice(pkg, info.Size())
		send = func() error { return s.client.SendMessageToChannel(text) }
	}
	return retry.Do(ctx, s.log, "telegram publish", send, s.retry)
}

// Notice is the MarkdownV2 announcement for a reel too large to upload.
func Notice(pkg domain.Package, size int64) string {
	var sb strings.Builder
	sb.WriteString("*New reel*")
	if caption := Caption(pkg.Metadata); caption != "" {
		sb.WriteString("\n\n")
		sb.WriteString(formatter.EscapeMarkdownV2(caption))
	}
	stats := fmt.Sprintf("%s, %s bytes, %s", formatter.Timecode(pkg.Artifact.Duration), formatter.FormatNumber(int(size)), pkg.Artifact.Codec)
	sb.WriteString("\n\n_")
	sb.WriteString(formatter.EscapeMarkdownV2(stats))
	sb.WriteString("_")
	return sb.String()
}

// Caption joins the caption text with the category as a hashtag.
func Caption(m domain.PublishMetadata) string {
	caption := strings.TrimSpace(m.Caption)
	if m.Category == "" {
		return caption
	}
	tag := formatter.Hashtag(m.Category)
	if tag == "" {
		return caption
	}
	if caption == "" {
		return tag
	}
	return fmt.Sprintf("%s\n\n%s", caption, tag)
}
