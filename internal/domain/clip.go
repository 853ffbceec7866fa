package domain

import (
	"fmt"
	"time"
)

// Clip is one recorded or imported media segment plus its trim range.
type Clip struct {
	ID            string        `json:"id"`
	SourceURI     string        `json:"source_uri"`
	TotalDuration time.Duration `json:"total_duration"`
	TrimStart     time.Duration `json:"trim_start"`
	TrimEnd       time.Duration `json:"trim_end"`
	Thumbnail     string        `json:"thumbnail,omitempty"`
	Width         int           `json:"width,omitempty"`
	Height        int           `json:"height,omitempty"`
}

// Length is the trimmed duration the clip contributes to the timeline.
func (c Clip) Length() time.Duration {
	return c.TrimEnd - c.TrimStart
}

// Validate checks 0 <= TrimStart < TrimEnd <= TotalDuration.
func (c Clip) Validate() error {
	if c.TrimStart < 0 {
		return fmt.Errorf("clip %s: trim start %v is negative", c.ID, c.TrimStart)
	}
	if c.TrimStart >= c.TrimEnd {
		return fmt.Errorf("clip %s: trim start %v must be before trim end %v", c.ID, c.TrimStart, c.TrimEnd)
	}
	if c.TrimEnd > c.TotalDuration {
		return fmt.Errorf("clip %s: trim end %v exceeds total duration %v", c.ID, c.TrimEnd, c.TotalDuration)
	}
	return nil
}

// Slide is a still image shown for the composition's slide duration.
type Slide struct {
	ID       string `json:"id"`
	ImageURI string `json:"image_uri"`
}

type MediaMode string

const (
	MediaModeVideo     MediaMode = "video"
	MediaModeSlideshow MediaMode = "slideshow"
)
