package domain

import "time"

// Composition is the serializable aggregate of an edited reel.
type Composition struct {
	Mode           MediaMode      `json:"mode"`
	Clips          []Clip         `json:"clips,omitempty"`
	Slides         []Slide        `json:"slides,omitempty"`
	SlideDuration  time.Duration  `json:"slide_duration,omitempty"`
	Overlays       []Overlay      `json:"overlays,omitempty"`
	SpeedSegments  []SpeedSegment `json:"speed_segments,omitempty"`
	BackgroundURI  string         `json:"background_uri,omitempty"`
	BackgroundGain float64        `json:"background_gain"`
	Filter         string         `json:"filter,omitempty"`
}

// MasterDuration recomputes the timeline length from the snapshot.
func (c Composition) MasterDuration() time.Duration {
	if c.Mode == MediaModeSlideshow {
		return time.Duration(len(c.Slides)) * c.SlideDuration
	}
	var total time.Duration
	for _, clip := range c.Clips {
		total += clip.Length()
	}
	return total
}

type Project struct {
	ID          string
	Title       string
	Composition Composition
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
