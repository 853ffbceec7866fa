package domain

import "time"

type OverlayKind string

const (
	OverlayText    OverlayKind = "text"
	OverlaySticker OverlayKind = "sticker"
	OverlayPoll    OverlayKind = "poll"
)

// Transform places an overlay on the output surface. X and Y are the
// overlay's center in surface pixels, Rotation is in degrees.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

type Keyframe struct {
	Timestamp time.Duration `json:"timestamp"`
	Transform
}

type Overlay struct {
	ID           string        `json:"id"`
	Kind         OverlayKind   `json:"kind"`
	Content      string        `json:"content"`
	Start        time.Duration `json:"start"`
	End          time.Duration `json:"end"`
	Transform    Transform     `json:"transform"`
	Keyframes    []Keyframe    `json:"keyframes,omitempty"`
	NarrationURI string        `json:"narration_uri,omitempty"`
	Tracking     bool          `json:"tracking,omitempty"`
}

// ActiveAt uses the closed interval [Start, End].
func (o Overlay) ActiveAt(t time.Duration) bool {
	return t >= o.Start && t <= o.End
}

// TranscriptEntry is one timed line returned by a transcription service.
type TranscriptEntry struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}
