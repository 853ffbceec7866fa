package domain

import "time"

// CaptureSegment is the in-progress recording before it becomes a Clip.
type CaptureSegment struct {
	StartWallClock time.Time
	Accumulated    time.Duration
}

// Artifact is an encoded media file produced by capture or export.
type Artifact struct {
	URI      string        `json:"uri"`
	Codec    string        `json:"codec"`
	Duration time.Duration `json:"duration"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
}
