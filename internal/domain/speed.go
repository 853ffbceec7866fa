package domain

import (
	"fmt"
	"time"
)

// SpeedSegment is a master-time range played at Rate.
type SpeedSegment struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Rate  float64       `json:"rate"`
}

func (s SpeedSegment) Validate() error {
	if s.Start < 0 || s.Start >= s.End {
		return fmt.Errorf("speed segment [%v, %v) is empty or negative", s.Start, s.End)
	}
	if s.Rate <= 0 {
		return fmt.Errorf("speed segment rate %v must be positive", s.Rate)
	}
	return nil
}

// Contains uses half-open [Start, End).
func (s SpeedSegment) Contains(t time.Duration) bool {
	return t >= s.Start && t < s.End
}
