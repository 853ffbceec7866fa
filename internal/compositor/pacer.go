package compositor

import "time"

// Pacer gates frame production to a fixed rate on top of a faster tick
// loop. A zero fps lets every tick through.
type Pacer struct {
	interval time.Duration
	next     time.Time
	started  bool
}

func NewPacer(fps int) *Pacer {
	p := &Pacer{}
	if fps > 0 {
		p.interval = time.Second / time.Duration(fps)
	}
	return p
}

func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Due reports whether a frame should be produced at now. When the loop
// stalls for more than a frame the schedule restarts rather than bursting.
func (p *Pacer) Due(now time.Time) bool {
	if p.interval == 0 {
		return true
	}
	if !p.started {
		p.started = true
		p.next = now.Add(p.interval)
		return true
	}
	if now.Before(p.next) {
		return false
	}
	p.next = p.next.Add(p.interval)
	if now.Sub(p.next) >= p.interval {
		p.next = now.Add(p.interval)
	}
	return true
}

func (p *Pacer) Reset() {
	p.started = false
}
