package capture

type State int

const (
	StateIdle State = iota
	// StateAcquiring waits on camera and microphone permission.
	StateAcquiring
	StateRecording
	// StateCommitting flushes and finalizes the encoder off the tick loop.
	StateCommitting
	// StateFull means the committed clips use the whole duration budget.
	StateFull
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateRecording:
		return "recording"
	case StateCommitting:
		return "committing"
	case StateFull:
		return "full"
	}
	return "unknown"
}
