package gba

import "io"

// RunState mirrors the external core's three-state machine.
type RunState int

const (
	RunStateStopped RunState = iota
	RunStateRunning
	RunStatePaused
)

func (s RunState) String() string {
	switch s {
	case RunStateRunning:
		return "running"
	case RunStatePaused:
		return "paused"
	case RunStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Playback rates. Fast-forward is a toggle, not a continuous value.
const (
	RateNormal      = 1.0
	RateFastForward = 4.0
)

// EmulatorCore is the contract consumed from the external emulation engine.
// Nothing in this module implements it outside of tests.
type EmulatorCore interface {
	State() RunState
	Start() error
	Pause() error
	Resume() error
	Stop() error

	Rate() float64
	SetRate(rate float64) error

	// SaveState writes a snapshot of the emulator to w. The format is owned by the core.
	SaveState(w io.Writer) error

	// LoadState restores a snapshot previously produced by SaveState.
	LoadState(r io.Reader) error
}

// Notifier shows short, non-fatal messages to the user.
type Notifier interface {
	Notify(message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}
