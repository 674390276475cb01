package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"gbadb/internal/gba"
)

// ErrCoreFailure is the error FakeCore returns for scripted failures.
var ErrCoreFailure = errors.New("core failure")

// FakeCore is a scriptable gba.EmulatorCore. Its snapshot is a string that
// SaveState writes and LoadState replaces. Setting a Fail* field makes the
// matching call return ErrCoreFailure without changing state.
type FakeCore struct {
	mu       sync.Mutex
	state    gba.RunState
	rate     float64
	snapshot []byte
	calls    []string

	FailStart   bool
	FailPause   bool
	FailResume  bool
	FailStop    bool
	FailSetRate bool
	FailSave    bool
	FailLoad    bool
}

// NewFakeCore returns a core in the given state at normal speed.
func NewFakeCore(state gba.RunState) *FakeCore {
	return &FakeCore{state: state, rate: gba.RateNormal}
}

func (c *FakeCore) State() gba.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *FakeCore) Start() error {
	return c.transition("start", c.FailStart, gba.RunStateRunning)
}

func (c *FakeCore) Pause() error {
	return c.transition("pause", c.FailPause, gba.RunStatePaused)
}

func (c *FakeCore) Resume() error {
	return c.transition("resume", c.FailResume, gba.RunStateRunning)
}

func (c *FakeCore) Stop() error {
	return c.transition("stop", c.FailStop, gba.RunStateStopped)
}

func (c *FakeCore) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

func (c *FakeCore) SetRate(rate float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf("rate %.1f", rate))
	if c.FailSetRate {
		return ErrCoreFailure
	}
	c.rate = rate
	return nil
}

func (c *FakeCore) SaveState(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "save")
	if c.FailSave {
		return ErrCoreFailure
	}
	_, err := w.Write(c.snapshot)
	return err
}

func (c *FakeCore) LoadState(r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "load")
	if c.FailLoad {
		return ErrCoreFailure
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.snapshot = data
	return nil
}

// SetSnapshot replaces the emulator memory that SaveState captures.
func (c *FakeCore) SetSnapshot(data string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = []byte(data)
}

// Snapshot returns the current emulator memory.
func (c *FakeCore) Snapshot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(bytes.Clone(c.snapshot))
}

// Calls returns the operations invoked so far, in order.
func (c *FakeCore) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *FakeCore) transition(call string, fail bool, to gba.RunState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	if fail {
		return ErrCoreFailure
	}
	c.state = to
	return nil
}

var _ gba.EmulatorCore = (*FakeCore)(nil)

// RecordingNotifier collects user-visible messages.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *RecordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// Messages returns the notifications received so far.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

var _ gba.Notifier = (*RecordingNotifier)(nil)
