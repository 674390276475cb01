package gba

import (
	"fmt"
	"sync"

	"gbadb/internal/database/sqlc"
)

// SessionState is the externally observable state of a Session.
type SessionState struct {
	RunState   RunState
	Rate       float64
	ActiveSkin *sqlc.Skin
}

// Session drives one running game. It mirrors the core's run state and
// rate after every successful call and leaves them untouched when the
// core fails. Failures are reported to the Notifier and returned. Once
// stopped, a Session rejects every call with ErrSessionStopped.
type Session struct {
	service  *GBAService
	game     *Game
	core     EmulatorCore
	notifier Notifier

	mu      sync.Mutex
	state   SessionState
	stopped bool
}

// NewSession starts core for game if it is not already running and resolves
// the preferred skin for the game's type.
func NewSession(service *GBAService, game *Game, core EmulatorCore, notifier Notifier) (*Session, error) {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	s := &Session{
		service:  service,
		game:     game,
		core:     core,
		notifier: notifier,
	}
	s.state.ActiveSkin = service.ResolvePreferredSkin(game.Type)

	if core.State() == RunStateStopped {
		if err := core.Start(); err != nil {
			notifier.Notify(fmt.Sprintf("Could not start %s.", game.Name))
			return nil, fmt.Errorf("starting core: %w", err)
		}
	}
	s.mirror()

	service.logger.Info("session started", "game", game.ID, "skin", s.state.ActiveSkin.Identifier)
	return s, nil
}

// mirror copies the core's state. Caller holds mu, or has exclusive access.
func (s *Session) mirror() {
	s.state.RunState = s.core.State()
	s.state.Rate = s.core.Rate()
}

// fail reports a failed action to the user and the log.
func (s *Session) fail(action string, err error) error {
	s.notifier.Notify(fmt.Sprintf("Could not %s.", action))
	s.service.logger.Error("session action failed", "action", action, "game", s.game.ID, "error", err)
	return fmt.Errorf("%s: %w", action, err)
}

// Game returns the game this session is playing.
func (s *Session) Game() *Game {
	return s.game
}

// State returns a snapshot of the session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pause pauses a running game. Pausing a paused game does nothing.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}
	return s.pauseLocked()
}

func (s *Session) pauseLocked() error {
	if s.state.RunState != RunStateRunning {
		return nil
	}
	if err := s.core.Pause(); err != nil {
		return s.fail("pause the game", err)
	}
	s.mirror()
	return nil
}

// Resume resumes a paused game. Resuming a running game does nothing.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}
	return s.resumeLocked()
}

func (s *Session) resumeLocked() error {
	if s.state.RunState != RunStatePaused {
		return nil
	}
	if err := s.core.Resume(); err != nil {
		return s.fail("resume the game", err)
	}
	s.mirror()
	return nil
}

// TogglePause pauses a running game or resumes a paused one.
func (s *Session) TogglePause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}
	if s.state.RunState == RunStatePaused {
		return s.resumeLocked()
	}
	return s.pauseLocked()
}

// SetRate sets the playback rate. Only RateNormal and RateFastForward are accepted.
func (s *Session) SetRate(rate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}
	return s.setRateLocked(rate)
}

func (s *Session) setRateLocked(rate float64) error {
	if rate != RateNormal && rate != RateFastForward {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	if rate == s.state.Rate {
		return nil
	}
	if err := s.core.SetRate(rate); err != nil {
		return s.fail("change the game speed", err)
	}
	s.mirror()
	return nil
}

// ToggleFastForward switches between normal speed and fast-forward.
func (s *Session) ToggleFastForward() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}
	if s.state.Rate == RateFastForward {
		return s.setRateLocked(RateNormal)
	}
	return s.setRateLocked(RateFastForward)
}

// Stop stops the core and ends the session. The session is ended even when
// the core fails to stop.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}
	s.stopped = true

	if err := s.core.Stop(); err != nil {
		return s.fail("stop the game", err)
	}
	s.mirror()
	s.service.logger.Info("session stopped", "game", s.game.ID)
	return nil
}

// SelectSkin makes record the active skin and remembers it as the preferred
// skin. A nil record clears the preference and falls back to the default.
func (s *Session) SelectSkin(record *sqlc.Skin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}

	if record != nil && record.GameType != string(s.game.Type) {
		return fmt.Errorf("%w: skin %s is for %s", ErrUnsupportedGame, record.Identifier, GameType(record.GameType).Short())
	}
	if err := s.service.SelectSkin(record); err != nil {
		return s.fail("select the skin", err)
	}

	if record == nil {
		record = s.service.ResolvePreferredSkin(s.game.Type)
	}
	s.state.ActiveSkin = record
	return nil
}

// ActiveSkinResource returns the decoded active skin.
func (s *Session) ActiveSkinResource() (*Skin, error) {
	s.mu.Lock()
	record := s.state.ActiveSkin
	s.mu.Unlock()
	return s.service.SkinResource(record)
}

// CreateSaveState captures a new save state for the session's game.
func (s *Session) CreateSaveState() (*sqlc.SaveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrSessionStopped
	}

	record, err := s.service.CreateSaveState(s.game, s.core)
	if err != nil {
		return nil, s.fail("save the game", err)
	}
	s.mirror()
	return record, nil
}

// UpdateSaveState overwrites record with the current game state. Records of
// other games are rejected.
func (s *Session) UpdateSaveState(record *sqlc.SaveState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}

	if record.GameID != s.game.ID {
		return fmt.Errorf("%w: save state %s belongs to game %s", ErrUnsupportedGame, record.ID, record.GameID)
	}
	if err := s.service.UpdateSaveState(record, s.core); err != nil {
		return s.fail("update the save state", err)
	}
	s.mirror()
	return nil
}

// LoadSaveState restores record into the running game. Records of other
// games are rejected.
func (s *Session) LoadSaveState(record *sqlc.SaveState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionStopped
	}

	if record.GameID != s.game.ID {
		return fmt.Errorf("%w: save state %s belongs to game %s", ErrLoad, record.ID, record.GameID)
	}
	if err := s.service.LoadSaveState(record, s.core); err != nil {
		return s.fail("load the save state", err)
	}
	s.mirror()
	return nil
}

// SaveStates lists the save states of the session's game, oldest first.
func (s *Session) SaveStates() ([]*sqlc.SaveState, error) {
	if s.isStopped() {
		return nil, ErrSessionStopped
	}
	return s.service.ListSaveStates(s.game.ID)
}

// CanLoad reports whether there is any save state to load.
func (s *Session) CanLoad() (bool, error) {
	if s.isStopped() {
		return false, ErrSessionStopped
	}
	return s.service.CanLoad(s.game.ID)
}

func (s *Session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
