package gba

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gbadb/internal/database/sqlc"
)

// errLocked is returned when an encrypted payload is read before Unlock.
var errLocked = errors.New("payload is encrypted and the library is locked")

// withCorePaused runs fn with the core paused if it was running, and resumes
// it afterwards only in that case, whether or not fn succeeded. Stopped and
// paused cores are left alone.
func withCorePaused(core EmulatorCore, fn func() error) error {
	wasRunning := core.State() == RunStateRunning
	if wasRunning {
		if err := core.Pause(); err != nil {
			return fmt.Errorf("pausing core: %w", err)
		}
	}

	err := fn()

	if wasRunning {
		if rerr := core.Resume(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("resuming core: %w", rerr))
		}
	}
	return err
}

func (s *GBAService) capture(core EmulatorCore) ([]byte, error) {
	var buf bytes.Buffer
	err := withCorePaused(core, func() error {
		return core.SaveState(&buf)
	})
	if err != nil {
		return nil, fmt.Errorf("capturing save state: %w", err)
	}
	return buf.Bytes(), nil
}

// seal encrypts payload when an encryptor is configured.
func (s *GBAService) seal(payload []byte) ([]byte, bool, error) {
	if s.encryptor == nil {
		return payload, false, nil
	}
	var buf bytes.Buffer
	if err := s.encryptor.Encrypt(bytes.NewReader(payload), &buf); err != nil {
		return nil, false, fmt.Errorf("encrypting save state: %w", err)
	}
	return buf.Bytes(), true, nil
}

func (s *GBAService) unseal(payload []byte, encrypted bool) ([]byte, error) {
	if !encrypted {
		return payload, nil
	}

	s.mu.Lock()
	dc := s.decryptor
	s.mu.Unlock()
	if dc == nil {
		return nil, errLocked
	}

	var buf bytes.Buffer
	if err := dc.Decrypt(bytes.NewReader(payload), &buf); err != nil {
		return nil, fmt.Errorf("decrypting save state: %w", err)
	}
	return buf.Bytes(), nil
}

// Unlock unlocks the private key so encrypted payloads can be loaded for
// the rest of the process lifetime.
func (s *GBAService) Unlock(passphrase string) error {
	if s.encryptor == nil {
		return fmt.Errorf("encryption is not configured")
	}
	dc, err := s.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking: %w", err)
	}

	s.mu.Lock()
	s.decryptor = dc
	s.mu.Unlock()
	return nil
}

// EncryptionEnabled reports whether new payloads are encrypted.
func (s *GBAService) EncryptionEnabled() bool {
	return s.encryptor != nil
}

// CreateSaveState captures a new save state for game from core.
//
// The payload is written before the metadata row. If recording the row
// fails, the payload is removed again; a crash between the two steps leaves
// an orphan payload that ReconcileSaveStates cleans up.
func (s *GBAService) CreateSaveState(game *Game, core EmulatorCore) (*sqlc.SaveState, error) {
	payload, err := s.capture(core)
	if err != nil {
		return nil, err
	}
	sealed, encrypted, err := s.seal(payload)
	if err != nil {
		return nil, err
	}

	id := s.idgen.New()
	size, err := s.assets.PutPayload(game.ID, id, bytes.NewReader(sealed))
	if err != nil {
		return nil, fmt.Errorf("%w: writing save state payload: %w", ErrIO, err)
	}

	now := s.clock.Now()
	record := &sqlc.SaveState{
		ID:         id,
		GameID:     game.ID,
		Size:       size,
		Encrypted:  encrypted,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.database.CreateSaveState(record); err != nil {
		if rerr := s.assets.RemovePayload(game.ID, id); rerr != nil {
			s.logger.Warn("could not remove payload after failed insert", "id", id, "error", rerr)
		}
		return nil, fmt.Errorf("recording save state: %w", err)
	}

	s.logger.Info("save state created", "id", id, "game", game.ID, "size", size)
	return record, nil
}

// UpdateSaveState overwrites an existing save state with a fresh capture
// from core. The record keeps its id and creation time; modified time,
// size and encryption flag are refreshed on record as well as in the store.
func (s *GBAService) UpdateSaveState(record *sqlc.SaveState, core EmulatorCore) error {
	payload, err := s.capture(core)
	if err != nil {
		return err
	}
	sealed, encrypted, err := s.seal(payload)
	if err != nil {
		return err
	}

	size, err := s.assets.PutPayload(record.GameID, record.ID, bytes.NewReader(sealed))
	if err != nil {
		return fmt.Errorf("%w: writing save state payload: %w", ErrIO, err)
	}

	now := s.clock.Now()
	if err := s.database.UpdateSaveStatePayload(record.ID, now, size, encrypted); err != nil {
		return fmt.Errorf("recording save state update: %w", err)
	}
	record.ModifiedAt = now
	record.Size = size
	record.Encrypted = encrypted

	s.logger.Info("save state updated", "id", record.ID, "game", record.GameID, "size", size)
	return nil
}

// LoadSaveState restores record into core. A missing, corrupt or locked
// payload yields ErrLoad; the core's run state is restored either way.
func (s *GBAService) LoadSaveState(record *sqlc.SaveState, core EmulatorCore) error {
	err := withCorePaused(core, func() error {
		payload, err := s.readPayload(record)
		if err != nil {
			return err
		}
		if err := core.LoadState(bytes.NewReader(payload)); err != nil {
			return fmt.Errorf("%w: core rejected save state %s: %w", ErrLoad, record.ID, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("save state load failed", "id", record.ID, "error", err)
		return err
	}

	s.logger.Info("save state loaded", "id", record.ID, "game", record.GameID)
	return nil
}

// readPayload returns the plaintext payload of record.
func (s *GBAService) readPayload(record *sqlc.SaveState) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.assets.GetPayload(record.GameID, record.ID, &buf); err != nil {
		return nil, fmt.Errorf("%w: reading payload of %s: %w", ErrLoad, record.ID, err)
	}
	payload, err := s.unseal(buf.Bytes(), record.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return payload, nil
}

// ListSaveStates returns the save states of a game identity, oldest first.
func (s *GBAService) ListSaveStates(gameID string) ([]*sqlc.SaveState, error) {
	states, err := s.database.FindSaveStatesByGameID(gameID)
	if err != nil {
		return nil, fmt.Errorf("listing save states: %w", err)
	}
	return states, nil
}

// CanLoad reports whether gameID has any save state to load.
func (s *GBAService) CanLoad(gameID string) (bool, error) {
	states, err := s.ListSaveStates(gameID)
	if err != nil {
		return false, err
	}
	return len(states) > 0, nil
}

// FindSaveState returns a save state by id, or nil.
func (s *GBAService) FindSaveState(id string) (*sqlc.SaveState, error) {
	state, err := s.database.FindSaveStateByID(id)
	if err != nil {
		return nil, fmt.Errorf("finding save state: %w", err)
	}
	return state, nil
}

// DeleteSaveState removes a save state's payload and then its record.
func (s *GBAService) DeleteSaveState(record *sqlc.SaveState) error {
	if err := s.assets.RemovePayload(record.GameID, record.ID); err != nil {
		return fmt.Errorf("%w: removing payload: %w", ErrIO, err)
	}
	if err := s.database.DeleteSaveState(record.ID); err != nil {
		return fmt.Errorf("deleting save state: %w", err)
	}
	s.logger.Info("save state deleted", "id", record.ID, "game", record.GameID)
	return nil
}

// ExportSaveState writes the plaintext payload of record to w.
func (s *GBAService) ExportSaveState(record *sqlc.SaveState, w io.Writer) error {
	payload, err := s.readPayload(record)
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("%w: writing export: %w", ErrIO, err)
	}
	return nil
}

// ReconcileReport describes what ReconcileSaveStates repaired.
type ReconcileReport struct {
	OrphanPayloads  []PayloadRef // payloads removed because no record referenced them
	DanglingRecords []string     // record ids removed because their payload was missing
}

// ReconcileSaveStates restores the invariant that a payload exists exactly
// when its record does, by removing whichever side is unmatched.
func (s *GBAService) ReconcileSaveStates() (*ReconcileReport, error) {
	records, err := s.database.ListSaveStates()
	if err != nil {
		return nil, fmt.Errorf("listing save states: %w", err)
	}
	payloads, err := s.assets.ListPayloads()
	if err != nil {
		return nil, fmt.Errorf("%w: listing payloads: %w", ErrIO, err)
	}

	stored := make(map[PayloadRef]bool, len(payloads))
	for _, p := range payloads {
		stored[p] = true
	}
	recorded := make(map[PayloadRef]bool, len(records))

	report := &ReconcileReport{}
	for _, r := range records {
		ref := PayloadRef{GameID: r.GameID, StateID: r.ID}
		recorded[ref] = true
		if stored[ref] {
			continue
		}
		if err := s.database.DeleteSaveState(r.ID); err != nil {
			return report, fmt.Errorf("deleting dangling save state %s: %w", r.ID, err)
		}
		report.DanglingRecords = append(report.DanglingRecords, r.ID)
		s.logger.Warn("removed save state with missing payload", "id", r.ID, "game", r.GameID)
	}

	for _, p := range payloads {
		if recorded[p] {
			continue
		}
		if err := s.assets.RemovePayload(p.GameID, p.StateID); err != nil {
			return report, fmt.Errorf("%w: removing orphan payload %s: %w", ErrIO, p.StateID, err)
		}
		report.OrphanPayloads = append(report.OrphanPayloads, p)
		s.logger.Warn("removed orphan save state payload", "id", p.StateID, "game", p.GameID)
	}

	return report, nil
}

// MigrateLegacyIdentity moves every save state filed under legacyID (an
// identity from before content hashing, such as a file path) to game's
// content identity. Payloads move first; if rekeying the records fails they
// are moved back. Returns the number of save states migrated.
func (s *GBAService) MigrateLegacyIdentity(legacyID string, game *Game) (int64, error) {
	if legacyID == game.ID {
		return 0, nil
	}

	states, err := s.database.FindSaveStatesByGameID(legacyID)
	if err != nil {
		return 0, fmt.Errorf("listing legacy save states: %w", err)
	}
	if len(states) == 0 {
		return 0, nil
	}

	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.ID
	}

	if err := s.assets.MovePayloads(legacyID, game.ID, ids); err != nil {
		return 0, fmt.Errorf("%w: moving payloads: %w", ErrIO, err)
	}

	n, err := s.database.RekeySaveStates(legacyID, game.ID)
	if err != nil {
		if rerr := s.assets.MovePayloads(game.ID, legacyID, ids); rerr != nil {
			s.logger.Error("could not move payloads back after failed rekey", "from", game.ID, "to", legacyID, "error", rerr)
		}
		return 0, fmt.Errorf("rekeying save states: %w", err)
	}

	s.logger.Info("save states migrated", "from", legacyID, "to", game.ID, "count", n)
	return n, nil
}
