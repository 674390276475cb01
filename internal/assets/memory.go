package assets

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"sync"

	"gbadb/internal/gba"
)

// MemoryStore is an in-memory implementation of gba.AssetStore, useful for
// testing. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	files    map[gba.AssetKind]map[string][]byte
	payloads map[string]map[string][]byte // game id -> state id -> payload
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: map[gba.AssetKind]map[string][]byte{
			gba.AssetGame: {},
			gba.AssetSkin: {},
		},
		payloads: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) AssetPath(kind gba.AssetKind, name string) string {
	dir, err := kindDir(kind)
	if err != nil {
		return ""
	}
	return path.Join(databaseDir, dir, name)
}

func (m *MemoryStore) ImportIfAbsent(kind gba.AssetKind, name string, r io.Reader) (string, bool, error) {
	if err := validateName(name); err != nil {
		return "", false, err
	}
	files, ok := m.files[kind]
	if !ok {
		return "", false, fmt.Errorf("unknown asset kind: %d", kind)
	}

	m.mu.RLock()
	_, exists := files[name]
	m.mu.RUnlock()
	if exists {
		return m.AssetPath(kind, name), false, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", false, fmt.Errorf("failed to read data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := files[name]; exists {
		return m.AssetPath(kind, name), false, nil
	}
	files[name] = data
	return m.AssetPath(kind, name), true, nil
}

func (m *MemoryStore) ImportReplacing(kind gba.AssetKind, name string, r io.Reader) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	files, ok := m.files[kind]
	if !ok {
		return "", fmt.Errorf("unknown asset kind: %d", kind)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	files[name] = data
	return m.AssetPath(kind, name), nil
}

func (m *MemoryStore) OpenAsset(kind gba.AssetKind, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[kind][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) RemoveAsset(kind gba.AssetKind, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files[kind], name)
	return nil
}

// HasAsset reports whether name exists in managed storage.
func (m *MemoryStore) HasAsset(kind gba.AssetKind, name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[kind][name]
	return ok
}

func (m *MemoryStore) PutPayload(gameID, stateID string, r io.Reader) (int64, error) {
	if err := validateGameID(gameID); err != nil {
		return 0, err
	}
	if err := validateName(stateID); err != nil {
		return 0, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payloads[gameID] == nil {
		m.payloads[gameID] = make(map[string][]byte)
	}
	m.payloads[gameID][stateID] = data
	return int64(len(data)), nil
}

func (m *MemoryStore) GetPayload(gameID, stateID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.payloads[gameID][stateID]
	if !ok {
		return fmt.Errorf("%w: payload %s for game %s", ErrNotFound, stateID, gameID)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

func (m *MemoryStore) RemovePayload(gameID, stateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.payloads[gameID], stateID)
	if len(m.payloads[gameID]) == 0 {
		delete(m.payloads, gameID)
	}
	return nil
}

// ListPayloads returns payloads sorted by game id then state id.
func (m *MemoryStore) ListPayloads() ([]gba.PayloadRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var refs []gba.PayloadRef
	for gameID, states := range m.payloads {
		for stateID := range states {
			refs = append(refs, gba.PayloadRef{GameID: gameID, StateID: stateID})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].GameID != refs[j].GameID {
			return refs[i].GameID < refs[j].GameID
		}
		return refs[i].StateID < refs[j].StateID
	})
	return refs, nil
}

func (m *MemoryStore) MovePayloads(fromGameID, toGameID string, stateIDs []string) error {
	if err := validateGameID(fromGameID); err != nil {
		return err
	}
	if err := validateGameID(toGameID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range stateIDs {
		data, ok := m.payloads[fromGameID][id]
		if !ok {
			continue
		}
		if m.payloads[toGameID] == nil {
			m.payloads[toGameID] = make(map[string][]byte)
		}
		m.payloads[toGameID][id] = data
		delete(m.payloads[fromGameID], id)
	}
	if len(m.payloads[fromGameID]) == 0 {
		delete(m.payloads, fromGameID)
	}
	return nil
}

// Compile-time check that MemoryStore implements gba.AssetStore interface
var _ gba.AssetStore = (*MemoryStore)(nil)
