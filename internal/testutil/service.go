package testutil

import (
	"testing"

	"gbadb/internal/assets"
	"gbadb/internal/database"
	"gbadb/internal/gba"
	"gbadb/internal/prefs"
	"gbadb/internal/skin"
)

// Harness wires a GBAService to in-memory dependencies that tests can inspect.
type Harness struct {
	Service *gba.GBAService
	DB      *database.SQLiteDatabase
	Assets  *assets.MemoryStore
	FS      *MockFilesystemManager
	Prefs   *prefs.MemoryStore
	Clock   *StubClock
	IDs     *StubIDGenerator
	Logger  *RecordingLogger
}

// NewHarness builds a service without encryption.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	return NewHarnessWithEncryptor(t, nil)
}

// NewHarnessWithEncryptor builds a service that seals payloads with enc.
func NewHarnessWithEncryptor(t *testing.T, enc gba.Encryptor) *Harness {
	t.Helper()

	decoder, err := skin.NewDecoder()
	if err != nil {
		t.Fatalf("skin.NewDecoder() error = %v", err)
	}

	h := &Harness{
		Assets: assets.NewMemoryStore(),
		FS:     NewMockFilesystemManager(),
		Prefs:  prefs.NewMemoryStore(),
		Clock:  FixedClock(),
		IDs:    NewStubIDGenerator(),
		Logger: &RecordingLogger{},
	}
	h.DB = NewTestDatabase(t, h.Clock)
	h.Service = gba.NewGBAService(h.DB, h.Assets, h.FS, decoder, h.Prefs, enc, h.Logger, h.Clock, h.IDs)
	return h
}

// ImportGame adds content at path to the mock filesystem and imports it.
func (h *Harness) ImportGame(t *testing.T, path string, content []byte) *gba.Game {
	t.Helper()
	h.FS.AddFile(path, content)
	game, err := h.Service.ImportGame(h.FS.MustResolve(path))
	if err != nil {
		t.Fatalf("ImportGame(%s) error = %v", path, err)
	}
	return game
}
