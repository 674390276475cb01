package assets

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"gbadb/internal/gba"
)

// stores returns one fresh instance of every implementation.
func stores(t *testing.T) map[string]gba.AssetStore {
	t.Helper()
	return map[string]gba.AssetStore{
		"filesystem": NewFileSystemStore(t.TempDir()),
		"memory":     NewMemoryStore(),
	}
}

func readAsset(t *testing.T, s gba.AssetStore, kind gba.AssetKind, name string) string {
	t.Helper()
	rc, err := s.OpenAsset(kind, name)
	if err != nil {
		t.Fatalf("OpenAsset() error = %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(data)
}

// failingReader fails if anything reads it.
type failingReader struct{ t *testing.T }

func (r failingReader) Read([]byte) (int, error) {
	r.t.Error("source was read although a managed copy exists")
	return 0, io.EOF
}

func TestAssetStore_ImportIfAbsent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			path, imported, err := s.ImportIfAbsent(gba.AssetGame, "Metroid.gba", strings.NewReader("first"))
			if err != nil {
				t.Fatalf("ImportIfAbsent() error = %v", err)
			}
			if !imported {
				t.Error("imported = false on first import")
			}
			if path != s.AssetPath(gba.AssetGame, "Metroid.gba") {
				t.Errorf("path = %q, want %q", path, s.AssetPath(gba.AssetGame, "Metroid.gba"))
			}

			_, imported, err = s.ImportIfAbsent(gba.AssetGame, "Metroid.gba", failingReader{t})
			if err != nil {
				t.Fatalf("ImportIfAbsent() error = %v", err)
			}
			if imported {
				t.Error("imported = true for existing name")
			}
			if got := readAsset(t, s, gba.AssetGame, "Metroid.gba"); got != "first" {
				t.Errorf("content = %q, want original", got)
			}
		})
	}
}

func TestAssetStore_ImportReplacing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.ImportReplacing(gba.AssetSkin, "Classic.deltaskin", strings.NewReader("v1")); err != nil {
				t.Fatalf("ImportReplacing() error = %v", err)
			}
			if _, err := s.ImportReplacing(gba.AssetSkin, "Classic.deltaskin", strings.NewReader("v2")); err != nil {
				t.Fatalf("ImportReplacing() error = %v", err)
			}
			if got := readAsset(t, s, gba.AssetSkin, "Classic.deltaskin"); got != "v2" {
				t.Errorf("content = %q, want v2", got)
			}

			if err := s.RemoveAsset(gba.AssetSkin, "Classic.deltaskin"); err != nil {
				t.Fatalf("RemoveAsset() error = %v", err)
			}
			if _, err := s.OpenAsset(gba.AssetSkin, "Classic.deltaskin"); !errors.Is(err, ErrNotFound) {
				t.Errorf("OpenAsset() after remove error = %v, want ErrNotFound", err)
			}
			if err := s.RemoveAsset(gba.AssetSkin, "Classic.deltaskin"); err != nil {
				t.Errorf("RemoveAsset() of missing file error = %v", err)
			}
		})
	}
}

func TestAssetStore_RejectsPathNames(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", ".", "..", "../escape.gba", "dir/file.gba", `dir\file.gba`, ".tmp-123"} {
				if _, _, err := s.ImportIfAbsent(gba.AssetGame, bad, strings.NewReader("x")); err == nil {
					t.Errorf("ImportIfAbsent(%q) expected error", bad)
				}
				if _, err := s.PutPayload("game", bad, strings.NewReader("x")); err == nil {
					t.Errorf("PutPayload(%q) expected error", bad)
				}
			}
		})
	}
}

func TestAssetStore_RejectsDotGameIDs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", ".", ".."} {
				if _, err := s.PutPayload(bad, "state-1", strings.NewReader("x")); err == nil {
					t.Errorf("PutPayload(%q) expected error", bad)
				}
				if err := s.MovePayloads("game", bad, []string{"state-1"}); err == nil {
					t.Errorf("MovePayloads(to %q) expected error", bad)
				}
				if err := s.MovePayloads(bad, "game", []string{"state-1"}); err == nil {
					t.Errorf("MovePayloads(from %q) expected error", bad)
				}
			}

			refs, err := s.ListPayloads()
			if err != nil {
				t.Fatalf("ListPayloads() error = %v", err)
			}
			if len(refs) != 0 {
				t.Errorf("ListPayloads() = %v, want none", refs)
			}
		})
	}
}

func TestAssetStore_Payloads(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			gameID := "/Users/me/roms/Zelda.gba"

			size, err := s.PutPayload(gameID, "state-1", strings.NewReader("payload"))
			if err != nil {
				t.Fatalf("PutPayload() error = %v", err)
			}
			if size != 7 {
				t.Errorf("size = %d, want 7", size)
			}
			if _, err := s.PutPayload("other", "state-2", strings.NewReader("x")); err != nil {
				t.Fatalf("PutPayload() error = %v", err)
			}

			var buf bytes.Buffer
			if err := s.GetPayload(gameID, "state-1", &buf); err != nil {
				t.Fatalf("GetPayload() error = %v", err)
			}
			if buf.String() != "payload" {
				t.Errorf("GetPayload() = %q", buf.String())
			}

			refs, err := s.ListPayloads()
			if err != nil {
				t.Fatalf("ListPayloads() error = %v", err)
			}
			if len(refs) != 2 {
				t.Fatalf("ListPayloads() returned %d, want 2", len(refs))
			}
			found := false
			for _, r := range refs {
				if r.GameID == gameID && r.StateID == "state-1" {
					found = true
				}
			}
			if !found {
				t.Errorf("ListPayloads() = %v, missing path-like game id", refs)
			}

			if err := s.RemovePayload(gameID, "state-1"); err != nil {
				t.Fatalf("RemovePayload() error = %v", err)
			}
			if err := s.GetPayload(gameID, "state-1", io.Discard); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetPayload() after remove error = %v, want ErrNotFound", err)
			}
			if err := s.RemovePayload(gameID, "state-1"); err != nil {
				t.Errorf("RemovePayload() of missing payload error = %v", err)
			}
		})
	}
}

func TestAssetStore_MovePayloads(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"a", "b"} {
				if _, err := s.PutPayload("legacy", id, strings.NewReader(id)); err != nil {
					t.Fatalf("PutPayload() error = %v", err)
				}
			}
			if _, err := s.PutPayload("sha1", "existing", strings.NewReader("e")); err != nil {
				t.Fatalf("PutPayload() error = %v", err)
			}

			if err := s.MovePayloads("legacy", "sha1", []string{"a", "b", "gone"}); err != nil {
				t.Fatalf("MovePayloads() error = %v", err)
			}

			refs, err := s.ListPayloads()
			if err != nil {
				t.Fatalf("ListPayloads() error = %v", err)
			}
			if len(refs) != 3 {
				t.Fatalf("ListPayloads() returned %d, want 3", len(refs))
			}
			for _, r := range refs {
				if r.GameID != "sha1" {
					t.Errorf("payload %s still under %s", r.StateID, r.GameID)
				}
			}

			var buf bytes.Buffer
			if err := s.GetPayload("sha1", "a", &buf); err != nil || buf.String() != "a" {
				t.Errorf("GetPayload(sha1, a) = %q, %v", buf.String(), err)
			}
		})
	}
}
