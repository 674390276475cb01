package gba_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gbadb/internal/gba"
	"gbadb/internal/testutil"
)

func TestGBAService_ImportGame(t *testing.T) {
	t.Run("identity is the content hash", func(t *testing.T) {
		h := testutil.NewHarness(t)
		content := []byte("metroid fusion rom")

		game := h.ImportGame(t, "/roms/Metroid Fusion.gba", content)

		if game.ID != testutil.SHA1Hex(content) {
			t.Errorf("ID = %s, want %s", game.ID, testutil.SHA1Hex(content))
		}
		if game.Type != gba.GameTypeGBA {
			t.Errorf("Type = %s, want gba", game.Type)
		}
		if game.Name != "Metroid Fusion.gba" {
			t.Errorf("Name = %s", game.Name)
		}
		if !h.Assets.HasAsset(gba.AssetGame, "Metroid Fusion.gba") {
			t.Error("ROM was not copied into managed storage")
		}
		if h.FS.Outstanding() != 0 {
			t.Errorf("Outstanding() = %d, want 0", h.FS.Outstanding())
		}
	})

	t.Run("same bytes under different names share identity", func(t *testing.T) {
		h := testutil.NewHarness(t)
		content := []byte("identical rom bytes")

		a := h.ImportGame(t, "/downloads/Pokemon.gba", content)
		b := h.ImportGame(t, "/elsewhere/Pokemon Emerald.gba", content)

		if a.ID != b.ID {
			t.Errorf("IDs differ: %s vs %s", a.ID, b.ID)
		}
	})

	t.Run("one byte difference yields a different identity", func(t *testing.T) {
		h := testutil.NewHarness(t)

		a := h.ImportGame(t, "/roms/A.gba", []byte("rom-0"))
		b := h.ImportGame(t, "/roms/B.gba", []byte("rom-1"))

		if a.ID == b.ID {
			t.Error("different content produced the same identity")
		}
	})

	t.Run("existing managed file is reused", func(t *testing.T) {
		h := testutil.NewHarness(t)

		first := h.ImportGame(t, "/a/Zelda.gbc", []byte("original"))
		second := h.ImportGame(t, "/b/Zelda.gbc", []byte("different bytes"))

		if second.ID != first.ID {
			t.Errorf("re-import with same name: ID = %s, want existing %s", second.ID, first.ID)
		}
		if second.Type != gba.GameTypeGBC {
			t.Errorf("Type = %s, want gbc", second.Type)
		}
	})

	t.Run("rom inside zip", func(t *testing.T) {
		h := testutil.NewHarness(t)
		rom := []byte("zipped rom")
		archive := testutil.BuildZip(map[string][]byte{"readme.txt": []byte("hi"), "Golden Sun.gba": rom})

		game := h.ImportGame(t, "/roms/golden.zip", archive)

		if game.Name != "Golden Sun.gba" || game.ID != testutil.SHA1Hex(rom) {
			t.Errorf("ImportGame() = %+v", game)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		h := testutil.NewHarness(t)
		h.FS.AddFile("/roms/Mario.nes", []byte("nes"))

		_, err := h.Service.ImportGame(h.FS.MustResolve("/roms/Mario.nes"))
		if !errors.Is(err, gba.ErrImportDecode) {
			t.Errorf("ImportGame() error = %v, want ErrImportDecode", err)
		}
		if h.FS.Outstanding() != 0 {
			t.Errorf("Outstanding() = %d after failure, want 0", h.FS.Outstanding())
		}
	})

	t.Run("denied access copies nothing", func(t *testing.T) {
		h := testutil.NewHarness(t)
		h.FS.AddFile("/private/Secret.gba", []byte("rom"))
		h.FS.Deny("/private/Secret.gba")

		_, err := h.Service.ImportGame(h.FS.MustResolve("/private/Secret.gba"))
		if !errors.Is(err, gba.ErrScopedAccessDenied) {
			t.Fatalf("ImportGame() error = %v, want ErrScopedAccessDenied", err)
		}
		if h.Assets.HasAsset(gba.AssetGame, "Secret.gba") {
			t.Error("denied file was copied")
		}
		games, _ := h.Service.ListGames()
		if len(games) != 0 {
			t.Errorf("ListGames() = %d games, want 0", len(games))
		}
	})

	t.Run("oversized source", func(t *testing.T) {
		h := testutil.NewHarness(t)
		h.Service.SetMaxImportSize(8)
		h.FS.AddFile("/roms/Big.gba", bytes.Repeat([]byte{1}, 9))

		_, err := h.Service.ImportGame(h.FS.MustResolve("/roms/Big.gba"))
		if !errors.Is(err, gba.ErrImportDecode) {
			t.Errorf("ImportGame() error = %v, want ErrImportDecode", err)
		}
		if h.FS.Outstanding() != 0 {
			t.Errorf("Outstanding() = %d, want 0", h.FS.Outstanding())
		}
	})
}

func TestGBAService_ListAndFindGames(t *testing.T) {
	h := testutil.NewHarness(t)
	zelda := h.ImportGame(t, "/roms/Zelda.gbc", []byte("zelda"))
	h.ImportGame(t, "/roms/Advance Wars.gba", []byte("wars"))

	games, err := h.Service.ListGames()
	if err != nil {
		t.Fatalf("ListGames() error = %v", err)
	}
	if len(games) != 2 || games[0].Name != "Advance Wars.gba" || games[1].Name != "Zelda.gbc" {
		t.Fatalf("ListGames() = %+v, want filename order", games)
	}
	if !strings.HasSuffix(games[1].Path, "Zelda.gbc") {
		t.Errorf("Path = %s", games[1].Path)
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"by id", zelda.ID, zelda.ID},
		{"by filename", "Zelda.gbc", zelda.ID},
		{"unknown", "Metroid.gba", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Service.FindGame(tt.ref)
			if err != nil {
				t.Fatalf("FindGame() error = %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("FindGame(%q) = %+v, want nil", tt.ref, got)
				}
				return
			}
			if got == nil || got.ID != tt.want {
				t.Errorf("FindGame(%q) = %+v, want id %s", tt.ref, got, tt.want)
			}
		})
	}
}
