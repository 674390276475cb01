package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.sav"})
		if len(m.patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(m.patterns))
		}
		if m.patterns[0].pattern != "*.sav" {
			t.Errorf("expected *.sav, got %s", m.patterns[0].pattern)
		}
	})

	t.Run("classifies path vs basename patterns", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.sav", "hacks/beta"})
		if m.patterns[0].matchPath {
			t.Error("*.sav should not be a path pattern")
		}
		if !m.patterns[1].matchPath {
			t.Error("hacks/beta should be a path pattern")
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name         string
		patterns     []string
		relativePath string
		want         bool
	}{
		{"basename glob in root", []string{"*.sav"}, "Zelda.sav", true},
		{"basename glob in subdirectory", []string{"*.sav"}, filepath.Join("gbc", "Zelda.sav"), true},
		{"different extension", []string{"*.sav"}, "Zelda.gbc", false},
		{"path pattern matches", []string{"hacks/*"}, filepath.Join("hacks", "rom.gba"), true},
		{"path pattern requires directory", []string{"hacks/*"}, "rom.gba", false},
		{"malformed pattern never matches", []string{"[", "*.gba"}, "rom.gba", true},
		{"no patterns", nil, "rom.gba", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.relativePath); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.relativePath, got, tt.want)
			}
		})
	}
}

func TestIgnoreMatcher_NilMatchesNothing(t *testing.T) {
	var m *IgnoreMatcher
	if m.Match("anything.gba") {
		t.Error("nil matcher should not match")
	}
}

func TestLoadIgnoreMatcher(t *testing.T) {
	t.Run("defaults without ignore file", func(t *testing.T) {
		m, err := LoadIgnoreMatcher(t.TempDir())
		if err != nil {
			t.Fatalf("LoadIgnoreMatcher() error = %v", err)
		}
		for _, name := range []string{".DS_Store", "Pokemon.sav", "._Pokemon.gba", IgnoreFilename} {
			if !m.Match(name) {
				t.Errorf("Match(%q) = false, want true", name)
			}
		}
		if m.Match("Pokemon.gba") {
			t.Error("Match(Pokemon.gba) = true, want false")
		}
	})

	t.Run("merges directory ignore file", func(t *testing.T) {
		dir := t.TempDir()
		content := "# betas\n*beta*\n"
		if err := os.WriteFile(filepath.Join(dir, IgnoreFilename), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		m, err := LoadIgnoreMatcher(dir)
		if err != nil {
			t.Fatalf("LoadIgnoreMatcher() error = %v", err)
		}
		if !m.Match("Metroid (beta).gba") {
			t.Error("expected directory pattern to apply")
		}
		if !m.Match("Metroid.sav") {
			t.Error("expected default pattern to still apply")
		}
	})
}

func TestParseIgnoreFile_Missing(t *testing.T) {
	patterns, err := ParseIgnoreFile(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ParseIgnoreFile() error = %v", err)
	}
	if patterns != nil {
		t.Errorf("ParseIgnoreFile() = %v, want nil", patterns)
	}
}
