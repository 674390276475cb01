package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gbadb/internal/config"
	"gbadb/internal/gba"
)

func storeImplementations(t *testing.T) map[string]gba.Preferences {
	t.Helper()
	return map[string]gba.Preferences{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "preferences.toml")),
		"memory": NewMemoryStore(),
	}
}

func TestPreferences(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.Get(gba.PreferredSkinKey); err != nil || ok {
				t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
			}

			if err := store.Set(gba.PreferredSkinKey, "com.example.skin"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			v, ok, err := store.Get(gba.PreferredSkinKey)
			if err != nil || !ok || v != "com.example.skin" {
				t.Fatalf("Get() = %q, %v, %v", v, ok, err)
			}

			if err := store.Set(gba.PreferredSkinKey, "com.example.other"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if v, _, _ := store.Get(gba.PreferredSkinKey); v != "com.example.other" {
				t.Errorf("Get() after overwrite = %q", v)
			}

			if err := store.Delete(gba.PreferredSkinKey); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, ok, _ := store.Get(gba.PreferredSkinKey); ok {
				t.Error("Get() after Delete() reported a value")
			}
			if err := store.Delete("never-set"); err != nil {
				t.Errorf("Delete() of missing key error = %v", err)
			}
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")
	if err := NewFileStore(path).Set(gba.PreferredSkinKey, "com.example.skin"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok, err := NewFileStore(path).Get(gba.PreferredSkinKey)
	if err != nil || !ok || v != "com.example.skin" {
		t.Fatalf("Get() from second store = %q, %v, %v", v, ok, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "[preferences]") {
		t.Errorf("preferences file missing table header:\n%s", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the preferences file, found %d entries", len(entries))
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, _, err := NewFileStore(path).Get(gba.PreferredSkinKey); err == nil {
		t.Error("Get() expected error for corrupt file")
	}
}

func TestNewPreferencesFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PreferencesConfig
		wantErr bool
	}{
		{"file", config.PreferencesConfig{Type: "file", Path: filepath.Join(t.TempDir(), "p.toml")}, false},
		{"file without path", config.PreferencesConfig{Type: "file"}, true},
		{"memory", config.PreferencesConfig{Type: "memory"}, false},
		{"unknown", config.PreferencesConfig{Type: "plist"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPreferencesFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPreferencesFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && p == nil {
				t.Error("NewPreferencesFromConfig() returned nil store")
			}
		})
	}
}
