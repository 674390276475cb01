package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gbadb/internal/gba"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	m := NewOSFilesystemManager()
	dir := t.TempDir()
	file := filepath.Join(dir, "Metroid.gba")
	writeTestFile(t, file, "rom")

	t.Run("regular file", func(t *testing.T) {
		p, err := m.Resolve(file)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() || p.Name() != "Metroid.gba" {
			t.Errorf("Resolve() = %v (dir=%v)", p, p.IsDir())
		}
	})

	t.Run("directory", func(t *testing.T) {
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("IsDir() = false for directory")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(dir, "missing.gba")); err == nil {
			t.Error("Resolve() expected error for missing path")
		}
	})

	t.Run("symlink", func(t *testing.T) {
		link := filepath.Join(dir, "link.gba")
		if err := os.Symlink(file, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if _, err := m.Resolve(link); err == nil {
			t.Error("Resolve() expected error for symlink")
		}
	})
}

func TestOSFilesystemManager_Access(t *testing.T) {
	t.Run("scope is released on close", func(t *testing.T) {
		m := NewOSFilesystemManager()
		file := filepath.Join(t.TempDir(), "skin.deltaskin")
		writeTestFile(t, file, "data")

		p, err := m.Resolve(file)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		rc, err := m.Access(p)
		if err != nil {
			t.Fatalf("Access() error = %v", err)
		}
		if m.Active() != 1 {
			t.Errorf("Active() = %d while open, want 1", m.Active())
		}

		data, err := io.ReadAll(rc)
		if err != nil || string(data) != "data" {
			t.Errorf("ReadAll() = %q, %v", data, err)
		}

		rc.Close()
		rc.Close()
		if m.Active() != 0 {
			t.Errorf("Active() = %d after close, want 0", m.Active())
		}
	})

	t.Run("unreadable file is denied", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root can read any file")
		}
		m := NewOSFilesystemManager()
		file := filepath.Join(t.TempDir(), "locked.gba")
		writeTestFile(t, file, "rom")
		if err := os.Chmod(file, 0); err != nil {
			t.Fatalf("Chmod() error = %v", err)
		}

		p, err := m.Resolve(file)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if _, err := m.Access(p); !errors.Is(err, gba.ErrScopedAccessDenied) {
			t.Errorf("Access() error = %v, want ErrScopedAccessDenied", err)
		}
		if m.Active() != 0 {
			t.Errorf("Active() = %d after denial, want 0", m.Active())
		}
	})

	t.Run("directory is denied", func(t *testing.T) {
		m := NewOSFilesystemManager()
		p, err := m.Resolve(t.TempDir())
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if _, err := m.Access(p); !errors.Is(err, gba.ErrScopedAccessDenied) {
			t.Errorf("Access() error = %v, want ErrScopedAccessDenied", err)
		}
	})
}

func TestOSFilesystemManager_FindFiles(t *testing.T) {
	m := NewOSFilesystemManager()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.gba"), "a")
	writeTestFile(t, filepath.Join(dir, "b.zip"), "b")
	writeTestFile(t, filepath.Join(dir, "sub", "c.gbc"), "c")

	root, err := m.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		recursive bool
		want      int
	}{
		{false, 2},
		{true, 3},
	}
	for _, tt := range tests {
		files, err := m.FindFiles(root, tt.recursive)
		if err != nil {
			t.Fatalf("FindFiles(%v) error = %v", tt.recursive, err)
		}
		if len(files) != tt.want {
			t.Errorf("FindFiles(%v) returned %d files, want %d", tt.recursive, len(files), tt.want)
		}
	}
}
