package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"gbadb/internal/gba"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It tracks open access scopes so leaks show up in Active.
type OSFilesystemManager struct {
	active atomic.Int64
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*gba.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return gba.NewPath(absPath, info.IsDir(), info), nil
}

// Access opens an external file inside an access scope. The scope ends when
// the returned reader is closed. Files the process may not read are
// reported as gba.ErrScopedAccessDenied.
func (m *OSFilesystemManager) Access(path *gba.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", gba.ErrScopedAccessDenied, path)
	}

	f, err := os.Open(path.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gba.ErrScopedAccessDenied, err)
	}

	m.active.Add(1)
	return &scopedFile{File: f, release: func() { m.active.Add(-1) }}, nil
}

// Active returns the number of access scopes that have not been released.
func (m *OSFilesystemManager) Active() int64 {
	return m.active.Load()
}

// FindFiles lists regular files directly inside the given directory,
// or beneath it when recursive is true.
func (m *OSFilesystemManager) FindFiles(path *gba.Path, recursive bool) ([]*gba.Path, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path.String())
	}

	var paths []*gba.Path
	err := filepath.WalkDir(path.String(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path.String() && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		paths = append(paths, gba.NewPath(p, false, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return paths, nil
}

// scopedFile releases its access scope exactly once on Close.
type scopedFile struct {
	*os.File
	once    sync.Once
	release func()
}

func (f *scopedFile) Close() error {
	err := f.File.Close()
	f.once.Do(f.release)
	return err
}

// Compile-time check that OSFilesystemManager implements gba.FilesystemManager interface
var _ gba.FilesystemManager = (*OSFilesystemManager)(nil)
