package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gbadb/internal/gba"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
	// Denied files resolve but refuse scoped access.
	Denied bool
}

// MockFilesystemManager is an in-memory filesystem for testing. It counts
// scoped access acquisitions and releases so tests can check that every
// Access is paired with a Close.
type MockFilesystemManager struct {
	mu       sync.Mutex
	files    map[string]*MockFile
	acquired int
	released int
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem and returns its absolute path.
func (m *MockFilesystemManager) AddFile(path string, content []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	abs := mustAbs(path)
	m.files[abs] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
	return abs
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	abs := mustAbs(path)
	m.files[abs] = &MockFile{
		Permissions: 0755,
		ModTime:     time.Now(),
		IsDirectory: true,
	}
	return abs
}

// Deny makes scoped access to path fail.
func (m *MockFilesystemManager) Deny(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[mustAbs(path)]; ok {
		f.Denied = true
	}
}

// MustResolve resolves path or panics. For test setup only.
func (m *MockFilesystemManager) MustResolve(path string) *gba.Path {
	p, err := m.Resolve(path)
	if err != nil {
		panic(err)
	}
	return p
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*gba.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return gba.NewPath(absPath, file.IsDirectory, newMockFileInfo(absPath, file)), nil
}

func (m *MockFilesystemManager) Access(path *gba.Path) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("%w: file not found: %s", gba.ErrScopedAccessDenied, path)
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("%w: cannot open directory: %s", gba.ErrScopedAccessDenied, path)
	}
	if file.Denied {
		return nil, fmt.Errorf("%w: %s", gba.ErrScopedAccessDenied, path)
	}

	m.acquired++
	return &scopedReader{Reader: bytes.NewReader(file.Content), release: m.release}, nil
}

func (m *MockFilesystemManager) FindFiles(path *gba.Path, recursive bool) ([]*gba.Path, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := path.String() + string(filepath.Separator)
	var names []string
	for name, f := range m.files {
		if f.IsDirectory || !strings.HasPrefix(name, prefix) {
			continue
		}
		if !recursive && strings.ContainsRune(strings.TrimPrefix(name, prefix), filepath.Separator) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]*gba.Path, 0, len(names))
	for _, name := range names {
		paths = append(paths, gba.NewPath(name, false, newMockFileInfo(name, m.files[name])))
	}
	return paths, nil
}

// Acquired returns how many scoped accesses were granted.
func (m *MockFilesystemManager) Acquired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired
}

// Outstanding returns granted accesses that were never released.
func (m *MockFilesystemManager) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired - m.released
}

func (m *MockFilesystemManager) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released++
}

type scopedReader struct {
	*bytes.Reader
	once    sync.Once
	release func()
}

func (r *scopedReader) Close() error {
	r.once.Do(r.release)
	return nil
}

func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	return abs
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name     string
	size     int64
	mode     fs.FileMode
	modTime  time.Time
	isDir    bool
	mockFile *MockFile
}

func newMockFileInfo(path string, f *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:     filepath.Base(path),
		size:     int64(len(f.Content)),
		mode:     f.Permissions,
		modTime:  f.ModTime,
		isDir:    f.IsDirectory,
		mockFile: f,
	}
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return m.mockFile }

// Compile-time check
var _ gba.FilesystemManager = (*MockFilesystemManager)(nil)
