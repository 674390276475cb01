package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gbadb/internal/gba"
)

// FileSystemStore is a filesystem-based implementation of gba.AssetStore.
// It lays files out as:
//
//	<root>/Database/
//	  Games/<filename>
//	  Skins/<filename>
//	  Save States/<escaped game id>/<state id>
//
// Game ids are path-escaped so identities that look like paths stay one
// directory level deep. Directories are created on first write.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a store rooted at root. Nothing is created on disk yet.
func NewFileSystemStore(root string) *FileSystemStore {
	return &FileSystemStore{root: filepath.Join(root, databaseDir)}
}

// Root returns the Database directory.
func (s *FileSystemStore) Root() string {
	return s.root
}

func (s *FileSystemStore) assetPath(kind gba.AssetKind, name string) (string, error) {
	dir, err := kindDir(kind)
	if err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, dir, name), nil
}

func (s *FileSystemStore) payloadDir(gameID string) (string, error) {
	if err := validateGameID(gameID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, saveStatesDir, url.PathEscape(gameID)), nil
}

func (s *FileSystemStore) payloadPath(gameID, stateID string) (string, error) {
	dir, err := s.payloadDir(gameID)
	if err != nil {
		return "", err
	}
	if err := validateName(stateID); err != nil {
		return "", err
	}
	return filepath.Join(dir, stateID), nil
}

// AssetPath returns where name lives (or would live) in managed storage.
func (s *FileSystemStore) AssetPath(kind gba.AssetKind, name string) string {
	p, err := s.assetPath(kind, name)
	if err != nil {
		return ""
	}
	return p
}

// ImportIfAbsent copies r into managed storage unless name already exists.
func (s *FileSystemStore) ImportIfAbsent(kind gba.AssetKind, name string, r io.Reader) (string, bool, error) {
	dest, err := s.assetPath(kind, name)
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(dest); err == nil {
		return dest, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("checking %s: %w", dest, err)
	}

	if _, err := writeFile(dest, r); err != nil {
		return "", false, err
	}
	return dest, true, nil
}

// ImportReplacing copies r into managed storage, replacing any existing file.
func (s *FileSystemStore) ImportReplacing(kind gba.AssetKind, name string, r io.Reader) (string, error) {
	dest, err := s.assetPath(kind, name)
	if err != nil {
		return "", err
	}
	if _, err := writeFile(dest, r); err != nil {
		return "", err
	}
	return dest, nil
}

// OpenAsset opens a managed file for reading.
func (s *FileSystemStore) OpenAsset(kind gba.AssetKind, name string) (io.ReadCloser, error) {
	src, err := s.assetPath(kind, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, name)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// RemoveAsset deletes a managed file.
func (s *FileSystemStore) RemoveAsset(kind gba.AssetKind, name string) error {
	p, err := s.assetPath(kind, name)
	if err != nil {
		return err
	}
	return removeFile(p)
}

// PutPayload writes a payload atomically and returns the number of bytes written.
func (s *FileSystemStore) PutPayload(gameID, stateID string, r io.Reader) (int64, error) {
	dest, err := s.payloadPath(gameID, stateID)
	if err != nil {
		return 0, err
	}
	return writeFile(dest, r)
}

// GetPayload copies a payload to w.
func (s *FileSystemStore) GetPayload(gameID, stateID string, w io.Writer) error {
	src, err := s.payloadPath(gameID, stateID)
	if err != nil {
		return err
	}
	return readFile(src, w, fmt.Sprintf("payload %s for game %s", stateID, gameID))
}

// RemovePayload deletes a payload and, if it was the last one, the game's directory.
func (s *FileSystemStore) RemovePayload(gameID, stateID string) error {
	p, err := s.payloadPath(gameID, stateID)
	if err != nil {
		return err
	}
	if err := removeFile(p); err != nil {
		return err
	}
	// Fails harmlessly when other payloads remain.
	os.Remove(filepath.Dir(p))
	return nil
}

// ListPayloads walks the save-state tree. Temporary files are skipped.
func (s *FileSystemStore) ListPayloads() ([]gba.PayloadRef, error) {
	base := filepath.Join(s.root, saveStatesDir)
	gameDirs, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", base, err)
	}

	var refs []gba.PayloadRef
	for _, gd := range gameDirs {
		if !gd.IsDir() {
			continue
		}
		gameID, err := url.PathUnescape(gd.Name())
		if err != nil {
			return nil, fmt.Errorf("decoding game directory %q: %w", gd.Name(), err)
		}

		entries, err := os.ReadDir(filepath.Join(base, gd.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", gd.Name(), err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tmpPrefix) {
				continue
			}
			refs = append(refs, gba.PayloadRef{GameID: gameID, StateID: e.Name()})
		}
	}
	return refs, nil
}

// MovePayloads renames the named payloads from one game directory to another.
func (s *FileSystemStore) MovePayloads(fromGameID, toGameID string, stateIDs []string) error {
	fromDir, err := s.payloadDir(fromGameID)
	if err != nil {
		return err
	}
	toDir, err := s.payloadDir(toGameID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(toDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, id := range stateIDs {
		if err := validateName(id); err != nil {
			return err
		}
		err := os.Rename(filepath.Join(fromDir, id), filepath.Join(toDir, id))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("moving payload %s: %w", id, err)
		}
	}

	os.Remove(fromDir)
	return nil
}

// writeFile writes data from r to destPath using atomic write (temp file +
// rename), creating parent directories as needed.
func writeFile(destPath string, r io.Reader) (int64, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return 0, fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return written, nil
}

func readFile(srcPath string, w io.Writer, what string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, what)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return nil
}

func removeFile(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Compile-time check that FileSystemStore implements gba.AssetStore interface
var _ gba.AssetStore = (*FileSystemStore)(nil)
