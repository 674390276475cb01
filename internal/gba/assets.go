package gba

import "io"

// AssetKind selects a managed directory.
type AssetKind int

const (
	AssetGame AssetKind = iota
	AssetSkin
)

func (k AssetKind) String() string {
	switch k {
	case AssetGame:
		return "game"
	case AssetSkin:
		return "skin"
	default:
		return "unknown"
	}
}

// PayloadRef identifies one save-state payload in managed storage.
type PayloadRef struct {
	GameID  string
	StateID string
}

// AssetStore manages the application-owned storage tree:
//
//	Database/
//	  Games/<filename>
//	  Skins/<filename>
//	  Save States/<game id>/<state id>
//
// Directories are created on first use. Names are plain filenames; anything
// containing a path separator is rejected.
type AssetStore interface {
	// ImportIfAbsent copies r into managed storage under name unless a file
	// with that name already exists, in which case the existing copy is
	// reused and r is not read. Returns the managed path and whether a copy
	// was made.
	ImportIfAbsent(kind AssetKind, name string, r io.Reader) (managedPath string, imported bool, err error)

	// ImportReplacing copies r into managed storage under name, replacing
	// any existing file atomically.
	ImportReplacing(kind AssetKind, name string, r io.Reader) (managedPath string, err error)

	// OpenAsset opens a managed file for reading.
	OpenAsset(kind AssetKind, name string) (io.ReadCloser, error)

	// AssetPath returns the managed location of name. The file need not exist.
	AssetPath(kind AssetKind, name string) string

	// RemoveAsset deletes a managed file. Removing a missing file is not an error.
	RemoveAsset(kind AssetKind, name string) error

	// PutPayload writes (or overwrites) a save-state payload and returns its size.
	PutPayload(gameID, stateID string, r io.Reader) (int64, error)

	// GetPayload writes a save-state payload to w.
	GetPayload(gameID, stateID string, w io.Writer) error

	// RemovePayload deletes a payload. Removing a missing payload is not an error.
	RemovePayload(gameID, stateID string) error

	// ListPayloads returns every payload currently in storage.
	ListPayloads() ([]PayloadRef, error)

	// MovePayloads files the named payloads of fromGameID under toGameID.
	// Payloads that are already gone are skipped.
	MovePayloads(fromGameID, toGameID string, stateIDs []string) error
}
