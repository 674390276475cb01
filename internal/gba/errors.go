package gba

import "errors"

// Failure categories surfaced by the service layer. Callers match them with
// errors.Is; the wrapped chain carries the underlying cause.
var (
	// ErrImportDecode means an imported ROM or skin file is malformed.
	// The import is aborted and no record is persisted.
	ErrImportDecode = errors.New("import decode error")

	// ErrIO means a copy, read or write against managed storage failed.
	// Prior state is preserved.
	ErrIO = errors.New("i/o error")

	// ErrLoad means a save-state payload is missing, corrupt or cannot be
	// decrypted. The core's run state is restored to its pre-load value.
	ErrLoad = errors.New("save state load error")

	// ErrScopedAccessDenied means an external source file could not be
	// opened for reading. Raised before anything is copied.
	ErrScopedAccessDenied = errors.New("scoped access denied")

	// ErrUnsupportedGame means a ROM's file extension maps to no known game type.
	ErrUnsupportedGame = errors.New("unsupported game type")

	// ErrSessionStopped is returned by every Session operation after Stop.
	ErrSessionStopped = errors.New("session stopped")

	// ErrInvalidRate is returned when a playback rate other than
	// RateNormal or RateFastForward is requested.
	ErrInvalidRate = errors.New("invalid playback rate")
)
