package gba

import (
	"time"

	"gbadb/internal/database/sqlc"
)

// Database provides an interface for metadata storage operations.
// Lookups return (nil, nil) when nothing matches.
type Database interface {
	// Game operations

	// UpsertGame records an imported game, updating filename and type if it exists.
	UpsertGame(game *sqlc.Game) error

	// FindGameByID returns a game by its content identity.
	FindGameByID(id string) (*sqlc.Game, error)

	// ListGames returns all imported games ordered by filename.
	ListGames() ([]*sqlc.Game, error)

	// Skin operations

	// FindSkinByIdentifier returns a skin by its unique identifier.
	FindSkinByIdentifier(identifier string) (*sqlc.Skin, error)

	// FindSkinsByGameType returns skins for a game type ordered by name, then identifier.
	FindSkinsByGameType(gameType string) ([]*sqlc.Skin, error)

	// FindSkinsByFilename returns skins whose archive has the given managed filename.
	FindSkinsByFilename(filename string) ([]*sqlc.Skin, error)

	// CreateSkinIfAbsent inserts skin unless a record with the same identifier
	// exists. Returns the stored record and whether it was created.
	CreateSkinIfAbsent(skin *sqlc.Skin) (*sqlc.Skin, bool, error)

	// DeleteSkin removes a skin record.
	DeleteSkin(identifier string) error

	// SaveState operations

	// CreateSaveState inserts a save-state record.
	CreateSaveState(state *sqlc.SaveState) error

	// FindSaveStateByID returns a save-state record by ID.
	FindSaveStateByID(id string) (*sqlc.SaveState, error)

	// FindSaveStatesByGameID returns a game's save states ordered by creation time, then ID.
	FindSaveStatesByGameID(gameID string) ([]*sqlc.SaveState, error)

	// ListSaveStates returns every save-state record.
	ListSaveStates() ([]*sqlc.SaveState, error)

	// UpdateSaveStatePayload records a rewritten payload.
	UpdateSaveStatePayload(id string, modifiedAt time.Time, size int64, encrypted bool) error

	// DeleteSaveState removes a save-state record.
	DeleteSaveState(id string) error

	// RekeySaveStates moves every save state of oldGameID to newGameID
	// in one transaction and returns how many rows moved.
	RekeySaveStates(oldGameID, newGameID string) (int64, error)

	// Operation log

	// CreateOperation records the start of a mutating command.
	CreateOperation(operation, parameters string) (*sqlc.Operation, error)

	// FinishOperation records the outcome of an operation.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*sqlc.Operation, error)

	// Close closes the database connection.
	Close() error
}
