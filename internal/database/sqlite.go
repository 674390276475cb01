package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gbadb/internal/database/migrations"
	"gbadb/internal/database/sqlc"
	"gbadb/internal/gba"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	clock   gba.Clock
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
// A nil clock uses the real clock.
func NewSQLiteDatabase(path string, clock gba.Clock) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteDatabaseFromDB(db, clock)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, clock gba.Clock) *SQLiteDatabase {
	if clock == nil {
		clock = gba.RealClock{}
	}
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		clock:   clock,
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database, and the library
	// is single-writer anyway.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func toPointers[T any](items []T) []*T {
	result := make([]*T, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result
}

// Game operations

func (s *SQLiteDatabase) UpsertGame(game *sqlc.Game) error {
	err := s.queries.UpsertGame(context.Background(), sqlc.UpsertGameParams{
		ID:         game.ID,
		GameType:   game.GameType,
		Filename:   game.Filename,
		ImportedAt: game.ImportedAt,
	})
	if err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindGameByID(id string) (*sqlc.Game, error) {
	game, err := s.queries.GetGameByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding game by id: %w", err)
	}
	return &game, nil
}

func (s *SQLiteDatabase) ListGames() ([]*sqlc.Game, error) {
	games, err := s.queries.ListGames(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return toPointers(games), nil
}

// Skin operations

func (s *SQLiteDatabase) FindSkinByIdentifier(identifier string) (*sqlc.Skin, error) {
	skin, err := s.queries.GetSkinByIdentifier(context.Background(), identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding skin by identifier: %w", err)
	}
	return &skin, nil
}

func (s *SQLiteDatabase) FindSkinsByGameType(gameType string) ([]*sqlc.Skin, error) {
	skins, err := s.queries.GetSkinsByGameType(context.Background(), gameType)
	if err != nil {
		return nil, fmt.Errorf("finding skins by game type: %w", err)
	}
	return toPointers(skins), nil
}

func (s *SQLiteDatabase) FindSkinsByFilename(filename string) ([]*sqlc.Skin, error) {
	skins, err := s.queries.GetSkinsByFilename(context.Background(), filename)
	if err != nil {
		return nil, fmt.Errorf("finding skins by filename: %w", err)
	}
	return toPointers(skins), nil
}

// CreateSkinIfAbsent looks up and inserts in one transaction so concurrent
// imports of the same identifier cannot both insert.
func (s *SQLiteDatabase) CreateSkinIfAbsent(skin *sqlc.Skin) (*sqlc.Skin, bool, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	existing, err := qtx.GetSkinByIdentifier(ctx, skin.Identifier)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("committing transaction: %w", err)
		}
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("finding skin by identifier: %w", err)
	}

	created, err := qtx.InsertSkin(ctx, sqlc.InsertSkinParams{
		Identifier:   skin.Identifier,
		GameType:     skin.GameType,
		Name:         skin.Name,
		Filename:     skin.Filename,
		Orientations: skin.Orientations,
		CreatedAt:    skin.CreatedAt,
	})
	if err != nil {
		return nil, false, fmt.Errorf("inserting skin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing transaction: %w", err)
	}
	return &created, true, nil
}

func (s *SQLiteDatabase) DeleteSkin(identifier string) error {
	if err := s.queries.DeleteSkinByIdentifier(context.Background(), identifier); err != nil {
		return fmt.Errorf("deleting skin: %w", err)
	}
	return nil
}

// SaveState operations

func (s *SQLiteDatabase) CreateSaveState(state *sqlc.SaveState) error {
	_, err := s.queries.InsertSaveState(context.Background(), sqlc.InsertSaveStateParams{
		ID:         state.ID,
		GameID:     state.GameID,
		Size:       state.Size,
		Encrypted:  state.Encrypted,
		CreatedAt:  state.CreatedAt,
		ModifiedAt: state.ModifiedAt,
	})
	if err != nil {
		return fmt.Errorf("creating save state: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindSaveStateByID(id string) (*sqlc.SaveState, error) {
	state, err := s.queries.GetSaveStateByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding save state by id: %w", err)
	}
	return &state, nil
}

func (s *SQLiteDatabase) FindSaveStatesByGameID(gameID string) ([]*sqlc.SaveState, error) {
	states, err := s.queries.GetSaveStatesByGameID(context.Background(), gameID)
	if err != nil {
		return nil, fmt.Errorf("finding save states by game id: %w", err)
	}
	return toPointers(states), nil
}

func (s *SQLiteDatabase) ListSaveStates() ([]*sqlc.SaveState, error) {
	states, err := s.queries.ListSaveStates(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing save states: %w", err)
	}
	return toPointers(states), nil
}

func (s *SQLiteDatabase) UpdateSaveStatePayload(id string, modifiedAt time.Time, size int64, encrypted bool) error {
	err := s.queries.UpdateSaveStatePayload(context.Background(), sqlc.UpdateSaveStatePayloadParams{
		ModifiedAt: modifiedAt,
		Size:       size,
		Encrypted:  encrypted,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("updating save state: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) DeleteSaveState(id string) error {
	if err := s.queries.DeleteSaveStateByID(context.Background(), id); err != nil {
		return fmt.Errorf("deleting save state: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) RekeySaveStates(oldGameID, newGameID string) (int64, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := s.queries.WithTx(tx).UpdateSaveStatesGameID(ctx, sqlc.UpdateSaveStatesGameIDParams{
		NewGameID: newGameID,
		OldGameID: oldGameID,
	})
	if err != nil {
		return 0, fmt.Errorf("rekeying save states: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return n, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*sqlc.Operation, error) {
	op, err := s.queries.InsertOperation(context.Background(), sqlc.InsertOperationParams{
		StartedAt:  s.clock.Now(),
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	err := s.queries.UpdateOperationFinished(context.Background(), sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: s.clock.Now(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.GetOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return toPointers(ops), nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.Check(s.db)
}

// Migrate runs all pending migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements gba.Database interface
var _ gba.Database = (*SQLiteDatabase)(nil)
