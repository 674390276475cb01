package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gbadb/internal/assets"
	"gbadb/internal/config"
	"gbadb/internal/database"
	"gbadb/internal/database/sqlc"
	"gbadb/internal/encryption"
	"gbadb/internal/fs"
	"gbadb/internal/gba"
	"gbadb/internal/prefs"
	"gbadb/internal/romfile"
	"gbadb/internal/skin"
	"gbadb/internal/watch"
)

// App is the application layer between the CLI and GBAService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths and references, and manages the DB lifecycle
// on Close.
type App struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	assets    gba.AssetStore
	fsmgr     *fs.OSFilesystemManager
	prefs     gba.Preferences
	encryptor gba.Encryptor
	service   *gba.GBAService
	logger    *slog.Logger
	op        *Operation
	logCloser io.Closer
}

// NewApp creates a fully wired App from the given config. The schema is
// migrated and save states are reconciled before it returns.
// operation identifies the CLI command being run (e.g. "ImportGame").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logCloser, err := newLogger(cfg.LogDir, cfg.Log, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := wire(cfg, operation, logger)
	if err != nil {
		logger.Error("startup failed", "operation", operation, "error", err)
		logCloser.Close()
		return nil, err
	}
	a.logCloser = logCloser
	return a, nil
}

func wire(cfg *config.Config, operation string, logger *slog.Logger) (*App, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database, gba.RealClock{})
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	store, err := assets.NewStoreFromConfig(cfg.Assets)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating asset store: %w", err)
	}

	p, err := prefs.NewPreferencesFromConfig(cfg.Preferences)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating preferences: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	decoder, err := skin.NewDecoder()
	if err != nil {
		db.Close()
		return nil, err
	}

	fsmgr := fs.NewOSFilesystemManager()
	svc := gba.NewGBAService(db, store, fsmgr, decoder, p, enc, &slogAdapter{l: logger}, gba.RealClock{}, gba.UUIDGenerator{})
	svc.SetMaxImportSize(cfg.Import.MaxSize)

	// Repair unmatched payloads and records before serving any command.
	if _, err := svc.ReconcileSaveStates(); err != nil {
		logger.Warn("save state reconciliation failed", "error", err)
	}

	return &App{
		cfg:       cfg,
		db:        db,
		assets:    store,
		fsmgr:     fsmgr,
		prefs:     p,
		encryptor: enc,
		service:   svc,
		logger:    logger,
		op:        NewOperation(operation, ""),
	}, nil
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for commands that change the library.
func (a *App) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// track marks the operation failed when err is non-nil and returns err.
func (a *App) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

// ImportGames imports the ROM or archive at rawPath. A directory imports
// every ROM and archive inside it, skipping ignored files; one bad file does
// not stop the rest. Returns the games imported.
func (a *App) ImportGames(rawPath string, recursive bool) ([]*gba.Game, error) {
	if err := a.persistOperation(rawPath); err != nil {
		return nil, err
	}
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, a.track(fmt.Errorf("resolving path: %w", err))
	}

	if !p.IsDir() {
		game, err := a.service.ImportGame(p)
		if err != nil {
			return nil, a.track(err)
		}
		return []*gba.Game{game}, nil
	}

	ignore, err := fs.LoadIgnoreMatcher(p.String())
	if err != nil {
		return nil, a.track(err)
	}
	files, err := a.fsmgr.FindFiles(p, recursive)
	if err != nil {
		return nil, a.track(err)
	}

	var games []*gba.Game
	var errs []error
	for _, f := range files {
		rel, err := filepath.Rel(p.String(), f.String())
		if err != nil || ignore.Match(rel) || !importable(f.Name()) {
			continue
		}
		game, err := a.service.ImportGame(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
			continue
		}
		games = append(games, game)
	}
	return games, a.track(errors.Join(errs...))
}

func importable(name string) bool {
	if _, ok := gba.GameTypeForFilename(name); ok {
		return true
	}
	return romfile.IsArchive(name)
}

// ListGames returns every imported game.
func (a *App) ListGames() ([]*gba.Game, error) {
	return a.service.ListGames()
}

// ImportSkin resolves rawPath and imports it as a skin.
func (a *App) ImportSkin(rawPath string) (*sqlc.Skin, error) {
	if err := a.persistOperation(rawPath); err != nil {
		return nil, err
	}
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, a.track(fmt.Errorf("resolving path: %w", err))
	}
	record, err := a.service.ImportSkin(p)
	return record, a.track(err)
}

// ListSkins lists skins for the named game type, or for every type when
// typeName is empty.
func (a *App) ListSkins(typeName string) ([]*sqlc.Skin, error) {
	types, err := gameTypes(typeName)
	if err != nil {
		return nil, err
	}
	var all []*sqlc.Skin
	for _, t := range types {
		skins, err := a.service.ListSkins(t)
		if err != nil {
			return nil, err
		}
		all = append(all, skins...)
	}
	return all, nil
}

// PreferredSkins resolves the preferred skin for the named game type, or
// for every type when typeName is empty.
func (a *App) PreferredSkins(typeName string) ([]*sqlc.Skin, error) {
	types, err := gameTypes(typeName)
	if err != nil {
		return nil, err
	}
	skins := make([]*sqlc.Skin, 0, len(types))
	for _, t := range types {
		skins = append(skins, a.service.ResolvePreferredSkin(t))
	}
	return skins, nil
}

func gameTypes(typeName string) ([]gba.GameType, error) {
	if typeName == "" {
		return gba.GameTypes, nil
	}
	t, err := gba.ParseGameType(typeName)
	if err != nil {
		return nil, err
	}
	return []gba.GameType{t}, nil
}

// SelectSkin remembers the skin with the given identifier as preferred.
func (a *App) SelectSkin(identifier string) (*sqlc.Skin, error) {
	if err := a.persistOperation(identifier); err != nil {
		return nil, err
	}
	record, err := a.service.FindSkin(identifier)
	if err != nil {
		return nil, a.track(err)
	}
	if record == nil {
		return nil, a.track(fmt.Errorf("skin not found: %s", identifier))
	}
	return record, a.track(a.service.SelectSkin(record))
}

// ClearSkin forgets the preferred skin.
func (a *App) ClearSkin() error {
	if err := a.persistOperation(""); err != nil {
		return err
	}
	return a.track(a.service.SelectSkin(nil))
}

// DeleteSkin removes an imported skin.
func (a *App) DeleteSkin(identifier string) error {
	if err := a.persistOperation(identifier); err != nil {
		return err
	}
	return a.track(a.service.DeleteSkin(identifier))
}

// WatchSkins imports skins dropped into the configured inbox until ctx is
// cancelled. onResult, if non-nil, observes each import.
func (a *App) WatchSkins(ctx context.Context, onResult func(watch.Result)) error {
	if err := a.persistOperation(a.cfg.Skins.InboxDir); err != nil {
		return err
	}
	if err := os.MkdirAll(a.cfg.Skins.InboxDir, 0755); err != nil {
		return a.track(fmt.Errorf("creating skin inbox: %w", err))
	}
	inbox := watch.NewSkinInbox(a.cfg.Skins.InboxDir, a.fsmgr, a.service, &slogAdapter{l: a.logger}, 0)
	inbox.OnResult = onResult
	return a.track(inbox.Run(ctx))
}

// ListSaveStates returns the game matching gameRef (an identity or a
// managed filename) and its save states, oldest first.
func (a *App) ListSaveStates(gameRef string) (*gba.Game, []*sqlc.SaveState, error) {
	game, err := a.findGame(gameRef)
	if err != nil {
		return nil, nil, err
	}
	states, err := a.service.ListSaveStates(game.ID)
	if err != nil {
		return nil, nil, err
	}
	return game, states, nil
}

func (a *App) findGame(ref string) (*gba.Game, error) {
	game, err := a.service.FindGame(ref)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game not found: %s", ref)
	}
	return game, nil
}

// FindSaveState returns the save state with id or an error if there is none.
func (a *App) FindSaveState(id string) (*sqlc.SaveState, error) {
	record, err := a.service.FindSaveState(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("save state not found: %s", id)
	}
	return record, nil
}

// DeleteSaveState removes a save state by id.
func (a *App) DeleteSaveState(id string) error {
	if err := a.persistOperation(id); err != nil {
		return err
	}
	record, err := a.FindSaveState(id)
	if err != nil {
		return a.track(err)
	}
	return a.track(a.service.DeleteSaveState(record))
}

// ExportSaveState writes the plaintext payload of save state id to outPath.
// Encrypted payloads need Unlock first.
func (a *App) ExportSaveState(id, outPath string) error {
	record, err := a.FindSaveState(id)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	if err := a.service.ExportSaveState(record, f); err != nil {
		f.Close()
		os.Remove(outPath)
		return err
	}
	return f.Close()
}

// Unlock unlocks encrypted save states for the rest of the process.
func (a *App) Unlock(passphrase string) error {
	return a.service.Unlock(passphrase)
}

// ReconcileSaveStates repairs unmatched payloads and records.
func (a *App) ReconcileSaveStates() (*gba.ReconcileReport, error) {
	if err := a.persistOperation(""); err != nil {
		return nil, err
	}
	report, err := a.service.ReconcileSaveStates()
	return report, a.track(err)
}

// RekeySaveStates moves save states filed under legacyID to the identity
// of the game matching gameRef.
func (a *App) RekeySaveStates(legacyID, gameRef string) (int64, error) {
	if err := a.persistOperation(legacyID + " -> " + gameRef); err != nil {
		return 0, err
	}
	game, err := a.findGame(gameRef)
	if err != nil {
		return 0, a.track(err)
	}
	n, err := a.service.MigrateLegacyIdentity(legacyID, game)
	return n, a.track(err)
}

// GetHistory returns the most recent library operations.
func (a *App) GetHistory(limit int) ([]*sqlc.Operation, error) {
	return a.service.GetHistory(limit)
}

// Close finalizes the operation and closes all resources.
// For persisted operations the operation record is finished and the
// database is snapshotted next to itself before closing.
func (a *App) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
		if err := a.snapshotDatabase(); err != nil {
			a.logger.Warn("database snapshot failed", "error", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return firstErr
}

// snapshotDatabase replaces <db>.bak with a consistent copy of the library
// database. In-memory databases are skipped.
func (a *App) snapshotDatabase() error {
	path := a.db.Path()
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}

	dest := path + ".bak"
	tmp := dest + ".tmp"
	os.Remove(tmp) // VACUUM INTO refuses an existing file
	if err := a.db.BackupTo(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing database snapshot: %w", err)
	}
	return nil
}
