package gba

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"gbadb/internal/database/sqlc"
	"gbadb/internal/romfile"
)

// GBAService is the orchestration layer that coordinates the metadata
// store, managed storage and decoders to implement the game library, the
// skin catalog and the save-state catalog.
type GBAService struct {
	database  Database
	assets    AssetStore
	fsmgr     FilesystemManager
	decoder   SkinDecoder
	prefs     Preferences
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator

	skins     *SkinCache
	extractor *romfile.Extractor
	maxImport int64

	mu        sync.Mutex
	decryptor DecryptionContext
}

// NewGBAService creates a new GBAService with the provided dependencies.
// A nil encryptor stores save-state payloads in plaintext.
func NewGBAService(database Database, assets AssetStore, fsmgr FilesystemManager, decoder SkinDecoder, prefs Preferences, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator) *GBAService {
	return &GBAService{
		database:  database,
		assets:    assets,
		fsmgr:     fsmgr,
		decoder:   decoder,
		prefs:     prefs,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		skins:     NewSkinCache(assets, decoder),
		extractor: romfile.NewExtractor(ROMExtensions, romfile.DefaultMaxSize),
		maxImport: romfile.DefaultMaxSize,
	}
}

// SetMaxImportSize caps how many bytes an import may read from its source.
// Non-positive values restore the default.
func (s *GBAService) SetMaxImportSize(n int64) {
	if n <= 0 {
		n = romfile.DefaultMaxSize
	}
	s.maxImport = n
	s.extractor = romfile.NewExtractor(ROMExtensions, n)
}

// readScoped reads an external file inside a scoped access bracket. Access
// is released on every exit path.
func (s *GBAService) readScoped(path *Path) ([]byte, error) {
	rc, err := s.fsmgr.Access(path)
	if err != nil {
		return nil, fmt.Errorf("accessing %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxImport+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}
	if int64(len(data)) > s.maxImport {
		return nil, fmt.Errorf("%w: %s exceeds the maximum import size of %d bytes", ErrImportDecode, path, s.maxImport)
	}
	return data, nil
}

// ImportGame copies a ROM (or the first ROM inside an archive) into managed
// storage and returns the resulting Game. A file of the same name already in
// managed storage is reused rather than overwritten.
func (s *GBAService) ImportGame(path *Path) (*Game, error) {
	data, err := s.readScoped(path)
	if err != nil {
		return nil, err
	}

	rom, err := s.extractor.Extract(path.Name(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportDecode, err)
	}

	gameType, ok := GameTypeForFilename(rom.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGame, rom.Name)
	}

	managedPath, imported, err := s.assets.ImportIfAbsent(AssetGame, rom.Name, bytes.NewReader(rom.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: copying %s: %w", ErrIO, rom.Name, err)
	}
	if !imported {
		s.logger.Debug("reusing managed game file", "filename", rom.Name)
	}

	// Identity comes from the managed copy, which is what future loads read.
	id, err := s.identifyAsset(AssetGame, rom.Name)
	if err != nil {
		return nil, err
	}

	err = s.database.UpsertGame(&sqlc.Game{
		ID:         id,
		GameType:   string(gameType),
		Filename:   rom.Name,
		ImportedAt: s.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("recording game: %w", err)
	}

	s.logger.Info("game imported", "filename", rom.Name, "id", id, "type", gameType.Short())
	return &Game{ID: id, Type: gameType, Path: managedPath, Name: rom.Name}, nil
}

func (s *GBAService) identifyAsset(kind AssetKind, name string) (string, error) {
	rc, err := s.assets.OpenAsset(kind, name)
	if err != nil {
		return "", fmt.Errorf("%w: opening managed %s %s: %w", ErrIO, kind, name, err)
	}
	defer rc.Close()

	id, err := ResolveIdentity(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return id, nil
}

// ListGames returns every imported game ordered by filename.
func (s *GBAService) ListGames() ([]*Game, error) {
	records, err := s.database.ListGames()
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}

	games := make([]*Game, 0, len(records))
	for _, r := range records {
		games = append(games, s.gameFromRecord(r))
	}
	return games, nil
}

// FindGame looks a game up by identity, falling back to its managed filename.
// Returns nil when nothing matches.
func (s *GBAService) FindGame(ref string) (*Game, error) {
	record, err := s.database.FindGameByID(ref)
	if err != nil {
		return nil, fmt.Errorf("finding game: %w", err)
	}
	if record != nil {
		return s.gameFromRecord(record), nil
	}

	records, err := s.database.ListGames()
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	for _, r := range records {
		if r.Filename == ref {
			return s.gameFromRecord(r), nil
		}
	}
	return nil, nil
}

func (s *GBAService) gameFromRecord(r *sqlc.Game) *Game {
	return &Game{
		ID:   r.ID,
		Type: GameType(r.GameType),
		Path: s.assets.AssetPath(AssetGame, r.Filename),
		Name: r.Filename,
	}
}
