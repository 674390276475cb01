package gba

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gbadb/internal/database/sqlc"
)

// SkinExtension is the filename extension of skin archives.
const SkinExtension = ".deltaskin"

// ListSkins returns the skins available for gameType, ordered by name then
// identifier. Each call returns a fresh slice.
func (s *GBAService) ListSkins(gameType GameType) ([]*sqlc.Skin, error) {
	skins, err := s.database.FindSkinsByGameType(string(gameType))
	if err != nil {
		return nil, fmt.Errorf("listing skins: %w", err)
	}
	return skins, nil
}

// ImportSkin decodes a skin archive, copies it into managed storage
// (replacing any managed file of the same name) and records it. An archive
// that fails to decode leaves managed storage untouched. Importing a skin
// whose identifier is already known returns the existing record.
func (s *GBAService) ImportSkin(path *Path) (*sqlc.Skin, error) {
	name := path.Name()
	if !strings.EqualFold(filepath.Ext(name), SkinExtension) {
		return nil, fmt.Errorf("%w: %s is not a %s file", ErrImportDecode, name, SkinExtension)
	}

	data, err := s.readScoped(path)
	if err != nil {
		return nil, err
	}

	skin, err := s.skins.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding skin %s: %w", ErrImportDecode, name, err)
	}

	if _, err := s.assets.ImportReplacing(AssetSkin, name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: copying %s: %w", ErrIO, name, err)
	}

	record := &sqlc.Skin{
		Identifier:   skin.Identifier,
		GameType:     string(skin.GameType),
		Name:         skin.Name,
		Filename:     name,
		Orientations: int64(skin.Orientations),
		CreatedAt:    s.clock.Now(),
	}
	stored, created, err := s.database.CreateSkinIfAbsent(record)
	if err != nil {
		s.logger.Warn("skin file left in managed storage without a record", "filename", name, "error", err)
		return nil, fmt.Errorf("recording skin: %w", err)
	}

	s.skins.Invalidate(stored.Identifier)

	if created {
		s.logger.Info("skin imported", "identifier", stored.Identifier, "filename", name)
	} else {
		s.logger.Info("skin already imported", "identifier", stored.Identifier, "filename", stored.Filename)
		if stored.Filename != name {
			s.discardSkinFile(name)
		}
	}
	return stored, nil
}

// discardSkinFile removes a managed skin file unless a record still refers to it.
func (s *GBAService) discardSkinFile(name string) {
	refs, err := s.database.FindSkinsByFilename(name)
	if err != nil {
		s.logger.Warn("could not check skin file references", "filename", name, "error", err)
		return
	}
	if len(refs) > 0 {
		return
	}
	if err := s.assets.RemoveAsset(AssetSkin, name); err != nil {
		s.logger.Warn("could not remove skin file", "filename", name, "error", err)
	}
}

// ResolvePreferredSkin returns the remembered skin for gameType. When there is
// no preference, the preferred skin no longer exists, or it belongs to a
// different game type, the built-in standard skin is returned. The standard
// fallback is not persisted.
func (s *GBAService) ResolvePreferredSkin(gameType GameType) *sqlc.Skin {
	fallback := StandardSkinRecord(gameType, s.clock.Now())

	identifier, ok, err := s.prefs.Get(PreferredSkinKey)
	if err != nil {
		s.logger.Warn("reading skin preference failed", "error", err)
		return fallback
	}
	if !ok || identifier == "" {
		return fallback
	}

	record, err := s.database.FindSkinByIdentifier(identifier)
	if err != nil {
		s.logger.Warn("looking up preferred skin failed", "identifier", identifier, "error", err)
		return fallback
	}
	if record == nil || record.GameType != string(gameType) {
		return fallback
	}
	return record
}

// SelectSkin remembers record as the installation-wide preferred skin.
// A nil record clears the preference. Selecting a standard skin persists
// its record so it can be found later.
func (s *GBAService) SelectSkin(record *sqlc.Skin) error {
	if record == nil {
		if err := s.prefs.Delete(PreferredSkinKey); err != nil {
			return fmt.Errorf("clearing skin preference: %w", err)
		}
		s.logger.Info("skin preference cleared")
		return nil
	}

	if IsStandardSkinIdentifier(record.Identifier) {
		if _, _, err := s.database.CreateSkinIfAbsent(record); err != nil {
			return fmt.Errorf("recording standard skin: %w", err)
		}
	}

	if err := s.prefs.Set(PreferredSkinKey, record.Identifier); err != nil {
		return fmt.Errorf("saving skin preference: %w", err)
	}
	s.logger.Info("skin selected", "identifier", record.Identifier)
	return nil
}

// FindSkin returns a skin record by identifier, or nil. Standard skins that
// were never selected are synthesized.
func (s *GBAService) FindSkin(identifier string) (*sqlc.Skin, error) {
	record, err := s.database.FindSkinByIdentifier(identifier)
	if err != nil {
		return nil, fmt.Errorf("finding skin: %w", err)
	}
	if record != nil {
		return record, nil
	}
	for _, t := range GameTypes {
		if identifier == StandardSkinIdentifier(t) {
			return StandardSkinRecord(t, s.clock.Now()), nil
		}
	}
	return nil, nil
}

// DeleteSkin removes a skin record, its managed file and cached resource.
// A preference naming the skin is cleared.
func (s *GBAService) DeleteSkin(identifier string) error {
	record, err := s.database.FindSkinByIdentifier(identifier)
	if err != nil {
		return fmt.Errorf("finding skin: %w", err)
	}
	if record == nil {
		return fmt.Errorf("skin not found: %s", identifier)
	}

	if err := s.database.DeleteSkin(identifier); err != nil {
		return fmt.Errorf("deleting skin: %w", err)
	}
	s.skins.Invalidate(identifier)
	if record.Filename != "" {
		s.discardSkinFile(record.Filename)
	}

	preferred, ok, err := s.prefs.Get(PreferredSkinKey)
	if err != nil {
		s.logger.Warn("reading skin preference failed", "error", err)
	} else if ok && preferred == identifier {
		if err := s.prefs.Delete(PreferredSkinKey); err != nil {
			return fmt.Errorf("clearing skin preference: %w", err)
		}
	}

	s.logger.Info("skin deleted", "identifier", identifier)
	return nil
}

// SkinResource returns the decoded resource for record.
func (s *GBAService) SkinResource(record *sqlc.Skin) (*Skin, error) {
	return s.skins.Get(record)
}
