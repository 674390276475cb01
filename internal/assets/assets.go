// Package assets implements the managed storage tree that holds imported
// games, skin archives and save-state payloads.
package assets

import (
	"errors"
	"fmt"
	"strings"

	"gbadb/internal/gba"
)

// ErrNotFound is returned when a managed file or payload does not exist.
var ErrNotFound = errors.New("not found")

const (
	databaseDir   = "Database"
	gamesDir      = "Games"
	skinsDir      = "Skins"
	saveStatesDir = "Save States"
)

func kindDir(kind gba.AssetKind) (string, error) {
	switch kind {
	case gba.AssetGame:
		return gamesDir, nil
	case gba.AssetSkin:
		return skinsDir, nil
	default:
		return "", fmt.Errorf("unknown asset kind: %d", kind)
	}
}

// validateName rejects anything that is not a plain filename.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid filename: %q", name)
	}
	if strings.HasPrefix(name, tmpPrefix) {
		return fmt.Errorf("reserved filename: %q", name)
	}
	return nil
}

const tmpPrefix = ".tmp-"

// validateGameID rejects game ids that would not name their own directory
// under Save States once escaped.
func validateGameID(gameID string) error {
	switch gameID {
	case "":
		return fmt.Errorf("empty game id")
	case ".", "..":
		return fmt.Errorf("invalid game id: %q", gameID)
	}
	return nil
}
