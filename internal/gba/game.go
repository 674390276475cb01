package gba

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// GameType identifies the system a ROM or skin targets. Values are the
// game type identifiers used inside skin manifests.
type GameType string

const (
	GameTypeGBA GameType = "com.rileytestut.delta.game.gba"
	GameTypeGBC GameType = "com.rileytestut.delta.game.gbc"
)

// GameTypes lists every supported game type.
var GameTypes = []GameType{GameTypeGBA, GameTypeGBC}

// ParseGameType accepts either a full identifier or its short form ("gba", "gbc").
func ParseGameType(s string) (GameType, error) {
	for _, t := range GameTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Short()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedGame, s)
}

// GameTypeForFilename maps a ROM filename to its game type by extension.
func GameTypeForFilename(name string) (GameType, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gba":
		return GameTypeGBA, true
	case ".gbc", ".gb":
		return GameTypeGBC, true
	}
	return "", false
}

// ROMExtensions lists the filename extensions accepted as ROMs.
var ROMExtensions = []string{".gba", ".gbc", ".gb"}

// Short returns the last component of the identifier, e.g. "gba".
func (t GameType) Short() string {
	s := string(t)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Game is an imported ROM. Two games with the same ID share a save-state
// namespace regardless of where their files live.
type Game struct {
	ID   string // lowercase-hex SHA-1 of the ROM content
	Type GameType
	Path string // location in managed storage
	Name string // managed filename
}

// ResolveIdentity returns the lowercase-hex SHA-1 digest of everything read from r.
func ResolveIdentity(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
