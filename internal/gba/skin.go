package gba

import (
	"strings"
	"time"

	"gbadb/internal/database/sqlc"
)

// Orientations is a bitset of the device orientations a skin supports.
type Orientations int64

const (
	OrientationPortrait  Orientations = 1 << 1
	OrientationLandscape Orientations = 1 << 2
)

// Supports reports whether every orientation in o2 is present in o.
func (o Orientations) Supports(o2 Orientations) bool {
	return o2 != 0 && o&o2 == o2
}

func (o Orientations) String() string {
	var parts []string
	if o.Supports(OrientationPortrait) {
		parts = append(parts, "portrait")
	}
	if o.Supports(OrientationLandscape) {
		parts = append(parts, "landscape")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Skin is a decoded controller skin resource.
type Skin struct {
	Identifier   string
	Name         string
	GameType     GameType
	Orientations Orientations

	// Manifest is the raw info.json document; nil for standard skins.
	Manifest []byte

	// Assets holds every other file from the archive, keyed by archive path.
	Assets map[string][]byte

	// Standard marks the built-in skin synthesized for a game type.
	Standard bool
}

// SkinDecoder decodes a skin archive into a Skin.
type SkinDecoder interface {
	Decode(data []byte) (*Skin, error)
}

const standardSkinPrefix = "com.rileytestut.delta.skin."

// StandardSkinIdentifier returns the identifier of the built-in skin for t.
func StandardSkinIdentifier(t GameType) string {
	return standardSkinPrefix + t.Short() + ".standard"
}

// IsStandardSkinIdentifier reports whether identifier names a built-in skin.
func IsStandardSkinIdentifier(identifier string) bool {
	for _, t := range GameTypes {
		if identifier == StandardSkinIdentifier(t) {
			return true
		}
	}
	return false
}

// StandardSkin synthesizes the built-in skin for t.
func StandardSkin(t GameType) *Skin {
	return &Skin{
		Identifier:   StandardSkinIdentifier(t),
		Name:         "Standard",
		GameType:     t,
		Orientations: OrientationPortrait | OrientationLandscape,
		Assets:       map[string][]byte{},
		Standard:     true,
	}
}

// StandardSkinRecord returns an unpersisted record describing the built-in
// skin for t. It has no filename because it has no archive in managed storage.
func StandardSkinRecord(t GameType, createdAt time.Time) *sqlc.Skin {
	skin := StandardSkin(t)
	return &sqlc.Skin{
		Identifier:   skin.Identifier,
		GameType:     string(t),
		Name:         skin.Name,
		Filename:     "",
		Orientations: int64(skin.Orientations),
		CreatedAt:    createdAt,
	}
}
