// Package prefs stores remembered app-wide settings such as the preferred skin.
package prefs

import (
	"fmt"

	"gbadb/internal/config"
	"gbadb/internal/gba"
)

// NewPreferencesFromConfig creates a preferences store based on the configuration type.
func NewPreferencesFromConfig(cfg config.PreferencesConfig) (gba.Preferences, error) {
	switch cfg.Type {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("preferences path is required for type 'file'")
		}
		return NewFileStore(cfg.Path), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown preferences type: %q", cfg.Type)
	}
}
