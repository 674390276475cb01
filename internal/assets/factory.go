package assets

import (
	"fmt"

	"gbadb/internal/config"
	"gbadb/internal/gba"
)

// NewStoreFromConfig creates an AssetStore based on the assets config type.
func NewStoreFromConfig(cfg config.AssetsConfig) (gba.AssetStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem assets require root to be set")
		}
		return NewFileSystemStore(cfg.Root), nil
	default:
		return nil, fmt.Errorf("unknown assets type: %s", cfg.Type)
	}
}
