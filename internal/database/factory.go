package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gbadb/internal/config"
	"gbadb/internal/gba"
)

// DatabaseFilename is the name of the library database inside the data directory.
const DatabaseFilename = "library.db"

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config type.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, clock gba.Clock) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, DatabaseFilename), clock)
	case "memory":
		return NewSQLiteDatabase(":memory:", clock)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
