// Package migrations applies the embedded library schema migrations.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

var (
	ErrNoSchema     = errors.New("database has no schema version")
	ErrSchemaDirty  = errors.New("database schema is dirty")
	ErrSchemaBehind = errors.New("database schema is out of date")
	ErrSchemaAhead  = errors.New("database schema is newer than this build")
)

// Status is the schema version recorded in a database against the newest
// embedded migration. Current is 0 for a database never migrated.
type Status struct {
	Current uint
	Latest  uint
	Dirty   bool
}

// ReadStatus reports the schema version of db.
func ReadStatus(db *sql.DB) (Status, error) {
	latest, err := latestVersion()
	if err != nil {
		return Status{}, err
	}

	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	// m is not closed: closing it would close db, which the caller owns.

	current, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Latest: latest}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	return Status{Current: current, Latest: latest, Dirty: dirty}, nil
}

// Check returns nil when db is at the latest schema version, and otherwise
// an error wrapping one of ErrNoSchema, ErrSchemaDirty, ErrSchemaBehind or
// ErrSchemaAhead.
func Check(db *sql.DB) error {
	st, err := ReadStatus(db)
	if err != nil {
		return err
	}
	switch {
	case st.Current == 0:
		return ErrNoSchema
	case st.Dirty:
		return fmt.Errorf("%w at version %d", ErrSchemaDirty, st.Current)
	case st.Current < st.Latest:
		return fmt.Errorf("%w: version %d, latest %d", ErrSchemaBehind, st.Current, st.Latest)
	case st.Current > st.Latest:
		return fmt.Errorf("%w: version %d, latest %d", ErrSchemaAhead, st.Current, st.Latest)
	}
	return nil
}

// MigrateUp applies every pending migration. A database already written by
// a newer schema is left untouched and ErrSchemaAhead is returned.
func MigrateUp(db *sql.DB) error {
	st, err := ReadStatus(db)
	if err != nil {
		return err
	}
	if st.Current > st.Latest {
		return fmt.Errorf("%w: version %d, latest %d", ErrSchemaAhead, st.Current, st.Latest)
	}

	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("reading migration files: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}
	return m, nil
}

// latestVersion returns the highest embedded migration version.
func latestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("reading migration files: %w", err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("reading first migration: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading migration after %d: %w", v, err)
		}
		v = next
	}
}
