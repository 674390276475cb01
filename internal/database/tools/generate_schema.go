// Command generate_schema migrates an in-memory library database and writes
// the resulting schema for sqlc. With -check it only reports whether the
// committed schema is stale.
package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gbadb/internal/database"
	"gbadb/internal/database/migrations"
)

const header = `-- Generated from internal/database/migrations/files/*.sql.
-- DO NOT EDIT. Run 'go generate ./internal/database' to regenerate.

`

func main() {
	out := flag.String("out", filepath.Join("internal", "database", "sqlc", "schema.sql"), "schema file to write")
	check := flag.Bool("check", false, "fail if the schema file is out of date instead of writing it")
	flag.Parse()

	if err := run(*out, *check); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string, check bool) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	schema, err := dumpSchema(db)
	if err != nil {
		return err
	}

	if check {
		current, err := os.ReadFile(outPath)
		if err != nil {
			return err
		}
		if !bytes.Equal(current, []byte(schema)) {
			return fmt.Errorf("%s is stale", outPath)
		}
		return nil
	}

	if err := os.WriteFile(outPath, []byte(schema), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// dumpSchema returns every table then index definition, skipping SQLite
// internals and the migration bookkeeping table.
func dumpSchema(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT type, sql
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY type DESC, name`)
	if err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString(header)
	for rows.Next() {
		var kind, stmt string
		if err := rows.Scan(&kind, &stmt); err != nil {
			return "", fmt.Errorf("scanning %s: %w", kind, err)
		}
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}
