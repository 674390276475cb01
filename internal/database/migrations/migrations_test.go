package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"skins", "save_states", "games", "operations", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheck_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Check(db); !errors.Is(err, ErrNoSchema) {
		t.Errorf("Check() error = %v, want ErrNoSchema", err)
	}

	st, err := ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if st.Current != 0 || st.Latest != 2 || st.Dirty {
		t.Errorf("ReadStatus() = %+v, want {0 2 false}", st)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first MigrateUp() error = %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("second MigrateUp() error = %v", err)
	}
	if err := Check(db); err != nil {
		t.Errorf("Check() after migration error = %v", err)
	}
}

func TestCheck_VersionMismatch(t *testing.T) {
	tests := []struct {
		name   string
		update string
		want   error
	}{
		{"dirty", "UPDATE schema_migrations SET dirty = 1", ErrSchemaDirty},
		{"behind", "UPDATE schema_migrations SET version = 1", ErrSchemaBehind},
		{"ahead", "UPDATE schema_migrations SET version = 99", ErrSchemaAhead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			defer db.Close()

			if err := MigrateUp(db); err != nil {
				t.Fatalf("MigrateUp() error = %v", err)
			}
			if _, err := db.Exec(tt.update); err != nil {
				t.Fatalf("Exec() error = %v", err)
			}
			if err := Check(db); !errors.Is(err, tt.want) {
				t.Errorf("Check() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMigrateUp_RefusesNewerSchema(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if _, err := db.Exec("UPDATE schema_migrations SET version = 99"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if err := MigrateUp(db); !errors.Is(err, ErrSchemaAhead) {
		t.Errorf("MigrateUp() error = %v, want ErrSchemaAhead", err)
	}
}

func TestSchema_SaveStatesHaveNoGameForeignKey(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Save states may exist for games that were never imported.
	_, err := db.Exec(`
		INSERT INTO save_states (id, game_id, size, encrypted, created_at, modified_at)
		VALUES ('state-1', 'no-such-game', 10, 0, datetime('now'), datetime('now'))
	`)
	if err != nil {
		t.Errorf("Failed to insert save state for unknown game: %v", err)
	}
}

func TestSchema_SkinIdentifierUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	insert := `INSERT INTO skins (identifier, game_type, name, filename, orientations, created_at)
		VALUES ('com.example.skin', 'com.rileytestut.delta.game.gba', 'Example', ?, 6, datetime('now'))`

	if _, err := db.Exec(insert, "a.deltaskin"); err != nil {
		t.Fatalf("Failed to insert first skin: %v", err)
	}

	if _, err := db.Exec(insert, "b.deltaskin"); err == nil {
		t.Error("Expected unique constraint violation for duplicate identifier, but insert succeeded")
	}
}

func TestSchema_OperationDefaults(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec("INSERT INTO operations (started_at, operation, parameters) VALUES (datetime('now'), 'skin import', '')")
	if err != nil {
		t.Fatalf("Failed to insert operation: %v", err)
	}

	var status string
	if err := db.QueryRow("SELECT status FROM operations WHERE id = 1").Scan(&status); err != nil {
		t.Fatalf("Failed to read operation: %v", err)
	}
	if status != "running" {
		t.Errorf("status = %q, want %q", status, "running")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
