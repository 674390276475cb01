package database

import _ "embed"

// Schema is the full schema produced by applying every migration. Tests
// apply it directly to skip the migration machinery.
//
//go:embed sqlc/schema.sql
var Schema string
