// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
)

//go:embed sql/001_initial.sql
var InitialSQL string

//go:embed sql/002_kv_updated_index.sql
var Migration002KVUpdatedIndex string

// All returns the migrations in the order they must be applied.
func All() []string {
	return []string{InitialSQL, Migration002KVUpdatedIndex}
}
