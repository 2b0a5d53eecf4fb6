// Package db embeds the PostgreSQL schema so binaries can apply it without a checkout.
package db

import _ "embed"

// InitSQL creates the ledger schema; every statement is idempotent
//
//go:embed init_pg_db.sql
var InitSQL string
