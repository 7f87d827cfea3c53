// Package migrations embeds the PostgreSQL schema files applied by db.Migrate.
//
// Files are named NNN_description.sql and applied in lexical order. An applied file must
// never be edited: its checksum is recorded in schema_migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
