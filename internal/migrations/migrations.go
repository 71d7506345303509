// Package migrations embeds the goose SQL migrations for both databases:
// PostgreSQL for the managed backend and SQLite for local settings.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
