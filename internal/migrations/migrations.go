// Package migrations embeds the goose schema migrations for both supported
// database dialects.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
