// Package migrations embeds the schema for each supported database driver.
package migrations

import "embed"

//go:embed sqlite3/*.sql
var SQLite embed.FS

//go:embed postgres/*.sql
var Postgres embed.FS
