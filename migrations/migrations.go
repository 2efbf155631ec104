package migrations

import "embed"

// Migration files are embedded at compile time so the condkit binary can
// bootstrap a database without external file dependencies.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
