// Package migrations embeds the SQL schema into the binary so the service can
// migrate a fresh database without the files on disk.
package migrations

import "embed"

// FS holds every *.sql file of this directory at its root.
//
//go:embed *.sql
var FS embed.FS
