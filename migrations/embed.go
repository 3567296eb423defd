// Package migrations embeds the SQL migration files into the binary so the
// database can be brought up to date without the files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
