// Package migrations embeds the SQLite schema of the trip client.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
