// Package migrations embeds the SQL schema migrations applied by goose on
// server startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
