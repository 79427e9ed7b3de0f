// Package migrations holds the goose schema migrations for the user store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
