// Package migrations ships the PostgreSQL schema as ordered SQL files.
package migrations

import "embed"

// FS holds every *.sql file in lexical (apply) order.
//
//go:embed *.sql
var FS embed.FS
