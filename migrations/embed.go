// Package migrations содержит SQL миграции схемы PostgreSQL.
package migrations

import "embed"

// FS SQL миграции, встроенные при компиляции
//
//go:embed *.sql
var FS embed.FS
