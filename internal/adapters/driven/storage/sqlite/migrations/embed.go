// Package migrations embeds the catalog's SQL schema migrations.
package migrations

import "embed"

// FS holds the versioned .up.sql/.down.sql pairs, embedded at compile
// time so the binary can migrate any catalog it opens.
//
//go:embed *.sql
var FS embed.FS
