// Package migrations embeds the SQL schema files so the binary can
// bootstrap a database without external tooling.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
