// Package migrations embeds the goose SQL migrations so cmd/migrate can run
// without access to the source tree.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
