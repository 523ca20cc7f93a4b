// Package migrations embeds the run index schema for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
