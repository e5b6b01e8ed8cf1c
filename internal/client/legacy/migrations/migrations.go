// Package migrations embeds the schema of the legacy local moment store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
