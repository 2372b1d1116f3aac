// Package migrations embeds the goose SQL migrations so the server and
// the test harness can apply them without a checkout-relative path.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
