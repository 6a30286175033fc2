// Package appfs embeds the assets shipped with the binary:
// SQL migrations and email templates.
package appfs

import "embed"

// The all: prefix keeps the _base email templates: plain patterns skip
// files whose names start with an underscore.
//
//go:embed all:migrations all:templates
var FS embed.FS
