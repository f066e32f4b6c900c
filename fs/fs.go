// Package appfs holds the files shipped inside the binaries (templates, ...).
package appfs

import "embed"

//go:embed all:assets
var FS embed.FS
