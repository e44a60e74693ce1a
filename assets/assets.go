// Package assets holds files shipped inside the binaries.
package assets

import "embed"

//go:embed templates
var FS embed.FS
