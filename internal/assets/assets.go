// Package assets holds files compiled into the burnbench binary.
package assets

import "embed"

// Functions contains the JQ helper programs installed by
// `burnbench functions install`.
//
//go:embed functions
var Functions embed.FS
