package escalator

import "embed"

// WebFS holds the browser front end.
//
//go:embed web
var WebFS embed.FS
