package ui

import "embed"

//go:embed templates/*.html static content/*.md
var embeddedFiles embed.FS
