// Package assets embeds the browser page that acts as the render surface.
package assets

import "embed"

//go:embed index.html static/*
var FS embed.FS
