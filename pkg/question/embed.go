package question

import (
	"embed"
	"io/fs"
)

//go:embed assets/*
var embeddedAssets embed.FS

// Bundled asset file names inside AssetsFS.
const (
	StylesheetName = "question.css"
	ScriptName     = "question.js"
)

// AssetsFS exposes the bundled stylesheet and script so callers can serve
// them over HTTP or copy them into their own asset pipeline.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
