package components

import (
	"embed"
	"io/fs"
)

//go:embed templates/components/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in control templates. Template names are
// relative to the returned FS, e.g. "components/select".
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
