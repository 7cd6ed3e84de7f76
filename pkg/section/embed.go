package section

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// PageTemplate is the template name of a full section page.
const PageTemplate = "page"

// TemplatesFS exposes the page template so deployments can copy and
// override it through WithTemplatesFS.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
