package template

import (
	"io"
)

// TemplateRenderer is the seam template-backed question controls and section
// pages render through. Implementations must be safe for concurrent use.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
