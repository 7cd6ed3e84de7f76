// Package template defines the renderer-agnostic template contract used by
// question controls, so the pongo2 adapter can be replaced in tests or by
// embedding applications.
package template
