// Package a11y parses rendered markup and answers the questions assistive
// technology asks of it: what is this element called, which element does a
// label name, and which structural rules does the tree break.
package a11y

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML tree with an id index.
type Document struct {
	root *html.Node
	byID map[string][]*html.Node
}

// Parse reads markup. Fragments are accepted; the parser wraps them in a
// body.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("a11y: parse html: %w", err)
	}
	doc := &Document{root: root, byID: make(map[string][]*html.Node)}
	walk(root, func(n *html.Node) bool {
		if id := attr(n, "id"); id != "" {
			doc.byID[id] = append(doc.byID[id], n)
		}
		return true
	})
	return doc, nil
}

// ParseString parses markup held in a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// ByID returns the first element with id.
func (d *Document) ByID(id string) *html.Node {
	if nodes := d.byID[id]; len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// ByLabelText returns elements labelled text through aria-labelledby,
// aria-label or an associated <label>.
func (d *Document) ByLabelText(text string) []*html.Node {
	want := normalize(text)
	var out []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom != atom.Label {
			if name, ok := d.labelName(n); ok && name == want {
				out = append(out, n)
			}
		}
		return true
	})
	return out
}

// ByText returns elements whose own text children read text.
func (d *Document) ByText(text string) []*html.Node {
	want := normalize(text)
	var out []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return true
		}
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		if normalize(b.String()) == want {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ByRole returns elements with role whose accessible name equals name. An
// empty name matches any element with the role.
func (d *Document) ByRole(role, name string) []*html.Node {
	want := normalize(name)
	var out []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || Role(n) != role {
			return true
		}
		if want == "" || d.AccessibleName(n) == want {
			out = append(out, n)
		}
		return true
	})
	return out
}

// AccessibleName computes a simplified accessible name: aria-labelledby,
// aria-label, associated label, legend, then content for roles named from
// content, then title.
func (d *Document) AccessibleName(n *html.Node) string {
	if name, ok := d.labelName(n); ok {
		return name
	}
	if n.DataAtom == atom.Fieldset {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Legend {
				return TextContent(c)
			}
		}
	}
	switch Role(n) {
	case "button", "link", "heading", "option", "radio", "checkbox", "status":
		if text := TextContent(n); text != "" {
			return text
		}
	}
	return normalize(attr(n, "title"))
}

func (d *Document) labelName(n *html.Node) (string, bool) {
	if refs := strings.Fields(attr(n, "aria-labelledby")); len(refs) > 0 {
		parts := make([]string, 0, len(refs))
		for _, ref := range refs {
			if target := d.ByID(ref); target != nil {
				parts = append(parts, TextContent(target))
			}
		}
		if name := normalize(strings.Join(parts, " ")); name != "" {
			return name, true
		}
	}
	if label := normalize(attr(n, "aria-label")); label != "" {
		return label, true
	}
	if !labelable(n) {
		return "", false
	}
	if id := attr(n, "id"); id != "" {
		var parts []string
		walk(d.root, func(candidate *html.Node) bool {
			if candidate.Type == html.ElementNode && candidate.DataAtom == atom.Label && attr(candidate, "for") == id {
				parts = append(parts, TextContent(candidate))
			}
			return true
		})
		if name := normalize(strings.Join(parts, " ")); name != "" {
			return name, true
		}
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Label {
			if name := TextContent(p); name != "" {
				return name, true
			}
		}
	}
	return "", false
}

// Role returns the explicit role or the implicit role of common elements.
func Role(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if role := strings.TrimSpace(attr(n, "role")); role != "" {
		return strings.Fields(role)[0]
	}
	switch n.DataAtom {
	case atom.Button:
		return "button"
	case atom.A:
		if hasAttr(n, "href") {
			return "link"
		}
	case atom.Input:
		switch strings.ToLower(attr(n, "type")) {
		case "radio":
			return "radio"
		case "checkbox":
			return "checkbox"
		case "range":
			return "slider"
		case "button", "submit", "reset":
			return "button"
		case "", "text", "search", "email", "tel", "url":
			return "textbox"
		}
	case atom.Textarea:
		return "textbox"
	case atom.Select:
		if hasAttr(n, "multiple") {
			return "listbox"
		}
		return "combobox"
	case atom.Option:
		return "option"
	case atom.Fieldset:
		return "group"
	case atom.Output:
		return "status"
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return "heading"
	case atom.Dialog:
		return "dialog"
	}
	return ""
}

// TextContent concatenates visible text below n, skipping aria-hidden
// subtrees, scripts and styles.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			b.WriteString(node.Data)
			return
		case html.ElementNode:
			if node.DataAtom == atom.Script || node.DataAtom == atom.Style || attr(node, "aria-hidden") == "true" {
				return
			}
			if node.DataAtom == atom.Br {
				b.WriteByte(' ')
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return normalize(b.String())
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, name string) string {
	return attr(n, name)
}

// HasAttr reports whether n carries the named attribute.
func HasAttr(n *html.Node, name string) bool {
	return n != nil && hasAttr(n, name)
}

func attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return true
		}
	}
	return false
}

func labelable(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Input:
		return !strings.EqualFold(attr(n, "type"), "hidden")
	case atom.Select, atom.Textarea, atom.Meter, atom.Output, atom.Progress, atom.Button:
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// walk visits n and its descendants depth first. Returning false from fn
// skips the children of the current node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
