package a11y

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rule identifies an audit check.
type Rule string

const (
	RuleDuplicateID     Rule = "duplicate-id"
	RuleBrokenReference Rule = "aria-valid-reference"
	RuleLabelTarget     Rule = "label-target"
	RuleControlName     Rule = "control-name"
	RuleButtonName      Rule = "button-name"
	RuleDialogName      Rule = "dialog-name"
	RuleGroupName       Rule = "group-name"
	RuleHiddenFocus     Rule = "aria-hidden-focus"
	RuleValidRole       Rule = "aria-valid-role"
	RuleValidAttrValue  Rule = "aria-valid-attr-value"
	RuleNestedControl   Rule = "nested-interactive"
)

// Violation is one failed check.
type Violation struct {
	Rule    Rule
	Element string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Rule, v.Message, v.Element)
}

var knownRoles = []string{
	"alert", "alertdialog", "button", "checkbox", "combobox", "dialog", "group",
	"heading", "link", "listbox", "none", "option", "presentation", "radio",
	"radiogroup", "region", "slider", "status", "textbox",
}

var idRefAttrs = []string{"aria-labelledby", "aria-describedby", "aria-controls", "aria-owns"}

var tokenAttrs = []struct {
	name    string
	allowed []string
}{
	{name: "aria-busy", allowed: []string{"true", "false"}},
	{name: "aria-expanded", allowed: []string{"true", "false"}},
	{name: "aria-haspopup", allowed: []string{"true", "false", "menu", "listbox", "tree", "grid", "dialog"}},
	{name: "aria-hidden", allowed: []string{"true", "false"}},
	{name: "aria-invalid", allowed: []string{"true", "false", "grammar", "spelling"}},
	{name: "aria-modal", allowed: []string{"true", "false"}},
}

// Audit parses markup and runs every check.
func Audit(r io.Reader) ([]Violation, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return doc.Audit(), nil
}

// AuditString audits markup held in a string.
func AuditString(markup string) ([]Violation, error) {
	return Audit(strings.NewReader(markup))
}

// Audit runs every check against the document. Violations are reported in
// document order.
func (d *Document) Audit() []Violation {
	var out []Violation
	report := func(rule Rule, n *html.Node, format string, args ...any) {
		out = append(out, Violation{Rule: rule, Element: describe(n), Message: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]struct{})
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}

		if id := attr(n, "id"); id != "" {
			if _, dup := seen[id]; !dup && len(d.byID[id]) > 1 {
				report(RuleDuplicateID, n, "id %q is used %d times", id, len(d.byID[id]))
			}
			seen[id] = struct{}{}
		}

		for _, name := range idRefAttrs {
			for _, ref := range strings.Fields(attr(n, name)) {
				if d.ByID(ref) == nil {
					report(RuleBrokenReference, n, "%s references missing id %q", name, ref)
				}
			}
		}

		for _, spec := range tokenAttrs {
			if hasAttr(n, spec.name) && !slices.Contains(spec.allowed, attr(n, spec.name)) {
				report(RuleValidAttrValue, n, "%s has invalid value %q", spec.name, attr(n, spec.name))
			}
		}

		if role := strings.TrimSpace(attr(n, "role")); role != "" {
			for _, r := range strings.Fields(role) {
				if !slices.Contains(knownRoles, r) {
					report(RuleValidRole, n, "unknown role %q", r)
				}
			}
		}

		d.checkElement(n, report)

		if attr(n, "aria-hidden") == "true" {
			walk(n, func(child *html.Node) bool {
				if child != n && focusable(child) {
					report(RuleHiddenFocus, child, "focusable element inside aria-hidden subtree")
				}
				return true
			})
		}
		return true
	})
	return out
}

func (d *Document) checkElement(n *html.Node, report func(Rule, *html.Node, string, ...any)) {
	switch n.DataAtom {
	case atom.Label:
		if target := attr(n, "for"); target != "" {
			if node := d.ByID(target); node == nil || !labelable(node) {
				report(RuleLabelTarget, n, "label for=%q does not name a form control", target)
			}
		}
	case atom.Input, atom.Select, atom.Textarea:
		if !labelable(n) {
			return
		}
		if _, ok := d.labelName(n); !ok {
			report(RuleControlName, n, "form control has no accessible name")
		}
		d.checkNested(n, report)
	case atom.Button:
		if d.AccessibleName(n) == "" {
			report(RuleButtonName, n, "button has no accessible name")
		}
		d.checkNested(n, report)
	case atom.Fieldset:
		if d.AccessibleName(n) == "" {
			report(RuleGroupName, n, "fieldset has no legend or aria-labelledby")
		}
	}

	if role := Role(n); role == "dialog" || role == "alertdialog" {
		if _, ok := d.labelName(n); !ok {
			report(RuleDialogName, n, "dialog is not labelled")
		}
	}
}

// checkNested reports interactive elements inside buttons or links.
func (d *Document) checkNested(n *html.Node, report func(Rule, *html.Node, string, ...any)) {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if p.DataAtom == atom.Button || (p.DataAtom == atom.A && hasAttr(p, "href")) {
			report(RuleNestedControl, n, "interactive element nested in <%s>", p.Data)
			return
		}
	}
}

func focusable(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if tabindex := attr(n, "tabindex"); tabindex != "" {
		return !strings.HasPrefix(strings.TrimSpace(tabindex), "-")
	}
	if hasAttr(n, "disabled") {
		return false
	}
	switch n.DataAtom {
	case atom.Button, atom.Select, atom.Textarea:
		return true
	case atom.Input:
		return !strings.EqualFold(attr(n, "type"), "hidden")
	case atom.A:
		return hasAttr(n, "href")
	}
	return false
}

func describe(n *html.Node) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Data)
	if id := attr(n, "id"); id != "" {
		b.WriteString(` id="`)
		b.WriteString(id)
		b.WriteByte('"')
	}
	if class := attr(n, "class"); class != "" {
		b.WriteString(` class="`)
		b.WriteString(class)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}
