// Package survey loads survey definitions: named sections, each holding the
// ordered question widgets rendered on one page.
package survey

import (
	"sort"

	"github.com/goliatone/go-question/pkg/widget"
)

// Section groups the widgets rendered on one page.
type Section struct {
	Name    string           `json:"name"`
	Title   widget.Localized `json:"title,omitempty"`
	Order   int              `json:"order,omitempty"`
	Widgets []widget.Config  `json:"widgets"`
	File    string           `json:"-"`
}

// InputTypes returns the distinct input types used by the section in first
// appearance order.
func (s Section) InputTypes() []widget.InputType {
	seen := make(map[widget.InputType]struct{}, len(s.Widgets))
	out := make([]widget.InputType, 0, len(s.Widgets))
	for _, cfg := range s.Widgets {
		if _, ok := seen[cfg.InputType]; ok {
			continue
		}
		seen[cfg.InputType] = struct{}{}
		out = append(out, cfg.InputType)
	}
	return out
}

// Widget returns the widget bound to path.
func (s Section) Widget(path string) (widget.Config, bool) {
	for _, cfg := range s.Widgets {
		if cfg.Path == path {
			return cfg, true
		}
	}
	return widget.Config{}, false
}

// Survey is an ordered set of sections.
type Survey struct {
	Sections []Section `json:"sections"`
}

// Section returns the section called name.
func (s *Survey) Section(name string) (Section, bool) {
	if s == nil {
		return Section{}, false
	}
	for _, section := range s.Sections {
		if section.Name == name {
			return section, true
		}
	}
	return Section{}, false
}

// Widget finds the widget bound to path in any section.
func (s *Survey) Widget(path string) (widget.Config, Section, bool) {
	if s == nil {
		return widget.Config{}, Section{}, false
	}
	for _, section := range s.Sections {
		if cfg, ok := section.Widget(path); ok {
			return cfg, section, true
		}
	}
	return widget.Config{}, Section{}, false
}

// SectionNames lists section names in survey order.
func (s *Survey) SectionNames() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Sections))
	for _, section := range s.Sections {
		out = append(out, section.Name)
	}
	return out
}

// Widgets returns every widget in survey order.
func (s *Survey) Widgets() []widget.Config {
	if s == nil {
		return nil
	}
	var out []widget.Config
	for _, section := range s.Sections {
		out = append(out, section.Widgets...)
	}
	return out
}

func sortSections(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].Order != sections[j].Order {
			return sections[i].Order < sections[j].Order
		}
		return sections[i].Name < sections[j].Name
	})
}
