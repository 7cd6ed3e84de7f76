package components

import (
	"bytes"
	"fmt"
	"html"
	"strings"
)

const (
	templatePrefix = "components/"
)

// PartialKey returns the theme partial key that overrides the template of a
// template-backed component, e.g. "question.select".
func PartialKey(name string) string {
	return "question." + name
}

// NewDefaultRegistry constructs a registry with one descriptor per input
// type.
func NewDefaultRegistry() *Registry {
	registry := New()
	styles := []string{Stylesheet}

	registry.MustRegister(NameSelect, Descriptor{
		Renderer:    templateComponentRenderer(NameSelect, templatePrefix+"select"),
		Stylesheets: styles,
	})
	registry.MustRegister(NameMultiselect, Descriptor{
		Renderer:    templateComponentRenderer(NameMultiselect, templatePrefix+"select"),
		Stylesheets: styles,
	})
	registry.MustRegister(NameString, Descriptor{
		Renderer:    templateComponentRenderer(NameString, templatePrefix+"input"),
		Stylesheets: styles,
	})
	registry.MustRegister(NameText, Descriptor{
		Renderer:    templateComponentRenderer(NameText, templatePrefix+"textarea"),
		Stylesheets: styles,
	})
	registry.MustRegister(NameSlider, Descriptor{
		Renderer:    templateComponentRenderer(NameSlider, templatePrefix+"slider"),
		Stylesheets: styles,
	})
	registry.MustRegister(NameDatePicker, Descriptor{
		Renderer:    templateComponentRenderer(NameDatePicker, templatePrefix+"date"),
		Stylesheets: styles,
	})
	registry.MustRegister(NameTime, Descriptor{
		Renderer:    templateComponentRenderer(NameTime, templatePrefix+"time"),
		Stylesheets: styles,
	})
	registry.MustRegister(NameRadio, Descriptor{
		Renderer:    choiceGroupRenderer("radio", "radio"),
		Grouped:     true,
		Stylesheets: styles,
	})
	registry.MustRegister(NameRadioNumber, Descriptor{
		Renderer:    choiceGroupRenderer("radio", "number"),
		Grouped:     true,
		Stylesheets: styles,
	})
	registry.MustRegister(NameCheckbox, Descriptor{
		Renderer:    choiceGroupRenderer("checkbox", "checkbox"),
		Grouped:     true,
		Stylesheets: styles,
	})
	registry.MustRegister(NameButton, Descriptor{
		Renderer:    choiceGroupRenderer("radio", "button"),
		Grouped:     true,
		Stylesheets: styles,
	})

	return registry
}

func templateComponentRenderer(name, templateName string) Renderer {
	return func(buf *bytes.Buffer, control Control, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.Partials != nil {
			if candidate := strings.TrimSpace(data.Partials[PartialKey(name)]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		rendered, err := data.Template.RenderTemplate(resolvedTemplate, map[string]any{
			"control": control,
			"locale":  data.Locale,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolvedTemplate, err)
		}
		buf.WriteString(strings.TrimSpace(rendered))
		return nil
	}
}

// choiceGroupRenderer renders one native input per option inside a fieldset
// named by the question label.
func choiceGroupRenderer(inputType, style string) Renderer {
	return func(buf *bytes.Buffer, control Control, _ ComponentData) error {
		var b strings.Builder
		b.WriteString(`<fieldset id="`)
		b.WriteString(html.EscapeString(control.ID))
		b.WriteString(`" class="question-choices question-choices--`)
		b.WriteString(style)
		b.WriteString(`"`)
		writeAttr(&b, "aria-labelledby", control.LabelID)
		writeAttr(&b, "aria-describedby", control.DescribedBy)
		if control.Invalid {
			b.WriteString(` aria-invalid="true"`)
		}
		b.WriteString(`>`)

		for _, option := range control.Choices {
			b.WriteString(`<div class="question-choice question-choice--`)
			b.WriteString(style)
			b.WriteString(`"><input type="`)
			b.WriteString(inputType)
			b.WriteString(`" id="`)
			b.WriteString(html.EscapeString(option.ID))
			b.WriteString(`" name="`)
			b.WriteString(html.EscapeString(control.Name))
			b.WriteString(`" value="`)
			b.WriteString(html.EscapeString(option.Value))
			b.WriteString(`" class="question-choice__input"`)
			if option.Selected {
				b.WriteString(` checked`)
			}
			if control.Disabled {
				b.WriteString(` disabled`)
			}
			b.WriteString(`><label for="`)
			b.WriteString(html.EscapeString(option.ID))
			b.WriteString(`" class="question-choice__label">`)
			b.WriteString(html.EscapeString(option.Label))
			b.WriteString(`</label></div>`)
		}

		b.WriteString(`</fieldset>`)
		buf.WriteString(b.String())
		return nil
	}
}

func writeAttr(b *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}
