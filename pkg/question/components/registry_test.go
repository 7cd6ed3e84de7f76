package components

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-question/pkg/render/template/gotemplate"
	"github.com/goliatone/go-question/pkg/widget"
)

func nopRenderer(*bytes.Buffer, Control, ComponentData) error { return nil }

func TestRegistryDescriptorClone(t *testing.T) {
	reg := New()

	if err := reg.Register("test", Descriptor{Renderer: nopRenderer, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("TEST")
	if !ok {
		t.Fatalf("descriptor not found")
	}

	desc.Stylesheets = append(desc.Stylesheets, "/mutated.css")

	original, _ := reg.Descriptor("test")
	if len(original.Stylesheets) != 1 || original.Stylesheets[0] != "/a.css" {
		t.Fatalf("registry descriptor mutated: %#v", original.Stylesheets)
	}
}

func TestRegistryRejectsInvalidDescriptors(t *testing.T) {
	reg := New()
	if err := reg.Register(" ", Descriptor{Renderer: nopRenderer}); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := reg.Register("x", Descriptor{}); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()

	reg.MustRegister("string", Descriptor{
		Renderer:    nopRenderer,
		Stylesheets: []string{"/shared.css", "/input.css"},
		Scripts:     []Script{{Src: "/shared.js"}},
	})
	reg.MustRegister("datePicker", Descriptor{
		Renderer:    nopRenderer,
		Stylesheets: []string{"/shared.css", "/date.css"},
		Scripts:     []Script{{Src: "/shared.js"}, {Src: "/date.js"}},
	})

	styles, scripts := reg.Assets([]string{"string", "datePicker", "unknown"})
	if diff := cmp.Diff([]string{"/shared.css", "/input.css", "/date.css"}, styles); diff != "" {
		t.Fatalf("unexpected stylesheets (-want +got):\n%s", diff)
	}
	if len(scripts) != 2 {
		t.Fatalf("expected 2 unique scripts, got %d: %v", len(scripts), scripts)
	}
}

func TestDefaultRegistryCoversEveryInputType(t *testing.T) {
	reg := NewDefaultRegistry()
	for _, input := range widget.InputTypes() {
		desc, ok := reg.Descriptor(string(input))
		if !ok {
			t.Fatalf("missing descriptor for %s", input)
		}
		wantGrouped := input == widget.InputRadio || input == widget.InputRadioNumber ||
			input == widget.InputCheckbox || input == widget.InputButton
		if desc.Grouped != wantGrouped {
			t.Fatalf("%s grouped = %v, want %v", input, desc.Grouped, wantGrouped)
		}
	}
	if got := len(reg.Names()); got != len(widget.InputTypes()) {
		t.Fatalf("expected %d descriptors, got %d", len(widget.InputTypes()), got)
	}
}

func TestChoiceGroupRenderer(t *testing.T) {
	var buf bytes.Buffer
	control := Control{
		ID:          "question-q-input",
		Name:        "q",
		LabelID:     "question-q-label",
		DescribedBy: "question-q-error",
		Invalid:     true,
		Disabled:    true,
		Choices: []Option{
			{ID: "question-q-input-0", Value: "a", Label: "A & B", Selected: true},
			{ID: "question-q-input-1", Value: "b", Label: "C"},
		},
	}
	if err := choiceGroupRenderer("checkbox", "checkbox")(&buf, control, ComponentData{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `<fieldset id="question-q-input" class="question-choices question-choices--checkbox" aria-labelledby="question-q-label" aria-describedby="question-q-error" aria-invalid="true">` +
		`<div class="question-choice question-choice--checkbox"><input type="checkbox" id="question-q-input-0" name="q" value="a" class="question-choice__input" checked disabled><label for="question-q-input-0" class="question-choice__label">A &amp; B</label></div>` +
		`<div class="question-choice question-choice--checkbox"><input type="checkbox" id="question-q-input-1" name="q" value="b" class="question-choice__input" disabled><label for="question-q-input-1" class="question-choice__label">C</label></div>` +
		`</fieldset>`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("unexpected markup (-want +got):\n%s", diff)
	}
}

func TestTemplateRendererUsesEmbeddedTemplates(t *testing.T) {
	engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	desc, _ := NewDefaultRegistry().Descriptor(NameString)

	var buf bytes.Buffer
	control := Control{ID: "question-q-input", Name: "q", Value: `5" tall`, Placeholder: "Type"}
	if err := desc.Renderer(&buf, control, ComponentData{Template: engine}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `<input type="text" id="question-q-input" name="q" class="question-input" value="5&quot; tall" placeholder="Type">`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("unexpected markup (-want +got):\n%s", diff)
	}
}

func TestTemplateRendererPrefersThemePartial(t *testing.T) {
	stub := &recordingTemplate{}
	desc, _ := NewDefaultRegistry().Descriptor(NameSelect)

	var buf bytes.Buffer
	err := desc.Renderer(&buf, Control{ID: "x"}, ComponentData{
		Template: stub,
		Partials: map[string]string{PartialKey(NameSelect): "themes/acme/select"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stub.last != "themes/acme/select" {
		t.Fatalf("expected theme partial, got %q", stub.last)
	}
}

func TestTemplateRendererPassesLocale(t *testing.T) {
	stub := &recordingTemplate{}
	desc, _ := NewDefaultRegistry().Descriptor(NameTime)

	if err := desc.Renderer(&bytes.Buffer{}, Control{ID: "x"}, ComponentData{Template: stub, Locale: "fr"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, ok := stub.data.(map[string]any)
	if !ok || data["locale"] != "fr" {
		t.Fatalf("expected locale in template data, got %#v", stub.data)
	}
}

func TestTemplateRendererRequiresEngine(t *testing.T) {
	desc, _ := NewDefaultRegistry().Descriptor(NameText)
	if err := desc.Renderer(&bytes.Buffer{}, Control{}, ComponentData{}); err == nil {
		t.Fatalf("expected missing template renderer to fail")
	}
}

type recordingTemplate struct {
	last string
	data any
}

func (r *recordingTemplate) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	r.last = name
	r.data = data
	return "<select></select>", nil
}
