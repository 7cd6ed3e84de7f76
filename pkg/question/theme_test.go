package question

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-question/pkg/question/components"
	"github.com/goliatone/go-question/pkg/widget"
)

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}

func acmeSelection(variant string) *theme.Selection {
	return &theme.Selection{
		Theme:   "acme",
		Variant: variant,
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens: map[string]string{
				"question-accent": "#123456",
				"question-gap":    "2rem",
			},
			Templates: map[string]string{
				components.PartialKey(components.NameSelect): "themes/acme/select",
			},
			Assets: theme.Assets{
				Prefix: "/assets/themes/acme",
				Files: map[string]string{
					StylesheetAsset: "question.css",
				},
			},
			Variants: map[string]theme.Variant{
				"dark": {
					Tokens: map[string]string{
						"question-accent": "#654321",
					},
					Assets: theme.Assets{
						Files: map[string]string{
							StylesheetAsset: "question.dark.css",
						},
					},
				},
			},
		},
	}
}

func TestThemeSelectionBuildsRendererConfig(t *testing.T) {
	selector := &stubThemeSelector{selection: acmeSelection("dark")}
	r := newRenderer(t, WithThemeSelector(selector, "acme", "dark"))

	if diff := cmp.Diff([]selectorCall{{name: "acme", variant: "dark"}}, selector.calls, cmp.AllowUnexported(selectorCall{})); diff != "" {
		t.Fatalf("unexpected selector calls (-want +got):\n%s", diff)
	}

	cfg := r.Theme()
	if cfg == nil {
		t.Fatalf("expected theme config")
	}
	want := map[string]string{
		"--question-accent": "#654321",
		"--question-gap":    "2rem",
	}
	if diff := cmp.Diff(want, cfg.CSSVars); diff != "" {
		t.Fatalf("unexpected css vars (-want +got):\n%s", diff)
	}
	if got := cfg.AssetURL(StylesheetAsset); got != "/assets/themes/acme/question.dark.css" {
		t.Fatalf("unexpected asset url %q", got)
	}

	styles, _ := r.Assets([]widget.InputType{widget.InputSelect, widget.InputRadio})
	if diff := cmp.Diff([]string{"/assets/themes/acme/question.dark.css"}, styles); diff != "" {
		t.Fatalf("unexpected stylesheets (-want +got):\n%s", diff)
	}

	style := CSSVarsStyle(cfg.CSSVars)
	if style != ":root {\n--question-accent: #654321;\n--question-gap: 2rem;\n}" {
		t.Fatalf("unexpected style block %q", style)
	}
}

func TestThemePartialOverridesComponentTemplate(t *testing.T) {
	files := fstest.MapFS{
		"themes/acme/select.tpl": &fstest.MapFile{Data: []byte(
			`<select id="{{ control.id }}" name="{{ control.name }}" class="acme-select">{% for option in control.choices %}<option value="{{ option.value }}">{{ option.label }}</option>{% endfor %}</select>`,
		)},
	}
	r := newRenderer(t,
		WithTemplatesFS(files),
		WithThemeSelector(&stubThemeSelector{selection: acmeSelection("")}, "acme", ""),
	)

	out := render(t, r.Mount(baseProps(widget.InputSelect)))
	if !strings.Contains(out, `class="acme-select"`) {
		t.Fatalf("expected themed select:\n%s", out)
	}
	assertAccessible(t, out)

	out = render(t, r.Mount(baseProps(widget.InputString)))
	if !strings.Contains(out, `class="question-input"`) {
		t.Fatalf("expected default template for unthemed component:\n%s", out)
	}
}

func TestThemeSelectionErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := New(WithThemeSelector(&stubThemeSelector{err: boom}, "acme", "")); !errors.Is(err, boom) {
		t.Fatalf("expected selector error, got %v", err)
	}
	if _, err := New(WithThemeSelector(&stubThemeSelector{selection: &theme.Selection{Theme: "acme"}}, "acme", "")); err == nil {
		t.Fatalf("expected error for selection without manifest")
	}
}

func TestAssetsWithoutTheme(t *testing.T) {
	r := newRenderer(t)
	styles, scripts := r.Assets(widget.InputTypes())
	if diff := cmp.Diff([]string{components.Stylesheet}, styles); diff != "" {
		t.Fatalf("unexpected stylesheets (-want +got):\n%s", diff)
	}
	if len(scripts) != 0 {
		t.Fatalf("expected no scripts, got %v", scripts)
	}
}

func TestParseThemeManifestWithStaticSelector(t *testing.T) {
	manifest, err := ParseThemeManifest([]byte(`
name: acme
version: 1.0.0
tokens:
  question-accent: "#123456"
assets:
  prefix: /assets/themes/acme
  files:
    question.stylesheet: question.css
variants:
  dark:
    tokens:
      question-accent: "#654321"
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	r := newRenderer(t, WithThemeSelector(StaticSelector{Manifest: manifest}, "ignored", "dark"))
	if diff := cmp.Diff(map[string]string{"--question-accent": "#654321"}, r.Theme().CSSVars); diff != "" {
		t.Fatalf("unexpected css vars (-want +got):\n%s", diff)
	}

	r = newRenderer(t, WithThemeSelector(StaticSelector{Manifest: manifest}, "acme", "sepia"))
	if got := r.Theme().Variant; got != "" {
		t.Fatalf("unknown variant must fall back to the base manifest, got %q", got)
	}
	if got := r.Theme().AssetURL(StylesheetAsset); got != "/assets/themes/acme/question.css" {
		t.Fatalf("unexpected asset url %q", got)
	}

	if _, err := ParseThemeManifest([]byte("tokens: {}")); err == nil {
		t.Fatalf("expected error for manifest without name")
	}
}
