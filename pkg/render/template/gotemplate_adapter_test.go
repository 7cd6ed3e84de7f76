package template_test

import (
	"embed"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-question/pkg/i18n"
	"github.com/goliatone/go-question/pkg/render/template/gotemplate"
	"github.com/goliatone/go-question/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_ClockFilterAndAutoescape(t *testing.T) {
	engine := newEngine(t)

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("clock", map[string]any{"seconds": 30600, "label": "<em>x</em>"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "clock.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestGoTemplateEngine_TranslateFunc(t *testing.T) {
	catalog := i18n.NewCatalog()
	catalog.Add("fr", "question", map[string]string{"choose": "Choisir"})

	engine, err := gotemplate.New(
		gotemplate.WithFS(mustSub(t)),
		gotemplate.WithTemplateFunc(i18n.TemplateFuncs(catalog, "locale", nil)),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("translate", map[string]any{"locale": "fr"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "translate.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestGoTemplateEngine_StructDataUsesJSONKeys(t *testing.T) {
	engine := newEngine(t)
	type view struct {
		DisplayName string `json:"displayName"`
	}

	got, err := engine.RenderString("{{ displayName }}", view{DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Ada" {
		t.Fatalf("expected Ada, got %q", got)
	}
}

func TestGoTemplateEngine_FSOrder(t *testing.T) {
	override := fstest.MapFS{
		"hello.tpl": &fstest.MapFile{Data: []byte("Hi {{ name }}")},
	}

	engine, err := gotemplate.New(gotemplate.WithFS(override), gotemplate.WithFS(mustSub(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hi Ada" {
		t.Fatalf("expected override template, got %q", got)
	}
	if _, err := engine.RenderTemplate("clock", map[string]any{"seconds": 0}); err != nil {
		t.Fatalf("expected base template to resolve: %v", err)
	}
	if _, err := engine.RenderTemplate("absent", nil); err == nil {
		t.Fatalf("expected missing template to fail")
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(mustSub(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func mustSub(t *testing.T) fs.FS {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	return templatesFS
}
