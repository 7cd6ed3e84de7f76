package survey

import (
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-question/pkg/i18n"
	"github.com/goliatone/go-question/pkg/widget"
)

const householdYAML = `
sections:
  household:
    order: 1
    title:
      en: Household
      fr: Ménage
    widgets:
      - type: question
        inputType: radioNumber
        path: household.size
        label:
          en: How many people live in your household?
        valueRange: {min: 1, max: 6}
        overMaxAllowed: true
        validations:
          - expression: value > 20
            message: {en: That seems like a lot of people}
      - inputType: datePicker
        path: household.movedIn
        label: {en: "When did you move in?"}
        minDate: "2000-01-01"
        maxDate: "2024-12-31"
`

const tripsJSON = `{
  "sections": {
    "trips": {
      "order": 2,
      "widgets": [
        {"inputType": "time", "path": "trips.departure", "label": {"en": "Departure"}, "minuteStep": 15},
        {"inputType": "string", "path": "nickname", "conditional": "household.size > 1"}
      ]
    }
  }
}`

func TestLoadFSMergesSections(t *testing.T) {
	files := fstest.MapFS{
		"survey/household.yml": &fstest.MapFile{Data: []byte(householdYAML)},
		"survey/trips.json":    &fstest.MapFile{Data: []byte(tripsJSON)},
		"survey/README.md":     &fstest.MapFile{Data: []byte("ignored")},
		"locales/en/trips.yml": &fstest.MapFile{Data: []byte("nickname: What should we call you?\n")},
		"locales/fr/trips.yml": &fstest.MapFile{Data: []byte("nickname: Comment vous appeler ?\n")},
	}
	catalog, err := i18n.LoadCatalogFS(files, "locales")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	s, err := LoadFS(files, "survey", WithCatalog(catalog))
	if err != nil {
		t.Fatalf("load survey: %v", err)
	}
	if diff := cmp.Diff([]string{"household", "trips"}, s.SectionNames()); diff != "" {
		t.Fatalf("unexpected sections (-want +got):\n%s", diff)
	}

	household, ok := s.Section("household")
	if !ok {
		t.Fatalf("household section missing")
	}
	if household.File != "survey/household.yml" || household.Title["fr"] != "Ménage" {
		t.Fatalf("unexpected section metadata %+v", household)
	}
	size, ok := household.Widget("household.size")
	if !ok {
		t.Fatalf("household.size missing")
	}
	if size.ValueRange == nil || size.ValueRange.Max != 6 || !size.OverMaxAllowed {
		t.Fatalf("unexpected radioNumber config %+v", size)
	}
	if len(size.Validations) != 1 || size.Validations[0].Message["en"] == "" {
		t.Fatalf("expected validation rule, got %+v", size.Validations)
	}

	nickname, section, ok := s.Widget("nickname")
	if !ok || section.Name != "trips" {
		t.Fatalf("expected nickname in trips")
	}
	want := widget.Localized{"en": "What should we call you?", "fr": "Comment vous appeler ?"}
	if diff := cmp.Diff(want, nickname.Label); diff != "" {
		t.Fatalf("expected catalog label (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]widget.InputType{widget.InputTime, widget.InputString}, section.InputTypes()); diff != "" {
		t.Fatalf("unexpected input types (-want +got):\n%s", diff)
	}
	if got := len(s.Widgets()); got != 4 {
		t.Fatalf("expected 4 widgets, got %d", got)
	}
}

func TestExampleSurveyLoads(t *testing.T) {
	files := os.DirFS("../../examples")
	catalog, err := i18n.LoadCatalogFS(files, "locales")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	l, err := NewLoader(WithCatalog(catalog))
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	s, issues, err := l.LintFS(files, "survey")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(issues) > 0 {
		t.Fatalf("expected a clean example survey, got %v", issues)
	}
	if diff := cmp.Diff([]string{"household", "trips"}, s.SectionNames()); diff != "" {
		t.Fatalf("unexpected sections (-want +got):\n%s", diff)
	}

	seen := make(map[widget.InputType]bool)
	for _, cfg := range s.Widgets() {
		seen[cfg.InputType] = true
	}
	for _, input := range widget.InputTypes() {
		if !seen[input] {
			t.Errorf("example survey has no %s question", input)
		}
	}

	dwelling, _, ok := s.Widget("household.dwelling")
	if !ok {
		t.Fatalf("household.dwelling missing")
	}
	if dwelling.Label["fr"] != "Dans quel type de logement habitez-vous ?" {
		t.Fatalf("expected catalog label, got %v", dwelling.Label)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	raw := `
sections:
  bad:
    widgets:
      - inputType: dropdown
        path: q1
        label: {en: Q1}
`
	_, err = l.Load("bad.yml", []byte(raw))
	if !errors.Is(err, ErrInvalidSurvey) {
		t.Fatalf("expected invalid survey error, got %v", err)
	}
	var surveyErr *Error
	if !errors.As(err, &surveyErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	issue := surveyErr.Issues[0]
	if issue.File != "bad.yml" || issue.Field != "sections.bad.widgets[0].inputType" {
		t.Fatalf("unexpected issue location %+v", issue)
	}
	if issue.Message == "" || strings.Contains(issue.Message, "\n") {
		t.Fatalf("expected a single-line message, got %q", issue.Message)
	}
}

func TestLintReportsSemanticIssues(t *testing.T) {
	files := fstest.MapFS{
		"a.yml": &fstest.MapFile{Data: []byte(`
sections:
  first:
    widgets:
      - inputType: select
        path: q1
        label: {en: Q1}
        choices:
          - {value: "yes"}
          - {value: "yes"}
      - inputType: string
        path: q2
      - inputType: string
        path: q3
        label: {en: Q3}
        conditional: "value =="
`)},
		"b.yml": &fstest.MapFile{Data: []byte(`
sections:
  first:
    widgets: []
  second:
    widgets:
      - inputType: string
        path: q1
        label: {en: Duplicate}
`)},
	}
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	s, issues, err := l.LintFS(files, ".")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if s == nil {
		t.Fatalf("expected partial survey")
	}

	got := make([]string, 0, len(issues))
	for _, issue := range issues {
		got = append(got, issue.Field)
	}
	want := []string{
		"sections.first.widgets[0].choices",
		"sections.first.widgets[1].label",
		"sections.first.widgets[2]",
		"sections.first",
		"sections.second.widgets[0].path",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected issues (-want +got):\n%s\n%v", diff, issues)
	}

	if _, err := l.LoadFS(files, "."); !errors.Is(err, ErrInvalidSurvey) {
		t.Fatalf("expected LoadFS to reject the survey, got %v", err)
	}
}

func TestLoadFSWithoutFiles(t *testing.T) {
	if _, err := LoadFS(fstest.MapFS{"notes.txt": &fstest.MapFile{}}, "."); err == nil {
		t.Fatalf("expected error for empty survey directory")
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	tests := []struct {
		pointer string
		want    string
	}{
		{pointer: "", want: ""},
		{pointer: "/", want: ""},
		{pointer: "/sections/household/widgets/0/path", want: "sections.household.widgets[0].path"},
		{pointer: "#/sections/a~1b/widgets/12", want: "sections.a/b.widgets[12]"},
	}
	for _, tt := range tests {
		if got := fieldPathFromPointer(tt.pointer); got != tt.want {
			t.Fatalf("fieldPathFromPointer(%q) = %q, want %q", tt.pointer, got, tt.want)
		}
	}
}
