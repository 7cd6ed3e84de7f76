package question

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-question/pkg/a11y"
	"github.com/goliatone/go-question/pkg/overlay"
	"github.com/goliatone/go-question/pkg/testsupport"
	"github.com/goliatone/go-question/pkg/widget"
)

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func baseProps(input widget.InputType) Props {
	cfg := testsupport.WidgetConfig(input)
	return Props{
		Section:   "household",
		Config:    cfg,
		Status:    testsupport.WidgetStatus(cfg.Path, testsupport.SampleValue(input)),
		Interview: testsupport.Interview(),
		User:      testsupport.User(),
		Update: func(context.Context, string, any) error {
			return nil
		},
	}
}

func render(t *testing.T, q *Question) string {
	t.Helper()
	out, err := q.Render(testsupport.Context())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertAccessible(t *testing.T, markup string) {
	t.Helper()
	violations, err := a11y.AuditString(markup)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(violations) > 0 {
		t.Fatalf("accessibility violations:\n%v\nmarkup:\n%s", violations, markup)
	}
}

func parse(t *testing.T, markup string) *a11y.Document {
	t.Helper()
	doc, err := a11y.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestRenderEveryInputType(t *testing.T) {
	r := newRenderer(t)
	for _, input := range widget.InputTypes() {
		t.Run(string(input), func(t *testing.T) {
			q := r.Mount(baseProps(input))
			first := render(t, q)
			second := render(t, q)
			if first != second {
				t.Fatalf("render is not idempotent:\n%s\n---\n%s", first, second)
			}
			if !strings.Contains(first, `data-input-type="`+string(input)+`"`) {
				t.Fatalf("expected input type marker in:\n%s", first)
			}
			assertAccessible(t, first)
			testsupport.MatchSnapshot(t, testsupport.SnapshotPath("input-"+string(input)), []byte(first))
		})
	}
}

func TestRenderStringMarkup(t *testing.T) {
	r := newRenderer(t)
	props := baseProps(widget.InputString)
	props.Section = ""

	got := render(t, r.Mount(props))
	want := `<div id="question-foo-test" class="question question--stacked question--spaced" data-question-path="foo.test" data-input-type="string" data-update-key="1">
  <div class="question__label-column"><label id="question-foo-test-label" for="question-foo-test-input" class="question__label">Test label</label></div>
  <div class="question__input-column"><input type="text" id="question-foo-test-input" name="foo.test" class="question-input" value="some text" placeholder="Type here"></div>
</div>
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected markup (-want +got):\n%s", diff)
	}
}

func TestGroupedInputsUseLabelledFieldset(t *testing.T) {
	r := newRenderer(t)
	for _, input := range []widget.InputType{widget.InputRadio, widget.InputCheckbox, widget.InputButton, widget.InputRadioNumber} {
		doc := parse(t, render(t, r.Mount(baseProps(input))))
		groups := doc.ByRole("group", "Test label")
		if len(groups) != 1 {
			t.Fatalf("%s: expected one group labelled by the question, got %d", input, len(groups))
		}
	}

	doc := parse(t, render(t, r.Mount(baseProps(widget.InputCheckbox))))
	for _, name := range []string{"Yes", "Don't know"} {
		boxes := doc.ByRole("checkbox", name)
		if len(boxes) != 1 || !a11y.HasAttr(boxes[0], "checked") {
			t.Fatalf("expected %q to be checked", name)
		}
	}
	if boxes := doc.ByRole("checkbox", "No"); len(boxes) != 1 || a11y.HasAttr(boxes[0], "checked") {
		t.Fatalf("expected No to be unchecked")
	}
}

func TestHelpPopupContentIsLazy(t *testing.T) {
	calls := 0
	props := baseProps(widget.InputString)
	props.Config.HelpPopup = &widget.HelpPopup{
		Title: widget.Localized{"en": "Help title"},
		Content: func(interview widget.Interview, user widget.User) string {
			calls++
			if interview.ID != "interview-1" || user.Username != "respondent" {
				t.Errorf("content received unexpected contexts: %+v %+v", interview, user)
			}
			return "Help content"
		},
	}

	q := newRenderer(t).Mount(props)
	closed := render(t, q)
	if calls != 0 {
		t.Fatalf("content invoked during render: %d", calls)
	}
	doc := parse(t, closed)
	if got := doc.ByLabelText("Help title"); len(got) != 0 {
		t.Fatalf("overlay rendered before activation")
	}
	triggers := doc.ByRole("button", "Help title")
	if len(triggers) != 1 || a11y.Attr(triggers[0], "aria-expanded") != "false" {
		t.Fatalf("expected a collapsed help trigger")
	}
	assertAccessible(t, closed)
	testsupport.MatchSnapshot(t, testsupport.SnapshotPath("help-closed"), []byte(closed))

	if err := q.ActivateHelp(); err != nil {
		t.Fatalf("activate help: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected content to run once, got %d", calls)
	}

	open := render(t, q)
	_ = render(t, q)
	if err := q.ActivateHelp(); err != nil {
		t.Fatalf("activate help again: %v", err)
	}
	if calls != 1 {
		t.Fatalf("content re-invoked within the same session: %d", calls)
	}

	doc = parse(t, open)
	dialogs := doc.ByLabelText("Help title")
	if len(dialogs) != 1 || a11y.Role(dialogs[0]) != "dialog" {
		t.Fatalf("expected the overlay to be labelled Help title")
	}
	if got := doc.ByText("Help content"); len(got) != 1 {
		t.Fatalf("expected help content in overlay:\n%s", open)
	}
	assertAccessible(t, open)
	testsupport.MatchSnapshot(t, testsupport.SnapshotPath("help-open"), []byte(open))

	q.CloseHelp()
	if q.HelpOpen() {
		t.Fatalf("expected help closed")
	}
	if err := q.ActivateHelp(); err != nil {
		t.Fatalf("reopen help: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a new session to evaluate content again, got %d", calls)
	}
}

func TestHelpPopupMarkdownText(t *testing.T) {
	props := baseProps(widget.InputText)
	props.Config.HelpPopup = &widget.HelpPopup{
		Title:    widget.Localized{"en": "Why we ask"},
		Text:     widget.Localized{"en": "Count **everyone**.", "fr": "Comptez **tout le monde**."},
		Markdown: true,
	}
	q := newRenderer(t).Mount(props)
	if err := q.ActivateHelp(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	out := render(t, q)
	if !strings.Contains(out, "<strong>everyone</strong>") {
		t.Fatalf("expected markdown content:\n%s", out)
	}
	assertAccessible(t, out)
}

func TestActivateHelpWithoutPopup(t *testing.T) {
	q := newRenderer(t).Mount(baseProps(widget.InputString))
	if err := q.ActivateHelp(); !errors.Is(err, ErrNoHelp) {
		t.Fatalf("expected ErrNoHelp, got %v", err)
	}
}

func TestPortalMounterDefersOverlay(t *testing.T) {
	portal := overlay.NewPortal()
	props := baseProps(widget.InputString)
	props.Config.HelpPopup = &widget.HelpPopup{
		Title:   widget.Localized{"en": "Help title"},
		Content: widget.StaticContent("Help content"),
	}
	q := newRenderer(t, WithMounter(portal)).Mount(props)
	if err := q.ActivateHelp(); err != nil {
		t.Fatalf("activate: %v", err)
	}
	out := render(t, q)
	if strings.Contains(out, "Help content") {
		t.Fatalf("expected overlay to be deferred:\n%s", out)
	}
	if !strings.Contains(out, `data-overlay-anchor="question-foo-test-help"`) {
		t.Fatalf("expected overlay anchor:\n%s", out)
	}
	page := out + portal.Flush()
	assertAccessible(t, page)
	if got := parse(t, page).ByLabelText("Help title"); len(got) != 1 {
		t.Fatalf("expected flushed overlay")
	}
}

func TestErrorMessageIsAssociated(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Status.IsValid = false
	props.Status.ErrorMessage = "error test"

	out := render(t, newRenderer(t).Mount(props))
	doc := parse(t, out)

	messages := doc.ByText("error test")
	if len(messages) != 1 || a11y.Role(messages[0]) != "alert" {
		t.Fatalf("expected one alert with the error message:\n%s", out)
	}
	errorID := a11y.Attr(messages[0], "id")
	input := doc.ByID("question-foo-test-input")
	if a11y.Attr(input, "aria-describedby") != errorID {
		t.Fatalf("input not described by error %q", errorID)
	}
	if a11y.Attr(input, "aria-invalid") != "true" {
		t.Fatalf("expected aria-invalid on input")
	}
	assertAccessible(t, out)
	testsupport.MatchSnapshot(t, testsupport.SnapshotPath("error-message"), []byte(out))
}

func TestErrorMessageOnGroupedInput(t *testing.T) {
	props := baseProps(widget.InputRadio)
	props.Status.IsValid = false
	props.Status.ErrorMessage = "error test"

	out := render(t, newRenderer(t).Mount(props))
	doc := parse(t, out)
	group := doc.ByRole("group", "Test label")
	if len(group) != 1 || a11y.Attr(group[0], "aria-describedby") != "question-foo-test-error" {
		t.Fatalf("expected fieldset described by the error:\n%s", out)
	}
	assertAccessible(t, out)
}

func TestValidStatusHidesMessage(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Status.ErrorMessage = "stale message"

	out := render(t, newRenderer(t).Mount(props))
	if strings.Contains(out, "stale message") || strings.Contains(out, "aria-invalid") {
		t.Fatalf("valid status must not show an error:\n%s", out)
	}
}

func TestJoinOnlyChangesSpacing(t *testing.T) {
	r := newRenderer(t)
	for _, input := range widget.InputTypes() {
		props := baseProps(input)
		standalone := render(t, r.Mount(props))
		props.Join = true
		joined := render(t, r.Mount(props))

		if standalone == joined {
			t.Fatalf("%s: join must change the markup", input)
		}
		if got := strings.Replace(standalone, ClassSpaced, ClassJoin, 1); got != joined {
			t.Fatalf("%s: join changed more than spacing:\n%s", input, cmp.Diff(got, joined))
		}
	}

	props := baseProps(widget.InputSelect)
	props.Join = true
	testsupport.MatchSnapshot(t, testsupport.SnapshotPath("join"), []byte(render(t, r.Mount(props))))
}

func TestTwoColumnsOnlyChangesLayout(t *testing.T) {
	r := newRenderer(t)
	props := baseProps(widget.InputSlider)
	stacked := render(t, r.Mount(props))
	props.Config.TwoColumns = true
	columns := render(t, r.Mount(props))

	if got := strings.Replace(stacked, ClassStacked, ClassTwoColumns, 1); got != columns {
		t.Fatalf("twoColumns changed more than layout:\n%s", cmp.Diff(got, columns))
	}
}

func TestModalVisibility(t *testing.T) {
	r := newRenderer(t)
	props := baseProps(widget.InputRadio)
	props.Config.IsModal = true

	props.Status.IsVisible = false
	hidden := render(t, r.Mount(props))

	props.Status.IsVisible = true
	q := r.Mount(props)
	visible := render(t, q)

	if hidden == visible {
		t.Fatalf("modal states must be distinguishable")
	}
	if strings.Contains(hidden, "question__label") || strings.Contains(hidden, `role="dialog"`) {
		t.Fatalf("hidden modal must not render its body:\n%s", hidden)
	}
	if !strings.Contains(hidden, `data-question-modal="closed"`) {
		t.Fatalf("hidden modal must stay mounted:\n%s", hidden)
	}

	doc := parse(t, visible)
	dialogs := doc.ByLabelText("Test label")
	var dialog bool
	for _, n := range dialogs {
		if a11y.Role(n) == "dialog" {
			dialog = true
		}
	}
	if !dialog {
		t.Fatalf("visible modal must be a dialog labelled by the question:\n%s", visible)
	}

	assertAccessible(t, hidden)
	assertAccessible(t, visible)
	testsupport.MatchSnapshot(t, testsupport.SnapshotPath("modal-hidden"), []byte(hidden))
	testsupport.MatchSnapshot(t, testsupport.SnapshotPath("modal-visible"), []byte(visible))

	q.CloseModal()
	dismissed := render(t, q)
	if !strings.Contains(dismissed, `data-question-modal="dismissed"`) || strings.Contains(dismissed, `role="dialog"`) {
		t.Fatalf("dismissed modal must collapse to its trigger:\n%s", dismissed)
	}
	if got := parse(t, dismissed).ByRole("button", "Test label"); len(got) != 1 {
		t.Fatalf("expected reopen button")
	}
	assertAccessible(t, dismissed)

	q.OpenModal()
	if got := render(t, q); got != visible {
		t.Fatalf("reopened modal differs from the original")
	}
}

func TestHiddenQuestionKeepsSlot(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Status.IsVisible = false

	out := render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, ` hidden>`) || strings.Contains(out, "<input") {
		t.Fatalf("expected an empty hidden slot:\n%s", out)
	}
	assertAccessible(t, out)
}

func TestRadioNumberOverMax(t *testing.T) {
	props := baseProps(widget.InputRadioNumber)
	props.Status.Value = 4

	out := render(t, newRenderer(t).Mount(props))
	doc := parse(t, out)
	over := doc.ByRole("radio", "4+")
	if len(over) != 1 {
		t.Fatalf("expected the over max choice:\n%s", out)
	}
	if a11y.Attr(over[0], "value") != "4" || !a11y.HasAttr(over[0], "checked") {
		t.Fatalf("expected the over max choice to carry and check 4")
	}
	for _, n := range []string{"1", "2", "3"} {
		if radios := doc.ByRole("radio", n); len(radios) != 1 || a11y.HasAttr(radios[0], "checked") {
			t.Fatalf("choice %s must be unchecked", n)
		}
	}
	assertAccessible(t, out)
	testsupport.MatchSnapshot(t, testsupport.SnapshotPath("radio-number-over-max"), []byte(out))

	props.Status.Value = 7
	doc = parse(t, render(t, newRenderer(t).Mount(props)))
	if over := doc.ByRole("radio", "4+"); len(over) != 1 || a11y.Attr(over[0], "value") != "7" {
		t.Fatalf("expected the over max choice to carry the current value")
	}
}

func TestRadioNumberRangeIsBounded(t *testing.T) {
	r := newRenderer(t)

	props := baseProps(widget.InputRadioNumber)
	props.Config.ValueRange = &widget.Range{Min: 0, Max: 1 << 40}
	out, err := r.Mount(props).Render(testsupport.Context())
	if !errors.Is(err, widget.ErrInvalidConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
	if !strings.Contains(string(out), `data-question-error="config"`) {
		t.Fatalf("expected diagnostic markup:\n%s", out)
	}

	props = baseProps(widget.InputRadioNumber)
	props.Config.OverMaxAllowed = false
	props.Config.ValueRange = &widget.Range{Min: math.MaxInt - 2, Max: math.MaxInt}
	props.Status.Value = nil
	doc := parse(t, render(t, r.Mount(props)))
	if radios := doc.ByRole("radio", ""); len(radios) != 3 {
		t.Fatalf("expected 3 choices at the top of the int range, got %d", len(radios))
	}
}

func TestTimeKeepsOffGridValue(t *testing.T) {
	props := baseProps(widget.InputTime)
	props.Status.Value = 7*3600 + 10*60

	out := render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, `<option value="25800" selected>07:10</option>`) {
		t.Fatalf("expected off-grid option to be selected:\n%s", out)
	}
	if !strings.Contains(out, `<option value="21600">06:00</option>`) {
		t.Fatalf("expected grid slots:\n%s", out)
	}
}

func TestTemplateStringsUseTranslator(t *testing.T) {
	selectProps := baseProps(widget.InputSelect)
	timeProps := baseProps(widget.InputTime)

	r := newRenderer(t)
	if out := render(t, r.Mount(selectProps)); !strings.Contains(out, `<option value=""></option>`) {
		t.Fatalf("expected an empty placeholder option:\n%s", out)
	}
	if out := render(t, r.Mount(timeProps)); !strings.Contains(out, `<option value="">--:--</option>`) {
		t.Fatalf("expected the default empty time option:\n%s", out)
	}

	r = newRenderer(t, WithTranslator(keyTranslator{
		"question.choose": "Choisir",
		"question.noTime": "Aucune heure",
	}))
	if out := render(t, r.Mount(selectProps)); !strings.Contains(out, `<option value="">Choisir</option>`) {
		t.Fatalf("expected the translated placeholder:\n%s", out)
	}
	if out := render(t, r.Mount(timeProps)); !strings.Contains(out, `<option value="">Aucune heure</option>`) {
		t.Fatalf("expected the translated empty time option:\n%s", out)
	}
}

func TestLabelFallsBackToResponses(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Status.Value = nil
	props.Interview.Responses["foo"] = map[string]any{"test": "stored answer"}

	out := render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, `value="stored answer"`) {
		t.Fatalf("expected stored response as value:\n%s", out)
	}
}

func TestContainsHTMLLabel(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Config.ContainsHTML = true
	props.Config.Label = widget.Localized{"en": "**Hello** [nom]<script>alert(1)</script>\n<a href=\"https://example.com\">more</a>"}

	out := render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, "<strong>Hello</strong> Alex") {
		t.Fatalf("expected rich label with nickname:\n%s", out)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "alert(1)") {
		t.Fatalf("label must be sanitized:\n%s", out)
	}
	if !strings.Contains(out, `href="https://example.com"`) {
		t.Fatalf("expected link to survive:\n%s", out)
	}
	assertAccessible(t, out)

	props.Config.ContainsHTML = false
	props.Config.Label = widget.Localized{"en": "<em>literal</em>"}
	out = render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, "&lt;em&gt;literal&lt;/em&gt;") {
		t.Fatalf("expected escaped label:\n%s", out)
	}
}

func TestPlainLabelExpandsNickname(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Config.Label = widget.Localized{"en": "Hello [nom], **ready**?"}

	q := newRenderer(t).Mount(props)
	out := render(t, q)
	if !strings.Contains(out, ">Hello Alex, **ready**?</label>") {
		t.Fatalf("expected nickname in a literal label:\n%s", out)
	}
	plain, err := q.Plain()
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if plain.Label != "Hello Alex, **ready**?" {
		t.Fatalf("plain label = %q", plain.Label)
	}

	props.Interview.Responses["nickname"] = "<b>Zoé</b>"
	out = render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, ">Hello &lt;b&gt;Zoé&lt;/b&gt;, **ready**?</label>") {
		t.Fatalf("expected escaped nickname:\n%s", out)
	}
}

func TestLabelLocaleAndInterpolation(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Interview.Locale = "fr-CA"
	props.Interview.Responses["nickname"] = "<b>Zoé</b>"
	props.Config.Label = widget.Localized{"en": "Hi {{nickname}}", "fr": "Salut {{nickname}}"}

	out := render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, "Salut &lt;b&gt;Zoé&lt;/b&gt;") {
		t.Fatalf("expected french label with escaped nickname:\n%s", out)
	}
}

type keyTranslator map[string]string

func (k keyTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if value, ok := k[key]; ok {
		return value, nil
	}
	return "", errors.New("missing")
}

func TestLabelKeyUsesTranslator(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Config.Label = nil
	props.Config.LabelKey = "household:foo.test"

	r := newRenderer(t, WithTranslator(keyTranslator{"household:foo.test": "Translated label"}))
	out := render(t, r.Mount(props))
	if !strings.Contains(out, ">Translated label</label>") {
		t.Fatalf("expected translated label:\n%s", out)
	}
}

func TestLoadingStateDisablesControls(t *testing.T) {
	r := newRenderer(t)
	for _, input := range widget.InputTypes() {
		props := baseProps(input)
		props.LoadingState = 1
		out := render(t, r.Mount(props))
		if !strings.Contains(out, `aria-busy="true"`) || !strings.Contains(out, " disabled") {
			t.Fatalf("%s: expected busy, disabled markup:\n%s", input, out)
		}
		assertAccessible(t, out)
	}

	props := baseProps(widget.InputString)
	props.Status.IsDisabled = true
	out := render(t, r.Mount(props))
	if strings.Contains(out, "aria-busy") || !strings.Contains(out, " disabled") {
		t.Fatalf("disabled status must disable without busy marker:\n%s", out)
	}
}

func TestConfigErrorsFailLoudly(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Props)
		target error
		field  string
	}{
		{
			name:   "unknown input type",
			mutate: func(p *Props) { p.Config.InputType = "colour" },
			target: widget.ErrUnknownInputType,
			field:  "inputType",
		},
		{
			name:   "missing input type",
			mutate: func(p *Props) { p.Config.InputType = "" },
			target: widget.ErrMissingField,
			field:  "inputType",
		},
		{
			name:   "missing path",
			mutate: func(p *Props) { p.Config.Path = "" },
			target: widget.ErrMissingField,
			field:  "path",
		},
		{
			name:   "missing label",
			mutate: func(p *Props) { p.Config.Label = nil },
			target: widget.ErrMissingField,
			field:  "label",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			r := newRenderer(t, WithLogger(zap.New(core)))

			props := baseProps(widget.InputSelect)
			tc.mutate(&props)
			out, err := r.Mount(props).Render(testsupport.Context())
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			var cfgErr *widget.ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tc.field {
				t.Fatalf("expected ConfigError on %q, got %#v", tc.field, err)
			}
			markup := string(out)
			if !strings.Contains(markup, `data-question-error="config"`) || !strings.Contains(markup, `role="alert"`) {
				t.Fatalf("expected visible diagnostic, got %q", markup)
			}
			if logs.Len() != 1 {
				t.Fatalf("expected one warning, got %d", logs.Len())
			}
		})
	}
}

func TestPathPropOverridesConfig(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Path = "household.size"

	out := render(t, newRenderer(t).Mount(props))
	if !strings.Contains(out, `id="question-household-size"`) || !strings.Contains(out, `name="household.size"`) {
		t.Fatalf("expected ids from the path prop:\n%s", out)
	}
}

func TestChange(t *testing.T) {
	type call struct {
		path  string
		value any
	}
	var calls []call
	props := baseProps(widget.InputRadioNumber)
	props.Update = func(_ context.Context, path string, value any) error {
		calls = append(calls, call{path: path, value: value})
		return nil
	}

	q := newRenderer(t).Mount(props)
	_ = render(t, q)
	if len(calls) != 0 {
		t.Fatalf("render must not call update")
	}

	if err := q.Change(testsupport.Context(), []string{"2"}); err != nil {
		t.Fatalf("change: %v", err)
	}
	if err := q.Change(testsupport.Context(), []string{"9"}); err != nil {
		t.Fatalf("change over max: %v", err)
	}
	want := []call{{path: "foo.test", value: 2}, {path: "foo.test", value: 9}}
	if diff := cmp.Diff(want, calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("unexpected calls (-want +got):\n%s", diff)
	}

	if err := q.Change(testsupport.Context(), []string{"many"}); !errors.Is(err, widget.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}

	props.LoadingState = 2
	q.SetProps(props)
	if err := q.Change(testsupport.Context(), []string{"1"}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	props.LoadingState = 0
	props.Update = nil
	q.SetProps(props)
	if err := q.Change(testsupport.Context(), []string{"1"}); !errors.Is(err, ErrNoUpdateCallback) {
		t.Fatalf("expected ErrNoUpdateCallback, got %v", err)
	}
}

func TestChangeRejectsUnknownChoice(t *testing.T) {
	q := newRenderer(t).Mount(baseProps(widget.InputCheckbox))
	if err := q.Change(testsupport.Context(), []string{"yes", "maybe"}); !errors.Is(err, widget.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestSetPropsResetsStateOnPathChange(t *testing.T) {
	props := baseProps(widget.InputString)
	props.Config.HelpPopup = &widget.HelpPopup{Title: widget.Localized{"en": "Help"}, Content: widget.StaticContent("x")}
	q := newRenderer(t).Mount(props)
	if err := q.ActivateHelp(); err != nil {
		t.Fatalf("activate: %v", err)
	}

	props.Status.CurrentUpdateKey = 2
	q.SetProps(props)
	if !q.HelpOpen() {
		t.Fatalf("same path must keep help open")
	}

	props.Path = "other.path"
	q.SetProps(props)
	if q.HelpOpen() {
		t.Fatalf("path change must close help")
	}
}

func TestRenderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRenderer(t).Render(ctx, baseProps(widget.InputString)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
