package question

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-question/internal/dotpath"
	"github.com/goliatone/go-question/pkg/i18n"
	"github.com/goliatone/go-question/pkg/overlay"
	"github.com/goliatone/go-question/pkg/question/components"
	"github.com/goliatone/go-question/pkg/richtext"
	"github.com/goliatone/go-question/pkg/widget"
)

// Layout classes. Join and twoColumns only ever toggle these.
const (
	ClassQuestion   = "question"
	ClassStacked    = "question--stacked"
	ClassTwoColumns = "question--two-columns"
	ClassSpaced     = "question--spaced"
	ClassJoin       = "question--join"
	ClassInvalid    = "question--invalid"
	ClassDisabled   = "question--disabled"
	ClassCollapsed  = "question--collapsed"
	ClassModal      = "question--modal"
	ClassHidden     = "question--hidden"
)

// Values of data-question-action handled by front-ends.
const (
	ActionHelpOpen   = "help-open"
	ActionHelpClose  = "help-close"
	ActionModalOpen  = "modal-open"
	ActionModalClose = "modal-close"
)

type view struct {
	r          *Renderer
	q          *Question
	props      Props
	path       string
	id         ids
	locale     string
	variant    widget.Variant
	descriptor components.Descriptor
}

func newView(r *Renderer, q *Question, id ids, variant widget.Variant, descriptor components.Descriptor) *view {
	return &view{
		r:          r,
		q:          q,
		props:      q.props,
		path:       q.props.path(),
		id:         id,
		locale:     r.locale(q.props.Interview),
		variant:    variant,
		descriptor: descriptor,
	}
}

func (v *view) render() ([]byte, error) {
	status := v.props.Status
	if !status.IsVisible {
		return v.hidden(), nil
	}
	if v.props.Config.IsModal && v.q.modalDismissed {
		return v.dismissedModal(), nil
	}

	body, err := v.body(v.props.Config.IsModal)
	if err != nil {
		return nil, err
	}
	if !v.props.Config.IsModal {
		return []byte(body), nil
	}

	var b strings.Builder
	v.openWrapper(&b, "open")
	b.WriteString(v.r.mounter.Mount(overlay.Overlay{
		ID:          v.id.modal,
		Kind:        overlay.KindModal,
		LabelledBy:  v.id.label,
		Body:        body,
		CloseAction: ActionModalClose,
		CloseLabel:  v.r.translate(v.locale, "question.close", "Close"),
	}))
	b.WriteString("\n</div>\n")
	return []byte(b.String()), nil
}

// hidden keeps the layout slot of an invisible question. Modal questions
// stay mounted so a later visibility flip opens them.
func (v *view) hidden() []byte {
	var b strings.Builder
	if v.props.Config.IsModal {
		v.openWrapper(&b, "closed")
		b.WriteString("</div>\n")
		return []byte(b.String())
	}
	b.WriteString(`<div id="`)
	b.WriteString(html.EscapeString(v.id.root))
	b.WriteString(`" class="`)
	b.WriteString(v.classes(ClassHidden))
	b.WriteString(`"`)
	v.dataAttrs(&b)
	b.WriteString(" hidden></div>\n")
	return []byte(b.String())
}

func (v *view) dismissedModal() []byte {
	var b strings.Builder
	v.openWrapper(&b, "dismissed")
	b.WriteString(`<button type="button" class="question__modal-trigger" data-question-action="`)
	b.WriteString(ActionModalOpen)
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(v.plainLabel()))
	b.WriteString("</button>\n</div>\n")
	return []byte(b.String())
}

func (v *view) openWrapper(b *strings.Builder, modalState string) {
	b.WriteString(`<div id="`)
	b.WriteString(html.EscapeString(v.id.root))
	b.WriteString(`" class="`)
	b.WriteString(v.classes(ClassModal))
	b.WriteString(`"`)
	v.dataAttrs(b)
	b.WriteString(` data-question-modal="`)
	b.WriteString(modalState)
	b.WriteString("\">\n")
}

// body renders the label, control, error and help overlay. Inside a modal the
// outer slot carries the id and data attributes.
func (v *view) body(nested bool) (string, error) {
	status := v.props.Status
	showError := status.ShowError()

	control, err := v.control(showError)
	if err != nil {
		return "", err
	}

	extra := make([]string, 0, 3)
	if showError {
		extra = append(extra, ClassInvalid)
	}
	if v.props.disabled() {
		extra = append(extra, ClassDisabled)
	}
	if status.IsCollapsed {
		extra = append(extra, ClassCollapsed)
	}

	var b strings.Builder
	b.Grow(len(control) + 512)
	b.WriteString(`<div`)
	if !nested {
		b.WriteString(` id="`)
		b.WriteString(html.EscapeString(v.id.root))
		b.WriteString(`"`)
	}
	b.WriteString(` class="`)
	b.WriteString(v.classes(extra...))
	b.WriteString(`"`)
	if !nested {
		v.dataAttrs(&b)
	}
	if v.props.LoadingState > 0 {
		b.WriteString(` aria-busy="true"`)
	}
	b.WriteString(">\n")

	b.WriteString(`  <div class="question__label-column">`)
	v.writeLabel(&b)
	v.writeHelpTrigger(&b)
	b.WriteString("</div>\n")

	b.WriteString(`  <div class="question__input-column">`)
	b.WriteString(control)
	if showError {
		b.WriteString(`<p id="`)
		b.WriteString(html.EscapeString(v.id.err))
		b.WriteString(`" class="question__error" role="alert">`)
		b.WriteString(html.EscapeString(status.ErrorMessage))
		b.WriteString(`</p>`)
	}
	b.WriteString("</div>\n")

	if popup := v.props.Config.HelpPopup; popup != nil && v.q.help.isOpen() {
		b.WriteString("  ")
		b.WriteString(v.r.mounter.Mount(overlay.Overlay{
			ID:          v.id.help,
			Kind:        overlay.KindHelp,
			Title:       v.helpTitle(),
			TitleID:     v.id.helpTitle,
			Body:        v.r.text.Content(v.q.help.content, popup.Markdown),
			CloseAction: ActionHelpClose,
			CloseLabel:  v.r.translate(v.locale, "question.close", "Close"),
		}))
		b.WriteString("\n")
	}

	b.WriteString("</div>\n")
	return b.String(), nil
}

func (v *view) control(showError bool) (string, error) {
	control := v.buildControl()
	if showError {
		control.DescribedBy = v.id.err
		control.Invalid = true
	}

	data := components.ComponentData{
		Template: v.r.templates,
		Variant:  v.variant,
		Locale:   v.locale,
	}
	if v.r.theme != nil {
		data.Partials = v.r.theme.Partials
	}

	var buf bytes.Buffer
	if err := v.descriptor.Renderer(&buf, control, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (v *view) classes(extra ...string) string {
	parts := []string{ClassQuestion}
	if v.props.Config.TwoColumns {
		parts = append(parts, ClassTwoColumns)
	} else {
		parts = append(parts, ClassStacked)
	}
	if v.props.Join {
		parts = append(parts, ClassJoin)
	} else {
		parts = append(parts, ClassSpaced)
	}
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

func (v *view) dataAttrs(b *strings.Builder) {
	b.WriteString(` data-question-path="`)
	b.WriteString(html.EscapeString(v.path))
	b.WriteString(`" data-input-type="`)
	b.WriteString(html.EscapeString(string(v.variant.InputType())))
	b.WriteString(`" data-update-key="`)
	b.WriteString(strconv.Itoa(v.props.Status.CurrentUpdateKey))
	b.WriteString(`"`)
	if section := strings.TrimSpace(v.props.Section); section != "" {
		b.WriteString(` data-section="`)
		b.WriteString(html.EscapeString(section))
		b.WriteString(`"`)
	}
}

// writeLabel names the control. Grouped controls reference the label with
// aria-labelledby, so they get a plain element instead of <label for>.
func (v *view) writeLabel(b *strings.Builder) {
	label := v.label()
	if v.descriptor.Grouped {
		b.WriteString(`<div id="`)
		b.WriteString(html.EscapeString(v.id.label))
		b.WriteString(`" class="question__label">`)
		b.WriteString(label)
		b.WriteString(`</div>`)
		return
	}
	b.WriteString(`<label id="`)
	b.WriteString(html.EscapeString(v.id.label))
	b.WriteString(`" for="`)
	b.WriteString(html.EscapeString(v.id.input))
	b.WriteString(`" class="question__label">`)
	b.WriteString(label)
	b.WriteString(`</label>`)
}

func (v *view) writeHelpTrigger(b *strings.Builder) {
	if v.props.Config.HelpPopup == nil {
		return
	}
	open := v.q.help.isOpen()
	b.WriteString(`<button type="button" class="question__help-trigger" aria-haspopup="dialog" aria-expanded="`)
	b.WriteString(strconv.FormatBool(open))
	b.WriteString(`"`)
	if open {
		b.WriteString(` aria-controls="`)
		b.WriteString(html.EscapeString(v.id.help))
		b.WriteString(`"`)
	}
	b.WriteString(` data-question-action="`)
	b.WriteString(ActionHelpOpen)
	b.WriteString(`"><span aria-hidden="true">?</span> `)
	b.WriteString(html.EscapeString(v.helpTitle()))
	b.WriteString(`</button>`)
}

func (v *view) helpTitle() string {
	popup := v.props.Config.HelpPopup
	if popup != nil {
		if title := strings.TrimSpace(popup.Title.Resolve(v.locale, v.r.fallbackLocale)); title != "" {
			return title
		}
	}
	return v.r.translate(v.locale, "question.help", "Help")
}

// rawLabel resolves the label text before rich text handling. The nickname
// notation applies to every label, markup or not.
func (v *view) rawLabel() string {
	cfg := v.props.Config
	raw := cfg.Label.Resolve(v.locale, v.r.fallbackLocale)
	if strings.TrimSpace(raw) == "" && strings.TrimSpace(cfg.LabelKey) != "" {
		raw = v.r.translate(v.locale, cfg.LabelKey, "")
	}
	return richtext.ExpandNickname(raw)
}

// fillResponses replaces placeholders such as {{nickname}} with interview
// responses. Placeholders survive label rendering untouched, so values are
// substituted afterwards and escaped when the target is markup.
func (v *view) fillResponses(text string, escape bool) string {
	responses := v.props.Interview.Responses
	return i18n.InterpolateFunc(text, func(name string) (string, bool) {
		value, ok := dotpath.Get(responses, name)
		if !ok || value == nil {
			return "", false
		}
		filled := widget.ValueString(value)
		if escape {
			filled = html.EscapeString(filled)
		}
		return filled, true
	})
}

func (v *view) label() string {
	return v.fillResponses(v.r.text.Label(v.rawLabel(), v.props.Config.ContainsHTML), true)
}

func (v *view) plainLabel() string {
	raw := v.rawLabel()
	if v.props.Config.ContainsHTML {
		raw = richtext.Plain(richtext.ApplyNotation(raw))
	}
	return v.fillResponses(raw, false)
}
