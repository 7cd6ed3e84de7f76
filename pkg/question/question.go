package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-question/pkg/question/components"
	"github.com/goliatone/go-question/pkg/widget"
)

// Question is one mounted question. It owns the transient UI state that
// survives between renders: the help popup session and whether the user
// dismissed the modal. A Question is not safe for concurrent use.
type Question struct {
	renderer *Renderer
	props    Props

	help           helpSession
	modalDismissed bool
}

// Props returns the current props.
func (q *Question) Props() Props {
	return q.props
}

// SetProps replaces the props. Moving the question to another path drops the
// UI state.
func (q *Question) SetProps(props Props) {
	if props.path() != q.props.path() || props.Config.InputType != q.props.Config.InputType {
		q.help.close()
		q.modalDismissed = false
	}
	q.props = props
}

// Render produces the question markup. It never invokes the update callback
// nor the help content function. Configuration errors return diagnostic
// markup together with a *widget.ConfigError.
func (q *Question) Render(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("question: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := q.renderer
	path := q.props.path()
	id := idsFor(path)

	cfg := q.props.Config
	cfg.Path = path
	variant, err := widget.ResolveVariant(cfg)
	if err != nil {
		r.reportConfigError(q.props, err)
		return diagnostic(id, err), err
	}

	descriptor, ok := r.registry.Descriptor(string(variant.InputType()))
	if !ok {
		err := &widget.ConfigError{Path: path, Field: "inputType", Detail: "no component registered", Err: widget.ErrUnknownInputType}
		r.reportConfigError(q.props, err)
		return diagnostic(id, err), err
	}

	view := newView(r, q, id, variant, descriptor)
	out, err := view.render()
	if err != nil {
		return nil, fmt.Errorf("question: render %q: %w", path, err)
	}
	return out, nil
}

// ActivateHelp opens the help popup. The content function runs at most once
// per popup session.
func (q *Question) ActivateHelp() error {
	popup := q.props.Config.HelpPopup
	if popup == nil {
		return ErrNoHelp
	}
	q.help.open()
	q.help.evaluate(q.helpContent(popup), q.props.Interview, q.props.User)
	return nil
}

// CloseHelp closes the help popup and discards its content.
func (q *Question) CloseHelp() {
	q.help.close()
}

// HelpOpen reports whether the help popup is open.
func (q *Question) HelpOpen() bool {
	return q.help.isOpen()
}

// OpenModal reopens a dismissed modal question.
func (q *Question) OpenModal() {
	q.modalDismissed = false
}

// CloseModal dismisses a modal question until OpenModal.
func (q *Question) CloseModal() {
	q.modalDismissed = true
}

// Change decodes submitted form values and hands the answer to the update
// callback.
func (q *Question) Change(ctx context.Context, raw []string) error {
	path := q.props.path()
	if q.props.disabled() {
		return ErrDisabled
	}
	if q.props.Update == nil {
		return ErrNoUpdateCallback
	}

	cfg := q.props.Config
	cfg.Path = path
	variant, err := widget.ResolveVariant(cfg)
	if err != nil {
		return err
	}
	value, err := variant.Decode(raw)
	if err != nil {
		return fmt.Errorf("question: %s: %w", path, err)
	}
	return q.props.Update(ctx, path, value)
}

func (q *Question) helpContent(popup *widget.HelpPopup) widget.ContentFunc {
	if popup.Content != nil {
		return popup.Content
	}
	if popup.Text.IsZero() {
		return nil
	}
	locale := q.renderer.locale(q.props.Interview)
	text := strings.TrimSpace(popup.Text.Resolve(locale, q.renderer.fallbackLocale))
	return widget.StaticContent(text)
}

// Plain is the text-only view of a question used by non-HTML front-ends.
type Plain struct {
	Label     string
	HelpTitle string
	HasHelp   bool
	Variant   widget.Variant
	Value     any
	Disabled  bool
}

// Plain resolves the variant together with the label and help title as
// plain text.
func (q *Question) Plain() (Plain, error) {
	path := q.props.path()
	cfg := q.props.Config
	cfg.Path = path
	variant, err := widget.ResolveVariant(cfg)
	if err != nil {
		q.renderer.reportConfigError(q.props, err)
		return Plain{}, err
	}
	v := newView(q.renderer, q, idsFor(path), variant, components.Descriptor{})
	return Plain{
		Label:     v.plainLabel(),
		HelpTitle: v.helpTitle(),
		HasHelp:   cfg.HelpPopup != nil,
		Variant:   variant,
		Value:     v.currentValue(),
		Disabled:  q.props.disabled(),
	}, nil
}

// HelpContent returns the content of the open help popup and whether it is
// Markdown. It is empty until ActivateHelp.
func (q *Question) HelpContent() (string, bool) {
	if !q.help.isOpen() || q.props.Config.HelpPopup == nil {
		return "", false
	}
	return q.help.content, q.props.Config.HelpPopup.Markdown
}

// ChoiceLabel resolves the label of a choice for the interview locale.
func (q *Question) ChoiceLabel(choice widget.Choice) string {
	label := choice.Label.Resolve(q.renderer.locale(q.props.Interview), q.renderer.fallbackLocale)
	if strings.TrimSpace(label) == "" {
		return choice.Value
	}
	return label
}
