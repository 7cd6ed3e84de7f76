package question

import (
	"errors"
	"html"
	"strings"
)

var (
	// ErrDisabled is returned by Change while the question is loading or
	// disabled.
	ErrDisabled = errors.New("question: question is disabled")
	// ErrNoUpdateCallback is returned by Change when Props.Update is nil.
	ErrNoUpdateCallback = errors.New("question: update callback is required")
	// ErrNoHelp is returned by ActivateHelp when the widget has no help
	// popup.
	ErrNoHelp = errors.New("question: widget has no help popup")
)

// diagnostic renders the visible placeholder for a misconfigured widget.
func diagnostic(id ids, err error) []byte {
	var b strings.Builder
	b.WriteString(`<div id="`)
	b.WriteString(html.EscapeString(id.root))
	b.WriteString(`" class="question question--config-error" data-question-error="config" role="alert">`)
	b.WriteString(`<p class="question__diagnostic">`)
	b.WriteString(html.EscapeString(err.Error()))
	b.WriteString(`</p></div>`)
	return []byte(b.String())
}
