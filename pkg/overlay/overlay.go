// Package overlay mounts dialogs (help popups, modal questions) produced by
// the question renderer. The default mounter renders dialogs in place; the
// Portal mounter collects them so a page can emit them at the end of <body>.
package overlay

import (
	"html"
	"strings"
	"sync"
)

// Kind distinguishes the dialogs the renderer produces.
type Kind string

const (
	KindHelp  Kind = "help"
	KindModal Kind = "modal"
)

// Overlay describes one dialog. Body is trusted, already sanitized markup.
type Overlay struct {
	ID          string
	Kind        Kind
	Title       string
	TitleID     string
	LabelledBy  string
	Body        string
	CloseAction string
	CloseLabel  string
}

// Mounter turns an overlay into the markup that belongs at the trigger
// location.
type Mounter interface {
	Mount(o Overlay) string
}

// Inline renders overlays where they are requested.
type Inline struct{}

// Mount implements Mounter.
func (Inline) Mount(o Overlay) string { return Markup(o) }

// Portal defers overlay markup. The trigger location receives an empty
// anchor referencing the overlay id.
type Portal struct {
	mu      sync.Mutex
	pending []Overlay
}

// NewPortal creates an empty portal.
func NewPortal() *Portal { return &Portal{} }

// Mount queues the overlay and returns its anchor.
func (p *Portal) Mount(o Overlay) string {
	p.mu.Lock()
	p.pending = append(p.pending, o)
	p.mu.Unlock()
	return `<template data-overlay-anchor="` + html.EscapeString(o.ID) + `"></template>`
}

// Len reports the number of queued overlays.
func (p *Portal) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Flush renders every queued overlay in mount order and empties the queue.
func (p *Portal) Flush() string {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	var b strings.Builder
	for _, o := range pending {
		b.WriteString(Markup(o))
	}
	return b.String()
}

// Markup renders a modal dialog. Help dialogs are labelled by their own
// heading; modal questions are labelled by the question label.
func Markup(o Overlay) string {
	labelledBy := o.LabelledBy
	if labelledBy == "" {
		labelledBy = o.TitleID
	}
	closeLabel := o.CloseLabel
	if strings.TrimSpace(closeLabel) == "" {
		closeLabel = "Close"
	}

	var b strings.Builder
	b.WriteString(`<div class="overlay overlay--`)
	b.WriteString(html.EscapeString(string(o.Kind)))
	b.WriteString(`" data-overlay="`)
	b.WriteString(html.EscapeString(string(o.Kind)))
	b.WriteString(`">`)
	b.WriteString(`<div class="overlay__backdrop"></div>`)
	b.WriteString(`<div id="`)
	b.WriteString(html.EscapeString(o.ID))
	b.WriteString(`" class="overlay__dialog" role="dialog" aria-modal="true"`)
	if labelledBy != "" {
		b.WriteString(` aria-labelledby="`)
		b.WriteString(html.EscapeString(labelledBy))
		b.WriteString(`"`)
	}
	b.WriteString(`>`)
	if o.Title != "" && o.TitleID != "" {
		b.WriteString(`<h2 id="`)
		b.WriteString(html.EscapeString(o.TitleID))
		b.WriteString(`" class="overlay__title">`)
		b.WriteString(html.EscapeString(o.Title))
		b.WriteString(`</h2>`)
	}
	b.WriteString(`<div class="overlay__body">`)
	b.WriteString(o.Body)
	b.WriteString(`</div>`)
	if o.CloseAction != "" {
		b.WriteString(`<button type="button" class="overlay__close" data-question-action="`)
		b.WriteString(html.EscapeString(o.CloseAction))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(closeLabel))
		b.WriteString(`</button>`)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}
