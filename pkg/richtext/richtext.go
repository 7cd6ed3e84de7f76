// Package richtext turns survey labels and help content into safe markup.
//
// Labels flagged containsHtml are restricted to a narrow inline subset
// (emphasis, line breaks, links and styled spans). Help content may use a
// broader user-generated-content policy and can be authored in Markdown.
package richtext

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Renderer converts raw author strings into HTML fragments. Implementations
// must return markup that is safe to embed without further escaping.
type Renderer interface {
	Label(raw string, containsHTML bool) string
	Content(raw string, markdown bool) string
}

// Default is the bluemonday backed Renderer.
type Default struct{}

// NewDefault returns the standard renderer.
func NewDefault() Default { return Default{} }

// Label escapes plain labels and sanitizes rich ones.
func (Default) Label(raw string, containsHTML bool) string {
	if !containsHTML {
		return html.EscapeString(raw)
	}
	return SanitizeLabel(ApplyNotation(raw))
}

// Content renders help popup bodies.
func (Default) Content(raw string, markdown bool) string {
	if markdown {
		return Markdown(raw)
	}
	return SanitizeContent(raw)
}

var (
	labelPolicyOnce   sync.Once
	labelPolicy       *bluemonday.Policy
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// SanitizeLabel keeps the inline label subset and drops everything else.
func SanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(labelSanitizer().Sanitize(trimmed))
}

// SanitizeContent applies the user generated content policy.
func SanitizeContent(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(contentSanitizer().Sanitize(trimmed))
}

// Plain strips all markup and returns unescaped text, suitable for
// terminals and attribute values.
func Plain(raw string) string {
	stripped := bluemonday.StrictPolicy().Sanitize(strings.ReplaceAll(raw, "<br />", "\n"))
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// Markdown renders help content written in Markdown and sanitizes the
// result.
func Markdown(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	rendered := markdown.ToHTML([]byte(trimmed), p, r)
	return SanitizeContent(string(rendered))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("em", "strong", "b", "i", "br", "p")
		policy.AllowAttrs("class").Matching(classPattern).OnElements("span")
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(false)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		labelPolicy = policy
	})
	return labelPolicy
}

func contentSanitizer() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Matching(classPattern).OnElements("span", "p", "div")
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		contentPolicy = policy
	})
	return contentPolicy
}

var classPattern = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)
