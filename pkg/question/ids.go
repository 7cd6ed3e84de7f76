package question

import (
	"strconv"
	"strings"
)

// ids holds the element ids derived from a widget path. Ids are a pure
// function of the path so repeated renders produce identical markup.
type ids struct {
	root      string
	input     string
	label     string
	err       string
	help      string
	helpTitle string
	modal     string
}

func idsFor(path string) ids {
	root := "question-" + slug(path)
	return ids{
		root:      root,
		input:     root + "-input",
		label:     root + "-label",
		err:       root + "-error",
		help:      root + "-help",
		helpTitle: root + "-help-title",
		modal:     root + "-modal",
	}
}

func (i ids) option(idx int) string {
	return i.input + "-" + strconv.Itoa(idx)
}

// slug maps a dotted widget path to an id fragment: every run of characters
// outside [A-Za-z0-9_] becomes a single '-'.
func slug(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	dash := false
	for _, r := range strings.TrimSpace(path) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}
