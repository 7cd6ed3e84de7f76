package richtext

import "strings"

// notation pairs a delimiter with the tags that replace alternating
// occurrences of it.
type notation struct {
	delimiter string
	open      string
	close     string
}

var labelNotations = []notation{
	{delimiter: "**", open: "<strong>", close: "</strong>"},
	{delimiter: "__", open: `<span class="_pale _oblique">`, close: "</span>"},
	{delimiter: "_green_", open: `<span class="_green">`, close: "</span>"},
	{delimiter: "_red_", open: `<span class="_red">`, close: "</span>"},
}

// NicknamePlaceholder is the interpolation token that replaces "[nom]" in
// authored labels.
const NicknamePlaceholder = "{{nickname}}"

// ExpandNickname replaces "[nom]" with NicknamePlaceholder. Plain labels get
// this substitution too; the rest of the notation needs containsHtml.
func ExpandNickname(raw string) string {
	return strings.ReplaceAll(raw, "[nom]", NicknamePlaceholder)
}

// ApplyNotation converts the lightweight label notation used by survey
// authors into markup: newlines become <br />, paired "**" bold, paired "__"
// oblique, paired "_green_"/"_red_" coloured spans, and "[nom]" the nickname
// placeholder. A delimiter with an odd number of occurrences is left as is.
func ApplyNotation(raw string) string {
	out := ExpandNickname(raw)
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\n", "<br />")
	for _, n := range labelNotations {
		out = n.apply(out)
	}
	return out
}

func (n notation) apply(s string) string {
	count := strings.Count(s, n.delimiter)
	if count == 0 || count%2 != 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + count*len(n.open))
	opening := true
	for {
		idx := strings.Index(s, n.delimiter)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		if opening {
			b.WriteString(n.open)
		} else {
			b.WriteString(n.close)
		}
		opening = !opening
		s = s[idx+len(n.delimiter):]
	}
}
