package survey

import (
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidSurvey is wrapped by every Error returned from the loader.
var ErrInvalidSurvey = errors.New("survey: invalid definition")

// Issue is one problem found in a survey file.
type Issue struct {
	File    string `json:"file,omitempty"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// String reads "file: field: message", falling back to the path when the
// field is unknown.
func (i Issue) String() string {
	var b strings.Builder
	if i.File != "" {
		b.WriteString(i.File)
		b.WriteString(": ")
	}
	switch {
	case i.Field != "":
		b.WriteString(i.Field)
		b.WriteString(": ")
	case i.Path != "":
		b.WriteString(i.Path)
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// Error aggregates the issues that rejected a survey.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s: %s", ErrInvalidSurvey, e.Issues[0])
	}
	return fmt.Sprintf("%s: %d issues, first: %s", ErrInvalidSurvey, len(e.Issues), e.Issues[0])
}

func (e *Error) Unwrap() error { return ErrInvalidSurvey }

// schemaIssues flattens a validation error tree into leaf issues.
func schemaIssues(file string, err error) []Issue {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{issueFromError(file, err)}
	}
	return collectIssues(file, verr)
}

func collectIssues(file string, verr *jsonschema.ValidationError) []Issue {
	if len(verr.Causes) == 0 {
		pointer := "/" + strings.Join(verr.InstanceLocation, "/")
		return []Issue{{
			File:    file,
			Path:    pointer,
			Field:   fieldPathFromPointer(pointer),
			Message: leafMessage(verr.Error()),
		}}
	}
	var out []Issue
	for _, cause := range verr.Causes {
		out = append(out, collectIssues(file, cause)...)
	}
	return out
}

// leafMessage keeps the last line of a rendered validation error and drops
// its location prefix.
func leafMessage(rendered string) string {
	lines := strings.Split(strings.TrimSpace(rendered), "\n")
	msg := strings.TrimSpace(lines[len(lines)-1])
	msg = strings.TrimPrefix(msg, "- ")
	if strings.HasPrefix(msg, "at '") {
		if idx := strings.Index(msg, "': "); idx >= 0 {
			msg = msg[idx+3:]
		}
	}
	return strings.TrimSpace(msg)
}

func issueFromError(file string, err error) Issue {
	if err == nil {
		return Issue{File: file, Message: "unknown error"}
	}
	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	msg = strings.TrimPrefix(msg, "jsonschema: ")
	return Issue{
		File:    file,
		Path:    path,
		Field:   fieldPathFromPointer(path),
		Message: strings.TrimSpace(msg),
	}
}

func extractJSONPointer(message string) string {
	if idx := strings.LastIndex(message, " at "); idx >= 0 {
		candidate := strings.TrimSpace(message[idx+4:])
		if strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, "#/") {
			return strings.TrimRight(candidate, ".)];,")
		}
	}
	return ""
}

// fieldPathFromPointer converts "/sections/household/widgets/0/path" into
// "sections.household.widgets[0].path".
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(trimmed, "/") {
		segment := strings.ReplaceAll(part, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if isNumeric(segment) {
			b.WriteString("[" + segment + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
