// Package dotpath reads and writes values inside nested answer maps using the
// dot-delimited paths survey widgets are bound to (e.g. "household.size" or
// "persons.0.age").
package dotpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Get resolves path inside root. Numeric segments index into []any values.
func Get(root map[string]any, path string) (any, bool) {
	if root == nil || strings.TrimSpace(path) == "" {
		return nil, false
	}
	current := any(root)
	for _, segment := range Split(path) {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set writes value at path, creating intermediate maps as needed. Slices are
// grown when a numeric segment points past their end.
func Set(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("dotpath: root map is nil")
	}
	segments := Split(path)
	if len(segments) == 0 {
		return fmt.Errorf("dotpath: path is required")
	}
	updated, err := setIn(root, segments, value)
	if err != nil {
		return fmt.Errorf("dotpath: set %q: %w", path, err)
	}
	if _, ok := updated.(map[string]any); !ok {
		return fmt.Errorf("dotpath: set %q: root replaced by %T", path, updated)
	}
	return nil
}

// Delete removes the value stored at path. Missing paths are ignored.
func Delete(root map[string]any, path string) {
	segments := Split(path)
	if root == nil || len(segments) == 0 {
		return
	}
	parent := root
	if len(segments) > 1 {
		node, ok := Get(root, strings.Join(segments[:len(segments)-1], "."))
		if !ok {
			return
		}
		parent, ok = node.(map[string]any)
		if !ok {
			return
		}
	}
	delete(parent, segments[len(segments)-1])
}

// Split breaks a dotted path into trimmed, non-empty segments.
func Split(path string) []string {
	parts := strings.Split(strings.TrimSpace(path), ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func setIn(node any, segments []string, value any) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	segment := segments[0]

	switch typed := node.(type) {
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("expected numeric segment, got %q", segment)
		}
		if idx < 0 {
			return nil, fmt.Errorf("negative index %d", idx)
		}
		if len(typed) <= idx {
			typed = append(typed, make([]any, idx+1-len(typed))...)
		}
		child, err := setIn(ensureContainer(typed[idx], segments[1:]), segments[1:], value)
		if err != nil {
			return nil, err
		}
		typed[idx] = child
		return typed, nil
	case map[string]any:
		child, err := setIn(ensureContainer(typed[segment], segments[1:]), segments[1:], value)
		if err != nil {
			return nil, err
		}
		typed[segment] = child
		return typed, nil
	default:
		return setIn(make(map[string]any), segments, value)
	}
}

func ensureContainer(existing any, rest []string) any {
	if len(rest) == 0 {
		return existing
	}
	switch existing.(type) {
	case map[string]any, []any:
		return existing
	}
	if _, err := strconv.Atoi(rest[0]); err == nil {
		return []any{}
	}
	return make(map[string]any)
}
