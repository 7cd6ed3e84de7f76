package widget

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueStrings flattens an answer into the string form used by form
// controls. Nil and blank values yield nil.
func ValueStrings(value any) []string {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		return []string{typed}
	case []string:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, ValueStrings(item)...)
		}
		return out
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, ValueStrings(item)...)
		}
		return out
	default:
		if s, ok := formatScalar(typed); ok {
			return []string{s}
		}
		return []string{fmt.Sprint(typed)}
	}
}

// ValueString returns the first entry of ValueStrings or "".
func ValueString(value any) string {
	values := ValueStrings(value)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// AsInt reads numeric answers, including numeric strings and whole floats
// produced by JSON decoding.
func AsInt(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int32:
		return int(typed), true
	case int64:
		return int(typed), true
	case float32:
		return wholeFloat(float64(typed))
	case float64:
		return wholeFloat(typed)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		return n, err == nil
	default:
		return 0, false
	}
}

func wholeFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func formatScalar(value any) (string, bool) {
	switch typed := value.(type) {
	case int:
		return strconv.Itoa(typed), true
	case int32:
		return strconv.FormatInt(int64(typed), 10), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}
