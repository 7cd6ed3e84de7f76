package widget

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownInputType reports an inputType outside the supported set.
	ErrUnknownInputType = errors.New("widget: unknown input type")
	// ErrMissingField reports a required configuration field that is absent.
	ErrMissingField = errors.New("widget: missing required field")
	// ErrInvalidConfig reports a field whose value cannot be interpreted.
	ErrInvalidConfig = errors.New("widget: invalid configuration")
	// ErrInvalidValue reports a submitted answer the variant cannot decode.
	ErrInvalidValue = errors.New("widget: invalid value")
)

// ConfigError describes a configuration defect for a single widget.
type ConfigError struct {
	Path   string
	Field  string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Field != "" {
		fmt.Fprintf(&b, " %q", e.Field)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (widget %q)", e.Path)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func missing(path, field string) *ConfigError {
	return &ConfigError{Path: path, Field: field, Err: ErrMissingField}
}

func invalid(path, field, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Field: field, Err: ErrInvalidConfig, Detail: fmt.Sprintf(format, args...)}
}

func invalidValue(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}
