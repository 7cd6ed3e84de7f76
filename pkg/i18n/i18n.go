// Package i18n resolves question labels and UI strings from per-language
// catalogs.
package i18n

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrMissingTranslation reports a key absent from every candidate locale.
	ErrMissingTranslation = errors.New("i18n: missing translation")
	// ErrMissingTranslator is passed to MissingTranslationHandler when no
	// translator is configured.
	ErrMissingTranslator = errors.New("i18n: translator not configured")
)

// Translator resolves key for locale. Implementations may interpolate params.
type Translator interface {
	Translate(locale, key string, params ...any) (string, error)
}

// MissingTranslationHandler decides what to render when a key cannot be
// resolved.
type MissingTranslationHandler func(locale, key string, params []any, err error) string

// Translate resolves key through t, falling back to fallback (or the key
// itself) when the translation is missing or t is nil.
func Translate(t Translator, locale, key, fallback string, onMissing MissingTranslationHandler, params ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	if onMissing == nil {
		onMissing = fallbackHandler(fallback)
	}
	if t == nil {
		return onMissing(locale, key, params, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key, params...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if err == nil {
		err = fmt.Errorf("%w: %s", ErrMissingTranslation, key)
	}
	return onMissing(locale, key, params, err)
}

func fallbackHandler(fallback string) MissingTranslationHandler {
	return func(_ string, key string, _ []any, _ error) string {
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}
}

// TemplateFuncs returns helpers for template engines:
//
//	translate(localeSrc, key, ...params) string
//	current_locale(localeSrc) string
//
// localeSrc may be a locale string or a map/struct holding it under
// localeKey.
func TemplateFuncs(t Translator, localeKey string, onMissing MissingTranslationHandler) map[string]any {
	if strings.TrimSpace(localeKey) == "" {
		localeKey = "locale"
	}
	if onMissing == nil {
		onMissing = func(_ string, key string, _ []any, _ error) string { return key }
	}
	return map[string]any{
		"translate": func(localeSrc any, key string, params ...any) string {
			locale := resolveLocale(localeSrc, localeKey)
			return Translate(t, locale, key, "", onMissing, params...)
		},
		"current_locale": func(localeSrc any) string {
			return resolveLocale(localeSrc, localeKey)
		},
	}
}

func resolveLocale(src any, key string) string {
	switch data := src.(type) {
	case nil:
		return ""
	case string:
		return data
	case map[string]any:
		if value, ok := data[key].(string); ok {
			return value
		}
		return ""
	case map[string]string:
		return data[key]
	}

	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ""
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if strings.EqualFold(field.Name, key) || name == key {
			if value := rv.Field(i); value.Kind() == reflect.String {
				return value.String()
			}
		}
	}
	return ""
}
