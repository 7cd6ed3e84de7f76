package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-question/internal/dotpath"
	"github.com/goliatone/go-question/pkg/widget"
)

// Catalog is an in-memory Translator backed by locale files laid out as
// <lang>/<section>.yml. Each file maps widget paths (or nested keys joined by
// dots) to strings.
//
// Keys may be qualified with a section, "household:size.label"; unqualified
// keys are searched in every section in name order.
type Catalog struct {
	mu       sync.RWMutex
	fallback string
	entries  map[string]map[string]map[string]string // lang -> section -> key
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithFallbackLocale sets the locale consulted when the requested one lacks
// a key.
func WithFallbackLocale(locale string) CatalogOption {
	return func(c *Catalog) {
		c.fallback = strings.TrimSpace(locale)
	}
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		fallback: "en",
		entries:  make(map[string]map[string]map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// LoadCatalogFS reads every locale file below root.
func LoadCatalogFS(fsys fs.FS, root string, opts ...CatalogOption) (*Catalog, error) {
	if fsys == nil {
		return nil, fmt.Errorf("i18n: filesystem is nil")
	}
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	catalog := NewCatalog(opts...)

	err := fs.WalkDir(fsys, root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(name))
		if ext != ".yml" && ext != ".yaml" && ext != ".json" {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(name, strings.TrimSuffix(root, "/")), "/")
		lang, file, ok := strings.Cut(rel, "/")
		if !ok || strings.Contains(file, "/") {
			return nil
		}
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}
		entries, err := parseLocaleFile(raw, ext)
		if err != nil {
			return fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		catalog.Add(lang, strings.TrimSuffix(file, path.Ext(file)), entries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Add merges entries for lang and section.
func (c *Catalog) Add(lang, section string, entries map[string]string) {
	lang = strings.TrimSpace(lang)
	section = strings.TrimSpace(section)
	if lang == "" || len(entries) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sections := c.entries[lang]
	if sections == nil {
		sections = make(map[string]map[string]string)
		c.entries[lang] = sections
	}
	target := sections[section]
	if target == nil {
		target = make(map[string]string, len(entries))
		sections[section] = target
	}
	for key, value := range entries {
		target[key] = value
	}
}

// Languages lists loaded languages, sorted.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for lang := range c.entries {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Translate implements Translator. A map in params supplies values for
// {{name}} placeholders; dotted names read nested maps.
func (c *Catalog) Translate(locale, key string, params ...any) (string, error) {
	section, entry := splitKey(key)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, lang := range c.candidates(locale) {
		if value, ok := c.lookup(lang, section, entry); ok {
			return Interpolate(value, params...), nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
}

// Localized collects the translations of key in every loaded language.
func (c *Catalog) Localized(key string) widget.Localized {
	section, entry := splitKey(key)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(widget.Localized)
	for lang := range c.entries {
		if value, ok := c.lookup(lang, section, entry); ok {
			out[lang] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *Catalog) candidates(locale string) []string {
	seen := make(map[string]struct{}, 4)
	out := make([]string, 0, 4)
	for _, candidate := range []string{locale, widget.BaseLanguage(locale), c.fallback, widget.BaseLanguage(c.fallback)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

func (c *Catalog) lookup(lang, section, key string) (string, bool) {
	sections := c.entries[lang]
	if sections == nil {
		return "", false
	}
	if section != "" {
		value, ok := sections[section][key]
		return value, ok
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if value, ok := sections[name][key]; ok {
			return value, true
		}
	}
	return "", false
}

func splitKey(key string) (section, entry string) {
	key = strings.TrimSpace(key)
	if before, after, ok := strings.Cut(key, ":"); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", key
}

// Interpolate replaces {{name}} placeholders with values from the first map
// in params. Unknown placeholders are left untouched.
func Interpolate(value string, params ...any) string {
	if !strings.Contains(value, "{{") || len(params) == 0 {
		return value
	}
	var values map[string]any
	switch typed := params[0].(type) {
	case map[string]any:
		values = typed
	case map[string]string:
		values = make(map[string]any, len(typed))
		for k, v := range typed {
			values[k] = v
		}
	default:
		return value
	}
	return InterpolateFunc(value, func(name string) (string, bool) {
		resolved, ok := dotpath.Get(values, name)
		if !ok || resolved == nil {
			return "", false
		}
		return widget.ValueString(resolved), true
	})
}

// InterpolateFunc replaces each {{name}} placeholder with resolve(name).
// Placeholders resolve cannot satisfy are kept verbatim.
func InterpolateFunc(value string, resolve func(name string) (string, bool)) string {
	if !strings.Contains(value, "{{") || resolve == nil {
		return value
	}
	var b strings.Builder
	rest := value
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start
		b.WriteString(rest[:start])
		if resolved, ok := resolve(strings.TrimSpace(rest[start+2 : end])); ok {
			b.WriteString(resolved)
		} else {
			b.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}
	return b.String()
}

func parseLocaleFile(raw []byte, ext string) (map[string]string, error) {
	var decoded map[string]any
	if ext == ".json" {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(decoded))
	flatten("", decoded, out)
	return out, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]any:
			flatten(full, typed, out)
		case nil:
			continue
		default:
			out[full] = widget.ValueString(typed)
		}
	}
}
