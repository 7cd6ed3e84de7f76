package survey

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-question/pkg/i18n"
	"github.com/goliatone/go-question/pkg/status"
	"github.com/goliatone/go-question/pkg/widget"
)

const schemaURL = "https://go-question.dev/schemas/survey.json"

//go:embed schema/survey.schema.json
var schemaJSON []byte

// SchemaJSON returns the JSON Schema survey files are validated against.
func SchemaJSON() []byte {
	return bytes.Clone(schemaJSON)
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCatalog fills labels from a locale catalog. A widget with neither
// label nor labelKey takes the translations stored under
// "<section>:<path>".
func WithCatalog(catalog *i18n.Catalog) Option {
	return func(l *Loader) {
		l.catalog = catalog
	}
}

// WithEvaluator shares a rule evaluator so compiled programs are reused by
// the status deriver.
func WithEvaluator(evaluator *status.ExprEvaluator) Option {
	return func(l *Loader) {
		if evaluator != nil {
			l.evaluator = evaluator
		}
	}
}

// Loader reads survey files and rejects invalid definitions.
type Loader struct {
	schema    *jsonschema.Schema
	logger    *zap.Logger
	catalog   *i18n.Catalog
	evaluator *status.ExprEvaluator
}

// NewLoader compiles the survey schema.
func NewLoader(opts ...Option) (*Loader, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("survey: unmarshal schema: %w", err)
	}
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("survey: add schema resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("survey: compile schema: %w", err)
	}

	l := &Loader{
		schema:    compiled,
		logger:    zap.NewNop(),
		evaluator: status.NewExprEvaluator(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// LoadFS is a shortcut for NewLoader followed by Loader.LoadFS.
func LoadFS(fsys fs.FS, root string, opts ...Option) (*Survey, error) {
	l, err := NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	return l.LoadFS(fsys, root)
}

// LoadFS reads every .yml, .yaml and .json file below root and merges their
// sections. Any issue rejects the whole survey with an *Error.
func (l *Loader) LoadFS(fsys fs.FS, root string) (*Survey, error) {
	s, issues, err := l.LintFS(fsys, root)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, &Error{Issues: issues}
	}
	return s, nil
}

// LintFS loads like LoadFS but returns every issue instead of failing on
// them. The returned survey holds the sections that parsed.
func (l *Loader) LintFS(fsys fs.FS, root string) (*Survey, []Issue, error) {
	if fsys == nil {
		return nil, nil, fmt.Errorf("survey: filesystem is nil")
	}
	if strings.TrimSpace(root) == "" {
		root = "."
	}

	var files []string
	err := fs.WalkDir(fsys, root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && isSurveyFile(name) {
			files = append(files, name)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("survey: walk %s: %w", root, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("survey: no survey files below %s", root)
	}
	sort.Strings(files)

	s := &Survey{}
	var issues []Issue
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, nil, fmt.Errorf("survey: read %s: %w", name, err)
		}
		sections, fileIssues := l.parse(name, raw)
		issues = append(issues, fileIssues...)
		s.Sections = append(s.Sections, sections...)
	}
	sortSections(s.Sections)
	issues = append(issues, l.check(s)...)

	l.logger.Debug("survey loaded",
		zap.Int("files", len(files)),
		zap.Int("sections", len(s.Sections)),
		zap.Int("issues", len(issues)),
	)
	return s, issues, nil
}

// Load parses a single survey document. name selects the decoder by
// extension and labels issues.
func (l *Loader) Load(name string, raw []byte) (*Survey, error) {
	sections, issues := l.parse(name, raw)
	s := &Survey{Sections: sections}
	sortSections(s.Sections)
	issues = append(issues, l.check(s)...)
	if len(issues) > 0 {
		return nil, &Error{Issues: issues}
	}
	return s, nil
}

type document struct {
	Sections map[string]Section `json:"sections"`
}

func (l *Loader) parse(name string, raw []byte) ([]Section, []Issue) {
	data, err := toJSON(name, raw)
	if err != nil {
		return nil, []Issue{{File: name, Message: err.Error()}}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, []Issue{{File: name, Message: err.Error()}}
	}
	if err := l.schema.Validate(instance); err != nil {
		return nil, schemaIssues(name, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, []Issue{{File: name, Message: err.Error()}}
	}

	sections := make([]Section, 0, len(doc.Sections))
	for sectionName, section := range doc.Sections {
		section.Name = sectionName
		section.File = name
		for idx := range section.Widgets {
			l.fillLabel(sectionName, &section.Widgets[idx])
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func (l *Loader) fillLabel(section string, cfg *widget.Config) {
	if l.catalog == nil || !cfg.Label.IsZero() || strings.TrimSpace(cfg.LabelKey) != "" {
		return
	}
	if label := l.catalog.Localized(section + ":" + cfg.Path); label != nil {
		cfg.Label = label
	}
}

// check runs the rules a schema cannot express: every widget resolves to a
// variant, paths are unique, sections are unique and rules compile.
func (l *Loader) check(s *Survey) []Issue {
	var issues []Issue
	sectionFiles := make(map[string]string)
	paths := make(map[string]string)

	for _, section := range s.Sections {
		if first, dup := sectionFiles[section.Name]; dup {
			issues = append(issues, Issue{
				File:    section.File,
				Field:   "sections." + section.Name,
				Message: fmt.Sprintf("section %q is already defined in %s", section.Name, first),
			})
			continue
		}
		sectionFiles[section.Name] = section.File

		for idx, cfg := range section.Widgets {
			field := fmt.Sprintf("sections.%s.widgets[%d]", section.Name, idx)
			if _, err := widget.ResolveVariant(cfg); err != nil {
				issue := Issue{File: section.File, Path: cfg.Path, Field: field, Message: err.Error()}
				var cfgErr *widget.ConfigError
				if errors.As(err, &cfgErr) && cfgErr.Field != "" {
					issue.Field = field + "." + cfgErr.Field
				}
				issues = append(issues, issue)
			}
			if other, dup := paths[cfg.Path]; dup {
				issues = append(issues, Issue{
					File:    section.File,
					Path:    cfg.Path,
					Field:   field + ".path",
					Message: fmt.Sprintf("path is already bound in section %q", other),
				})
			} else {
				paths[cfg.Path] = section.Name
			}
			for _, err := range status.Lint(l.evaluator, cfg) {
				issues = append(issues, Issue{File: section.File, Path: cfg.Path, Field: field, Message: err.Error()})
			}
		}
	}
	return issues
}

func isSurveyFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yml", ".yaml", ".json":
		return true
	}
	return false
}

// toJSON normalises YAML input to JSON so both formats go through the same
// schema and decoder.
func toJSON(name string, raw []byte) ([]byte, error) {
	if strings.EqualFold(path.Ext(name), ".json") {
		return raw, nil
	}
	var decoded any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	data, err := json.Marshal(decoded)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return data, nil
}
