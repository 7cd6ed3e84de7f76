package question

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-question/pkg/i18n"
	"github.com/goliatone/go-question/pkg/overlay"
	"github.com/goliatone/go-question/pkg/question/components"
	rendertemplate "github.com/goliatone/go-question/pkg/render/template"
	"github.com/goliatone/go-question/pkg/render/template/gotemplate"
	"github.com/goliatone/go-question/pkg/richtext"
	"github.com/goliatone/go-question/pkg/widget"
)

const defaultFallbackLocale = "en"

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	text             richtext.Renderer
	mounter          overlay.Mounter
	translator       i18n.Translator
	fallbackLocale   string
	logger           *zap.Logger

	themeSelector theme.ThemeSelector
	themeName     string
	themeVariant  string
}

// WithTemplatesFS layers an alternate template bundle over the embedded
// component templates. Templates found in files win.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads override templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry replaces the default component registry.
func WithRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithRichText replaces the label and help content renderer.
func WithRichText(text richtext.Renderer) Option {
	return func(cfg *config) {
		if text != nil {
			cfg.text = text
		}
	}
}

// WithMounter replaces the overlay mounter. The default renders overlays
// inline, next to their trigger.
func WithMounter(mounter overlay.Mounter) Option {
	return func(cfg *config) {
		if mounter != nil {
			cfg.mounter = mounter
		}
	}
}

// WithTranslator resolves labelKey labels and UI strings.
func WithTranslator(translator i18n.Translator) Option {
	return func(cfg *config) {
		cfg.translator = translator
	}
}

// WithFallbackLocale sets the locale used when a label lacks the interview
// locale.
func WithFallbackLocale(locale string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			cfg.fallbackLocale = trimmed
		}
	}
}

// WithLogger sets the logger used to report configuration errors.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithThemeSelector resolves name/variant once at construction. Theme
// tokens become CSS custom properties; theme templates keyed
// "question.<inputType>" override component templates.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.themeSelector = selector
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}

// Renderer renders questions. It is safe for concurrent use; per-question UI
// state lives in the Question values returned by Mount.
type Renderer struct {
	templates      rendertemplate.TemplateRenderer
	registry       *components.Registry
	text           richtext.Renderer
	mounter        overlay.Mounter
	translator     i18n.Translator
	fallbackLocale string
	logger         *zap.Logger
	theme          *theme.RendererConfig
}

// New constructs a Renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		fallbackLocale: defaultFallbackLocale,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}
	if cfg.text == nil {
		cfg.text = richtext.NewDefault()
	}
	if cfg.mounter == nil {
		cfg.mounter = overlay.Inline{}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engineOptions := []gotemplate.Option{
			gotemplate.WithTemplateFunc(i18n.TemplateFuncs(cfg.translator, "locale", templateDefaults)),
		}
		if cfg.templateFS != nil {
			engineOptions = append(engineOptions, gotemplate.WithFS(cfg.templateFS))
		}
		engineOptions = append(engineOptions, gotemplate.WithFS(components.TemplatesFS()))

		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("question: configure template renderer: %w", err)
		}
		templates = engine
	}

	r := &Renderer{
		templates:      templates,
		registry:       cfg.registry,
		text:           cfg.text,
		mounter:        cfg.mounter,
		translator:     cfg.translator,
		fallbackLocale: cfg.fallbackLocale,
		logger:         cfg.logger,
	}

	if cfg.themeSelector != nil {
		themeCfg, err := resolveTheme(cfg.themeSelector, cfg.themeName, cfg.themeVariant)
		if err != nil {
			return nil, err
		}
		r.theme = themeCfg
	}

	return r, nil
}

// Props are the inputs of one question.
type Props struct {
	// Path identifies the answer slot. Empty means Config.Path.
	Path    string
	Section string
	// LoadingState greater than zero renders every control disabled.
	LoadingState int
	Config       widget.Config
	Status       widget.Status
	Interview    widget.Interview
	User         widget.User
	Update       widget.UpdateCallback
	// Join reduces the top spacing to group the question with the previous
	// one.
	Join bool
}

func (p Props) path() string {
	if path := strings.TrimSpace(p.Path); path != "" {
		return path
	}
	return strings.TrimSpace(p.Config.Path)
}

func (p Props) disabled() bool {
	return p.LoadingState > 0 || p.Status.IsDisabled
}

// Mount creates a question instance holding transient UI state (help popup
// and modal).
func (r *Renderer) Mount(props Props) *Question {
	return &Question{renderer: r, props: props}
}

// Render is a one-shot helper for questions without UI state.
func (r *Renderer) Render(ctx context.Context, props Props) ([]byte, error) {
	return r.Mount(props).Render(ctx)
}

// ContentType reports the MIME type of rendered output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Theme returns the resolved theme configuration or nil.
func (r *Renderer) Theme() *theme.RendererConfig {
	return r.theme
}

// Registry exposes the component registry.
func (r *Renderer) Registry() *components.Registry {
	return r.registry
}

// Assets lists the stylesheets and scripts needed by the given input types.
// A theme asset registered under StylesheetAsset replaces the default
// stylesheet.
func (r *Renderer) Assets(inputTypes []widget.InputType) (stylesheets []string, scripts []components.Script) {
	names := make([]string, 0, len(inputTypes))
	for _, inputType := range inputTypes {
		names = append(names, string(inputType))
	}
	stylesheets, scripts = r.registry.Assets(names)
	if r.theme == nil || r.theme.AssetURL == nil {
		return stylesheets, scripts
	}
	themed := r.theme.AssetURL(StylesheetAsset)
	if themed == "" {
		return stylesheets, scripts
	}
	for idx, href := range stylesheets {
		if href == components.Stylesheet {
			stylesheets[idx] = themed
		}
	}
	return stylesheets, scripts
}

func (r *Renderer) locale(interview widget.Interview) string {
	if locale := strings.TrimSpace(interview.Locale); locale != "" {
		return locale
	}
	return r.fallbackLocale
}

// templateStrings are the built-in texts of the control templates, used
// when the catalog has no entry.
var templateStrings = map[string]string{
	"question.choose": "",
	"question.noTime": "--:--",
}

func templateDefaults(_ string, key string, _ []any, _ error) string {
	if value, ok := templateStrings[key]; ok {
		return value
	}
	return key
}

func (r *Renderer) translate(locale, key, fallback string) string {
	return i18n.Translate(r.translator, locale, key, fallback, nil)
}

func (r *Renderer) reportConfigError(props Props, err error) {
	var cfgErr *widget.ConfigError
	fields := []zap.Field{
		zap.String("path", props.path()),
		zap.String("section", props.Section),
		zap.String("input_type", string(props.Config.InputType)),
		zap.Error(err),
	}
	if errors.As(err, &cfgErr) {
		fields = append(fields, zap.String("field", cfgErr.Field))
	}
	r.logger.Warn("question configuration error", fields...)
}
