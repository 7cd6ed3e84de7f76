// Package section composes the questions of one survey section into an HTML
// page or fragment: statuses are derived, every visible question is rendered
// through its mounted instance and page assets are collected.
package section

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-question/pkg/overlay"
	"github.com/goliatone/go-question/pkg/question"
	rendertemplate "github.com/goliatone/go-question/pkg/render/template"
	"github.com/goliatone/go-question/pkg/render/template/gotemplate"
	"github.com/goliatone/go-question/pkg/status"
	"github.com/goliatone/go-question/pkg/survey"
	"github.com/goliatone/go-question/pkg/widget"
)

// Option configures a Composer.
type Option func(*config)

type config struct {
	templateFS  fs.FS
	templates   rendertemplate.TemplateRenderer
	portal      *overlay.Portal
	logger      *zap.Logger
	assetPrefix string
}

// WithTemplatesFS overrides the page template with one loaded from files.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplateRenderer replaces the page template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		cfg.templates = renderer
	}
}

// WithPortal flushes overlays collected by portal at the end of the section
// body. The question renderer must be built with the same portal.
func WithPortal(portal *overlay.Portal) Option {
	return func(cfg *config) {
		cfg.portal = portal
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithAssetPrefix sets the URL prefix of the bundled script. The default is
// "/assets".
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// Composer renders sections.
type Composer struct {
	renderer    *question.Renderer
	deriver     *status.Deriver
	templates   rendertemplate.TemplateRenderer
	portal      *overlay.Portal
	logger      *zap.Logger
	assetPrefix string
}

// New constructs a Composer.
func New(renderer *question.Renderer, deriver *status.Deriver, options ...Option) (*Composer, error) {
	if renderer == nil {
		return nil, errors.New("section: question renderer is required")
	}
	if deriver == nil {
		deriver = status.NewDeriver()
	}
	cfg := config{logger: zap.NewNop(), assetPrefix: "/assets"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templates
	if templates == nil {
		engineOpts := []gotemplate.Option{}
		if cfg.templateFS != nil {
			engineOpts = append(engineOpts, gotemplate.WithFS(cfg.templateFS))
		}
		engineOpts = append(engineOpts, gotemplate.WithFS(TemplatesFS()))
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("section: configure templates: %w", err)
		}
		templates = engine
	}

	return &Composer{
		renderer:    renderer,
		deriver:     deriver,
		templates:   templates,
		portal:      cfg.portal,
		logger:      cfg.logger,
		assetPrefix: cfg.assetPrefix,
	}, nil
}

// Request describes one render of a section.
type Request struct {
	Section      survey.Section
	Interview    widget.Interview
	User         widget.User
	UpdateKey    int
	Update       widget.UpdateCallback
	LoadingState int
	// Instances keeps question state across requests. A nil value mounts
	// fresh questions.
	Instances *Instances
	// Base is the interview URL questions post to, e.g. "/interviews/42".
	Base string
}

// Fragment renders the section body: every question followed by overlays
// held in the portal. Configuration errors keep their diagnostic markup in
// the fragment and are returned joined.
func (c *Composer) Fragment(ctx context.Context, req Request) (string, error) {
	if ctx == nil {
		return "", errors.New("section: context is required")
	}
	var b strings.Builder
	var errs []error
	for _, cfg := range req.Section.Widgets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		q := c.Mount(req, cfg)
		out, err := q.Render(ctx)
		if err != nil {
			var cfgErr *widget.ConfigError
			if !errors.As(err, &cfgErr) {
				return "", err
			}
			errs = append(errs, err)
		}
		b.Write(out)
	}
	if c.portal != nil {
		b.WriteString(c.portal.Flush())
	}
	return b.String(), errors.Join(errs...)
}

// Mount derives the status of cfg and mounts its question in req.Instances,
// updating the props of an existing instance.
func (c *Composer) Mount(req Request, cfg widget.Config) *question.Question {
	st, err := c.deriver.Derive(cfg, req.Interview, req.User, req.UpdateKey)
	if err != nil {
		c.logger.Warn("status derivation failed",
			zap.String("section", req.Section.Name),
			zap.String("path", cfg.Path),
			zap.Error(err),
		)
	}
	props := question.Props{
		Section:      req.Section.Name,
		LoadingState: req.LoadingState,
		Config:       cfg,
		Status:       st,
		Interview:    req.Interview,
		User:         req.User,
		Update:       req.Update,
	}
	if req.Instances == nil {
		return c.renderer.Mount(props)
	}
	return req.Instances.Mount(c.renderer, props)
}

// Page renders a complete HTML document for the section.
func (c *Composer) Page(ctx context.Context, req Request) ([]byte, error) {
	body, fragmentErr := c.Fragment(ctx, req)
	if body == "" && fragmentErr != nil {
		return nil, fragmentErr
	}

	locale := req.Interview.Locale
	if locale == "" {
		locale = "en"
	}
	title := req.Section.Title.Resolve(locale, "en")
	if title == "" {
		title = req.Section.Name
	}

	stylesheets, scripts := c.renderer.Assets(req.Section.InputTypes())
	scriptData := make([]map[string]any, 0, len(scripts)+1)
	for _, script := range scripts {
		scriptData = append(scriptData, map[string]any{
			"src":    script.Src,
			"inline": script.Inline,
			"defer":  script.Defer,
			"module": script.Module,
		})
	}
	scriptData = append(scriptData, map[string]any{
		"src":   c.assetPrefix + "/" + question.ScriptName,
		"defer": true,
	})

	var themeStyle string
	if cfg := c.renderer.Theme(); cfg != nil {
		themeStyle = question.CSSVarsStyle(cfg.CSSVars)
	}

	out, err := c.templates.RenderTemplate(PageTemplate, map[string]any{
		"page": map[string]any{
			"lang":        locale,
			"title":       title,
			"section":     req.Section.Name,
			"base":        req.Base,
			"stylesheets": stylesheets,
			"scripts":     scriptData,
			"themeStyle":  themeStyle,
			"body":        body,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("section: render page %q: %w", req.Section.Name, err)
	}
	return []byte(out), fragmentErr
}
