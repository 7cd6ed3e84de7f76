package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-question/internal/config"
	"github.com/goliatone/go-question/pkg/i18n"
	"github.com/goliatone/go-question/pkg/overlay"
	"github.com/goliatone/go-question/pkg/question"
	"github.com/goliatone/go-question/pkg/status"
	"github.com/goliatone/go-question/pkg/survey"
)

// app carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	configPath string
	envFiles   []string
	surveyDir  string
	verbose    bool

	cfg     config.Config
	logger  *zap.Logger
	catalog *i18n.Catalog
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "questionctl",
		Short:         "Render, serve and check question surveys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./questionctl.yaml when present)")
	flags.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")
	flags.StringVar(&a.surveyDir, "survey", "", "survey directory (overrides survey.dir)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRenderCommand(a),
		newServeCommand(a),
		newPromptCommand(a),
		newLintCommand(a),
		newAuditCommand(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath, a.envFiles...)
	if err != nil {
		return err
	}
	if a.surveyDir != "" {
		cfg.Survey.Dir = a.surveyDir
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Log, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func newLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func (a *app) loadSurvey() (*survey.Survey, error) {
	loader, err := a.surveyLoader()
	if err != nil {
		return nil, err
	}
	return loader.LoadFS(os.DirFS(a.cfg.Survey.Dir), ".")
}

func (a *app) surveyLoader() (*survey.Loader, error) {
	opts := []survey.Option{survey.WithLogger(a.logger)}
	if dir := strings.TrimSpace(a.cfg.Survey.Locales); dir != "" {
		catalog, err := i18n.LoadCatalogFS(os.DirFS(dir), ".", i18n.WithFallbackLocale(a.cfg.Render.FallbackLocale))
		if err != nil {
			return nil, err
		}
		a.catalog = catalog
		opts = append(opts, survey.WithCatalog(catalog))
	}
	return survey.NewLoader(opts...)
}

// newRenderer builds the question renderer. A nil mounter renders overlays
// inline.
func (a *app) newRenderer(mounter overlay.Mounter) (*question.Renderer, error) {
	opts := []question.Option{
		question.WithLogger(a.logger),
		question.WithFallbackLocale(a.cfg.Render.FallbackLocale),
		question.WithTemplatesDir(a.cfg.Render.TemplatesDir),
	}
	if a.catalog != nil {
		opts = append(opts, question.WithTranslator(a.catalog))
	}
	if mounter != nil {
		opts = append(opts, question.WithMounter(mounter))
	}
	if path := strings.TrimSpace(a.cfg.Render.Theme); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read theme: %w", err)
		}
		manifest, err := question.ParseThemeManifest(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, question.WithThemeSelector(question.StaticSelector{Manifest: manifest}, manifest.Name, a.cfg.Render.ThemeVariant))
	}
	return question.New(opts...)
}

func (a *app) newDeriver() *status.Deriver {
	opts := []status.Option{
		status.WithLogger(a.logger),
		status.WithFallbackLocale(a.cfg.Render.FallbackLocale),
	}
	if a.catalog != nil {
		opts = append(opts, status.WithTranslator(a.catalog))
	}
	return status.NewDeriver(opts...)
}
