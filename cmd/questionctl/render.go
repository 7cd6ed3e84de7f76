package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-question/pkg/interview"
	"github.com/goliatone/go-question/pkg/overlay"
	"github.com/goliatone/go-question/pkg/section"
	"github.com/goliatone/go-question/pkg/status"
	"github.com/goliatone/go-question/pkg/survey"
	"github.com/goliatone/go-question/pkg/widget"
)

type renderOptions struct {
	answers  string
	locale   string
	output   string
	fragment bool
}

func newRenderCommand(a *app) *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <section>",
		Short: "Render a survey section to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSurvey()
			if err != nil {
				return err
			}
			answers, err := readAnswers(opts.answers)
			if err != nil {
				return err
			}
			locale := opts.locale
			if locale == "" {
				locale = a.cfg.Render.Locale
			}
			out, renderErr := a.renderSection(cmd.Context(), s, args[0], locale, answers, opts.fragment)
			if len(out) == 0 {
				return renderErr
			}
			if opts.output == "" {
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return err
				}
				return renderErr
			}
			if err := os.WriteFile(opts.output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "section %s written to %s\n", args[0], opts.output)
			return renderErr
		},
	}
	cmd.Flags().StringVar(&opts.answers, "answers", "", "YAML file with responses keyed by path")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "interview locale (overrides render.locale)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.fragment, "fragment", false, "render the section body only")
	return cmd
}

// renderSection renders one section for a throwaway interview seeded with
// answers. Configuration errors are returned after the markup is produced
// so the diagnostics stay visible.
func (a *app) renderSection(ctx context.Context, s *survey.Survey, name, locale string, answers map[string]any, fragment bool) ([]byte, error) {
	sec, ok := s.Section(name)
	if !ok {
		return nil, fmt.Errorf("section %q not found (have %v)", name, s.SectionNames())
	}

	var portal *overlay.Portal
	var sectionOpts []section.Option
	if a.cfg.Render.Portal {
		portal = overlay.NewPortal()
		sectionOpts = append(sectionOpts, section.WithPortal(portal))
	}
	var mounter overlay.Mounter
	if portal != nil {
		mounter = portal
	}
	renderer, err := a.newRenderer(mounter)
	if err != nil {
		return nil, err
	}
	sectionOpts = append(sectionOpts, section.WithLogger(a.logger), section.WithAssetPrefix(a.cfg.Server.AssetPrefix))
	composer, err := section.New(renderer, a.newDeriver(), sectionOpts...)
	if err != nil {
		return nil, err
	}

	in := interview.New("render", locale)
	for path, value := range answers {
		if err := in.SetAnswer(path, value); err != nil {
			return nil, fmt.Errorf("answer %s: %w", path, err)
		}
	}
	req := section.Request{
		Section:   sec,
		Interview: in.Snapshot(),
		User:      widget.User{ID: "render", Username: "render", Permissions: []string{status.PermissionEdit}},
		UpdateKey: in.UpdateKey(),
	}
	if fragment {
		body, err := composer.Fragment(ctx, req)
		return []byte(body), configError(err)
	}
	page, err := composer.Page(ctx, req)
	return page, configError(err)
}

func configError(err error) error {
	var cfgErr *widget.ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("survey configuration: %w", err)
	}
	return err
}

func readAnswers(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	answers := map[string]any{}
	if err := yaml.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return answers, nil
}
