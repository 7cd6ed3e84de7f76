package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-question/pkg/interview"
	"github.com/goliatone/go-question/pkg/prompt"
	"github.com/goliatone/go-question/pkg/status"
	"github.com/goliatone/go-question/pkg/widget"
)

func newPromptCommand(a *app) *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "prompt [section...]",
		Short: "Answer survey sections in the terminal and print the responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSurvey()
			if err != nil {
				return err
			}
			renderer, err := a.newRenderer(nil)
			if err != nil {
				return err
			}
			if locale == "" {
				locale = a.cfg.Render.Locale
			}
			names := args
			if len(names) == 0 {
				names = s.SectionNames()
			}

			p := prompt.New(
				prompt.WithOutput(cmd.ErrOrStderr()),
				prompt.WithMarkdownStyle(a.cfg.Prompt.MarkdownStyle),
				prompt.WithWordWrap(a.cfg.Prompt.WordWrap),
				prompt.WithLogger(a.logger),
			)
			in := interview.New(uuid.NewString(), locale)
			user := widget.User{ID: "terminal", Username: "terminal", Permissions: []string{status.PermissionEdit}}
			deriver := a.newDeriver()
			for _, name := range names {
				sec, ok := s.Section(name)
				if !ok {
					return fmt.Errorf("section %q not found (have %v)", name, s.SectionNames())
				}
				a.logger.Debug("prompting section", zap.String("section", name), zap.String("interview", in.ID()))
				if err := p.AskSection(cmd.Context(), renderer, deriver, sec, in, user); err != nil {
					return err
				}
			}

			out, err := yaml.Marshal(in.Snapshot().Responses)
			if err != nil {
				return fmt.Errorf("encode responses: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "interview locale (overrides render.locale)")
	return cmd
}
