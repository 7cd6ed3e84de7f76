package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLintCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Validate survey files against the schema and widget rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := a.surveyLoader()
			if err != nil {
				return err
			}
			s, issues, err := loader.LintFS(os.DirFS(a.cfg.Survey.Dir), ".")
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Fprintln(cmd.ErrOrStderr(), issue.String())
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d issue(s) in %s", len(issues), a.cfg.Survey.Dir)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d section(s), %d question(s)\n", len(s.Sections), len(s.Widgets()))
			return nil
		},
	}
}
