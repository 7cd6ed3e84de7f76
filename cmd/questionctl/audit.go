package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-question/pkg/a11y"
)

func newAuditCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit [file.html...]",
		Short: "Audit HTML files, or every rendered section, for accessibility defects",
		RunE: func(cmd *cobra.Command, args []string) error {
			pages := map[string][]byte{}
			var order []string
			if len(args) > 0 {
				for _, path := range args {
					raw, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("read %s: %w", path, err)
					}
					pages[path] = raw
					order = append(order, path)
				}
			} else {
				s, err := a.loadSurvey()
				if err != nil {
					return err
				}
				for _, name := range s.SectionNames() {
					page, err := a.renderSection(cmd.Context(), s, name, a.cfg.Render.Locale, nil, false)
					if err != nil {
						return err
					}
					pages[name] = page
					order = append(order, name)
				}
			}

			total := 0
			for _, name := range order {
				violations, err := a11y.AuditString(string(pages[name]))
				if err != nil {
					return fmt.Errorf("audit %s: %w", name, err)
				}
				for _, v := range violations {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, v)
				}
				total += len(violations)
			}
			if total > 0 {
				return fmt.Errorf("%d accessibility violation(s)", total)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d document(s) audited\n", len(order))
			return nil
		},
	}
}
