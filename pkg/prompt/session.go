package prompt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-question/pkg/interview"
	"github.com/goliatone/go-question/pkg/question"
	"github.com/goliatone/go-question/pkg/status"
	"github.com/goliatone/go-question/pkg/survey"
	"github.com/goliatone/go-question/pkg/widget"
)

// AskSection prompts every visible question of section in order. Statuses
// are derived again before each question so conditionals react to the
// answers given so far.
func (p *Prompter) AskSection(ctx context.Context, renderer *question.Renderer, deriver *status.Deriver, section survey.Section, in *interview.Interview, user widget.User) error {
	if renderer == nil || deriver == nil || in == nil {
		return fmt.Errorf("prompt: renderer, deriver and interview are required")
	}
	update := in.Updater(p.logger)

	for _, cfg := range section.Widgets {
		if err := p.askUntilValid(ctx, renderer, deriver, section.Name, cfg, in, user, update); err != nil {
			return fmt.Errorf("prompt: %s: %w", cfg.Path, err)
		}
	}
	return nil
}

// askUntilValid repeats a question while its validations fail.
func (p *Prompter) askUntilValid(ctx context.Context, renderer *question.Renderer, deriver *status.Deriver, sectionName string, cfg widget.Config, in *interview.Interview, user widget.User, update widget.UpdateCallback) error {
	for {
		snapshot := in.Snapshot()
		st, err := deriver.Derive(cfg, snapshot, user, in.UpdateKey())
		if err != nil {
			p.logger.Warn("status derivation failed", zap.String("path", cfg.Path), zap.Error(err))
		}
		if !st.IsVisible {
			return nil
		}
		q := renderer.Mount(question.Props{
			Section:   sectionName,
			Config:    cfg,
			Status:    st,
			Interview: snapshot,
			User:      user,
			Update:    update,
		})
		if err := p.Ask(ctx, q); err != nil {
			return err
		}
		if st.IsDisabled {
			return nil
		}

		st, _ = deriver.Derive(cfg, in.Snapshot(), user, in.UpdateKey())
		if !st.ShowError() {
			return nil
		}
		if err := p.driver.Info(ctx, p.theme.ErrorPrefix+st.ErrorMessage); err != nil {
			return err
		}
	}
}
