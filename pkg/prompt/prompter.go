// Package prompt asks survey questions in a terminal. It drives the same
// mounted questions as the HTML renderer: answers flow through
// Question.Change and help content is only produced when the respondent asks
// for it.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/goliatone/go-question/pkg/question"
	"github.com/goliatone/go-question/pkg/richtext"
	"github.com/goliatone/go-question/pkg/widget"
)

// helpAnswer typed into a free text prompt opens the help popup.
const helpAnswer = "?"

// Prompter asks questions one at a time.
type Prompter struct {
	driver        Driver
	out           io.Writer
	logger        *zap.Logger
	theme         Theme
	markdownStyle string
	wordWrap      int
}

// New constructs a Prompter using the survey driver on stdio by default.
func New(options ...Option) *Prompter {
	p := &Prompter{
		logger:        zap.NewNop(),
		markdownStyle: "auto",
		wordWrap:      80,
		theme:         Theme{ErrorPrefix: "✗ ", HelpPrefix: "? "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if p.driver == nil {
		p.driver = NewSurveyDriver(p.output())
	}
	return p
}

// Ask prompts until the respondent gives an answer the question accepts and
// stores it through the question's update callback. Disabled questions are
// shown read-only and skipped.
func (p *Prompter) Ask(ctx context.Context, q *question.Question) error {
	if ctx == nil {
		return errors.New("prompt: context is required")
	}
	plain, err := q.Plain()
	if err != nil {
		return err
	}
	if plain.Disabled {
		return p.driver.Info(ctx, p.theme.InfoPrefix+plain.Label+" "+widget.ValueString(plain.Value))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, wantsHelp, err := p.ask(ctx, q, plain)
		if err != nil {
			return err
		}
		if wantsHelp {
			if err := p.showHelp(ctx, q, plain); err != nil {
				return err
			}
			continue
		}
		err = q.Change(ctx, raw)
		if errors.Is(err, widget.ErrInvalidValue) {
			p.logger.Debug("answer rejected", zap.String("path", q.Props().Path), zap.Error(err))
			if infoErr := p.driver.Info(ctx, p.theme.ErrorPrefix+invalidMessage(err)); infoErr != nil {
				return infoErr
			}
			continue
		}
		return err
	}
}

func (p *Prompter) ask(ctx context.Context, q *question.Question, plain question.Plain) ([]string, bool, error) {
	switch v := plain.Variant.(type) {
	case widget.Select:
		return p.askChoice(ctx, q, plain, v.Choices)
	case widget.Radio:
		return p.askChoice(ctx, q, plain, v.Choices)
	case widget.ButtonGroup:
		return p.askChoice(ctx, q, plain, v.Choices)
	case widget.Checkbox:
		return p.askChoices(ctx, q, plain, v.Choices)
	case widget.Multiselect:
		if v.Multiple {
			return p.askChoices(ctx, q, plain, v.Choices)
		}
		return p.askChoice(ctx, q, plain, v.Choices)
	case widget.RadioNumber:
		return p.askNumber(ctx, plain, v)
	case widget.Time:
		return p.askTime(ctx, plain, v)
	case widget.DatePicker:
		hint := widget.DateLayout
		if !v.MinDate.IsZero() && !v.MaxDate.IsZero() {
			hint = v.MinDate.Format(widget.DateLayout) + ".." + v.MaxDate.Format(widget.DateLayout)
		}
		return p.askLine(ctx, plain, hint)
	case widget.Slider:
		return p.askLine(ctx, plain, formatFloat(v.Min)+".."+formatFloat(v.Max))
	case widget.Text:
		answer, err := p.driver.TextArea(ctx, TextAreaConfig{
			Message: plain.Label,
			Default: widget.ValueString(plain.Value),
		})
		if err != nil {
			return nil, false, err
		}
		if plain.HasHelp && strings.TrimSpace(answer) == helpAnswer {
			return nil, true, nil
		}
		return []string{answer}, false, nil
	case widget.String:
		return p.askLine(ctx, plain, "")
	default:
		return nil, false, fmt.Errorf("prompt: unsupported input type %s", plain.Variant.InputType())
	}
}

func (p *Prompter) askLine(ctx context.Context, plain question.Plain, hint string) ([]string, bool, error) {
	message := plain.Label
	if hint != "" {
		message += " (" + hint + ")"
	}
	var help string
	if plain.HasHelp {
		help = fmt.Sprintf("Type %s for %s", helpAnswer, plain.HelpTitle)
	}
	answer, err := p.driver.Input(ctx, InputConfig{
		Message: message,
		Default: widget.ValueString(plain.Value),
		Help:    help,
	})
	if err != nil {
		return nil, false, err
	}
	if plain.HasHelp && strings.TrimSpace(answer) == helpAnswer {
		return nil, true, nil
	}
	return []string{answer}, false, nil
}

// choiceList builds the option labels, appending a help entry when the
// question has a popup. It returns the index of that entry or -1.
func (p *Prompter) choiceList(q *question.Question, plain question.Plain, choices []widget.Choice) ([]string, int) {
	options := make([]string, 0, len(choices)+1)
	for _, choice := range choices {
		options = append(options, q.ChoiceLabel(choice))
	}
	helpIdx := -1
	if plain.HasHelp {
		helpIdx = len(options)
		options = append(options, p.theme.HelpPrefix+plain.HelpTitle)
	}
	return options, helpIdx
}

func (p *Prompter) askChoice(ctx context.Context, q *question.Question, plain question.Plain, choices []widget.Choice) ([]string, bool, error) {
	if len(choices) == 0 {
		return nil, false, ErrNoOptions
	}
	options, helpIdx := p.choiceList(q, plain, choices)
	current := widget.ValueString(plain.Value)
	idx, err := p.driver.Select(ctx, SelectConfig{
		Message:      plain.Label,
		Options:      options,
		DefaultIndex: slices.IndexFunc(choices, func(c widget.Choice) bool { return c.Value == current }),
	})
	if err != nil {
		return nil, false, err
	}
	if idx == helpIdx {
		return nil, true, nil
	}
	if idx < 0 || idx >= len(choices) {
		return nil, false, fmt.Errorf("prompt: choice index %d out of range", idx)
	}
	return []string{choices[idx].Value}, false, nil
}

func (p *Prompter) askChoices(ctx context.Context, q *question.Question, plain question.Plain, choices []widget.Choice) ([]string, bool, error) {
	if len(choices) == 0 {
		return nil, false, ErrNoOptions
	}
	options, helpIdx := p.choiceList(q, plain, choices)
	current := widget.ValueStrings(plain.Value)
	var defaults []int
	for idx, choice := range choices {
		if slices.Contains(current, choice.Value) {
			defaults = append(defaults, idx)
		}
	}
	picked, err := p.driver.MultiSelect(ctx, SelectConfig{
		Message:  plain.Label,
		Options:  options,
		Defaults: defaults,
	})
	if err != nil {
		return nil, false, err
	}
	if helpIdx >= 0 && slices.Contains(picked, helpIdx) {
		return nil, true, nil
	}
	raw := make([]string, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(choices) {
			raw = append(raw, choices[idx].Value)
		}
	}
	return raw, false, nil
}

func (p *Prompter) askNumber(ctx context.Context, plain question.Plain, v widget.RadioNumber) ([]string, bool, error) {
	options := make([]string, 0, v.Max-v.Min+3)
	for i := 0; i <= v.Max-v.Min; i++ {
		options = append(options, strconv.Itoa(v.Min+i))
	}
	overIdx := -1
	if v.OverMaxAllowed {
		overIdx = len(options)
		options = append(options, strconv.Itoa(v.Max+1)+"+")
	}
	helpIdx := -1
	if plain.HasHelp {
		helpIdx = len(options)
		options = append(options, p.theme.HelpPrefix+plain.HelpTitle)
	}

	defaultIdx := -1
	if current, ok := widget.AsInt(plain.Value); ok {
		switch {
		case current >= v.Min && current <= v.Max:
			defaultIdx = current - v.Min
		case current > v.Max:
			defaultIdx = overIdx
		}
	}

	idx, err := p.driver.Select(ctx, SelectConfig{Message: plain.Label, Options: options, DefaultIndex: defaultIdx})
	if err != nil {
		return nil, false, err
	}
	switch {
	case idx == helpIdx:
		return nil, true, nil
	case idx == overIdx:
		answer, err := p.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s (%d+)", plain.Label, v.Max+1),
			Validator: func(value string) error {
				n, err := strconv.Atoi(strings.TrimSpace(value))
				if err != nil || n <= v.Max {
					return fmt.Errorf("enter a whole number above %d", v.Max)
				}
				return nil
			},
		})
		if err != nil {
			return nil, false, err
		}
		return []string{strings.TrimSpace(answer)}, false, nil
	case idx >= 0 && idx < len(options):
		return []string{options[idx]}, false, nil
	}
	return nil, false, fmt.Errorf("prompt: choice index %d out of range", idx)
}

func (p *Prompter) askTime(ctx context.Context, plain question.Plain, v widget.Time) ([]string, bool, error) {
	slots := v.Slots()
	if current, ok := widget.AsInt(plain.Value); ok && !slices.Contains(slots, current) {
		slots = append(slots, current)
		slices.Sort(slots)
	}
	options := make([]string, 0, len(slots)+1)
	for _, seconds := range slots {
		options = append(options, widget.FormatClock(seconds))
	}
	helpIdx := -1
	if plain.HasHelp {
		helpIdx = len(options)
		options = append(options, p.theme.HelpPrefix+plain.HelpTitle)
	}
	defaultIdx := -1
	if current, ok := widget.AsInt(plain.Value); ok {
		defaultIdx = slices.Index(slots, current)
	}

	idx, err := p.driver.Select(ctx, SelectConfig{Message: plain.Label, Options: options, DefaultIndex: defaultIdx, PageSize: 12})
	if err != nil {
		return nil, false, err
	}
	if idx == helpIdx {
		return nil, true, nil
	}
	if idx < 0 || idx >= len(slots) {
		return nil, false, fmt.Errorf("prompt: choice index %d out of range", idx)
	}
	return []string{strconv.Itoa(slots[idx])}, false, nil
}

// showHelp opens the popup for one reading: content is produced, printed and
// the session is closed again.
func (p *Prompter) showHelp(ctx context.Context, q *question.Question, plain question.Plain) error {
	if err := q.ActivateHelp(); err != nil {
		return err
	}
	defer q.CloseHelp()

	content, markdown := q.HelpContent()
	body := richtext.Plain(content)
	if markdown {
		rendered, err := p.renderMarkdown(content)
		if err != nil {
			p.logger.Warn("markdown help rendering failed", zap.Error(err))
		} else {
			body = rendered
		}
	}
	return p.driver.Info(ctx, p.theme.HelpPrefix+plain.HelpTitle+"\n"+strings.TrimRight(body, "\n"))
}

func (p *Prompter) renderMarkdown(content string) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if p.markdownStyle != "auto" {
		styleOpt = glamour.WithStandardStyle(p.markdownStyle)
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(p.wordWrap))
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

func (p *Prompter) output() io.Writer {
	if p.out != nil {
		return p.out
	}
	return os.Stdout
}

func invalidMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, widget.ErrInvalidValue.Error()+": "); idx >= 0 {
		return msg[idx+len(widget.ErrInvalidValue.Error())+2:]
	}
	return msg
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
