package status

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-question/internal/dotpath"
	"github.com/goliatone/go-question/pkg/i18n"
	"github.com/goliatone/go-question/pkg/widget"
)

// PermissionEdit is required to change answers. Users without it see every
// question disabled.
const PermissionEdit = "interview:edit"

// Catalog key and text shown for a failed validation without a message.
const (
	InvalidMessageKey     = "question.invalid"
	DefaultInvalidMessage = "This answer is not valid."
)

// Option customises a Deriver.
type Option func(*Deriver)

// WithEvaluator replaces the expr evaluator.
func WithEvaluator(evaluator Evaluator) Option {
	return func(d *Deriver) {
		if evaluator != nil {
			d.evaluator = evaluator
		}
	}
}

// WithLogger attaches a logger for rule failures.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Deriver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEditPermission changes the permission checked for edits. An empty
// permission lets every user edit.
func WithEditPermission(permission string) Option {
	return func(d *Deriver) {
		d.editPermission = strings.TrimSpace(permission)
	}
}

// WithFallbackLocale sets the locale used when a validation message has no
// translation for the interview locale.
func WithFallbackLocale(locale string) Option {
	return func(d *Deriver) {
		if strings.TrimSpace(locale) != "" {
			d.fallbackLocale = strings.TrimSpace(locale)
		}
	}
}

// WithTranslator resolves the default message of failed validations.
func WithTranslator(translator i18n.Translator) Option {
	return func(d *Deriver) {
		d.translator = translator
	}
}

// WithExtras exposes extra values to every rule.
func WithExtras(extras map[string]any) Option {
	return func(d *Deriver) {
		d.extras = extras
	}
}

// Deriver computes widget.Status snapshots.
type Deriver struct {
	evaluator      Evaluator
	logger         *zap.Logger
	editPermission string
	fallbackLocale string
	translator     i18n.Translator
	extras         map[string]any
}

// NewDeriver constructs a Deriver backed by an ExprEvaluator.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		evaluator:      NewExprEvaluator(),
		logger:         zap.NewNop(),
		editPermission: PermissionEdit,
		fallbackLocale: "en",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Derive computes the status of cfg for the interview. A failing conditional
// leaves the widget visible and a failing validation leaves it valid; the
// first rule error is returned alongside the usable status.
func (d *Deriver) Derive(cfg widget.Config, interview widget.Interview, user widget.User, updateKey int) (widget.Status, error) {
	path := strings.TrimSpace(cfg.Path)
	value, _ := dotpath.Get(interview.Responses, path)

	st := widget.Status{
		Path:             path,
		IsVisible:        true,
		IsValid:          true,
		IsEmpty:          IsEmpty(value),
		CurrentUpdateKey: updateKey,
		Value:            value,
	}
	st.IsResponded = !st.IsEmpty
	st.IsCustomEmpty = st.IsEmpty
	st.IsCustomResponded = st.IsResponded

	ctx := Context{
		Path:      path,
		Value:     value,
		Responses: interview.Responses,
		Locale:    interview.Locale,
		User:      user,
		Extras:    d.extras,
	}

	var firstErr error
	record := func(kind, rule string, err error) {
		d.logger.Warn("status rule failed",
			zap.String("path", path),
			zap.String("kind", kind),
			zap.String("rule", rule),
			zap.Error(err),
		)
		if firstErr == nil {
			firstErr = fmt.Errorf("status: %s %s: %w", path, kind, err)
		}
	}

	if rule := strings.TrimSpace(cfg.Conditional); rule != "" {
		visible, err := d.evaluator.Eval(path, rule, ctx)
		if err != nil {
			record("conditional", rule, err)
		} else {
			st.IsVisible = visible
		}
	}

	if st.IsVisible && d.shouldValidate(path, st, interview) {
		for _, validation := range cfg.Validations {
			failed, err := d.evaluator.Eval(path, validation.Expression, ctx)
			if err != nil {
				record("validation", validation.Expression, err)
				continue
			}
			if failed {
				st.IsValid = false
				st.ErrorMessage = d.invalidMessage(validation, interview.Locale)
				break
			}
		}
	}

	if d.editPermission != "" && !user.Can(d.editPermission) {
		st.IsDisabled = true
	}

	return st, firstErr
}

// invalidMessage keeps a failed validation visible: a message missing for
// every locale falls back to the translated default.
func (d *Deriver) invalidMessage(validation widget.Validation, locale string) string {
	if msg := strings.TrimSpace(validation.Message.Resolve(locale, d.fallbackLocale)); msg != "" {
		return msg
	}
	if locale == "" {
		locale = d.fallbackLocale
	}
	return i18n.Translate(d.translator, locale, InvalidMessageKey, DefaultInvalidMessage, nil)
}

// shouldValidate holds validations back until the question is answered or
// the interview requested validation for it.
func (d *Deriver) shouldValidate(path string, st widget.Status, interview widget.Interview) bool {
	if st.IsResponded {
		return true
	}
	return interview.Validations[path]
}

// DeriveAll computes the status of every widget. Rule errors are logged and
// the first one is returned after every status is computed.
func (d *Deriver) DeriveAll(configs []widget.Config, interview widget.Interview, user widget.User, updateKey int) (map[string]widget.Status, error) {
	out := make(map[string]widget.Status, len(configs))
	var firstErr error
	for _, cfg := range configs {
		st, err := d.Derive(cfg, interview, user, updateKey)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out[st.Path] = st
	}
	return out, firstErr
}

// Lint compiles every rule of cfg and reports the failures.
func Lint(evaluator *ExprEvaluator, cfg widget.Config) []error {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	var errs []error
	if err := evaluator.Compile(cfg.Conditional); err != nil {
		errs = append(errs, fmt.Errorf("%s conditional: %w", cfg.Path, err))
	}
	for idx, validation := range cfg.Validations {
		if strings.TrimSpace(validation.Expression) == "" {
			errs = append(errs, fmt.Errorf("%s validations[%d]: empty expression", cfg.Path, idx))
			continue
		}
		if err := evaluator.Compile(validation.Expression); err != nil {
			errs = append(errs, fmt.Errorf("%s validations[%d]: %w", cfg.Path, idx, err))
		}
		if validation.Message.IsZero() {
			errs = append(errs, fmt.Errorf("%s validations[%d]: missing message", cfg.Path, idx))
		}
	}
	return errs
}
