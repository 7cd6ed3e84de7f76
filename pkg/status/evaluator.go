// Package status derives the per-render widget status from a question
// configuration and the interview answers: visibility from the conditional
// expression, validity from declarative validation rules, emptiness from the
// stored answer.
package status

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-question/internal/dotpath"
	"github.com/goliatone/go-question/pkg/widget"
)

// Evaluator decides a boolean rule for the widget at path.
type Evaluator interface {
	Eval(path, rule string, ctx Context) (bool, error)
}

// Context provides the inputs of a rule. Responses holds the interview
// answers; Extras lets callers inject anything else, such as feature flags.
type Context struct {
	Path      string
	Value     any
	Responses map[string]any
	Locale    string
	User      widget.User
	Extras    map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(path, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(path, rule string, ctx Context) (bool, error) {
	return fn(path, rule, ctx)
}

// ExprEvaluator evaluates rules written in the expr language. Rules see
// every top-level response as a variable plus:
//
//	value          the answer at the widget path
//	path, locale   the widget path and interview locale
//	responses      the full answer tree
//	user           {id, username, isAdmin, permissions}
//	extras         Context.Extras
//	answer(p)      the answer at dotted path p
//	can(perm)      whether the user holds perm
//	empty(x)       whether x is nil, blank or an empty collection
//
// Compiled programs are cached by rule and shared across goroutines.
type ExprEvaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewExprEvaluator creates an evaluator with an empty program cache.
func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{cache: make(map[string]*vm.Program)}
}

// Eval runs rule. A blank rule is true; a nil result is false.
func (e *ExprEvaluator) Eval(path, rule string, ctx Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	program, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, environment(path, ctx))
	if err != nil {
		return false, fmt.Errorf("status: evaluate %q: %w", rule, err)
	}
	switch typed := out.(type) {
	case bool:
		return typed, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("status: rule %q returned %T, want bool", rule, out)
	}
}

// Compile checks rule syntax without evaluating it.
func (e *ExprEvaluator) Compile(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.compile(strings.TrimSpace(rule))
	return err
}

func (e *ExprEvaluator) compile(rule string) (*vm.Program, error) {
	e.mu.RLock()
	if program, ok := e.cache[rule]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.cache[rule]; ok {
		return program, nil
	}

	program, err := expr.Compile(rule,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.Function("empty", func(params ...any) (any, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("empty expects 1 argument, got %d", len(params))
			}
			return IsEmpty(params[0]), nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("status: compile %q: %w", rule, err)
	}
	e.cache[rule] = program
	return program, nil
}

func environment(path string, ctx Context) map[string]any {
	env := make(map[string]any, len(ctx.Responses)+8)
	for key, value := range ctx.Responses {
		env[key] = value
	}
	responses := ctx.Responses
	env["responses"] = responses
	env["value"] = ctx.Value
	env["path"] = path
	env["locale"] = ctx.Locale
	env["extras"] = ctx.Extras
	env["user"] = map[string]any{
		"id":          ctx.User.ID,
		"username":    ctx.User.Username,
		"isAdmin":     ctx.User.IsAdmin,
		"permissions": ctx.User.Permissions,
	}
	env["answer"] = func(p string) any {
		value, _ := dotpath.Get(responses, p)
		return value
	}
	user := ctx.User
	env["can"] = func(permission string) bool {
		return user.Can(permission)
	}
	return env
}

// IsEmpty reports whether value counts as no answer.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	return false
}
