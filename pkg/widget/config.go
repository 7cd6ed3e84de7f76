// Package widget holds the data model shared by every question front-end:
// widget configuration, the status snapshot computed by the interview engine,
// the interview and user contexts, and the closed set of input variants.
package widget

import (
	"context"
	"sort"
	"strings"
)

// InputType selects which input variant a question renders.
type InputType string

const (
	InputSelect      InputType = "select"
	InputRadio       InputType = "radio"
	InputRadioNumber InputType = "radioNumber"
	InputCheckbox    InputType = "checkbox"
	InputMultiselect InputType = "multiselect"
	InputButton      InputType = "button"
	InputDatePicker  InputType = "datePicker"
	InputSlider      InputType = "slider"
	InputText        InputType = "text"
	InputString      InputType = "string"
	InputTime        InputType = "time"
)

// InputTypes lists every supported input type in a stable order.
func InputTypes() []InputType {
	return []InputType{
		InputSelect,
		InputRadio,
		InputRadioNumber,
		InputCheckbox,
		InputMultiselect,
		InputButton,
		InputDatePicker,
		InputSlider,
		InputText,
		InputString,
		InputTime,
	}
}

// TypeQuestion is the only widget type rendered by question front-ends.
const TypeQuestion = "question"

// DateLayout is the wire format used for minDate/maxDate and date answers.
const DateLayout = "2006-01-02"

// Localized maps a language code to a string.
type Localized map[string]string

// Resolve returns the string for locale. Lookup order: exact locale, base
// language ("fr" for "fr-CA"), fallback locale, then the first entry in
// sorted key order.
func (l Localized) Resolve(locale, fallback string) string {
	if len(l) == 0 {
		return ""
	}
	for _, candidate := range localeCandidates(locale, fallback) {
		if value, ok := l[candidate]; ok {
			return value
		}
	}
	keys := make([]string, 0, len(l))
	for key := range l {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return l[keys[0]]
}

// IsZero reports whether no translation holds non-blank text.
func (l Localized) IsZero() bool {
	for _, value := range l {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func localeCandidates(locale, fallback string) []string {
	out := make([]string, 0, 4)
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		for _, existing := range out {
			if existing == value {
				return
			}
		}
		out = append(out, value)
	}
	add(locale)
	add(BaseLanguage(locale))
	add(fallback)
	add(BaseLanguage(fallback))
	return out
}

// BaseLanguage strips any region suffix from a locale ("en-CA" -> "en").
func BaseLanguage(locale string) string {
	locale = strings.TrimSpace(locale)
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		return locale[:idx]
	}
	return locale
}

// Choice is one selectable answer.
type Choice struct {
	Label Localized `json:"label" yaml:"label"`
	Value string    `json:"value" yaml:"value"`
}

// Range is an inclusive integer range.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// ContentFunc produces help popup content on demand. It must be cheap to
// keep around and is only invoked when the popup is opened.
type ContentFunc func(interview Interview, user User) string

// StaticContent wraps fixed text in a ContentFunc.
func StaticContent(text string) ContentFunc {
	return func(Interview, User) string { return text }
}

// HelpPopup configures the optional help overlay.
type HelpPopup struct {
	Title    Localized   `json:"title" yaml:"title"`
	Content  ContentFunc `json:"-" yaml:"-"`
	Text     Localized   `json:"content,omitempty" yaml:"content,omitempty"`
	Markdown bool        `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

// Validation is a declarative rule evaluated by the status deriver. The
// widget is invalid when Expression evaluates to true.
type Validation struct {
	Expression string    `json:"expression" yaml:"expression"`
	Message    Localized `json:"message" yaml:"message"`
}

// Config is the static description of a question widget. Fields that do not
// apply to the selected input type are ignored.
type Config struct {
	Type         string    `json:"type,omitempty" yaml:"type,omitempty"`
	InputType    InputType `json:"inputType" yaml:"inputType"`
	Path         string    `json:"path" yaml:"path"`
	Label        Localized `json:"label,omitempty" yaml:"label,omitempty"`
	LabelKey     string    `json:"labelKey,omitempty" yaml:"labelKey,omitempty"`
	TwoColumns   bool      `json:"twoColumns,omitempty" yaml:"twoColumns,omitempty"`
	ContainsHTML bool      `json:"containsHtml,omitempty" yaml:"containsHtml,omitempty"`
	Choices      []Choice  `json:"choices,omitempty" yaml:"choices,omitempty"`
	Multiple     bool      `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Placeholder  Localized `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	MinValue *float64 `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`

	MinDate string `json:"minDate,omitempty" yaml:"minDate,omitempty"`
	MaxDate string `json:"maxDate,omitempty" yaml:"maxDate,omitempty"`

	ValueRange *Range `json:"valueRange,omitempty" yaml:"valueRange,omitempty"`

	MinTimeSecondsSinceMidnight *int `json:"minTimeSecondsSinceMidnight,omitempty" yaml:"minTimeSecondsSinceMidnight,omitempty"`
	MaxTimeSecondsSinceMidnight *int `json:"maxTimeSecondsSinceMidnight,omitempty" yaml:"maxTimeSecondsSinceMidnight,omitempty"`
	MinuteStep                  int  `json:"minuteStep,omitempty" yaml:"minuteStep,omitempty"`

	OverMaxAllowed bool `json:"overMaxAllowed,omitempty" yaml:"overMaxAllowed,omitempty"`

	HelpPopup *HelpPopup `json:"helpPopup,omitempty" yaml:"helpPopup,omitempty"`
	IsModal   bool       `json:"isModal,omitempty" yaml:"isModal,omitempty"`

	Conditional string       `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	Validations []Validation `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// Status is the per-render snapshot computed by the interview engine.
type Status struct {
	Path              string `json:"path"`
	IsVisible         bool   `json:"isVisible"`
	IsDisabled        bool   `json:"isDisabled"`
	IsCollapsed       bool   `json:"isCollapsed"`
	IsEmpty           bool   `json:"isEmpty"`
	IsCustomEmpty     bool   `json:"isCustomEmpty"`
	IsValid           bool   `json:"isValid"`
	IsResponded       bool   `json:"isResponded"`
	IsCustomResponded bool   `json:"isCustomResponded"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
	CurrentUpdateKey  int    `json:"currentUpdateKey"`
	Value             any    `json:"value,omitempty"`
}

// ShowError reports whether the error message must be displayed.
func (s Status) ShowError() bool {
	return !s.IsValid && strings.TrimSpace(s.ErrorMessage) != ""
}

// Interview is the read-only interview context passed to renderers.
type Interview struct {
	ID          string          `json:"id"`
	Locale      string          `json:"locale"`
	Responses   map[string]any  `json:"responses"`
	Validations map[string]bool `json:"validations,omitempty"`
}

// User is the read-only user context passed to renderers.
type User struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	Permissions []string          `json:"permissions,omitempty"`
	IsAdmin     bool              `json:"isAdmin"`
	Authorize   func(string) bool `json:"-"`
}

// Can reports whether the user holds permission. Admins hold every
// permission; a custom Authorize predicate overrides the permission list.
func (u User) Can(permission string) bool {
	if u.IsAdmin {
		return true
	}
	if u.Authorize != nil {
		return u.Authorize(permission)
	}
	for _, granted := range u.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// UpdateCallback persists a new answer. Renderers only invoke it in response
// to user interaction.
type UpdateCallback func(ctx context.Context, path string, value any) error
