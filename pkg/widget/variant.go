package widget

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Variant is the closed set of input widgets. Each implementation keeps only
// the configuration it consumes; ResolveVariant is the single place that
// inspects Config.InputType.
type Variant interface {
	InputType() InputType
	// Decode converts submitted form values into the answer stored at the
	// widget path. A nil result clears the answer.
	Decode(raw []string) (any, error)
	isVariant()
}

const (
	defaultSliderMin  = 0
	defaultSliderMax  = 100
	defaultMinuteStep = 5
	lastSecondOfDay   = 24*60*60 - 1
)

// MaxRadioNumberOptions bounds the number of choices a radioNumber range may
// expand to.
const MaxRadioNumberOptions = 100

// Select is a single choice drop-down.
type Select struct{ Choices []Choice }

// Radio is a single choice radio group.
type Radio struct{ Choices []Choice }

// ButtonGroup is a single choice rendered as a row of toggle buttons.
type ButtonGroup struct{ Choices []Choice }

// Checkbox is a set of choices.
type Checkbox struct{ Choices []Choice }

// Multiselect is a list box allowing one or many choices.
type Multiselect struct {
	Choices  []Choice
	Multiple bool
}

// RadioNumber offers every integer of an inclusive range as a radio choice.
// With OverMaxAllowed an extra "max+" choice accepts values above Max.
type RadioNumber struct {
	Min            int
	Max            int
	OverMaxAllowed bool
}

// DatePicker accepts a calendar date between optional bounds.
type DatePicker struct {
	MinDate time.Time
	MaxDate time.Time
}

// Slider accepts a number between Min and Max.
type Slider struct {
	Min float64
	Max float64
}

// Text is a multi-line free text answer.
type Text struct{ Placeholder Localized }

// String is a single-line answer.
type String struct{ Placeholder Localized }

// Time accepts a time of day expressed in seconds since midnight.
type Time struct {
	MinSeconds int
	MaxSeconds int
	MinuteStep int
}

func (Select) InputType() InputType      { return InputSelect }
func (Radio) InputType() InputType       { return InputRadio }
func (ButtonGroup) InputType() InputType { return InputButton }
func (Checkbox) InputType() InputType    { return InputCheckbox }
func (Multiselect) InputType() InputType { return InputMultiselect }
func (RadioNumber) InputType() InputType { return InputRadioNumber }
func (DatePicker) InputType() InputType  { return InputDatePicker }
func (Slider) InputType() InputType      { return InputSlider }
func (Text) InputType() InputType        { return InputText }
func (String) InputType() InputType      { return InputString }
func (Time) InputType() InputType        { return InputTime }

func (Select) isVariant()      {}
func (Radio) isVariant()       {}
func (ButtonGroup) isVariant() {}
func (Checkbox) isVariant()    {}
func (Multiselect) isVariant() {}
func (RadioNumber) isVariant() {}
func (DatePicker) isVariant()  {}
func (Slider) isVariant()      {}
func (Text) isVariant()        {}
func (String) isVariant()      {}
func (Time) isVariant()        {}

// ResolveVariant validates the fields every widget needs and builds the
// variant selected by cfg.InputType.
func ResolveVariant(cfg Config) (Variant, error) {
	path := strings.TrimSpace(cfg.Path)
	if cfg.Type != "" && cfg.Type != TypeQuestion {
		return nil, invalid(path, "type", "unsupported widget type %q", cfg.Type)
	}
	if path == "" {
		return nil, missing("", "path")
	}
	if cfg.Label.IsZero() && strings.TrimSpace(cfg.LabelKey) == "" {
		return nil, missing(path, "label")
	}

	switch cfg.InputType {
	case InputSelect, InputRadio, InputButton, InputCheckbox, InputMultiselect:
		return resolveChoiceVariant(path, cfg)
	case InputRadioNumber:
		return resolveRadioNumber(path, cfg)
	case InputDatePicker:
		return resolveDatePicker(path, cfg)
	case InputSlider:
		return resolveSlider(path, cfg)
	case InputText:
		return Text{Placeholder: cfg.Placeholder}, nil
	case InputString:
		return String{Placeholder: cfg.Placeholder}, nil
	case InputTime:
		return resolveTime(path, cfg)
	case "":
		return nil, missing(path, "inputType")
	default:
		return nil, &ConfigError{Path: path, Field: "inputType", Err: ErrUnknownInputType, Detail: string(cfg.InputType)}
	}
}

func resolveChoiceVariant(path string, cfg Config) (Variant, error) {
	if err := checkChoices(path, cfg.Choices); err != nil {
		return nil, err
	}
	switch cfg.InputType {
	case InputRadio:
		return Radio{Choices: cfg.Choices}, nil
	case InputButton:
		return ButtonGroup{Choices: cfg.Choices}, nil
	case InputCheckbox:
		return Checkbox{Choices: cfg.Choices}, nil
	case InputMultiselect:
		return Multiselect{Choices: cfg.Choices, Multiple: cfg.Multiple}, nil
	default:
		return Select{Choices: cfg.Choices}, nil
	}
}

func checkChoices(path string, choices []Choice) error {
	seen := make(map[string]struct{}, len(choices))
	for idx, choice := range choices {
		if strings.TrimSpace(choice.Value) == "" {
			return invalid(path, "choices", "choice %d has an empty value", idx)
		}
		if _, dup := seen[choice.Value]; dup {
			return invalid(path, "choices", "duplicate choice value %q", choice.Value)
		}
		seen[choice.Value] = struct{}{}
	}
	return nil
}

func resolveRadioNumber(path string, cfg Config) (Variant, error) {
	if cfg.ValueRange == nil {
		return nil, missing(path, "valueRange")
	}
	if cfg.ValueRange.Min > cfg.ValueRange.Max {
		return nil, invalid(path, "valueRange", "min %d is greater than max %d", cfg.ValueRange.Min, cfg.ValueRange.Max)
	}
	// unsigned difference cannot overflow once min <= max
	if uint(cfg.ValueRange.Max)-uint(cfg.ValueRange.Min) >= MaxRadioNumberOptions {
		return nil, invalid(path, "valueRange", "%d..%d exceeds %d choices", cfg.ValueRange.Min, cfg.ValueRange.Max, MaxRadioNumberOptions)
	}
	if cfg.OverMaxAllowed && cfg.ValueRange.Max == math.MaxInt {
		return nil, invalid(path, "valueRange", "max %d leaves no room for overMaxAllowed", cfg.ValueRange.Max)
	}
	return RadioNumber{Min: cfg.ValueRange.Min, Max: cfg.ValueRange.Max, OverMaxAllowed: cfg.OverMaxAllowed}, nil
}

func resolveDatePicker(path string, cfg Config) (Variant, error) {
	var out DatePicker
	if cfg.MinDate != "" {
		parsed, err := time.Parse(DateLayout, cfg.MinDate)
		if err != nil {
			return nil, invalid(path, "minDate", "expected %s, got %q", DateLayout, cfg.MinDate)
		}
		out.MinDate = parsed
	}
	if cfg.MaxDate != "" {
		parsed, err := time.Parse(DateLayout, cfg.MaxDate)
		if err != nil {
			return nil, invalid(path, "maxDate", "expected %s, got %q", DateLayout, cfg.MaxDate)
		}
		out.MaxDate = parsed
	}
	if !out.MinDate.IsZero() && !out.MaxDate.IsZero() && out.MinDate.After(out.MaxDate) {
		return nil, invalid(path, "minDate", "%s is after maxDate %s", cfg.MinDate, cfg.MaxDate)
	}
	return out, nil
}

func resolveSlider(path string, cfg Config) (Variant, error) {
	out := Slider{Min: defaultSliderMin, Max: defaultSliderMax}
	if cfg.MinValue != nil {
		out.Min = *cfg.MinValue
	}
	if cfg.MaxValue != nil {
		out.Max = *cfg.MaxValue
	}
	if out.Min > out.Max {
		return nil, invalid(path, "minValue", "%g is greater than maxValue %g", out.Min, out.Max)
	}
	return out, nil
}

func resolveTime(path string, cfg Config) (Variant, error) {
	out := Time{MinSeconds: 0, MaxSeconds: lastSecondOfDay, MinuteStep: defaultMinuteStep}
	if cfg.MinTimeSecondsSinceMidnight != nil {
		out.MinSeconds = *cfg.MinTimeSecondsSinceMidnight
	}
	if cfg.MaxTimeSecondsSinceMidnight != nil {
		out.MaxSeconds = *cfg.MaxTimeSecondsSinceMidnight
	}
	if cfg.MinuteStep != 0 {
		out.MinuteStep = cfg.MinuteStep
	}
	switch {
	case out.MinuteStep < 0 || out.MinuteStep > 60*24:
		return nil, invalid(path, "minuteStep", "%d is out of range", out.MinuteStep)
	case out.MinSeconds < 0 || out.MaxSeconds > lastSecondOfDay:
		return nil, invalid(path, "minTimeSecondsSinceMidnight", "bounds must stay within one day")
	case out.MinSeconds > out.MaxSeconds:
		return nil, invalid(path, "minTimeSecondsSinceMidnight", "%d is greater than max %d", out.MinSeconds, out.MaxSeconds)
	}
	return out, nil
}

func (v Select) Decode(raw []string) (any, error)      { return decodeSingle(v.Choices, raw) }
func (v Radio) Decode(raw []string) (any, error)       { return decodeSingle(v.Choices, raw) }
func (v ButtonGroup) Decode(raw []string) (any, error) { return decodeSingle(v.Choices, raw) }
func (v Checkbox) Decode(raw []string) (any, error)    { return decodeSet(v.Choices, raw) }

func (v Multiselect) Decode(raw []string) (any, error) {
	if v.Multiple {
		return decodeSet(v.Choices, raw)
	}
	return decodeSingle(v.Choices, raw)
}

func (v RadioNumber) Decode(raw []string) (any, error) {
	value := firstNonBlank(raw)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, invalidValue("%q is not an integer", value)
	}
	if n < v.Min || (n > v.Max && !v.OverMaxAllowed) {
		return nil, invalidValue("%d is outside %d..%d", n, v.Min, v.Max)
	}
	return n, nil
}

func (v DatePicker) Decode(raw []string) (any, error) {
	value := firstNonBlank(raw)
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, invalidValue("%q is not a %s date", value, DateLayout)
	}
	if !v.MinDate.IsZero() && date.Before(v.MinDate) {
		return nil, invalidValue("%s is before %s", value, v.MinDate.Format(DateLayout))
	}
	if !v.MaxDate.IsZero() && date.After(v.MaxDate) {
		return nil, invalidValue("%s is after %s", value, v.MaxDate.Format(DateLayout))
	}
	return date.Format(DateLayout), nil
}

func (v Slider) Decode(raw []string) (any, error) {
	value := firstNonBlank(raw)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, invalidValue("%q is not a number", value)
	}
	if n < v.Min || n > v.Max {
		return nil, invalidValue("%g is outside %g..%g", n, v.Min, v.Max)
	}
	return n, nil
}

func (Text) Decode(raw []string) (any, error) {
	value := strings.Join(raw, "\n")
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	return strings.ReplaceAll(value, "\r\n", "\n"), nil
}

func (String) Decode(raw []string) (any, error) {
	value := firstNonBlank(raw)
	if value == "" {
		return nil, nil
	}
	return value, nil
}

// Decode accepts either seconds since midnight or a "HH:MM" clock value.
func (v Time) Decode(raw []string) (any, error) {
	value := firstNonBlank(raw)
	if value == "" {
		return nil, nil
	}
	seconds, err := ParseClock(value)
	if err != nil {
		return nil, invalidValue("%s", err)
	}
	if seconds < v.MinSeconds || seconds > v.MaxSeconds {
		return nil, invalidValue("%s is outside %s..%s", FormatClock(seconds), FormatClock(v.MinSeconds), FormatClock(v.MaxSeconds))
	}
	return seconds, nil
}

// Slots lists the selectable times between the bounds, every MinuteStep
// minutes starting at MinSeconds.
func (v Time) Slots() []int {
	step := v.MinuteStep * 60
	if step <= 0 {
		step = defaultMinuteStep * 60
	}
	out := make([]int, 0, (v.MaxSeconds-v.MinSeconds)/step+1)
	for s := v.MinSeconds; s <= v.MaxSeconds; s += step {
		out = append(out, s)
	}
	return out
}

// ParseClock converts "HH:MM" or a plain seconds count to seconds since
// midnight.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	if hours, minutes, ok := strings.Cut(value, ":"); ok {
		h, errH := strconv.Atoi(hours)
		m, errM := strconv.Atoi(minutes)
		if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
			return 0, fmt.Errorf("%q is not a HH:MM time", value)
		}
		return h*3600 + m*60, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 || seconds > lastSecondOfDay {
		return 0, fmt.Errorf("%q is not a time of day", value)
	}
	return seconds, nil
}

// FormatClock renders seconds since midnight as "HH:MM".
func FormatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/3600, (seconds%3600)/60)
}

func decodeSingle(choices []Choice, raw []string) (any, error) {
	value := firstNonBlank(raw)
	if value == "" {
		return nil, nil
	}
	if !hasChoice(choices, value) {
		return nil, invalidValue("%q is not one of the choices", value)
	}
	return value, nil
}

func decodeSet(choices []Choice, raw []string) (any, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if !hasChoice(choices, value) {
			return nil, invalidValue("%q is not one of the choices", value)
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func hasChoice(choices []Choice, value string) bool {
	for _, choice := range choices {
		if choice.Value == value {
			return true
		}
	}
	return false
}

func firstNonBlank(raw []string) string {
	for _, value := range raw {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
