package question

import (
	"slices"
	"strconv"

	"github.com/goliatone/go-question/internal/dotpath"
	"github.com/goliatone/go-question/pkg/question/components"
	"github.com/goliatone/go-question/pkg/widget"
)

// buildControl turns the variant and the current answer into the view model
// consumed by component renderers.
func (v *view) buildControl() components.Control {
	control := components.Control{
		InputType: string(v.variant.InputType()),
		ID:        v.id.input,
		Name:      v.path,
		LabelID:   v.id.label,
		Disabled:  v.props.disabled(),
	}

	value := v.currentValue()
	control.Value = widget.ValueString(value)

	switch variant := v.variant.(type) {
	case widget.Select:
		control.Choices = v.choiceOptions(variant.Choices, control.Value)
	case widget.Radio:
		control.Choices = v.choiceOptions(variant.Choices, control.Value)
	case widget.ButtonGroup:
		control.Choices = v.choiceOptions(variant.Choices, control.Value)
	case widget.Checkbox:
		control.Values = widget.ValueStrings(value)
		control.Choices = v.choiceOptions(variant.Choices, control.Values...)
		control.Value = ""
	case widget.Multiselect:
		control.Multiple = variant.Multiple
		control.Values = widget.ValueStrings(value)
		control.Choices = v.choiceOptions(variant.Choices, control.Values...)
		if variant.Multiple {
			control.Value = ""
		}
	case widget.RadioNumber:
		control.Choices = v.numberOptions(variant, value)
	case widget.DatePicker:
		if !variant.MinDate.IsZero() {
			control.Min = variant.MinDate.Format(widget.DateLayout)
		}
		if !variant.MaxDate.IsZero() {
			control.Max = variant.MaxDate.Format(widget.DateLayout)
		}
	case widget.Slider:
		control.Min = strconv.FormatFloat(variant.Min, 'f', -1, 64)
		control.Max = strconv.FormatFloat(variant.Max, 'f', -1, 64)
		control.Step = "1"
	case widget.Text:
		control.Placeholder = variant.Placeholder.Resolve(v.locale, v.r.fallbackLocale)
	case widget.String:
		control.Placeholder = variant.Placeholder.Resolve(v.locale, v.r.fallbackLocale)
	case widget.Time:
		control.Choices = v.timeOptions(variant, value)
		if seconds, ok := widget.AsInt(value); ok {
			control.Value = strconv.Itoa(seconds)
		}
	}
	return control
}

// currentValue prefers the status snapshot and falls back to the stored
// response.
func (v *view) currentValue() any {
	if v.props.Status.Value != nil {
		return v.props.Status.Value
	}
	value, _ := dotpath.Get(v.props.Interview.Responses, v.path)
	return value
}

func (v *view) choiceOptions(choices []widget.Choice, selected ...string) []components.Option {
	options := make([]components.Option, 0, len(choices))
	for idx, choice := range choices {
		label := choice.Label.Resolve(v.locale, v.r.fallbackLocale)
		if label == "" {
			label = choice.Value
		}
		options = append(options, components.Option{
			ID:       v.id.option(idx),
			Value:    choice.Value,
			Label:    label,
			Selected: slices.Contains(selected, choice.Value),
		})
	}
	return options
}

// numberOptions offers every integer of the range. With overMaxAllowed a
// trailing "max+" option carries values above the range and is checked when
// the answer exceeds max.
func (v *view) numberOptions(variant widget.RadioNumber, value any) []components.Option {
	current, hasCurrent := widget.AsInt(value)

	span := variant.Max - variant.Min
	options := make([]components.Option, 0, span+2)
	for i := 0; i <= span; i++ {
		n := variant.Min + i
		text := strconv.Itoa(n)
		options = append(options, components.Option{
			ID:       v.id.option(len(options)),
			Value:    text,
			Label:    text,
			Selected: hasCurrent && current == n,
		})
	}
	if !variant.OverMaxAllowed {
		return options
	}

	over := variant.Max + 1
	if hasCurrent && current > over {
		over = current
	}
	options = append(options, components.Option{
		ID:       v.id.option(len(options)),
		Value:    strconv.Itoa(over),
		Label:    strconv.Itoa(variant.Max+1) + "+",
		Selected: hasCurrent && current > variant.Max,
	})
	return options
}

// timeOptions lists the selectable slots. An answer off the minute grid is
// kept as its own option so it stays selected.
func (v *view) timeOptions(variant widget.Time, value any) []components.Option {
	slots := variant.Slots()
	current, hasCurrent := widget.AsInt(value)
	if hasCurrent && !slices.Contains(slots, current) {
		slots = append(slots, current)
		slices.Sort(slots)
	}

	options := make([]components.Option, 0, len(slots))
	for idx, seconds := range slots {
		options = append(options, components.Option{
			ID:       v.id.option(idx),
			Value:    strconv.Itoa(seconds),
			Label:    widget.FormatClock(seconds),
			Selected: hasCurrent && current == seconds,
		})
	}
	return options
}
