package testsupport

import (
	"github.com/goliatone/go-question/pkg/widget"
)

// WidgetConfig returns a valid configuration for input with every field the
// variant consumes populated.
func WidgetConfig(input widget.InputType) widget.Config {
	cfg := widget.Config{
		Type:      widget.TypeQuestion,
		InputType: input,
		Path:      "foo.test",
		Label: widget.Localized{
			"en": "Test label",
			"fr": "Libellé test",
		},
	}
	switch input {
	case widget.InputSelect, widget.InputRadio, widget.InputCheckbox, widget.InputMultiselect, widget.InputButton:
		cfg.Choices = []widget.Choice{
			{Label: widget.Localized{"en": "Yes", "fr": "Oui"}, Value: "yes"},
			{Label: widget.Localized{"en": "No", "fr": "Non"}, Value: "no"},
			{Label: widget.Localized{"en": "Don't know", "fr": "Je ne sais pas"}, Value: "dontKnow"},
		}
	case widget.InputRadioNumber:
		cfg.ValueRange = &widget.Range{Min: 1, Max: 3}
		cfg.OverMaxAllowed = true
	case widget.InputDatePicker:
		cfg.MinDate = "2024-01-01"
		cfg.MaxDate = "2024-12-31"
	case widget.InputSlider:
		minValue, maxValue := -10.0, 10.0
		cfg.MinValue = &minValue
		cfg.MaxValue = &maxValue
	case widget.InputTime:
		minSeconds, maxSeconds := 6*3600, 8*3600
		cfg.MinTimeSecondsSinceMidnight = &minSeconds
		cfg.MaxTimeSecondsSinceMidnight = &maxSeconds
		cfg.MinuteStep = 30
	case widget.InputString, widget.InputText:
		cfg.Placeholder = widget.Localized{"en": "Type here"}
	}
	return cfg
}

// SampleValue returns a plausible answer for input.
func SampleValue(input widget.InputType) any {
	switch input {
	case widget.InputCheckbox:
		return []any{"yes", "dontKnow"}
	case widget.InputRadioNumber:
		return 2
	case widget.InputDatePicker:
		return "2024-05-17"
	case widget.InputSlider:
		return 3.0
	case widget.InputTime:
		return 7 * 3600
	case widget.InputText:
		return "first line\nsecond line"
	case widget.InputString:
		return "some text"
	default:
		return "yes"
	}
}

// WidgetStatus returns a visible, valid, enabled status holding value.
func WidgetStatus(path string, value any) widget.Status {
	return widget.Status{
		Path:             path,
		IsVisible:        true,
		IsValid:          true,
		IsEmpty:          value == nil,
		IsResponded:      value != nil,
		CurrentUpdateKey: 1,
		Value:            value,
	}
}

// Interview returns an english interview with a nickname response.
func Interview() widget.Interview {
	return widget.Interview{
		ID:     "interview-1",
		Locale: "en",
		Responses: map[string]any{
			"nickname": "Alex",
			"foo":      map[string]any{},
		},
	}
}

// User returns a non-admin respondent.
func User() widget.User {
	return widget.User{ID: "1", Username: "respondent", Permissions: []string{"interview:edit"}}
}
