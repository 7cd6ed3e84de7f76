package components

import "github.com/goliatone/go-question/pkg/widget"

// Component names used by the default registry. They match the widget input
// types so the question renderer can look descriptors up directly.
const (
	NameSelect      = string(widget.InputSelect)
	NameRadio       = string(widget.InputRadio)
	NameRadioNumber = string(widget.InputRadioNumber)
	NameCheckbox    = string(widget.InputCheckbox)
	NameMultiselect = string(widget.InputMultiselect)
	NameButton      = string(widget.InputButton)
	NameDatePicker  = string(widget.InputDatePicker)
	NameSlider      = string(widget.InputSlider)
	NameText        = string(widget.InputText)
	NameString      = string(widget.InputString)
	NameTime        = string(widget.InputTime)
)

// Stylesheet is the bundled stylesheet shared by every component.
const Stylesheet = "/assets/question.css"
