package components

// Control is the view model handed to component renderers and templates.
// JSON tags define the keys templates see.
type Control struct {
	InputType   string   `json:"inputType"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	LabelID     string   `json:"labelId"`
	DescribedBy string   `json:"describedBy,omitempty"`
	Disabled    bool     `json:"disabled"`
	Invalid     bool     `json:"invalid"`
	Value       string   `json:"value"`
	Values      []string `json:"values,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Choices     []Option `json:"choices,omitempty"`
	Min         string   `json:"min,omitempty"`
	Max         string   `json:"max,omitempty"`
	Step        string   `json:"step,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
	Rows        string   `json:"rows,omitempty"`
}

// Option is one selectable entry of a choice control. Label is plain text.
type Option struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}
