package prompt

import "errors"

var (
	// ErrAborted signals the respondent aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoOptions is returned for a choice question without choices.
	ErrNoOptions = errors.New("prompt: question has no options")
)
