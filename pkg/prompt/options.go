package prompt

import (
	"io"

	"go.uber.org/zap"
)

// Theme holds message prefixes.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	HelpPrefix  string
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithDriver overrides the terminal driver.
func WithDriver(driver Driver) Option {
	return func(p *Prompter) {
		if driver != nil {
			p.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(p *Prompter) {
		if out != nil {
			p.out = out
		}
	}
}

// WithMarkdownStyle selects the glamour style used for Markdown help, such
// as "dark", "light" or "notty".
func WithMarkdownStyle(style string) Option {
	return func(p *Prompter) {
		if style != "" {
			p.markdownStyle = style
		}
	}
}

// WithWordWrap sets the help text wrap width.
func WithWordWrap(width int) Option {
	return func(p *Prompter) {
		if width > 0 {
			p.wordWrap = width
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(p *Prompter) {
		p.theme = theme
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Prompter) {
		if logger != nil {
			p.logger = logger
		}
	}
}
