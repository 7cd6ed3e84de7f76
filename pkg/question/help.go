package question

import (
	"github.com/goliatone/go-question/pkg/widget"
)

type helpState int

const (
	helpClosed helpState = iota
	helpUnevaluated
	helpEvaluated
)

// helpSession tracks one opening of the help overlay. Content is produced at
// most once per session and discarded when the overlay closes.
type helpSession struct {
	state   helpState
	content string
}

func (s *helpSession) open() {
	if s.state == helpClosed {
		s.state = helpUnevaluated
	}
}

// evaluate produces the session content, invoking fn only on the first call
// of an open session.
func (s *helpSession) evaluate(fn widget.ContentFunc, interview widget.Interview, user widget.User) string {
	switch s.state {
	case helpEvaluated:
		return s.content
	case helpClosed:
		return ""
	}
	if fn != nil {
		s.content = fn(interview, user)
	}
	s.state = helpEvaluated
	return s.content
}

func (s *helpSession) close() {
	s.state = helpClosed
	s.content = ""
}

func (s *helpSession) isOpen() bool {
	return s.state != helpClosed
}
