package section

import (
	"github.com/goliatone/go-question/pkg/question"
)

// Instances keeps the mounted questions of one interview between renders so
// help popups and dismissed modals survive a page refresh. Instances is not
// safe for concurrent use; callers serialise access per interview.
type Instances struct {
	questions map[string]*question.Question
}

// NewInstances creates an empty set.
func NewInstances() *Instances {
	return &Instances{questions: make(map[string]*question.Question)}
}

// Mount returns the question bound to props.Config.Path, mounting it on first
// use and refreshing its props otherwise.
func (i *Instances) Mount(renderer *question.Renderer, props question.Props) *question.Question {
	path := props.Path
	if path == "" {
		path = props.Config.Path
	}
	if q, ok := i.questions[path]; ok {
		q.SetProps(props)
		return q
	}
	q := renderer.Mount(props)
	i.questions[path] = q
	return q
}

// Get returns the mounted question at path.
func (i *Instances) Get(path string) (*question.Question, bool) {
	q, ok := i.questions[path]
	return q, ok
}

// Len reports how many questions are mounted.
func (i *Instances) Len() int {
	return len(i.questions)
}
