// Package interview keeps interview answers in memory and exposes the
// UpdateCallback question widgets call when a respondent changes an answer.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-question/internal/dotpath"
	"github.com/goliatone/go-question/pkg/widget"
)

// ErrNotFound reports an unknown interview id.
var ErrNotFound = errors.New("interview: not found")

// Store persists interviews.
type Store interface {
	Create(ctx context.Context, locale string) (*Interview, error)
	Get(ctx context.Context, id string) (*Interview, error)
	Delete(ctx context.Context, id string) error
}

// Interview is one respondent's answers. Methods are safe for concurrent use.
type Interview struct {
	id        string
	createdAt time.Time

	mu          sync.RWMutex
	locale      string
	responses   map[string]any
	validations map[string]bool
	updatedAt   time.Time

	updateKey atomic.Int64
}

// New creates an empty interview.
func New(id, locale string) *Interview {
	now := time.Now().UTC()
	return &Interview{
		id:          id,
		locale:      strings.TrimSpace(locale),
		responses:   make(map[string]any),
		validations: make(map[string]bool),
		createdAt:   now,
		updatedAt:   now,
	}
}

// ID returns the interview id.
func (i *Interview) ID() string { return i.id }

// CreatedAt returns the creation time in UTC.
func (i *Interview) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns the time of the last answer change.
func (i *Interview) UpdatedAt() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.updatedAt
}

// UpdateKey increases with every stored answer. Widgets use it to discard
// stale renders.
func (i *Interview) UpdateKey() int {
	return int(i.updateKey.Load())
}

// Locale returns the interview locale.
func (i *Interview) Locale() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.locale
}

// SetLocale switches the interview language.
func (i *Interview) SetLocale(locale string) {
	i.mu.Lock()
	i.locale = strings.TrimSpace(locale)
	i.mu.Unlock()
}

// Answer returns the answer stored at path.
func (i *Interview) Answer(path string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	value, ok := dotpath.Get(i.responses, path)
	return cloneValue(value), ok
}

// SetAnswer stores value at path. A nil value removes the answer. Setting an
// answer marks the path for validation.
func (i *Interview) SetAnswer(path string, value any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("interview: answer path is required")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if value == nil {
		dotpath.Delete(i.responses, path)
	} else if err := dotpath.Set(i.responses, path, cloneValue(value)); err != nil {
		return fmt.Errorf("interview: %w", err)
	}
	i.validations[path] = true
	i.updatedAt = time.Now().UTC()
	i.updateKey.Add(1)
	return nil
}

// RequestValidation asks the status deriver to validate paths even when they
// are unanswered, typically before leaving a section.
func (i *Interview) RequestValidation(paths ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, path := range paths {
		if path = strings.TrimSpace(path); path != "" {
			i.validations[path] = true
		}
	}
}

// Snapshot returns a deep copy suitable for rendering.
func (i *Interview) Snapshot() widget.Interview {
	i.mu.RLock()
	defer i.mu.RUnlock()

	validations := make(map[string]bool, len(i.validations))
	for path, requested := range i.validations {
		validations[path] = requested
	}
	responses, _ := cloneValue(i.responses).(map[string]any)
	return widget.Interview{
		ID:          i.id,
		Locale:      i.locale,
		Responses:   responses,
		Validations: validations,
	}
}

// Updater returns the UpdateCallback that stores answers in i.
func (i *Interview) Updater(logger *zap.Logger) widget.UpdateCallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, path string, value any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.SetAnswer(path, value); err != nil {
			return err
		}
		logger.Debug("answer stored",
			zap.String("interview", i.id),
			zap.String("path", path),
			zap.Int("update_key", i.UpdateKey()),
		)
		return nil
	}
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu         sync.RWMutex
	interviews map[string]*Interview
	newID      func() string
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithIDGenerator replaces the uuid generator, mostly for tests.
func WithIDGenerator(fn func() string) MemoryOption {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		interviews: make(map[string]*Interview),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create starts a new interview.
func (s *MemoryStore) Create(ctx context.Context, locale string) (*Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in := New(s.newID(), locale)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.interviews[in.id]; exists {
		return nil, fmt.Errorf("interview: id %q already exists", in.id)
	}
	s.interviews[in.id] = in
	return in, nil
}

// Put stores an existing interview, replacing any interview with its id.
func (s *MemoryStore) Put(in *Interview) {
	if in == nil {
		return
	}
	s.mu.Lock()
	s.interviews[in.id] = in
	s.mu.Unlock()
}

// Get returns the interview with id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.interviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return in, nil
}

// Delete removes the interview with id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.interviews, id)
	return nil
}

// Len returns the number of stored interviews.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.interviews)
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			out[key] = cloneValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, nested := range typed {
			out[idx] = cloneValue(nested)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}
