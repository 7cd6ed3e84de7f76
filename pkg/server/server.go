// Package server exposes a survey over HTTP. Section pages are rendered on
// the server; answers, help popups and modals are posted back and answered
// with the refreshed section body.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-question/pkg/interview"
	"github.com/goliatone/go-question/pkg/question"
	"github.com/goliatone/go-question/pkg/section"
	"github.com/goliatone/go-question/pkg/status"
	"github.com/goliatone/go-question/pkg/survey"
	"github.com/goliatone/go-question/pkg/widget"
)

// UserFunc resolves the user behind a request.
type UserFunc func(*http.Request) widget.User

// Option configures a Server.
type Option func(*config)

type config struct {
	store          interview.Store
	deriver        *status.Deriver
	user           UserFunc
	logger         *zap.Logger
	locale         string
	assetPrefix    string
	shutdownGrace  time.Duration
	sectionOptions []section.Option
}

// WithStore replaces the in-memory interview store.
func WithStore(store interview.Store) Option {
	return func(cfg *config) {
		if store != nil {
			cfg.store = store
		}
	}
}

// WithDeriver replaces the status deriver.
func WithDeriver(deriver *status.Deriver) Option {
	return func(cfg *config) {
		if deriver != nil {
			cfg.deriver = deriver
		}
	}
}

// WithUser resolves the respondent of each request. The default user may
// edit every interview.
func WithUser(fn UserFunc) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.user = fn
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithDefaultLocale sets the locale of interviews created without one.
func WithDefaultLocale(locale string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			cfg.locale = trimmed
		}
	}
}

// WithAssetPrefix sets the URL prefix the bundled stylesheet and script are
// served from.
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimRight(strings.TrimSpace(prefix), "/"); trimmed != "" {
			cfg.assetPrefix = trimmed
		}
	}
}

// WithShutdownGrace bounds how long Serve waits for in-flight requests.
func WithShutdownGrace(grace time.Duration) Option {
	return func(cfg *config) {
		if grace > 0 {
			cfg.shutdownGrace = grace
		}
	}
}

// WithSectionOptions forwards options to the section composer.
func WithSectionOptions(options ...section.Option) Option {
	return func(cfg *config) {
		cfg.sectionOptions = append(cfg.sectionOptions, options...)
	}
}

// Server serves one survey.
type Server struct {
	survey   *survey.Survey
	renderer *question.Renderer
	composer *section.Composer
	store    interview.Store
	user     UserFunc
	logger   *zap.Logger
	locale   string
	grace    time.Duration
	handler  http.Handler

	mu       sync.Mutex
	sessions map[string]*session
}

// session holds the mounted questions of one interview. Questions keep
// help and modal state and are not safe for concurrent use.
type session struct {
	mu        sync.Mutex
	instances *section.Instances
}

// New builds a Server. The renderer must mount overlays inline: a portal
// shared by concurrent requests would mix their overlays.
func New(s *survey.Survey, renderer *question.Renderer, options ...Option) (*Server, error) {
	if s == nil {
		return nil, errors.New("server: survey is required")
	}
	if renderer == nil {
		return nil, errors.New("server: question renderer is required")
	}
	cfg := config{
		logger:        zap.NewNop(),
		locale:        "en",
		assetPrefix:   "/assets",
		shutdownGrace: 5 * time.Second,
		user:          defaultUser,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.store == nil {
		cfg.store = interview.NewMemoryStore()
	}
	if cfg.deriver == nil {
		cfg.deriver = status.NewDeriver(status.WithLogger(cfg.logger))
	}

	composerOpts := append([]section.Option{
		section.WithLogger(cfg.logger),
		section.WithAssetPrefix(cfg.assetPrefix),
	}, cfg.sectionOptions...)
	composer, err := section.New(renderer, cfg.deriver, composerOpts...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	router, err := loadRouter(context.Background())
	if err != nil {
		return nil, err
	}

	srv := &Server{
		survey:   s,
		renderer: renderer,
		composer: composer,
		store:    cfg.store,
		user:     cfg.user,
		logger:   cfg.logger,
		locale:   cfg.locale,
		grace:    cfg.shutdownGrace,
		sessions: make(map[string]*session),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /interviews", srv.handleCreate)
	mux.HandleFunc("GET /interviews/{id}/sections/{section}", srv.handleSection)
	mux.HandleFunc("POST /interviews/{id}/questions/{path}", srv.handleAnswer)
	mux.HandleFunc("POST /interviews/{id}/questions/{path}/help", srv.handleHelp(true))
	mux.HandleFunc("DELETE /interviews/{id}/questions/{path}/help", srv.handleHelp(false))
	mux.HandleFunc("POST /interviews/{id}/questions/{path}/modal", srv.handleModal(true))
	mux.HandleFunc("DELETE /interviews/{id}/questions/{path}/modal", srv.handleModal(false))
	mux.Handle("GET "+cfg.assetPrefix+"/", http.StripPrefix(cfg.assetPrefix+"/", http.FileServerFS(question.AssetsFS())))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv.handler = validateRequests(router, cfg.logger, mux)
	return srv, nil
}

func defaultUser(*http.Request) widget.User {
	return widget.User{ID: "anonymous", Username: "anonymous", Permissions: []string{status.PermissionEdit}}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(ln)
	}()
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: serve: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

type interviewResponse struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	locale := strings.TrimSpace(r.URL.Query().Get("locale"))
	if locale == "" {
		locale = s.locale
	}
	in, err := s.store.Create(r.Context(), locale)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "create interview", err)
		return
	}
	s.logger.Info("interview created", zap.String("interview", in.ID()), zap.String("locale", locale))

	if names := s.survey.SectionNames(); len(names) > 0 {
		w.Header().Set("Location", "/interviews/"+in.ID()+"/sections/"+names[0])
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(interviewResponse{ID: in.ID(), Locale: in.Locale(), CreatedAt: in.CreatedAt()}); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	in, ok := s.interview(w, r)
	if !ok {
		return
	}
	sec, found := s.survey.Section(r.PathValue("section"))
	if !found {
		http.Error(w, fmt.Sprintf("section %q not found", r.PathValue("section")), http.StatusNotFound)
		return
	}

	sess := s.session(in.ID())
	sess.mu.Lock()
	defer sess.mu.Unlock()

	req := s.request(r, in, sec, sess)
	if r.URL.Query().Get("fragment") == "true" {
		body, err := s.composer.Fragment(r.Context(), req)
		s.writeMarkup(w, r, http.StatusOK, []byte(body), err)
		return
	}
	page, err := s.composer.Page(r.Context(), req)
	s.writeMarkup(w, r, http.StatusOK, page, err)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	in, cfg, sec, ok := s.question(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess := s.session(in.ID())
	sess.mu.Lock()
	defer sess.mu.Unlock()

	req := s.request(r, in, sec, sess)
	q := s.composer.Mount(req, cfg)
	code := http.StatusOK
	if err := q.Change(r.Context(), r.PostForm["value"]); err != nil {
		switch {
		case errors.Is(err, widget.ErrInvalidValue):
			s.logger.Debug("answer rejected", zap.String("path", cfg.Path), zap.Error(err))
			code = http.StatusUnprocessableEntity
		case errors.Is(err, question.ErrDisabled):
			http.Error(w, "question is read-only", http.StatusForbidden)
			return
		default:
			s.fail(w, r, http.StatusInternalServerError, "store answer", err)
			return
		}
	}

	req = s.request(r, in, sec, sess)
	if code == http.StatusOK && s.composer.Mount(req, cfg).Props().Status.ShowError() {
		code = http.StatusUnprocessableEntity
	}
	body, err := s.composer.Fragment(r.Context(), req)
	s.writeMarkup(w, r, code, []byte(body), err)
}

func (s *Server) handleHelp(open bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, cfg, sec, ok := s.question(w, r)
		if !ok {
			return
		}
		sess := s.session(in.ID())
		sess.mu.Lock()
		defer sess.mu.Unlock()

		req := s.request(r, in, sec, sess)
		q := s.composer.Mount(req, cfg)
		if open {
			if err := q.ActivateHelp(); err != nil {
				if errors.Is(err, question.ErrNoHelp) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				s.fail(w, r, http.StatusInternalServerError, "open help", err)
				return
			}
		} else {
			q.CloseHelp()
		}
		body, err := s.composer.Fragment(r.Context(), req)
		s.writeMarkup(w, r, http.StatusOK, []byte(body), err)
	}
}

func (s *Server) handleModal(open bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, cfg, sec, ok := s.question(w, r)
		if !ok {
			return
		}
		if !cfg.IsModal {
			http.Error(w, fmt.Sprintf("question %q is not a modal", cfg.Path), http.StatusNotFound)
			return
		}
		sess := s.session(in.ID())
		sess.mu.Lock()
		defer sess.mu.Unlock()

		req := s.request(r, in, sec, sess)
		q := s.composer.Mount(req, cfg)
		if open {
			q.OpenModal()
		} else {
			q.CloseModal()
		}
		body, err := s.composer.Fragment(r.Context(), req)
		s.writeMarkup(w, r, http.StatusOK, []byte(body), err)
	}
}

func (s *Server) interview(w http.ResponseWriter, r *http.Request) (*interview.Interview, bool) {
	id := r.PathValue("id")
	in, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			s.forget(id)
			http.Error(w, fmt.Sprintf("interview %q not found", id), http.StatusNotFound)
			return nil, false
		}
		s.fail(w, r, http.StatusInternalServerError, "load interview", err)
		return nil, false
	}
	return in, true
}

func (s *Server) question(w http.ResponseWriter, r *http.Request) (*interview.Interview, widget.Config, survey.Section, bool) {
	in, ok := s.interview(w, r)
	if !ok {
		return nil, widget.Config{}, survey.Section{}, false
	}
	path := r.PathValue("path")
	cfg, sec, found := s.survey.Widget(path)
	if !found {
		http.Error(w, fmt.Sprintf("question %q not found", path), http.StatusNotFound)
		return nil, widget.Config{}, survey.Section{}, false
	}
	return in, cfg, sec, true
}

func (s *Server) request(r *http.Request, in *interview.Interview, sec survey.Section, sess *session) section.Request {
	return section.Request{
		Section:   sec,
		Interview: in.Snapshot(),
		User:      s.user(r),
		UpdateKey: in.UpdateKey(),
		Update:    in.Updater(s.logger),
		Instances: sess.instances,
		Base:      "/interviews/" + in.ID(),
	}
}

func (s *Server) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{instances: section.NewInstances()}
		s.sessions[id] = sess
	}
	return sess
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// writeMarkup writes rendered markup. Configuration errors keep their
// diagnostic markup in the body and turn the response into a 500.
func (s *Server) writeMarkup(w http.ResponseWriter, r *http.Request, code int, body []byte, err error) {
	if err != nil {
		var cfgErr *widget.ConfigError
		if !errors.As(err, &cfgErr) || len(body) == 0 {
			s.fail(w, r, http.StatusInternalServerError, "render", err)
			return
		}
		s.logger.Error("survey configuration error", zap.String("path", r.URL.Path), zap.Error(err))
		code = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, action string, err error) {
	s.logger.Error(action+" failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, action+" failed", code)
}
