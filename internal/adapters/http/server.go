// Package http exposes the engine as a JSON API routed with chi.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/shablon"
	"github.com/aretw0/shablon/internal/compiler"
	"github.com/aretw0/shablon/internal/logging"
	"github.com/aretw0/shablon/internal/metrics"
	"github.com/aretw0/shablon/internal/runtime"
	"github.com/aretw0/shablon/pkg/domain"
	"github.com/aretw0/shablon/pkg/draft"
	"github.com/aretw0/shablon/pkg/state"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine is the part of *shablon.Engine served over HTTP.
type Engine interface {
	Templates(ctx context.Context, ownerID int64) ([]domain.TemplateSummary, error)
	Graph(ctx context.Context, templateID int64) (shablon.Graph, error)
	Mermaid(ctx context.Context, templateID int64, run *runtime.Run) (string, error)
	CompileGraph(ctx context.Context, d domain.Draft) (compiler.Report, error)
	UpdateTemplate(ctx context.Context, id int64, name, description string) error
	DeleteTemplate(ctx context.Context, id int64) error
	StartStep(ctx context.Context, templateID int64) (domain.Step, error)
	StepByID(ctx context.Context, id int64) (domain.Step, error)
	UpdateStep(ctx context.Context, id int64, title, content, message string) error
	View(ctx context.Context, stepID int64) (shablon.StepView, error)
	NextStep(ctx context.Context, current domain.Step, snapshot *state.Snapshot) (*domain.Step, error)
	Summary(step domain.Step, snapshot *state.Snapshot) (string, error)
}

var _ Engine = (*shablon.Engine)(nil)

// Server holds the handlers of the API.
type Server struct {
	Engine       Engine
	DefaultOwner int64
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the structured logger used for failed requests.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithDefaultOwner sets the owner used when a request names none.
func WithDefaultOwner(ownerID int64) Option {
	return func(s *Server) {
		s.DefaultOwner = ownerID
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, DefaultOwner: 1, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.gatherer))
	}

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.ListTemplates)
		r.Post("/", s.CompileTemplate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetGraph)
			r.Patch("/", s.UpdateTemplate)
			r.Delete("/", s.DeleteTemplate)
			r.Get("/mermaid", s.GetMermaid)
			r.Get("/start", s.GetStart)
		})
	})
	r.Route("/steps/{id}", func(r chi.Router) {
		r.Get("/", s.GetStep)
		r.Patch("/", s.UpdateStep)
		r.Post("/next", s.Next)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "shablon-http",
		"version": strings.TrimSpace(shablon.Version),
	})
}

// ListTemplates handles GET /templates?owner=N.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	owner, err := s.owner(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.Engine.Templates(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.TemplateSummary{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// CompileTemplate handles POST /templates. The body is a JSON draft, or a YAML
// draft when the content type says so.
func (s *Server) CompileTemplate(w http.ResponseWriter, r *http.Request) {
	owner, err := s.owner(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var d domain.Draft
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		d, err = draft.LoadYAML(r.Body, owner)
	} else {
		err = json.NewDecoder(r.Body).Decode(&d)
		if d.Template.OwnerID == 0 {
			d.Template.OwnerID = owner
		}
	}
	if err != nil {
		s.writeError(w, r, badRequest(fmt.Errorf("invalid draft body: %w", err)))
		return
	}

	rep, err := s.Engine.CompileGraph(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rep)
}

// GetGraph handles GET /templates/{id}.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.Engine.Graph(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

type templatePatch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateTemplate handles PATCH /templates/{id}.
func (s *Server) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body templatePatch
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		s.writeError(w, r, badRequest(errors.New("name is required")))
		return
	}
	if err := s.Engine.UpdateTemplate(r.Context(), id, body.Name, body.Description); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTemplate handles DELETE /templates/{id}.
func (s *Server) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Engine.DeleteTemplate(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMermaid handles GET /templates/{id}/mermaid.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	chart, err := s.Engine.Mermaid(r.Context(), id, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, chart)
}

// GetStart handles GET /templates/{id}/start.
func (s *Server) GetStart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	step, err := s.Engine.StartStep(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeView(w, r, step.ID)
}

// GetStep handles GET /steps/{id}.
func (s *Server) GetStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeView(w, r, id)
}

type stepPatch struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Message string `json:"message"`
}

// UpdateStep handles PATCH /steps/{id}.
func (s *Server) UpdateStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body stepPatch
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		s.writeError(w, r, badRequest(errors.New("title is required")))
		return
	}
	if err := s.Engine.UpdateStep(r.Context(), id, body.Title, body.Content, body.Message); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NextResponse is the result of POST /steps/{id}/next.
type NextResponse struct {
	Finished bool              `json:"finished"`
	Next     *shablon.StepView `json:"next,omitempty"`
	// Summary is the rendered message when the next step is a summary step.
	Summary string `json:"summary,omitempty"`
}

// Next handles POST /steps/{id}/next. The body is the answer snapshot as a
// JSON object; an empty body means no answers.
func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snapshot := state.New()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(snapshot); err != nil {
			s.writeError(w, r, badRequest(err))
			return
		}
	}

	current, err := s.Engine.StepByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	next, err := s.Engine.NextStep(r.Context(), current, snapshot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if next == nil {
		s.writeJSON(w, http.StatusOK, NextResponse{Finished: true})
		return
	}

	view, err := s.Engine.View(r.Context(), next.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := NextResponse{Next: &view}
	if next.Kind == domain.KindSummary {
		if resp.Summary, err = s.Engine.Summary(*next, snapshot); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, stepID int64) {
	view, err := s.Engine.View(r.Context(), stepID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// -- Helpers --

type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return requestError{err: err} }

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Errorf("invalid id %q", raw))
	}
	return id, nil
}

func (s *Server) owner(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("owner")
	if raw == "" {
		return s.DefaultOwner, nil
	}
	owner, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Errorf("invalid owner %q", raw))
	}
	return owner, nil
}

// statusOf maps the error taxonomy onto HTTP statuses.
func statusOf(err error) int {
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr), errors.Is(err, domain.ErrInvalidDraft):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIntegrityViolation):
		return http.StatusConflict
	case domain.IsRoutingFailure(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
