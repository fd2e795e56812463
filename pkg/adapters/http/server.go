package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/causal"
	"github.com/aretw0/causal/internal/compiler"
	"github.com/aretw0/causal/internal/presentation/graph"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds program sources and homomorphism documents.
const maxBodySize = 1 << 20

// Server exposes a Workspace as a JSON API.
type Server struct {
	Workspace ports.Workspace
	metrics   http.Handler
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts a Prometheus handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the workspace.
func NewHandler(ws ports.Workspace, opts ...Option) http.Handler {
	s := &Server{
		Workspace: ws,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/theories", s.ListTheories)
	r.Route("/theories/{name}", func(r chi.Router) {
		r.Get("/", s.GetTheory)
		r.Post("/compile", s.Compile)
		r.Post("/refine/{generator}", s.Refine)
	})
	r.Post("/homomorphisms/check", s.CheckHomomorphism)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CompileResponse is the body returned by POST /theories/{name}/compile.
type CompileResponse struct {
	Term    string   `json:"term"`
	Dom     []string `json:"dom"`
	Cod     []string `json:"cod"`
	Mermaid string   `json:"mermaid"`
}

// CheckResponse is the body returned by POST /homomorphisms/check.
type CheckResponse struct {
	Source   string            `json:"source,omitempty"`
	Target   string            `json:"target,omitempty"`
	Valid    bool              `json:"valid"`
	Failures []ValidationIssue `json:"failures,omitempty"`
}

// ValidationIssue is one failed homomorphism check.
type ValidationIssue struct {
	Check   string `json:"check"`
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "causal-http",
		"version": causal.Version,
	})
}

// ListTheories handles the GET /theories request.
func (s *Server) ListTheories(w http.ResponseWriter, r *http.Request) {
	names, err := s.Workspace.Theories(r.Context())
	if err != nil {
		s.fail(w, "ListTheories", err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetTheory handles the GET /theories/{name} request.
func (s *Server) GetTheory(w http.ResponseWriter, r *http.Request) {
	p, err := s.Workspace.Theory(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetTheory", err)
		return
	}
	s.writeJSON(w, http.StatusOK, p.Document())
}

// Compile handles the POST /theories/{name}/compile request. The body is
// the program source.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := s.Workspace.Compile(r.Context(), chi.URLParam(r, "name"), string(src))
	if err != nil {
		s.fail(w, "Compile", err)
		return
	}
	s.writeJSON(w, http.StatusOK, CompileResponse{
		Term:    t.String(),
		Dom:     t.Dom().Names(),
		Cod:     t.Cod().Names(),
		Mermaid: graph.GenerateMermaid(t, nil),
	})
}

// Refine handles the POST /theories/{name}/refine/{generator} request. The
// body is the defining program source.
func (s *Server) Refine(w http.ResponseWriter, r *http.Request) {
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name, gen := chi.URLParam(r, "name"), chi.URLParam(r, "generator")
	if err := s.Workspace.Refine(r.Context(), name, gen, string(src)); err != nil {
		s.fail(w, "Refine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckHomomorphism handles the POST /homomorphisms/check request. The body
// is a homomorphism document; validation failures are reported in the
// response rather than as an error status.
func (s *Server) CheckHomomorphism(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h, err := s.Workspace.Homomorphism(r.Context(), doc)
	if err != nil && !errors.Is(err, domain.ErrValidationFailure) {
		s.fail(w, "CheckHomomorphism", err)
		return
	}

	resp := CheckResponse{Valid: err == nil}
	if h != nil {
		resp.Source, resp.Target = h.Source().Name(), h.Target().Name()
	}
	for _, v := range domain.ValidationErrors(err) {
		resp.Failures = append(resp.Failures, ValidationIssue{
			Check:   string(v.Check),
			Kind:    string(v.Kind),
			Subject: v.Subject,
			Reason:  v.Reason,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// SubscribeEvents handles the GET /events request (SSE). Each event names a
// theory whose source changed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.Workspace.(watcher)
	if !ok {
		http.Error(w, "Hot reload not supported", http.StatusNotImplemented)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := ws.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrTheoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, compiler.ErrSyntax),
		errors.Is(err, domain.ErrNameCollision),
		errors.Is(err, domain.ErrUnknownObject),
		errors.Is(err, domain.ErrUnknownGenerator),
		errors.Is(err, domain.ErrUnknownVariable),
		errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrArityMismatch),
		errors.Is(err, domain.ErrValidationFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err)
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
