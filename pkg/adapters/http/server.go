package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/unparse"
	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodyBytes bounds render request bodies.
const MaxBodyBytes = 8 << 20

// Server serves renders over HTTP.
type Server struct {
	Service *service.Service
	Logger  *slog.Logger
}

// RenderRequest is the POST /render and POST /chunks body.
type RenderRequest = service.Request

// GrammarInfo describes one grammar in GET /grammars.
type GrammarInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Rules       []string `json:"rules"`
}

// NewHandler creates the HTTP handler. gatherer may be nil to disable /metrics.
func NewHandler(svc *service.Service, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{Service: svc, Logger: logger}

	r := chi.NewRouter()
	r.Use(requestID, enableCORS)

	r.Post("/render", s.Render)
	r.Post("/chunks", s.Chunks)
	r.Get("/grammars", s.ListGrammars)
	r.Get("/grammars/{name}", s.GetGrammar)
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (RenderRequest, bool) {
	var body RenderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		s.Logger.Warn("Invalid request body", "request_id", w.Header().Get("X-Request-ID"), "error", err)
		return body, false
	}
	if body.Grammar != "" && !s.known(body.Grammar) {
		http.Error(w, fmt.Sprintf("unknown grammar %q", body.Grammar), http.StatusBadRequest)
		return body, false
	}
	return body, true
}

// known reports whether name is a served grammar. File paths are never
// resolved for remote callers.
func (s *Server) known(name string) bool {
	for _, n := range s.Service.Grammars() {
		if n == name {
			return true
		}
	}
	return false
}

// Render handles the POST /render request. The response is the rendered
// text; X-Cache reports whether it came from the render cache.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decode(w, r)
	if !ok {
		return
	}

	res, err := s.Service.Render(r.Context(), body)
	if err != nil {
		s.fail(w, "Render", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if res.Key != "" {
		w.Header().Set("ETag", `"`+res.Key+`"`)
		if res.Cached {
			w.Header().Set("X-Cache", "hit")
		} else {
			w.Header().Set("X-Cache", "miss")
		}
	}
	if _, err := w.Write([]byte(res.Text)); err != nil {
		s.Logger.Error("Render response write failed", "error", err)
	}
}

// Chunks handles the POST /chunks request (SSE). Each chunk is sent as a
// JSON string as soon as the walk yields it; a walk error ends the stream
// with an error event.
func (s *Server) Chunks(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("Chunks: Streaming not supported")
		return
	}
	body, ok := s.decode(w, r)
	if !ok {
		return
	}
	chunks, err := s.Service.Stream(body)
	if err != nil {
		s.fail(w, "Chunks", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for chunk, err := range chunks {
		if err != nil {
			data, _ := json.Marshal(err.Error())
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
			flusher.Flush()
			s.Logger.Warn("Chunks: walk failed", "error", err)
			return
		}
		if r.Context().Err() != nil {
			s.Logger.Info("SSE Client Disconnected")
			return
		}
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
	fmt.Fprintf(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}

// ListGrammars handles the GET /grammars request.
func (s *Server) ListGrammars(w http.ResponseWriter, r *http.Request) {
	names := s.Service.Grammars()
	infos := make([]GrammarInfo, 0, len(names))
	for _, name := range names {
		g, err := s.Service.Grammar(name)
		if err != nil {
			s.fail(w, "ListGrammars", err)
			return
		}
		infos = append(infos, GrammarInfo{Name: g.Name, Description: g.Description, Rules: g.Rules()})
	}
	writeJSON(w, s.Logger, infos)
}

// GetGrammar handles the GET /grammars/{name} request. The grammar is
// returned as a Markdown reference. Only named grammars are served, never
// file paths.
func (s *Server) GetGrammar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.known(name) {
		http.Error(w, fmt.Sprintf("unknown grammar %q", name), http.StatusNotFound)
		return
	}
	g, err := s.Service.Grammar(name)
	if err != nil {
		s.fail(w, "GetGrammar", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(g.Markdown()))
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{
		"app":     "unparse-http",
		"version": strings.TrimSpace(unparse.Version),
	})
}

// fail maps render errors to status codes: malformed input is 400, a tree
// the grammar cannot render is 422.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoDefinition),
		errors.Is(err, domain.ErrNoLayoutHandler),
		errors.Is(err, domain.ErrUnbalancedIndent):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	} else {
		s.Logger.Debug(op+" rejected", "error", err, "status", status)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
