// Package server provides the HTTP handlers and routing for the MCP bridge.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"anki-mcp/internal/anki"
	"anki-mcp/internal/schema"
)

// Config contains server configuration values such as port, auth token, and
// the AnkiConnect endpoint. All values are fixed at process start.
type Config struct {
	Port           string
	Token          string
	AnkiConnectURL string
	Debug          bool
}

// Server contains the configured router, the AnkiConnect client, and the tool
// registry. The registry is built once in New and never changes afterwards.
type Server struct {
	cfg    Config
	router *chi.Mux
	anki   *anki.Client
	tools  map[string]ToolEntry
	order  []string
}

// New constructs a Server with middleware, routes, and the tool registry
// configured.
func New(cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		anki:   anki.New(cfg.AnkiConnectURL, &http.Client{Timeout: 15 * time.Second}, cfg.Debug),
		tools:  make(map[string]ToolEntry),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/mcp", func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/tools", s.handleListTools)
		r.Post("/call", s.handleCall)
	})

	s.registerTools()

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) register(entries ...ToolEntry) {
	for _, e := range entries {
		if _, dup := s.tools[e.Name]; dup {
			panic("server: duplicate tool " + e.Name)
		}
		s.tools[e.Name] = e
		s.order = append(s.order, e.Name)
	}
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTools publishes every registered tool with a descriptor built
// fresh from its schema node, in registration order.
func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	tools := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		entry := s.tools[name]
		tools = append(tools, Tool{
			Name:        entry.Name,
			Description: entry.Description,
			InputSchema: schema.Assemble(entry.Schema),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

// handleCall validates the caller's arguments against the tool's schema node,
// dispatches the handler, and wraps the result as a single text content
// block. All four failure modes map to distinct error types.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errMalformedRequest, "request body is not valid JSON")
		return
	}

	entry, ok := s.tools[req.Name]
	if !ok {
		writeError(w, http.StatusNotFound, errUnknownTool, "no tool named "+req.Name)
		return
	}

	args, err := schema.Validate(entry.Schema, req.Arguments)
	if err != nil {
		writeError(w, http.StatusBadRequest, errInvalidArguments, err.Error())
		return
	}

	result, err := entry.Handler(r.Context(), args)
	if err != nil {
		switch err.(type) {
		case *anki.TransportError:
			writeError(w, http.StatusBadGateway, errCollaboratorDown, err.Error())
		case *anki.RemoteError:
			writeError(w, http.StatusBadGateway, errCollaborator, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, errInternal, err.Error())
		}
		return
	}

	text, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errInternal, "result is not JSON-serializable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CallResult{Content: []ContentBlock{{Type: "text", Text: string(text)}}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, errorResponse{Error: apiError{Type: typ, Message: msg}})
}
