package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/meltforce/fithome/internal/session"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *session.Manager
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	whois    WhoIser
	now      func() time.Time

	// keepalive is the SSE comment interval.
	keepalive time.Duration
}

// New creates a new Server with all routes configured. An empty apiKey leaves
// the session API open.
func New(sessions *session.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		sessions:  sessions,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
		now:       time.Now,
		keepalive: 25 * time.Second,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale resolves callers through the tailnet from now on.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		s.protect(r)
		r.Handle("/mcp", h)
	})
}

func (s *Server) routes() {
	s.router.Use(Tracing(otel.GetTracerProvider()))
	// identity runs before logging so the request log carries the caller.
	s.router.Use(s.identity)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	s.router.Get("/api/v1/me", s.handleMe)

	s.router.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/", s.handleCatalog)
		r.Get("/today", s.handleToday)
		r.Get("/days/{dayID}", s.handleDay)
	})
	s.router.Get("/api/v1/alarm/{tone}.wav", s.handleAlarmWAV)

	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		s.protect(r)
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/day", s.handleSelectDay)
			r.Post("/exercises/{exerciseID}/toggle", s.handleToggleExercise)
			r.Post("/progress/reset", s.handleResetProgress)
			r.Post("/progress/complete-all", s.handleCompleteAll)
			r.Get("/stats", s.handleStats)
			r.Get("/timer", s.handleTimerState)
			r.Post("/timer/add", s.handleTimerAdd)
			r.Post("/timer/{action}", s.handleTimerAction)
			r.Get("/events", s.handleEvents)
		})
	})
}

// protect adds API key auth to r when a key is configured.
func (s *Server) protect(r chi.Router) {
	if s.apiKey != "" {
		r.Use(APIKeyAuth(s.apiKey))
	}
}
