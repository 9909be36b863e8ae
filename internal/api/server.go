// Package api provides the HTTP API server and handlers for the GameShelf application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gameshelfapp/gameshelf-server/internal/config"
	"github.com/gameshelfapp/gameshelf-server/internal/sse"
	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

// ServerVersion is reported by the info endpoint and the OpenAPI document.
const ServerVersion = "0.1.0"

// IngestStatus reports the drop-folder pipeline state for the health endpoint.
type IngestStatus struct {
	Enabled bool
	Running bool
	Dir     string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	sseManager      *sse.Manager
	sseHandler      *sse.Handler
	logger          *slog.Logger
	serverName      string
	feedRateLimiter *RateLimiter
	ingestStatus    func() IngestStatus
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services *Services, sseHandler *sse.Handler, sseManager *sse.Manager, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig("GameShelf API", ServerVersion)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:      st,
		services:   services,
		router:     router,
		api:        humaAPI,
		sseManager: sseManager,
		sseHandler: sseHandler,
		logger:     logger,
		serverName: cfg.Server.Name,
	}

	if cfg.RateLimit.Enabled {
		s.feedRateLimiter = NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	s.registerHealthRoutes()
	s.registerInfoRoutes()
	s.registerGameRoutes()
	s.registerFeedRoutes()
	s.registerAggregateRoutes()
	s.registerTagRoutes()
	s.registerLanguageRoutes()
	s.registerSnapshotRoutes()
	s.registerSearchRoutes()

	// The event stream bypasses huma so the envelope transformer never
	// touches the long-lived response body.
	router.Get("/api/v1/events", sseHandler.ServeHTTP)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetIngestStatus installs the callback the health endpoint uses to report
// the drop-folder pipeline. Called once the watcher workers are wired up.
func (s *Server) SetIngestStatus(fn func() IngestStatus) {
	s.ingestStatus = fn
}
