// Package api provides the HTTP API server and handlers for pinshelf.
//
// JSON operations are registered with huma on a chi router. The rendered
// recipe page, its PNG preview and the event stream are plain chi handlers.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pinshelf/pinshelf-server/internal/logger"
	"github.com/pinshelf/pinshelf-server/internal/ratelimit"
	"github.com/pinshelf/pinshelf-server/internal/sse"
	"github.com/pinshelf/pinshelf-server/internal/store"
)

const (
	publicAPIPrefix = "/api/v1/public/"
	pagePrefix      = "/r/"
	eventsPath      = "/api/v1/events"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      store.Store
	services   *Services
	router     *chi.Mux
	api        huma.API
	sseManager *sse.Manager
	sseHandler *sse.Handler
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// Options tunes the public surface of the server.
type Options struct {
	// CORSOrigins are the storefront origins allowed on public routes.
	CORSOrigins []string
	// PublicRPS and PublicBurst bound public traffic per client IP.
	PublicRPS   float64
	PublicBurst int
}

// NewServer creates a new HTTP server with all routes configured.
// A nil sseManager disables the event stream.
func NewServer(st store.Store, services *Services, sseManager *sse.Manager, opts Options, log *slog.Logger) *Server {
	if opts.PublicRPS <= 0 {
		opts.PublicRPS = 10
	}
	if opts.PublicBurst <= 0 {
		opts.PublicBurst = 30
	}

	s := &Server{
		store:      st,
		services:   services,
		router:     chi.NewRouter(),
		sseManager: sseManager,
		limiter:    ratelimit.New(opts.PublicRPS, opts.PublicBurst),
		logger:     log,
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, userIDFromContext, log)
	}

	s.setupMiddleware(opts.CORSOrigins)

	s.api = humachi.New(s.router, newHumaConfig())
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases the rate limiter's sweeper.
func (s *Server) Close() {
	s.limiter.Stop()
}

func newHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("pinshelf API", "1.0.0")
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	cfg.Transformers = append(cfg.Transformers, EnvelopeTransformer)
	return cfg
}

// setupMiddleware configures the middleware stack. CORS and rate limiting
// apply to storefront routes only.
func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	s.router.Use(onlyPublic(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})))
	s.router.Use(onlyPublic(RateLimitMiddleware(s.limiter, s.logger)))

	var verifier TokenVerifier
	if s.services != nil && s.services.Tokens != nil {
		verifier = s.services.Tokens
	}
	s.router.Use(authMiddleware(verifier))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()

	// Owner API.
	s.registerRecipeRoutes()
	s.registerPinRoutes()
	s.registerProductRoutes()
	s.registerTagRoutes()
	s.registerCollectionRoutes()
	s.registerSearchRoutes()

	// Storefront.
	s.registerStorefrontRoutes()
	s.router.Get(pagePrefix+"{idOrSlug}", s.handleRecipePage)
	s.router.Get(pagePrefix+"{idOrSlug}/preview.png", s.handleRecipePreview)

	if s.sseHandler != nil {
		s.router.Method(http.MethodGet, eventsPath, s.sseHandler)
	}
}

func isPublicPath(path string) bool {
	return strings.HasPrefix(path, publicAPIPrefix) || strings.HasPrefix(path, pagePrefix)
}

// onlyPublic applies mw to storefront paths and passes everything else through.
func onlyPublic(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
