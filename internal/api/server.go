// Package api provides the HTTP API server and handlers for the BookRadio catalog.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookradio/bookradio-server/internal/config"
	"github.com/bookradio/bookradio-server/internal/media/avatars"
	"github.com/bookradio/bookradio-server/internal/ratelimit"
	"github.com/bookradio/bookradio-server/internal/service"
)

// Auth and feedback endpoints are abuse magnets; everything else rides on the
// catalog's read path and stays unmetered.
const (
	authRatePerMinute = 10
	authRateBurst     = 5
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalogService  *service.CatalogService
	authService     *service.AuthService
	feedbackService *service.FeedbackService
	avatarStorage   *avatars.Storage
	authLimiter     *ratelimit.KeyedLimiter
	maxAvatarBytes  int64
	corsOrigins     []string
	router          *chi.Mux
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, catalogService *service.CatalogService, authService *service.AuthService, feedbackService *service.FeedbackService, avatarStorage *avatars.Storage, logger *slog.Logger) *Server {
	s := &Server{
		catalogService:  catalogService,
		authService:     authService,
		feedbackService: feedbackService,
		avatarStorage:   avatarStorage,
		authLimiter:     ratelimit.New(authRatePerMinute/time.Minute.Seconds(), authRateBurst),
		maxAvatarBytes:  cfg.Uploads.MaxAvatarBytes,
		corsOrigins:     cfg.Server.CORSOrigins,
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// Uploaded avatars (public, immutable filenames).
	s.router.Get("/uploads/avatars/{filename}", s.handleServeAvatar)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog reads (public).
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleSearchBooks)
			r.Get("/filters", s.handleFilterOptions)
			r.Get("/{id}", s.handleGetBook)

			// Catalog maintenance (protected).
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateBook)
				r.Put("/{id}", s.handleUpdateBook)
				r.Delete("/{id}", s.handleDeleteBook)
			})
		})

		// Auth endpoints (public, rate limited per IP).
		r.Route("/auth", func(r chi.Router) {
			r.Use(s.rateLimitByIP)
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Profile endpoints (protected).
		r.Route("/profile", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetProfile)
			r.Put("/", s.handleUpdateProfile)
		})

		// Feedback (public, rate limited per IP).
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitByIP)
			r.Post("/feedback", s.handleSubmitFeedback)
		})
	})
}
