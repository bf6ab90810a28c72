// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New receives the already opened store,
// uploader and rate limiter from main, builds the services and handlers on
// top of them and mounts everything on one chi router.
//
//	repository.Store → services → handlers → routes
//
// Keeping it out of main.go means tests can build the full router over an
// in-memory database and drive it with httptest.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/config"
	"github.com/sakif/article-hub/internal/handler"
	"github.com/sakif/article-hub/internal/middleware"
	"github.com/sakif/article-hub/internal/repository"
	"github.com/sakif/article-hub/internal/service"
	"github.com/sakif/article-hub/internal/upload"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Deps are the long-lived resources the server is built on. main opens them;
// the server owns them afterwards and closes the store on shutdown.
type Deps struct {
	Store     repository.Store
	Uploader  upload.Uploader
	Limiter   middleware.Limiter // nil disables rate limiting
	Passwords *auth.PasswordService
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config *config.Config
	deps   Deps
	logger *slog.Logger
}

// New wires services and handlers and registers the routes.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	if deps.Passwords == nil {
		deps.Passwords = auth.NewPasswordService()
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET    /healthz
//	POST   /api/auth/signup              (rate limited)
//	POST   /api/auth/signin              (rate limited)
//	POST   /api/auth/admin-token         (rate limited)
//	POST   /api/auth/signout             (rate limited)
//	GET    /api/auth/me                  (rate limited)
//	GET    /api/articles?category=
//	POST   /api/articles
//	GET    /api/articles/{id}
//	DELETE /api/articles/{id}
//	GET    /api/articles/{id}/comments
//	POST   /api/articles/{id}/comments
//	DELETE /api/comments/{id}
//	GET    /api/categories
//	POST   /api/categories
//	POST   /api/admin/create
//	POST   /api/admin/promote
//	POST   /api/upload                   (rate limited)
//
// MIDDLEWARE ORDER:
//  1. RequestID: unique id per request, picked up by the logger
//  2. RealIP: client IP from X-Forwarded-For / X-Real-IP (rate limiter key)
//  3. Logger
//  4. Recoverer: a panic becomes a 500 instead of killing the process
//  5. CORS: the web client is served from another origin
//  6. Authenticate: resolves the bearer token, if any, to a user
//
// Which routes need a session or admin role is decided in the services, not
// here.
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// === Services ===
	store := s.deps.Store
	accounts := service.NewAuthService(store, s.deps.Passwords, s.config.AdminToken, s.logger)
	articles := service.NewArticleService(store, s.logger)
	comments := service.NewCommentService(store, s.logger)
	categories := service.NewCategoryService(store, s.logger)
	admins := service.NewAdminService(store, accounts, s.logger)

	r.Use(auth.Authenticate(accounts, s.logger))

	// === Handlers ===
	authHandler := handler.NewAuthHandler(accounts, s.logger)
	articleHandler := handler.NewArticleHandler(articles, s.logger)
	commentHandler := handler.NewCommentHandler(comments, s.logger)
	categoryHandler := handler.NewCategoryHandler(categories, s.logger)
	adminHandler := handler.NewAdminHandler(admins, s.logger)
	uploadHandler := handler.NewUploadHandler(s.deps.Uploader, s.config.MaxUploadBytes, s.logger)
	healthHandler := handler.NewHealthHandler(store, s.logger)

	limited := func(r chi.Router) {
		if s.deps.Limiter != nil {
			r.Use(middleware.RateLimit(s.deps.Limiter, s.logger))
		}
	}

	r.Get("/healthz", healthHandler.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			limited(r)
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/signin", authHandler.HandleSignin)
			r.Post("/admin-token", authHandler.HandleAdminToken)
			r.Post("/signout", authHandler.HandleSignout)
			r.Get("/me", authHandler.HandleMe)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", articleHandler.HandleList)
			r.Post("/", articleHandler.HandleCreate)
			r.Get("/{id}", articleHandler.HandleGet)
			r.Delete("/{id}", articleHandler.HandleDelete)
			r.Get("/{id}/comments", commentHandler.HandleList)
			r.Post("/{id}/comments", commentHandler.HandleCreate)
		})

		r.Delete("/comments/{id}", commentHandler.HandleDelete)

		r.Get("/categories", categoryHandler.HandleList)
		r.Post("/categories", categoryHandler.HandleCreate)

		r.Post("/admin/create", adminHandler.HandleCreate)
		r.Post("/admin/promote", adminHandler.HandlePromote)

		r.Group(func(r chi.Router) {
			limited(r)
			r.Post("/upload", uploadHandler.HandleUpload)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully:
//  1. stop accepting new connections
//  2. wait up to 30s for in-flight requests
//  3. close the store
func (s *Server) Start() error {
	defer func() {
		if err := s.deps.Store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second, // uploads
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("db_driver", s.config.DBDriver),
			slog.String("upload_provider", s.config.UploadProvider),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
