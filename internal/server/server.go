// Package server wires the dependency graph and runs the HTTP server.
//
// This is the composition root: the database, auth services, handlers and
// routes are all assembled here, so main.go stays minimal and the rest of
// the codebase never constructs its own dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/city-watch/user-management/internal/auth"
	"github.com/city-watch/user-management/internal/config"
	"github.com/city-watch/user-management/internal/handler"
	"github.com/city-watch/user-management/internal/metrics"
	"github.com/city-watch/user-management/internal/middleware"
	sqliteRepo "github.com/city-watch/user-management/internal/repository/sqlite"
	"github.com/city-watch/user-management/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → AuthService/PointsService → handlers → routes
//
// Each layer receives only what it needs; handlers never touch the
// database, services never touch HTTP. The signing secret flows from the
// config into the TokenService here and nowhere else.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services and mounts every
// route.
//
//	GET  /                    service banner
//	GET  /health/live         liveness probe
//	GET  /health/ready        readiness probe (store connectivity)
//	GET  /db-check            store diagnostic
//	GET  /metrics             Prometheus metrics
//	POST /api/v1/register     create account, returns token (201)
//	POST /api/v1/login        authenticate, returns token (200)
//	GET  /api/v1/profile/me   authenticated profile (bearer token)
//	GET  /api/v1/leaderboard  public top 10 by points
//	POST /internal/events     gamification event intake
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	pointsService := service.NewPointsService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	leaderboardHandler := handler.NewLeaderboardHandler(authService, s.logger)
	eventsHandler := handler.NewEventsHandler(pointsService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	s.router.Get("/", healthHandler.HandleRoot)
	s.router.Get("/health/live", healthHandler.HandleLive)
	s.router.Get("/health/ready", healthHandler.HandleReady)
	s.router.Get("/db-check", healthHandler.HandleDBCheck)
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/leaderboard", leaderboardHandler.HandleLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/profile/me", authHandler.HandleMe)
		})
	})

	// Called by the report service, not exposed publicly; network policy
	// keeps outsiders off this path.
	s.router.Post("/internal/events", eventsHandler.HandleEvent)

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests (30s budget), close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
