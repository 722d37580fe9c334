// Package server wires the application together and runs the HTTP server.
//
// This is the composition root: every dependency is built here, once, and
// handed down. Nothing below this package reads config or opens resources.
//
//	config.Config → sqlite.DB ─┬→ AuthService     → AuthHandler
//	                           ├→ MediaService    → MediaHandler
//	                           └→ ActivityService → ActivityHandler
//	             → tmdb.Client ──→ MetadataService → SearchHandler
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/showtracker/internal/auth"
	"github.com/sakif/showtracker/internal/config"
	"github.com/sakif/showtracker/internal/handler"
	"github.com/sakif/showtracker/internal/metadata"
	"github.com/sakif/showtracker/internal/metadata/tmdb"
	"github.com/sakif/showtracker/internal/middleware"
	sqliteRepo "github.com/sakif/showtracker/internal/repository/sqlite"
	"github.com/sakif/showtracker/internal/service"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server owns the router and the database. The database is closed when
// Start returns, or by Close if Start is never called.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds every service, handler and route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
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

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET    /                        → app page (when the template exists)
//	GET    /static/*                → front-end assets (when the dir exists)
//	GET    /healthz                 → database ping
//	POST   /register                → create account
//	POST   /login                   → start session
//	POST   /logout                  → end session
//	GET    /me                      → current session's profile
//	GET    /search                  → metadata search
//	GET    /api/tmdb/search         → same, front-end parameter names
//	POST   /verify-image            → image check
//	POST   /media                   → add to list
//	GET    /media/{username}        → list
//	PUT    /media/{id}              → partial update
//	DELETE /media/{id}              → remove
//	GET    /activities/{username}   → recent activity
//
// MIDDLEWARE ORDER:
// RequestID runs first so the logger can print the id; Recoverer sits inside
// the logger so a panic is logged as the 500 it becomes.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.SecretKey, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.Session(tokens))

	// === Services ===
	// *sqlite.DB implements all three repository interfaces.
	provider := tmdb.New(tmdb.Config{
		APIKey:      s.config.TMDB.APIKey,
		AccessToken: s.config.TMDB.AccessToken,
		BaseURL:     s.config.TMDB.BaseURL,
		Timeout:     s.config.TMDB.Timeout,
	})
	if s.config.TMDB.APIKey == "" && s.config.TMDB.AccessToken == "" {
		s.logger.Warn("no TMDB credentials configured, searches will fail")
	}

	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	mediaService := service.NewMediaService(s.db, s.logger)
	activityService := service.NewActivityService(s.db, s.logger)
	metadataService := service.NewMetadataService(provider, metadata.AcceptAll{}, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, s.config.SecureCookies, s.logger)
	mediaHandler := handler.NewMediaHandler(mediaService, s.logger)
	activityHandler := handler.NewActivityHandler(activityService, s.logger)
	searchHandler := handler.NewSearchHandler(metadataService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	// === Front end ===
	// Both are optional so the API can run on its own.
	if dirExists(s.config.StaticDir) {
		fileServer := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	} else if s.config.StaticDir != "" {
		s.logger.Info("static directory not found, /static disabled",
			slog.String("dir", s.config.StaticDir))
	}

	if s.config.TemplateDir != "" && fileExists(filepath.Join(s.config.TemplateDir, handler.IndexTemplate)) {
		pageHandler, err := handler.NewPageHandler(s.config.TemplateDir, s.logger)
		if err != nil {
			return fmt.Errorf("creating page handler: %w", err)
		}
		s.router.Get("/", pageHandler.HandleIndex)
	}

	// === API ===
	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/logout", authHandler.HandleLogout)
	s.router.Get("/me", authHandler.HandleMe)

	s.router.Get("/search", searchHandler.HandleSearch)
	s.router.Get("/api/tmdb/search", searchHandler.HandleTMDBSearch)
	s.router.Post("/verify-image", searchHandler.HandleVerifyImage)

	s.router.Post("/media", mediaHandler.HandleAdd)
	s.router.Get("/media/{username}", mediaHandler.HandleList)
	s.router.Put("/media/{id}", mediaHandler.HandleUpdate)
	s.router.Delete("/media/{id}", mediaHandler.HandleDelete)

	s.router.Get("/activities/{username}", activityHandler.HandleList)

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests
//  3. Close the database (checkpoints the WAL, releases the file lock)
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
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
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

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
