// Package main is the entry point for the ShowTracker server.
//
// main stays small: load config, build the logger, make sure the database
// directory exists, then hand everything to internal/server.
//
// Configuration comes from defaults, an optional file named by CONFIG_FILE,
// a .env file and the environment (see internal/config).
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/showtracker/internal/config"
	"github.com/sakif/showtracker/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === LOGGING ===
	// Text handler on stdout. DEBUG=true also logs request payload summaries.
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.GeneratedSecret {
		logger.Warn("SECRET_KEY not set, using a random secret; sessions will not survive a restart")
	}

	// === DATABASE DIRECTORY ===
	// os.MkdirAll is a no-op when the directory already exists.
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
