// Package main is the entry point for the cover-service HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bookforge/cover-service/internal/config"
	"github.com/bookforge/cover-service/internal/cover"
	"github.com/bookforge/cover-service/internal/server"
	"github.com/bookforge/cover-service/internal/service"
	"github.com/bookforge/cover-service/internal/storage"
)

func main() {
	// run() is separate so deferred cleanup executes before os.Exit
	// (deferred functions don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("COVER_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// zap outputs JSON in production and human-readable format in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; not a real problem.
	defer func() { _ = logger.Sync() }()

	deps, cleanup, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(cfg, deps, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

// buildDeps wires storage, engine, and service. The returned cleanup
// closes the database.
func buildDeps(cfg *config.Config, logger *zap.Logger) (server.Deps, func(), error) {
	noop := func() {}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return server.Deps{}, noop, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return server.Deps{}, noop, fmt.Errorf("opening database: %w", err)
	}
	cleanup := func() { db.Close() }

	fs, err := storage.NewFileSystem(cfg.Storage.CoverDir)
	if err != nil {
		cleanup()
		return server.Deps{}, noop, fmt.Errorf("creating filesystem: %w", err)
	}

	platform := cfg.Platform.Apply(cover.DefaultPlatform())

	var opts []cover.Option
	if cfg.Platform.EnablePDF {
		opts = append(opts, cover.WithPageRasterizer(cover.PopplerRasterizer{}))
	}

	engine, err := cover.New(platform, opts...)
	if err != nil {
		cleanup()
		return server.Deps{}, noop, fmt.Errorf("creating engine: %w", err)
	}

	var normalizer service.Normalizer
	if cfg.Platform.EnableVips {
		normalizer = service.VipsNormalizer{}
	}

	covers := service.NewCoverService(storage.NewCoverRepository(db), fs, engine, normalizer, logger)

	return server.Deps{CoverService: covers}, cleanup, nil
}
