package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rendis/atelier/internal/api"
	"github.com/rendis/atelier/internal/expressions"
	"github.com/rendis/atelier/internal/identity"
	"github.com/rendis/atelier/internal/logging"
	"github.com/rendis/atelier/internal/store"
	"github.com/rendis/atelier/internal/streaming"
	"github.com/rendis/atelier/internal/validation"
	"github.com/rendis/atelier/internal/workspace"
)

func main() {
	if err := run(); err != nil {
		slog.Error("atelier exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := loadConfig()

	logger := slog.New(logging.NewCorrelationHandler(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}),
	))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	registry, err := expressions.NewRegistry()
	if err != nil {
		return err
	}
	validator, err := validation.NewGraphValidator()
	if err != nil {
		return err
	}
	validator.WithExpressionChecker(registry)

	hub := streaming.NewMemoryHub()

	server := api.NewServer(api.Deps{
		Store:     st,
		Workspace: workspace.NewStore(workspace.TabAPI, hub),
		Validator: validator,
		Resolver:  identity.NewResolver(st),
		Hub:       hub,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("atelier listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openStore picks the storage backend. The libSQL path creates the data
// directory and runs migrations before serving.
func openStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	if cfg.Memory {
		logger.Warn("using in-memory store, nothing will be persisted")
		return store.NewMemoryStore(), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, err
	}
	st, err := store.NewLibSQLStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	logger.Info("store ready", "path", cfg.DBPath)
	return st, nil
}
