// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ashkor/pressgate/internal/api"
	"github.com/ashkor/pressgate/internal/mcpserver"
	"github.com/ashkor/pressgate/internal/reader"
	"github.com/ashkor/pressgate/internal/reload"
	"github.com/ashkor/pressgate/internal/wordpress"
	pkgconfig "github.com/ashkor/pressgate/pkg/config"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. MCP mode owns stdout for the
	// protocol, so logs go to stderr there.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source_base_url", cfg.Source.BaseURL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize remote content client.
	client, err := wordpress.NewClient(wordpress.Config{
		BaseURL:       cfg.Source.BaseURL,
		Timeout:       cfg.Source.Timeout.Std(),
		UserAgent:     cfg.Source.UserAgent,
		IndexPageSize: cfg.Source.IndexPageSize,
		Windows:       windowsFromConfig(cfg),
	}, logger)
	if err != nil {
		return fmt.Errorf("init content client: %w", err)
	}

	// Build reader service.
	svc := reader.NewService(client, settingsFromConfig(cfg), logger)

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the config file and hot-swap the tunable settings.
	if app.configPath != "" {
		configPath := app.configPath
		g.Go(func() error {
			reload.Watch(gCtx, configPath, logger, func() {
				newCfg := NewDefaultConfig()
				if loadErr := pkgconfig.Load(configPath, newCfg); loadErr != nil {
					logger.Warn("config reload skipped",
						slog.String("path", configPath),
						slog.String("error", loadErr.Error()))
					return
				}
				client.SetWindows(windowsFromConfig(newCfg))
				svc.UpdateSettings(settingsFromConfig(newCfg))
				logger.Info("configuration reloaded", slog.String("path", configPath))
			})
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func windowsFromConfig(cfg *Config) wordpress.Windows {
	return wordpress.Windows{
		Post:    cfg.Source.Cache.Post.Std(),
		Index:   cfg.Source.Cache.Index.Std(),
		Related: cfg.Source.Cache.Related.Std(),
	}
}

func settingsFromConfig(cfg *Config) reader.Settings {
	return reader.Settings{
		IndexPageSize:      cfg.Source.IndexPageSize,
		RelatedLimit:       cfg.Content.RelatedLimit,
		FallbackCategoryID: cfg.Content.FallbackCategoryID,
		TitleRecovery:      cfg.Content.TitleRecovery,
	}
}
