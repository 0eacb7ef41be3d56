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

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/credential"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/workflow"
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

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcp {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("owner_repo", cfg.Remote.OwnerRepo),
		slog.String("branch", cfg.Remote.Branch),
		slog.String("notes_path", cfg.Remote.NotesPath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Build the session, remote store client, and workflow. The client
	// pulls the credential from the session on every request.
	sess := session.New()
	store := remote.New(cfg.Remote.BaseURL, cfg.Remote.OwnerRepo, cfg.Remote.Branch, sess.Token)
	wf := workflow.New(store, sess, cfg.Remote.NotesPath)

	// Credential sources: config, token file, then interactive prompt.
	creds := app.creds
	if creds == nil {
		chain := credential.Chain{
			credential.Static(cfg.Credential.Token),
			credential.File{Path: cfg.Credential.File},
		}
		if cfg.Credential.Prompt && !app.mcp {
			chain = append(chain, credential.Prompt{In: os.Stdin, Out: os.Stderr})
		}
		creds = chain
	}

	var keeper credential.Keeper
	if cfg.Credential.File != "" {
		keeper = credential.File{Path: cfg.Credential.File}
	}

	if app.mcp {
		// The MCP surface has no login tool; the session must be
		// established before serving.
		token, ok := creds.Obtain()
		if !ok {
			return fmt.Errorf("mcp mode requires a configured credential")
		}
		identity, err := wf.Authenticate(ctx, token)
		if err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
		logger.Info("Session started", slog.String("identity", identity))
		logger.Info("Serving MCP over stdio")
		return mcpserver.New(wf).ServeStdio()
	}

	// For the HTTP surface a startup login is best effort; the front end
	// can authenticate later through POST /api/session.
	if token, ok := creds.Obtain(); ok {
		if identity, err := wf.Authenticate(ctx, token); err != nil {
			logger.Warn("startup login failed", slog.String("error", err.Error()))
		} else {
			logger.Info("Session started", slog.String("identity", identity))
		}
	}

	apiRouter := api.NewRouter(wf, keeper, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
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
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

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
