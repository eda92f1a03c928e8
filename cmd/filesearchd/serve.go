package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/filesearchd/internal/config"
	"github.com/fyrsmithlabs/filesearchd/internal/content"
	"github.com/fyrsmithlabs/filesearchd/internal/httpserver"
	"github.com/fyrsmithlabs/filesearchd/internal/logging"
	"github.com/fyrsmithlabs/filesearchd/internal/mask"
	mcpserver "github.com/fyrsmithlabs/filesearchd/internal/mcp"
	"github.com/fyrsmithlabs/filesearchd/internal/metrics"
	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
	"github.com/fyrsmithlabs/filesearchd/internal/walk"
)

// runServe loads configuration, wires the engine, and serves until a
// shutdown signal arrives.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting filesearchd",
		zap.String("version", version),
		zap.String("transport", cfg.Server.Transport),
		zap.Strings("allowed_paths", cfg.Sandbox.AllowedPaths))

	registry := prometheus.NewRegistry()
	server, err := buildServer(cfg, logger, registry)
	if err != nil {
		return err
	}

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, cfg, logger, server, registry)
	default:
		return server.Run(ctx)
	}
}

// buildServer wires the engine components into an MCP server.
func buildServer(cfg *config.Config, logger *zap.Logger, registry prometheus.Registerer) (*mcpserver.Server, error) {
	resolver, err := sandbox.NewResolver(sandbox.Options{
		AllowedPaths: cfg.Sandbox.AllowedPaths,
		ExcludePaths: cfg.Sandbox.ExcludePaths,
		HideHidden:   !cfg.Sandbox.ShowHidden,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build path resolver: %w", err)
	}

	walker := walk.NewWalker(resolver, cfg.Sandbox.DefaultTimeLimit, logger)
	searcher := content.NewSearcher(resolver, cfg.Sandbox.DefaultTimeLimit, logger)

	maskMode, err := mask.ParseMode(cfg.Masker.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid masker mode: %w", err)
	}
	masker := mask.New(cfg.Masker.Paths, cfg.Masker.Token, maskMode, cfg.Masker.Enabled)

	mcpCfg := mcpserver.DefaultConfig()
	mcpCfg.Version = version
	mcpCfg.Logger = logger
	mcpCfg.Metrics = metrics.New(registry)

	return mcpserver.NewServer(mcpCfg, resolver, walker, searcher, masker)
}

// serveHTTP runs the streamable HTTP transport with health and metrics
// endpoints, shutting down gracefully on context cancellation.
func serveHTTP(ctx context.Context, cfg *config.Config, logger *zap.Logger, server *mcpserver.Server, gatherer prometheus.Gatherer) error {
	httpSrv, err := httpserver.NewServer(server.HTTPHandler(), gatherer, logger, &httpserver.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to build http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}
