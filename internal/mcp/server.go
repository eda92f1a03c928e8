// Package mcp exposes the file search engine as MCP tools.
//
// This implementation uses the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp)
// and calls the internal engine packages directly. Every path-valued
// input is unmasked on entry and every path-valued output is masked on
// exit, so raw filesystem paths never cross the trust boundary.
package mcp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/filesearchd/internal/content"
	"github.com/fyrsmithlabs/filesearchd/internal/mask"
	"github.com/fyrsmithlabs/filesearchd/internal/metrics"
	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
	"github.com/fyrsmithlabs/filesearchd/internal/walk"
)

// Server wires the engine components behind the MCP tool surface.
type Server struct {
	mcp      *mcp.Server
	resolver *sandbox.Resolver
	walker   *walk.Walker
	searcher *content.Searcher
	masker   *mask.Masker
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "filesearchd").
	Name string

	// Version is the server version (default: "1.0.0").
	Version string

	// Logger for structured logging.
	Logger *zap.Logger

	// Metrics instruments tool invocations. Optional.
	Metrics *metrics.Metrics
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "filesearchd",
		Version: "1.0.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates a new MCP server over the given engine components.
func NewServer(
	cfg *Config,
	resolver *sandbox.Resolver,
	walker *walk.Walker,
	searcher *content.Searcher,
	masker *mask.Masker,
) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if walker == nil {
		return nil, fmt.Errorf("walker is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if masker == nil {
		return nil, fmt.Errorf("masker is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:      mcpServer,
		resolver: resolver,
		walker:   walker,
		searcher: searcher,
		masker:   masker,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on the stdio transport and blocks until the
// context is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// HTTPHandler returns a streamable HTTP handler serving the same tool
// surface, for mounting into an HTTP server.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}
