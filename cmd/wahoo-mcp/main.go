package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/askaldwell/wahoo-mcp/internal/config"
	apperrors "github.com/askaldwell/wahoo-mcp/internal/errors"
	"github.com/askaldwell/wahoo-mcp/internal/fit"
	"github.com/askaldwell/wahoo-mcp/internal/logging"
	"github.com/askaldwell/wahoo-mcp/internal/mcpserver"
	"github.com/askaldwell/wahoo-mcp/internal/server"
	"github.com/askaldwell/wahoo-mcp/internal/tokenstore"
	"github.com/askaldwell/wahoo-mcp/internal/wahoo"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	serveHTTP := flag.Bool("http", false, "serve MCP over streamable HTTP on MCP_LISTEN_ADDR instead of stdio")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Info("wahoo-mcp starting",
		slog.String("version", Version),
		slog.String("token_file", cfg.TokenFile),
		slog.String("api_url", cfg.APIURL),
	)

	store, err := tokenstore.NewStore(cfg.TokenFile, logger)
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}

	client, err := wahoo.NewClient(store, wahoo.Config{
		BaseURL:      cfg.APIURL,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.HTTPTimeout,
		Logger:       logger,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNoToken) {
			return fmt.Errorf("%w; run wahoo-auth to obtain tokens", err)
		}

		return fmt.Errorf("creating API client: %w", err)
	}

	var cache *fit.Cache
	if cfg.FITCachePath != "" {
		cache, err = fit.OpenCache(cfg.FITCachePath)
		if err != nil {
			return fmt.Errorf("opening FIT cache: %w", err)
		}
		defer cache.Close()

		logger.Info("FIT analysis cache enabled", slog.String("path", cfg.FITCachePath))
	}

	analyzer := fit.NewAnalyzer(fit.AnalyzerConfig{
		Cache:   cache,
		Logger:  logger,
		Timeout: cfg.HTTPTimeout,
	})

	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: "wahoo-mcp", Version: Version},
		nil,
	)
	mcpserver.RegisterTools(mcpServer, client, analyzer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serveHTTP {
		return runHTTP(ctx, mcpServer, cfg.MCPListenAddr, logger)
	}

	return runStdio(ctx, mcpServer, logger)
}

// runStdio serves a single MCP session over stdin/stdout. This is the
// transport MCP hosts use when they launch the server themselves.
func runStdio(ctx context.Context, mcpServer *mcp.Server, logger *slog.Logger) error {
	logger.Info("serving MCP over stdio")

	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

// runHTTP serves MCP over the streamable HTTP transport until ctx is
// canceled.
func runHTTP(ctx context.Context, mcpServer *mcp.Server, addr string, logger *slog.Logger) error {
	httpServer := server.NewServer(addr, mcpServer)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting MCP server", slog.String("listen", addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
