package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/unparse"
	"github.com/aretw0/unparse/internal/logging"
	"github.com/aretw0/unparse/internal/presentation/tui"
	httpAdapter "github.com/aretw0/unparse/pkg/adapters/http"
	"github.com/aretw0/unparse/pkg/adapters/mcp"
	"github.com/aretw0/unparse/pkg/adapters/memory"
	"github.com/aretw0/unparse/pkg/adapters/redis"
	"github.com/aretw0/unparse/pkg/observability"
	"github.com/aretw0/unparse/pkg/persistence/middleware"
	"github.com/aretw0/unparse/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions configure the long-running modes.
type ServeOptions struct {
	Port      int
	Grammars  string        // Directory of extra grammar files
	RedisAddr string        // Shared render cache and locks; empty uses memory
	CacheTTL  time.Duration // Redis entry lifetime; 0 keeps entries
	CacheKeys []string      // Hex AES-256 keys sealing cache entries; the first is active
	LogLevel  string
	Banner    io.Writer // Where to print the startup banner; nil for none
}

// stack is a configured render service with its metrics registry.
type stack struct {
	svc      *service.Service
	registry *prometheus.Registry
	logger   *slog.Logger
	close    func() error
}

func newStack(ctx context.Context, opts ServeOptions, logger *slog.Logger) (*stack, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svcOpts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(observability.NewMetrics(registry)),
	}
	if opts.Grammars != "" {
		gs, err := LoadGrammarDir(opts.Grammars)
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, service.WithResolver(gs))
	}

	var mws []middleware.Middleware
	if len(opts.CacheKeys) > 0 {
		cfg, err := middleware.ParseKeys(opts.CacheKeys...)
		if err != nil {
			return nil, fmt.Errorf("cache keys: %w", err)
		}
		enc, err := middleware.NewEncryption(cfg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
		logger.Info("Encrypting render cache entries", "fallback_keys", len(cfg.FallbackKeys))
	}

	closer := func() error { return nil }
	if opts.RedisAddr != "" {
		cache, err := redis.New(ctx, opts.RedisAddr, redis.WithTTL(opts.CacheTTL))
		if err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts,
			service.WithCache(middleware.Chain(cache, mws...)),
			service.WithLocker(redis.NewLocker(cache.Client(), cache.Prefix())),
		)
		closer = cache.Close
		logger.Info("Using redis render cache", "addr", opts.RedisAddr, "ttl", opts.CacheTTL)
	} else {
		svcOpts = append(svcOpts, service.WithCache(middleware.Chain(memory.NewCache(), mws...)))
	}

	return &stack{
		svc:      service.New(svcOpts...),
		registry: registry,
		logger:   logger,
		close:    closer,
	}, nil
}

func serveLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewJSON(os.Stderr, lvl), nil
}

// Serve runs the HTTP API until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger, err := serveLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	st, err := newStack(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer st.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           httpAdapter.NewHandler(st.svc, st.registry, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if opts.Banner != nil {
		tui.PrintBanner(opts.Banner, tui.Profile(opts.Banner, true), unparse.Version, "http", srv.Addr)
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting unparse server", "addr", srv.Addr, "grammars", st.svc.Grammars())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
			return srv.Close()
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on stdio, or on SSE when transport is "sse".
func ServeMCP(ctx context.Context, transport string, opts ServeOptions) error {
	logger, err := serveLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	st, err := newStack(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer st.close()

	srv := mcp.NewServer(st.svc, logger)
	switch transport {
	case "stdio":
		logger.Info("Starting unparse MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting unparse MCP Server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
