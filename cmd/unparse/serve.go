package main

import (
	"context"
	"os"
	"strings"

	"github.com/aretw0/unparse/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP render server",
	Long: `Serves POST /render, POST /chunks (SSE), GET /grammars, GET /healthz and
GET /metrics. With --redis, renders are cached in Redis and concurrent misses
are serialized across replicas.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.Serve(ctx, serveOptions(cmd))
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the unparse and list_grammars tools to AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.ServeMCP(ctx, transport, serveOptions(cmd))
	},
}

func serveOptions(cmd *cobra.Command) cli.ServeOptions {
	flags := cmd.Flags()
	opts := cli.ServeOptions{}
	opts.Port, _ = flags.GetInt("port")
	opts.Grammars, _ = flags.GetString("grammars")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.CacheTTL, _ = flags.GetDuration("cache-ttl")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.CacheKeys, _ = flags.GetStringSlice("cache-key")
	if len(opts.CacheKeys) == 0 {
		if env := os.Getenv("UNPARSE_CACHE_KEYS"); env != "" {
			opts.CacheKeys = strings.Split(env, ",")
		}
	}
	if debug, _ := flags.GetBool("debug"); debug {
		opts.LogLevel = "debug"
	}
	if cmd.Name() == "serve" {
		opts.Banner = cmd.ErrOrStderr()
	}
	return opts
}

func init() {
	rootCmd.AddCommand(serveCmd, mcpCmd)
	for _, c := range []*cobra.Command{serveCmd, mcpCmd} {
		c.Flags().String("redis", "", "Redis address (host:port) for the shared render cache")
		c.Flags().Duration("cache-ttl", 0, "Lifetime of cached renders in Redis (0 keeps them)")
		c.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
		c.Flags().StringSlice("cache-key", nil, "Hex AES-256 key sealing cached renders; repeat to add fallback keys (env UNPARSE_CACHE_KEYS)")
	}
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
