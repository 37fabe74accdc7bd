package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/unparse"
	"github.com/aretw0/unparse/pkg/service"
	"github.com/aretw0/unparse/pkg/tree"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GrammarURI is the resource URI prefix of grammar references.
const GrammarURI = "unparse://grammars/"

// GrammarSummary is one entry of the list_grammars result.
type GrammarSummary struct {
	Name        string `json:"name" jsonschema_description:"Grammar name, usable as the grammar argument of unparse"`
	Description string `json:"description,omitempty" jsonschema_description:"What the grammar renders"`
	Rules       int    `json:"rules" jsonschema_description:"Number of node types the grammar defines"`
}

// Server exposes the render service as an MCP Server.
type Server struct {
	svc       *service.Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:       svc,
		logger:    logger,
		mcpServer: server.NewMCPServer("unparse-mcp", strings.TrimSpace(unparse.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it
// down when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: unparse
	unparseTool := mcp.NewTool("unparse",
		mcp.WithDescription("Render a syntax tree back to source text. "+
			"Nodes are objects with a type, an optional value, named child nodes under fields "+
			"and an ordered children list."),
		mcp.WithString("tree", mcp.Required(), mcp.Description("The tree as JSON or YAML")),
		mcp.WithString("grammar", mcp.Description("Grammar name (default: "+service.DefaultGrammar+"); see list_grammars")),
		mcp.WithBoolean("minify", mcp.Description("Emit the most compact output the grammar allows")),
	)
	s.mcpServer.AddTool(unparseTool, s.handleUnparse)

	// TOOL: list_grammars
	listTool := mcp.NewTool("list_grammars",
		mcp.WithDescription("List the grammars the unparse tool accepts."),
		mcp.WithOutputSchema[[]GrammarSummary](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListGrammars))
}

func (s *Server) handleUnparse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := request.GetString("grammar", "")
	if name != "" && !slices.Contains(s.svc.Grammars(), name) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown grammar %q", name)), nil
	}

	root, err := tree.ParseUntrusted(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Render(ctx, service.Request{
		Grammar: name,
		Minify:  request.GetBool("minify", false),
		Tree:    root,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.Debug("MCP unparse: render failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) handleListGrammars(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) ([]GrammarSummary, error) {
	names := s.svc.Grammars()
	out := make([]GrammarSummary, 0, len(names))
	for _, name := range names {
		g, err := s.svc.Grammar(name)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", name, err)
		}
		out = append(out, GrammarSummary{Name: g.Name, Description: g.Description, Rules: len(g.Definitions)})
	}
	return out, nil
}

func (s *Server) registerResources() {
	// EXPOSE: unparse://grammars/<name>
	for _, name := range s.svc.Grammars() {
		uri := GrammarURI + name
		s.mcpServer.AddResource(mcp.NewResource(uri, name+" grammar reference",
			mcp.WithMIMEType("text/markdown"),
		), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return s.readGrammar(uri, name)
		})
	}
}

func (s *Server) readGrammar(uri, name string) ([]mcp.ResourceContents, error) {
	g, err := s.svc.Grammar(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     g.Markdown(),
		},
	}, nil
}
