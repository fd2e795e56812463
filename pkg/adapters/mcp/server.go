package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/causal"
	"github.com/aretw0/causal/internal/presentation/graph"
	"github.com/aretw0/causal/pkg/domain"
	"github.com/aretw0/causal/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TheoriesURI is the resource listing every theory with its signature.
const TheoriesURI = "causal://theories"

// CompileResult aligns with the HTTP API and provides a unified structure across adapters.
type CompileResult struct {
	Term    string   `json:"term" jsonschema_description:"The compiled morphism term"`
	Dom     []string `json:"dom" jsonschema_description:"Input objects"`
	Cod     []string `json:"cod" jsonschema_description:"Output objects"`
	Mermaid string   `json:"mermaid,omitempty" jsonschema_description:"Mermaid flowchart of the string diagram"`
}

// DiagramResult carries a rendered string diagram.
type DiagramResult struct {
	Mermaid string `json:"mermaid" jsonschema_description:"Mermaid flowchart"`
}

// CheckResult reports a homomorphism validation.
type CheckResult struct {
	Valid    bool     `json:"valid" jsonschema_description:"True if the map is a homomorphism"`
	Failures []string `json:"failures,omitempty" jsonschema_description:"Every failed check, one per line"`
}

// Server wraps a Workspace and exposes it as an MCP Server.
type Server struct {
	ws        ports.Workspace
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(ws ports.Workspace, opts ...Option) *Server {
	s := &Server{
		ws:        ws,
		mcpServer: server.NewMCPServer("causal-mcp", causal.Version),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it
// gracefully when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

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

		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_theories
	s.mcpServer.AddTool(mcp.NewTool("list_theories",
		mcp.WithDescription("List the names of every theory in the workspace."),
	), s.handleListTheories)

	// TOOL: compile_program
	compileTool := mcp.NewTool("compile_program",
		mcp.WithDescription("Compile a straight-line program (one Python-like def) into a morphism term of a theory."),
		mcp.WithString("theory", mcp.Required(), mcp.Description("Theory name")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Program source, e.g. def m(x = Bool): return neg(x)")),
		mcp.WithOutputSchema[CompileResult](),
	)
	s.mcpServer.AddTool(compileTool, mcp.NewStructuredToolHandler(s.handleCompile))

	// TOOL: render_diagram
	diagramTool := mcp.NewTool("render_diagram",
		mcp.WithDescription("Compile a program and return the Mermaid flowchart of its string diagram."),
		mcp.WithString("theory", mcp.Required(), mcp.Description("Theory name")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Program source")),
		mcp.WithString("highlight", mcp.Description("Comma separated generator names to highlight")),
		mcp.WithOutputSchema[DiagramResult](),
	)
	s.mcpServer.AddTool(diagramTool, mcp.NewStructuredToolHandler(s.handleRenderDiagram))

	// TOOL: check_homomorphism
	checkTool := mcp.NewTool("check_homomorphism",
		mcp.WithDescription("Validate a homomorphism document (YAML or JSON with source, target, objects, generators)."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Homomorphism document")),
		mcp.WithOutputSchema[CheckResult](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheck))
}

func (s *Server) handleListTheories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.ws.Theories(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CompileResult, error) {
	theory, _ := args["theory"].(string)
	source, _ := args["source"].(string)

	t, err := s.ws.Compile(ctx, theory, source)
	if err != nil {
		s.logger.Debug("MCP Compile: rejected", "theory", theory, "err", err)
		return CompileResult{}, fmt.Errorf("compile failed: %w", err)
	}
	return CompileResult{
		Term:    t.String(),
		Dom:     t.Dom().Names(),
		Cod:     t.Cod().Names(),
		Mermaid: graph.GenerateMermaid(t, nil),
	}, nil
}

func (s *Server) handleRenderDiagram(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DiagramResult, error) {
	theory, _ := args["theory"].(string)
	source, _ := args["source"].(string)

	var overlay *graph.Overlay
	if h, ok := args["highlight"].(string); ok && h != "" {
		overlay = &graph.Overlay{Highlight: strings.Split(h, ",")}
	}

	t, err := s.ws.Compile(ctx, theory, source)
	if err != nil {
		return DiagramResult{}, fmt.Errorf("compile failed: %w", err)
	}
	return DiagramResult{Mermaid: graph.GenerateMermaid(t, overlay)}, nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CheckResult, error) {
	document, _ := args["document"].(string)

	_, err := s.ws.Homomorphism(ctx, []byte(document))
	if err != nil && !errors.Is(err, domain.ErrValidationFailure) {
		return CheckResult{}, fmt.Errorf("check failed: %w", err)
	}

	res := CheckResult{Valid: err == nil}
	for _, v := range domain.ValidationErrors(err) {
		res.Failures = append(res.Failures, v.Error())
	}
	return res, nil
}

// theorySummary is one entry of the theories resource.
type theorySummary struct {
	Name       string             `json:"name"`
	Objects    []string           `json:"objects"`
	Generators []domain.Generator `json:"generators"`
	Equations  int                `json:"equations"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TheoriesURI, "Workspace Theories",
		mcp.WithMIMEType("application/json"),
	), s.readTheories)
}

func (s *Server) readTheories(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.ws.Theories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list theories: %w", err)
	}

	summaries := make([]theorySummary, 0, len(names))
	for _, name := range names {
		p, err := s.ws.Theory(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load theory %s: %w", name, err)
		}
		doc := p.Document()
		summaries = append(summaries, theorySummary{
			Name:       doc.Name,
			Objects:    doc.Objects,
			Generators: doc.Generators,
			Equations:  len(doc.Equations),
		})
	}
	jsonBytes, _ := json.Marshal(summaries)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TheoriesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
