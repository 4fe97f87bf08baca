package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/tools"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

// Version is set via ldflags at build time.
var Version = "dev"

// WorkflowRunner generates a workflow from a prompt.
type WorkflowRunner interface {
	Run(ctx context.Context, prompt string) (*pipeline.WorkflowOutcome, error)
}

// GraphSource exposes the current workflow graph.
type GraphSource interface {
	Graph() workflow.Graph
}

// EmbeddingRunner runs the embeddings tool with caller parameters.
type EmbeddingRunner interface {
	Run(ctx context.Context, params map[string]string) (*tools.EmbeddingsOutput, error)
}

// Server wraps an MCP server that exposes workflow generation and the
// embeddings tool.
type Server struct {
	workflow  WorkflowRunner
	graph     GraphSource
	embedding EmbeddingRunner
	logger    *slog.Logger
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server. Tools whose dependency is nil are not
// registered.
func NewServer(wf WorkflowRunner, graph GraphSource, embedding EmbeddingRunner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		workflow:  wf,
		graph:     graph,
		embedding: embedding,
		logger:    logger.With("component", "mcp"),
	}

	s.mcp = server.NewMCPServer(
		"promptflow",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	if s.workflow != nil {
		s.mcp.AddTool(generateWorkflowTool, s.handleGenerateWorkflow)
	}
	if s.graph != nil {
		s.mcp.AddTool(getWorkflowTool, s.handleGetWorkflow)
	}
	if s.embedding != nil {
		s.mcp.AddTool(embeddingsTool, s.handleEmbeddings)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
