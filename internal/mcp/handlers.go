package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

// handleGenerateWorkflow runs the prompt through the workflow pipeline.
func (s *Server) handleGenerateWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}

	out, err := s.workflow.Run(ctx, prompt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", pipeline.UserMessage(err), err)), nil
	}

	summary := fmt.Sprintf("Added %d blocks and %d edges (model %s, %d+%d tokens, ~$%.4f).",
		len(out.Result.BlockIDs), len(out.Result.EdgeIDs),
		out.Model, out.InputTokens, out.OutputTokens, out.CostUSD)
	if out.Result.IgnoredEdges > 0 {
		summary += fmt.Sprintf(" %d model-proposed edges were ignored.", out.Result.IgnoredEdges)
	}
	return mcp.NewToolResultText(summary), nil
}

// handleGetWorkflow returns the current graph.
func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g := s.graph.Graph()

	switch format := request.GetString("format", "json"); format {
	case "mermaid":
		return mcp.NewToolResultText(workflow.Mermaid(g)), nil
	case "json", "":
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding workflow: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q: must be json or mermaid", format)), nil
	}
}

// handleEmbeddings runs the embeddings tool with the string arguments.
func (s *Server) handleEmbeddings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := make(map[string]string)
	for k, v := range request.GetArguments() {
		str, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("parameter %q must be a string", k)), nil
		}
		params[k] = str
	}

	out, err := s.embedding.Run(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(pipeline.UserMessage(err)), nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding embeddings: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
