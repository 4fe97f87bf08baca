package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/promptflow/internal/builder"
	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/tools"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

// mockWorkflow implements WorkflowRunner for testing.
type mockWorkflow struct {
	prompt string
	err    error
}

func (m *mockWorkflow) Run(_ context.Context, prompt string) (*pipeline.WorkflowOutcome, error) {
	m.prompt = prompt
	if m.err != nil {
		return nil, m.err
	}
	return &pipeline.WorkflowOutcome{
		Result:       &builder.Result{BlockIDs: []string{"a", "b"}, EdgeIDs: []string{"e1", "e2"}, IgnoredEdges: 1},
		Model:        "gpt-3.5-turbo",
		InputTokens:  100,
		OutputTokens: 50,
	}, nil
}

// mockEmbedding implements EmbeddingRunner for testing.
type mockEmbedding struct {
	params map[string]string
	err    error
}

func (m *mockEmbedding) Run(_ context.Context, params map[string]string) (*tools.EmbeddingsOutput, error) {
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	return &tools.EmbeddingsOutput{Embeddings: [][]float32{{0.5}}, Model: "text-embedding-3-small"}, nil
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, c := range r.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			sb.WriteString(tc.Text)
		case *mcp.TextContent:
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func newGraph(t *testing.T) *workflow.MemoryStore {
	t.Helper()
	store, err := workflow.NewMemoryStoreWithStart("start", workflow.Position{X: 300, Y: 300})
	if err != nil {
		t.Fatalf("NewMemoryStoreWithStart: %v", err)
	}
	return store
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"generate_workflow", generateWorkflowTool, "generate_workflow"},
		{"get_workflow", getWorkflowTool, "get_workflow"},
		{"openai_embeddings", embeddingsTool, "openai_embeddings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestToolFromDescriptor(t *testing.T) {
	tool := toolFromDescriptor(tools.OpenAIEmbeddings)

	for _, key := range []string{"input", "model", "apiKey"} {
		if _, ok := tool.InputSchema.Properties[key]; !ok {
			t.Errorf("missing property %q", key)
		}
	}

	required := map[string]bool{}
	for _, r := range tool.InputSchema.Required {
		required[r] = true
	}
	if !required["input"] {
		t.Error("input should be required")
	}
	if required["apiKey"] {
		t.Error("apiKey should be optional over MCP")
	}
	if required["model"] {
		t.Error("model should be optional")
	}
}

func TestNewServer(t *testing.T) {
	wf := &mockWorkflow{}
	graph := newGraph(t)
	srv := NewServer(wf, graph, &mockEmbedding{}, nil)

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.workflow != wf {
		t.Error("workflow not set correctly")
	}
}

func TestHandleGenerateWorkflow(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		wf := &mockWorkflow{}
		srv := NewServer(wf, newGraph(t), nil, nil)

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"prompt": "email to docs"}

		result, err := srv.handleGenerateWorkflow(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if wf.prompt != "email to docs" {
			t.Errorf("prompt = %q", wf.prompt)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Added 2 blocks and 2 edges") {
			t.Errorf("unexpected summary: %q", text)
		}
		if !strings.Contains(text, "1 model-proposed edges were ignored") {
			t.Errorf("expected ignored edge note: %q", text)
		}
	})

	t.Run("missing prompt", func(t *testing.T) {
		srv := NewServer(&mockWorkflow{}, nil, nil, nil)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleGenerateWorkflow(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing prompt")
		}
	})

	t.Run("pipeline failure", func(t *testing.T) {
		srv := NewServer(&mockWorkflow{err: pipeline.ErrMissingCredential}, nil, nil, nil)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"prompt": "x"}

		result, err := srv.handleGenerateWorkflow(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if !strings.Contains(resultText(t, result), "OpenAI API key not found") {
			t.Errorf("unexpected message: %q", resultText(t, result))
		}
	})
}

func TestHandleGetWorkflow(t *testing.T) {
	ctx := context.Background()
	srv := NewServer(nil, newGraph(t), nil, nil)

	t.Run("json", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleGetWorkflow(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var g workflow.Graph
		if err := json.Unmarshal([]byte(resultText(t, result)), &g); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(g.Blocks) != 1 || g.EntryPoint != "start" {
			t.Errorf("unexpected graph: %+v", g)
		}
	})

	t.Run("mermaid", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"format": "mermaid"}

		result, err := srv.handleGetWorkflow(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(resultText(t, result), "graph LR") {
			t.Errorf("expected mermaid, got %q", resultText(t, result))
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"format": "svg"}

		result, err := srv.handleGetWorkflow(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown format")
		}
	})
}

func TestHandleEmbeddings(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		emb := &mockEmbedding{}
		srv := NewServer(nil, nil, emb, nil)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"input": "hello", "model": "text-embedding-3-large"}

		result, err := srv.handleEmbeddings(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if emb.params["input"] != "hello" || emb.params["model"] != "text-embedding-3-large" {
			t.Errorf("unexpected params: %v", emb.params)
		}
		var out tools.EmbeddingsOutput
		if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(out.Embeddings) != 1 {
			t.Errorf("unexpected output: %+v", out)
		}
	})

	t.Run("non-string argument", func(t *testing.T) {
		emb := &mockEmbedding{}
		srv := NewServer(nil, nil, emb, nil)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"input": 42}

		result, err := srv.handleEmbeddings(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for non-string argument")
		}
		if emb.params != nil {
			t.Error("tool should not run")
		}
	})

	t.Run("tool failure", func(t *testing.T) {
		srv := NewServer(nil, nil, &mockEmbedding{err: errors.New("boom")}, nil)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"input": "x"}

		result, err := srv.handleEmbeddings(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error")
		}
	})
}
