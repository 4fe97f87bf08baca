package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ziadkadry99/promptflow/internal/history"
	"github.com/ziadkadry99/promptflow/internal/llm"
	"github.com/ziadkadry99/promptflow/internal/prompt"
	"github.com/ziadkadry99/promptflow/internal/tools"
)

// ToolRunner executes the embeddings tool descriptor.
type ToolRunner interface {
	Run(ctx context.Context, params map[string]string) (*tools.EmbeddingsOutput, error)
}

// Embedding runs text through the embeddings tool, filling in the
// configured credential and model when the caller leaves them blank.
type Embedding struct {
	tool     ToolRunner
	apiKey   string
	model    string
	recorder Recorder
	logger   *slog.Logger
}

// NewEmbedding creates an embedding pipeline. recorder and logger may be nil.
func NewEmbedding(tool ToolRunner, apiKey, model string, recorder Recorder, logger *slog.Logger) *Embedding {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedding{
		tool:     tool,
		apiKey:   apiKey,
		model:    model,
		recorder: recorder,
		logger:   logger.With("component", "pipeline", "pipeline", "embedding"),
	}
}

// Embed embeds a single text with the configured defaults.
func (p *Embedding) Embed(ctx context.Context, text string) (*tools.EmbeddingsOutput, error) {
	return p.Run(ctx, map[string]string{tools.ParamInput: text})
}

// Run executes the tool with params, defaulting apiKey and model.
func (p *Embedding) Run(ctx context.Context, params map[string]string) (*tools.EmbeddingsOutput, error) {
	merged := make(map[string]string, len(params)+2)
	for k, v := range params {
		merged[k] = v
	}
	if merged[tools.ParamAPIKey] == "" {
		merged[tools.ParamAPIKey] = p.apiKey
	}
	if merged[tools.ParamModel] == "" && p.model != "" {
		merged[tools.ParamModel] = p.model
	}

	start := time.Now()
	entry := &history.Entry{
		Kind:   history.KindEmbedding,
		Prompt: merged[tools.ParamInput],
		Model:  merged[tools.ParamModel],
	}

	var (
		out *tools.EmbeddingsOutput
		err error
	)
	if merged[tools.ParamAPIKey] == "" {
		err = ErrMissingCredential
	} else {
		out, err = p.tool.Run(ctx, merged)
		err = wrapToolError(err)
	}

	entry.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		entry.Status = history.StatusFailed
		entry.ErrorKind = ErrorKind(err)
		entry.Error = err.Error()
		p.logger.Error("failed to generate embeddings", "error", err, "kind", entry.ErrorKind)
	} else {
		entry.Status = history.StatusSucceeded
		entry.Model = out.Model
		entry.InputTokens = out.Usage.PromptTokens
		entry.CostUSD = llm.EstimateCost(out.Model, out.Usage.PromptTokens, 0)
		p.logger.Info("embeddings generated", "model", out.Model, "vectors", len(out.Embeddings))
	}
	recordEntry(p.recorder, p.logger, entry)
	return out, err
}

// wrapToolError marks failures from the embeddings API as provider errors.
// Parameter and context errors pass through untouched.
func wrapToolError(err error) error {
	var param *tools.ParamError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &param), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return prompt.WrapProviderError("openai", err)
	}
}
