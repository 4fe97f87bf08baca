// Package pipeline runs user input through the hosted model and records the
// outcome.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ziadkadry99/promptflow/internal/builder"
	"github.com/ziadkadry99/promptflow/internal/history"
	"github.com/ziadkadry99/promptflow/internal/llm"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

// Completer returns the model's completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*llm.CompletionResponse, error)
	Model() string
}

// Recorder stores generation records. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, e *history.Entry) error
}

// WorkflowOutcome is the result of a successful workflow generation.
type WorkflowOutcome struct {
	Result       *builder.Result `json:"result"`
	Model        string          `json:"model"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
	CostUSD      float64         `json:"cost_usd"`
	Duration     time.Duration   `json:"duration"`
}

// Workflow runs prompt → completion → graph build against a store.
type Workflow struct {
	client   Completer
	builder  *builder.Builder
	store    workflow.Store
	recorder Recorder
	logger   *slog.Logger
}

// NewWorkflow creates a workflow pipeline. recorder and logger may be nil.
func NewWorkflow(client Completer, b *builder.Builder, store workflow.Store, recorder Recorder, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		client:   client,
		builder:  b,
		store:    store,
		recorder: recorder,
		logger:   logger.With("component", "pipeline", "pipeline", "workflow"),
	}
}

// Store returns the workflow store the pipeline writes into.
func (p *Workflow) Store() workflow.Store { return p.store }

// Run generates a workflow from the prompt and adds it to the store.
func (p *Workflow) Run(ctx context.Context, prompt string) (*WorkflowOutcome, error) {
	start := time.Now()
	entry := &history.Entry{Kind: history.KindWorkflow, Prompt: prompt, Model: p.client.Model()}

	out, err := p.run(ctx, prompt, entry)
	entry.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		entry.Status = history.StatusFailed
		entry.ErrorKind = ErrorKind(err)
		entry.Error = err.Error()
		p.logger.Error("failed to create workflow", "error", err, "kind", entry.ErrorKind)
	} else {
		entry.Status = history.StatusSucceeded
		out.Duration = time.Since(start)
		p.logger.Info("workflow created successfully",
			"blocks", len(out.Result.BlockIDs),
			"edges", len(out.Result.EdgeIDs),
			"duration", out.Duration,
		)
	}
	p.record(entry)
	return out, err
}

func (p *Workflow) run(ctx context.Context, prompt string, entry *history.Entry) (*WorkflowOutcome, error) {
	resp, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if resp.Model != "" {
		entry.Model = resp.Model
	}
	entry.InputTokens = resp.InputTokens
	entry.OutputTokens = resp.OutputTokens
	entry.CostUSD = llm.EstimateCost(entry.Model, resp.InputTokens, resp.OutputTokens)

	res, err := p.builder.Build(ctx, resp.Content, p.store)
	if err != nil {
		return nil, err
	}
	entry.BlockCount = len(res.BlockIDs)
	entry.EdgeCount = len(res.EdgeIDs)

	return &WorkflowOutcome{
		Result:       res,
		Model:        entry.Model,
		InputTokens:  entry.InputTokens,
		OutputTokens: entry.OutputTokens,
		CostUSD:      entry.CostUSD,
	}, nil
}

// record is best-effort: a history failure never fails the generation. It
// uses a fresh context so cancelled requests are still recorded.
func (p *Workflow) record(e *history.Entry) {
	recordEntry(p.recorder, p.logger, e)
}

func recordEntry(r Recorder, logger *slog.Logger, e *history.Entry) {
	if r == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Record(ctx, e); err != nil {
		logger.Warn("recording generation history", "error", err)
	}
}
