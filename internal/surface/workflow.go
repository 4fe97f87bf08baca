package surface

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ziadkadry99/promptflow/internal/pipeline"
)

// WorkflowRunner generates a workflow from a prompt.
type WorkflowRunner interface {
	Run(ctx context.Context, prompt string) (*pipeline.WorkflowOutcome, error)
}

// Workflow is the prompt surface that adds generated blocks to the canvas.
// The prompt is kept on failure so the user can edit and resubmit.
type Workflow struct {
	base
	runner WorkflowRunner

	lastMu sync.Mutex
	last   *pipeline.WorkflowOutcome
}

// NewWorkflow creates a closed workflow surface.
func NewWorkflow(runner WorkflowRunner, logger *slog.Logger) *Workflow {
	w := &Workflow{runner: runner}
	w.setup(NameWorkflow, "Describe your workflow...", "Creating workflow...", false, logger)
	return w
}

// Submit sends the prompt through the workflow pipeline.
func (w *Workflow) Submit(ctx context.Context) error {
	return w.submit(ctx, func(ctx context.Context, input string) error {
		out, err := w.runner.Run(ctx, input)
		if err != nil {
			return err
		}
		w.lastMu.Lock()
		w.last = out
		w.lastMu.Unlock()
		return nil
	})
}

// LastOutcome returns the most recent successful generation, or nil.
func (w *Workflow) LastOutcome() *pipeline.WorkflowOutcome {
	w.lastMu.Lock()
	defer w.lastMu.Unlock()
	return w.last
}
