// Package builder turns a model's JSON answer into blocks and edges in a
// workflow store.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptflow/internal/workflow"
)

// Edge constants applied to every synthesized edge.
const (
	SourceHandle = "output"
	TargetHandle = "input"
	EdgeType     = "workflow"
)

// Result describes what a Build call registered.
type Result struct {
	BlockIDs []string `json:"blockIds"`
	EdgeIDs  []string `json:"edgeIds"`
	// EntryID is the pre-existing block the chain was attached to, if any.
	EntryID string `json:"entryId,omitempty"`
	// IgnoredEdges counts edges present in the model answer. They are parsed
	// but the chain is always synthesized from block order.
	IgnoredEdges int `json:"ignoredEdges"`
}

// Option configures a Builder.
type Option func(*Builder)

// WithLayout overrides the default layout.
func WithLayout(l Layout) Option {
	return func(b *Builder) { b.layout = l }
}

// WithIDGenerator overrides identifier allocation.
func WithIDGenerator(fn func() string) Option {
	return func(b *Builder) { b.newID = fn }
}

// WithLogger sets the logger used by the builder.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// Builder constructs workflow graphs from model output.
type Builder struct {
	layout Layout
	newID  func() string
	logger *slog.Logger
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		layout: DefaultLayout(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With("component", "builder")
	return b
}

// Parse decodes raw model output. It performs no validation beyond JSON shape.
func Parse(raw string) (*workflow.Response, error) {
	var resp workflow.Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &ParseError{Snippet: snippet(raw), Err: err}
	}
	return &resp, nil
}

// Build parses raw and registers one block per response block followed by a
// linear chain of edges: entry → b0 → b1 → …. Every block is registered
// before the first edge. A parse failure or an empty block list leaves the
// store untouched.
//
// When the store implements workflow.Transactor the whole build is applied
// atomically. Otherwise a store failure part-way through leaves the writes
// made so far in place.
func (b *Builder) Build(ctx context.Context, raw string, store workflow.Store) (*Result, error) {
	resp, err := Parse(raw)
	if err != nil {
		b.logger.Warn("model output is not a workflow", "error", err)
		return nil, err
	}

	res := &Result{IgnoredEdges: len(resp.Edges)}
	if len(resp.Blocks) == 0 {
		b.logger.Info("model returned no blocks")
		return res, nil
	}

	apply := func(s workflow.Store) error {
		*res = Result{IgnoredEdges: len(resp.Edges)}
		return b.apply(ctx, resp, s, res)
	}

	if tx, ok := store.(workflow.Transactor); ok {
		err = tx.Atomically(ctx, apply)
		if errors.Is(err, workflow.ErrConflict) {
			err = &StoreError{Op: "commit", Err: err}
		}
	} else {
		err = apply(store)
	}
	if err != nil {
		b.logger.Error("building workflow failed", "error", err)
		return nil, err
	}

	b.logger.Info("workflow built",
		"blocks", len(res.BlockIDs),
		"edges", len(res.EdgeIDs),
		"entry", res.EntryID,
		"ignored_model_edges", res.IgnoredEdges,
	)
	return res, nil
}

func (b *Builder) apply(ctx context.Context, resp *workflow.Response, store workflow.Store, res *Result) error {
	for i, blk := range resp.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := b.newID()
		if err := store.AddBlock(ctx, id, blk.Type, blk.Name, b.layout.Position(i)); err != nil {
			return &StoreError{Op: "add block", ID: id, Err: err}
		}
		res.BlockIDs = append(res.BlockIDs, id)
	}

	res.EntryID = findEntry(store, res.BlockIDs)
	if res.EntryID != "" {
		if err := b.addEdge(ctx, store, res, res.EntryID, res.BlockIDs[0]); err != nil {
			return err
		}
	}
	for i := 0; i < len(res.BlockIDs)-1; i++ {
		if err := b.addEdge(ctx, store, res, res.BlockIDs[i], res.BlockIDs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) addEdge(ctx context.Context, store workflow.Store, res *Result, source, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := workflow.Edge{
		ID:           b.newID(),
		Source:       source,
		Target:       target,
		SourceHandle: SourceHandle,
		TargetHandle: TargetHandle,
		Type:         EdgeType,
		Animated:     true,
	}
	if err := store.AddEdge(ctx, e); err != nil {
		return &StoreError{Op: "add edge", ID: e.ID, Err: err}
	}
	res.EdgeIDs = append(res.EdgeIDs, e.ID)
	return nil
}

// findEntry resolves the block the new chain hangs off. An explicit entry
// point wins; otherwise the block named "Start" is used. Blocks created by
// the current build are never candidates.
func findEntry(store workflow.Store, created []string) string {
	blocks := store.Blocks()
	fresh := make(map[string]bool, len(created))
	for _, id := range created {
		fresh[id] = true
	}

	if ep, ok := store.(workflow.EntryPointer); ok {
		if id := ep.EntryPoint(); id != "" && !fresh[id] {
			if _, exists := blocks[id]; exists {
				return id
			}
		}
	}

	var candidates []string
	for id, blk := range blocks {
		if blk.Name == workflow.StartBlockName && !fresh[id] {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return candidates[0]
}
