package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ziadkadry99/promptflow/internal/builder"
	"github.com/ziadkadry99/promptflow/internal/config"
	"github.com/ziadkadry99/promptflow/internal/db"
	"github.com/ziadkadry99/promptflow/internal/history"
	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/prompt"
	"github.com/ziadkadry99/promptflow/internal/tools"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `promptflow init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// app holds the pipelines shared by the generate, embed, serve and server
// commands.
type app struct {
	cfg       *config.Config
	store     *workflow.MemoryStore
	workflow  *pipeline.Workflow
	embedding *pipeline.Embedding
	history   *history.Store
	db        *db.DB
}

// newApp wires the pipelines from cfg. History is recorded only when
// withHistory is set.
func newApp(cfg *config.Config, withHistory bool) (*app, error) {
	logger := slog.Default()
	a := &app{cfg: cfg}

	var recorder pipeline.Recorder
	if withHistory {
		database, err := db.Open(cfg.HistoryPath())
		if err != nil {
			return nil, fmt.Errorf("opening history database: %w", err)
		}
		a.db = database
		a.history = history.NewStore(database)
		recorder = a.history
	}

	store, err := newWorkflowStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	client := prompt.New(prompt.Config{
		Provider:    string(cfg.Provider),
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: float64(cfg.Temperature),
		JSONMode:    cfg.JSONMode,
	}, prompt.WithLogger(logger))

	b := builder.New(
		builder.WithLayout(builder.Layout{
			StartX:  cfg.Layout.StartX,
			StartY:  cfg.Layout.StartY,
			Spacing: cfg.Layout.Spacing,
		}),
		builder.WithLogger(logger),
	)
	a.workflow = pipeline.NewWorkflow(client, b, store, recorder, logger)

	tool := tools.NewEmbeddingsTool(cfg.BaseURL, nil, logger)
	a.embedding = pipeline.NewEmbedding(tool, cfg.APIKey, cfg.EmbeddingModel, recorder, logger)

	return a, nil
}

// newWorkflowStore seeds an empty canvas with the Start block one column to
// the left of the first generated block.
func newWorkflowStore(cfg *config.Config) (*workflow.MemoryStore, error) {
	store, err := workflow.NewMemoryStoreWithStart(uuid.NewString(), workflow.Position{
		X: cfg.Layout.StartX - cfg.Layout.Spacing,
		Y: cfg.Layout.StartY,
	})
	if err != nil {
		return nil, fmt.Errorf("seeding workflow: %w", err)
	}
	return store, nil
}

// Close releases the history database.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
