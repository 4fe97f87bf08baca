package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ziadkadry99/promptflow/internal/embeddings"
)

// Parameter keys of the embeddings tool.
const (
	ParamInput  = "input"
	ParamModel  = "model"
	ParamAPIKey = "apiKey"
)

// OpenAIEmbeddings describes the text embedding tool.
var OpenAIEmbeddings = Descriptor{
	Type:            "openai_embeddings",
	Name:            "OpenAI Embeddings",
	Description:     "Generate embeddings from text",
	LongDescription: "Convert text into numerical vector representations using OpenAI's embedding models, for semantic search, clustering and other vector-based operations.",
	Category:        "tools",
	Fields: []Field{
		{
			Key:         ParamInput,
			Title:       "Input Text",
			Type:        FieldString,
			Widget:      WidgetLongInput,
			Placeholder: "Enter text to generate embeddings for",
			Required:    true,
		},
		{
			Key:      ParamModel,
			Title:    "Model",
			Type:     FieldString,
			Widget:   WidgetDropdown,
			Default:  string(embeddings.Models[0]),
			Options:  modelOptions(),
			Required: false,
		},
		{
			Key:         ParamAPIKey,
			Title:       "API Key",
			Type:        FieldString,
			Widget:      WidgetShortInput,
			Placeholder: "Enter your OpenAI API key",
			Required:    true,
			Secret:      true,
		},
	},
	Outputs: map[string]string{
		"embeddings": "json",
		"model":      "string",
		"dimensions": "number",
		"usage":      "json",
	},
	Access: []string{"openai_embeddings"},
}

func modelOptions() []string {
	out := make([]string, len(embeddings.Models))
	for i, m := range embeddings.Models {
		out[i] = string(m)
	}
	return out
}

// EmbeddingsOutput is the declared output of the embeddings tool.
type EmbeddingsOutput struct {
	Embeddings [][]float32      `json:"embeddings"`
	Model      string           `json:"model"`
	Dimensions int              `json:"dimensions"`
	Usage      embeddings.Usage `json:"usage"`
}

// EmbedderFactory builds an embedder for a resolved credential and model.
type EmbedderFactory func(apiKey string, model embeddings.OpenAIModel) embeddings.Embedder

// EmbeddingsTool executes the OpenAI Embeddings descriptor.
type EmbeddingsTool struct {
	newEmbedder EmbedderFactory
	logger      *slog.Logger
}

// NewEmbeddingsTool creates the executor. A nil factory targets the OpenAI
// API at baseURL (empty for the default endpoint).
func NewEmbeddingsTool(baseURL string, factory EmbedderFactory, logger *slog.Logger) *EmbeddingsTool {
	if factory == nil {
		factory = func(apiKey string, model embeddings.OpenAIModel) embeddings.Embedder {
			return embeddings.NewOpenAIEmbedder(apiKey, model, baseURL)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingsTool{
		newEmbedder: factory,
		logger:      logger.With("component", "tools", "tool", OpenAIEmbeddings.Type),
	}
}

// Descriptor returns the tool's descriptor.
func (t *EmbeddingsTool) Descriptor() Descriptor { return OpenAIEmbeddings }

// Run resolves params against the descriptor and embeds the input text.
func (t *EmbeddingsTool) Run(ctx context.Context, params map[string]string) (*EmbeddingsOutput, error) {
	resolved, err := OpenAIEmbeddings.Resolve(params)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("running tool", "params", OpenAIEmbeddings.Redacted(resolved))

	embedder := t.newEmbedder(resolved[ParamAPIKey], embeddings.OpenAIModel(resolved[ParamModel]))
	res, err := embedder.Embed(ctx, []string{resolved[ParamInput]})
	if err != nil {
		return nil, fmt.Errorf("embedding input: %w", err)
	}

	// Vectors returned by the API win over the model's nominal size.
	dims := embedder.Dimensions()
	if len(res.Vectors) > 0 && len(res.Vectors[0]) > 0 {
		dims = len(res.Vectors[0])
	}
	t.logger.Debug("embedded input", "embedder", embedder.Name(), "dimensions", dims, "tokens", res.Usage.TotalTokens)

	return &EmbeddingsOutput{
		Embeddings: res.Vectors,
		Model:      res.Model,
		Dimensions: dims,
		Usage:      res.Usage,
	}, nil
}
