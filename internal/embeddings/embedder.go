package embeddings

import "context"

// Usage reports the tokens billed for an embedding request.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Result is the output of an embedding request.
type Result struct {
	Vectors [][]float32
	Model   string
	Usage   Usage
}

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts, in input order.
	Embed(ctx context.Context, texts []string) (*Result, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
