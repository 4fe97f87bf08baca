// Package prompt sends a natural-language request to a hosted chat-completion
// model and returns the raw text of its answer.
package prompt

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ziadkadry99/promptflow/internal/llm"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-3.5-turbo"

// Config is injected into the client; the credential is never read from the
// environment by this package.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// Option configures a Client.
type Option func(*Client)

// WithProvider replaces the provider normally built from Config. The
// credential check still applies.
func WithProvider(p llm.Provider) Option {
	return func(c *Client) { c.provider = p }
}

// WithLogger sets the logger used by the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client turns a user prompt into the model's raw completion text.
type Client struct {
	cfg      Config
	provider llm.Provider
	initErr  error
	logger   *slog.Logger
}

// New creates a client. No network activity happens until Generate.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "prompt")
	if c.provider == nil && cfg.APIKey != "" {
		c.provider, c.initErr = llm.NewProvider(cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL)
	}
	return c
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string { return c.cfg.Model }

// Generate returns the first completion choice for the prompt, or "" when the
// provider returned no content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Complete is Generate with token usage attached.
func (c *Client) Complete(ctx context.Context, prompt string) (*llm.CompletionResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	if c.initErr != nil {
		return nil, c.initErr
	}
	provider := c.provider

	req := llm.CompletionRequest{
		Model: c.cfg.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemInstruction()},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		JSONMode:    c.cfg.JSONMode,
	}

	c.logger.Debug("sending completion request", "provider", provider.Name(), "model", c.cfg.Model, "prompt_chars", len(prompt))
	resp, err := provider.Complete(ctx, req)
	if err != nil {
		c.logger.Error("completion request failed", "provider", provider.Name(), "error", err)
		return nil, WrapProviderError(provider.Name(), err)
	}
	if resp == nil {
		resp = &llm.CompletionResponse{}
	}
	c.logger.Debug("completion received",
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"finish_reason", resp.FinishReason,
	)
	return resp, nil
}
