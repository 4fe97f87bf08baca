package llm

import (
	"errors"
	"fmt"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// ErrMissingAPIKey is returned by NewProvider when no credential was supplied.
var ErrMissingAPIKey = errors.New("llm: api key is required")

// NewProvider creates a provider of the given type. The credential is passed
// in explicitly; nothing is read from the process environment here.
// Supported provider types: "openai", "openrouter".
func NewProvider(providerType, apiKey, model, baseURL string) (Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch providerType {
	case "openai", "":
		return NewOpenAIProvider(apiKey, model, baseURL), nil
	case "openrouter":
		if baseURL != "" {
			p := NewOpenAIProvider(apiKey, model, baseURL)
			p.name = "openrouter"
			return p, nil
		}
		return NewOpenRouterProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
