package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/promptflow/internal/embeddings"
)

// defaultModels is the suggested chat model per provider.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:     "gpt-3.5-turbo",
	ProviderOpenRouter: "openai/gpt-4o-mini",
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to promptflow! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select chat completion provider",
		Items: []string{string(ProviderOpenAI), string(ProviderOpenRouter)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: defaultModels[cfg.Provider],
		Validate: func(s string) error {
			if s == "" {
				return fmt.Errorf("model is required")
			}
			return nil
		},
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding model.
	items := make([]string, len(embeddings.Models))
	for i, m := range embeddings.Models {
		items[i] = string(m)
	}
	embeddingPrompt := promptui.Select{
		Label: "Select embedding model",
		Items: items,
	}
	if _, cfg.EmbeddingModel, err = embeddingPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model selection: %w", err)
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p <= 0 || p > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if envVar := APIKeyEnvVar(cfg.Provider); os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running promptflow generate.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
