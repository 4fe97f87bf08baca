package config

import "path/filepath"

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".promptflow.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOpenAI,
		Model:          "gpt-3.5-turbo",
		MaxTokens:      1024,
		Temperature:    0.2,
		EmbeddingModel: "text-embedding-3-small",
		DataDir:        ".promptflow",
		Layout: LayoutConfig{
			StartX:  800,
			StartY:  300,
			Spacing: 500,
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// HistoryPath returns the location of the generation history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
