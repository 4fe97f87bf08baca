package config

// ProviderType identifies a chat completion provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
)

// Config is the top-level promptflow configuration, corresponding to
// .promptflow.yml.
type Config struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	APIKey         string       `yaml:"-" koanf:"api_key"`
	BaseURL        string       `yaml:"base_url,omitempty" koanf:"base_url"`
	MaxTokens      int          `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature    float32      `yaml:"temperature" koanf:"temperature"`
	JSONMode       bool         `yaml:"json_mode" koanf:"json_mode"`
	EmbeddingModel string       `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir        string       `yaml:"data_dir" koanf:"data_dir"`
	Layout         LayoutConfig `yaml:"layout" koanf:"layout"`
	Server         ServerConfig `yaml:"server" koanf:"server"`
}

// LayoutConfig positions generated blocks on the canvas.
type LayoutConfig struct {
	StartX  float64 `yaml:"start_x" koanf:"start_x"`
	StartY  float64 `yaml:"start_y" koanf:"start_y"`
	Spacing float64 `yaml:"spacing" koanf:"spacing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port" koanf:"port"`
	// AllowedOrigins lists browser origins allowed to call the server. Empty
	// means localhost only.
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}
