package config

// Config is the top-level application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Chunking ChunkingConfig `mapstructure:"chunking" yaml:"chunking"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// LLMConfig configures the chat backend. Any OpenAI-compatible endpoint
// works; the key is the only secret and stays in the environment.
type LLMConfig struct {
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`
	Model          string  `mapstructure:"model" yaml:"model"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	RequestTimeout int     `mapstructure:"request_timeout" yaml:"request_timeout"` // seconds
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`         // extra attempts after the first
	RateLimit      int     `mapstructure:"rate_limit" yaml:"rate_limit"`           // requests per minute
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			APIKey:         "${DEEPSEEK_API_KEY}",
			BaseURL:        "https://api.deepseek.com",
			Model:          "deepseek-chat",
			Temperature:    0.7,
			RequestTimeout: 60,
			MaxRetries:     2,
			RateLimit:      60,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1400,
			ChunkOverlap: 180,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}
