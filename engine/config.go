package engine

const (
	defaultProvider = "openai"
	defaultBaseURL  = "http://127.0.0.1:8080/v1"
	defaultTimeout  = 60
)

// Config selects and configures an inference provider.
type Config struct {
	Provider string `json:"provider,omitempty" toml:"provider,omitempty" yaml:"provider,omitempty"`
	BaseURL  string `json:"base_url,omitempty" toml:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey   string `json:"api_key,omitempty" toml:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model    string `json:"model,omitempty" toml:"model,omitempty" yaml:"model,omitempty"`

	// TimeoutSeconds bounds the wait for response headers. Streaming bodies
	// are not subject to it; cancel the context to abort generation.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" toml:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// DefaultConfig targets a llama.cpp server on its default local port.
func DefaultConfig() Config {
	return Config{
		Provider:       defaultProvider,
		BaseURL:        defaultBaseURL,
		TimeoutSeconds: defaultTimeout,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}
