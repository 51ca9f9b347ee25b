package session

const (
	defaultSystemPrompt = "You are a concise, helpful local assistant. " +
		"Be direct, avoid fluff, and keep code examples minimal."
	defaultTemperature = 0.7
	defaultMaxTokens   = 256
	defaultTopP        = 0.95
)

// Config holds the initial session parameters. Zero values in a loaded file
// keep the defaults; use /temp 0 at runtime for greedy sampling.
type Config struct {
	SystemPrompt string   `json:"system_prompt,omitempty" toml:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	Temperature  float64  `json:"temperature,omitempty" toml:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens    int      `json:"max_tokens,omitempty" toml:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TopP         float64  `json:"top_p,omitempty" toml:"top_p,omitempty" yaml:"top_p,omitempty"`
	Stop         []string `json:"stop,omitempty" toml:"stop,omitempty" yaml:"stop,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: defaultSystemPrompt,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
		TopP:         defaultTopP,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Temperature > 0 {
		c.Temperature = source.Temperature
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.TopP > 0 {
		c.TopP = source.TopP
	}
	if len(source.Stop) > 0 {
		c.Stop = source.Stop
	}
}
