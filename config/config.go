// Package config assembles the configuration for every localchat subsystem.
// Files may be JSON, TOML or YAML, chosen by extension; zero values in a
// file keep the defaults, and LOCALCHAT_* environment variables override the
// file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tailored-agentic-units/localchat/engine"
	"github.com/tailored-agentic-units/localchat/memory"
	"github.com/tailored-agentic-units/localchat/session"
	"gopkg.in/yaml.v3"
)

const (
	defaultObserver   = "slog"
	defaultServerAddr = "127.0.0.1:8090"
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider = "LOCALCHAT_PROVIDER"
	EnvBaseURL  = "LOCALCHAT_BASE_URL"
	EnvAPIKey   = "LOCALCHAT_API_KEY"
	EnvModel    = "LOCALCHAT_MODEL"
)

// ErrUnsupportedFormat is returned by Load for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ServerConfig configures the web chat endpoint.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" toml:"addr,omitempty" yaml:"addr,omitempty"`
}

// Config holds initialization parameters for all subsystems.
type Config struct {
	Engine   engine.Config  `json:"engine" toml:"engine" yaml:"engine"`
	Session  session.Config `json:"session" toml:"session" yaml:"session"`
	Memory   memory.Config  `json:"memory" toml:"memory" yaml:"memory"`
	Server   ServerConfig   `json:"server" toml:"server" yaml:"server"`
	Observer string         `json:"observer,omitempty" toml:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Engine:   engine.DefaultConfig(),
		Session:  session.DefaultConfig(),
		Memory:   memory.DefaultConfig(),
		Server:   ServerConfig{Addr: defaultServerAddr},
		Observer: defaultObserver,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Engine.Merge(&source.Engine)
	c.Session.Merge(&source.Session)
	c.Memory.Merge(&source.Memory)

	if source.Server.Addr != "" {
		c.Server.Addr = source.Server.Addr
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// Load reads a config file, merges it with defaults, and returns the result.
// The format follows the extension: .json, .toml, .yaml or .yml.
func Load(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := decode(filepath.Ext(filename), data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// Resolve loads filename, or the defaults when filename is empty, then
// applies environment overrides.
func Resolve(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename != "" {
		loaded, err := Load(filename)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	cfg.ApplyEnv(os.LookupEnv)
	return &cfg, nil
}

// ApplyEnv overrides engine settings from LOCALCHAT_* variables found by
// lookup. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(EnvProvider, &c.Engine.Provider)
	set(EnvBaseURL, &c.Engine.BaseURL)
	set(EnvAPIKey, &c.Engine.APIKey)
	set(EnvModel, &c.Engine.Model)
}

func decode(ext string, data []byte, v *Config) error {
	switch strings.ToLower(ext) {
	case ".json":
		return json.Unmarshal(data, v)
	case ".toml":
		return toml.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
