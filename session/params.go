package session

import (
	"slices"

	"github.com/tailored-agentic-units/localchat/core/protocol"
)

// Params are the mutable session parameters. They are read at the start of
// every turn, so a change applies from the next turn on.
type Params struct {
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	TopP         float64
	Stop         []string
}

func paramsFromConfig(cfg *Config) Params {
	return Params{
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		SystemPrompt: cfg.SystemPrompt,
		TopP:         cfg.TopP,
		Stop:         slices.Clone(cfg.Stop),
	}
}

// Options converts the parameters into engine sampling options.
func (p Params) Options() protocol.Options {
	return protocol.Options{
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		TopP:        p.TopP,
		Stop:        slices.Clone(p.Stop),
	}
}

func (p Params) clone() Params {
	p.Stop = slices.Clone(p.Stop)
	return p
}
