package protocol

import "slices"

// Options carries the sampling parameters sent with every completion request.
// Zero values are omitted from the wire so the engine applies its own defaults.
type Options struct {
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	o.Stop = slices.Clone(o.Stop)
	return o
}
