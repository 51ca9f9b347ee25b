// Package engine defines the inference capability the chat session consumes
// and a registry of named providers that construct it from configuration.
//
//	eng, err := engine.New(&cfg.Engine)
//	for chunk, err := range eng.ChatStream(ctx, req) { ... }
package engine

import (
	"context"
	"iter"
	"slices"

	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/core/response"
)

// Request is the input context for one completion: the full message
// sequence plus the sampling options captured for this turn.
type Request struct {
	Messages []protocol.Message
	Options  protocol.Options
}

// NewRequest copies messages and options so the request is isolated from
// later changes to the caller's transcript or parameters.
func NewRequest(messages []protocol.Message, opts protocol.Options) *Request {
	return &Request{
		Messages: slices.Clone(messages),
		Options:  opts.Clone(),
	}
}

// Engine is a loaded inference backend. Implementations are expensive to
// construct and are held for the lifetime of a session.
type Engine interface {
	// Chat performs a non-streaming completion.
	Chat(ctx context.Context, req *Request) (*response.ChatResponse, error)

	// ChatStream performs a streaming completion. The sequence yields chunks
	// in generation order and ends after the final chunk. A non-nil error is
	// always the last element. Breaking out of the loop releases the
	// underlying stream.
	ChatStream(ctx context.Context, req *Request) iter.Seq2[*response.StreamingChunk, error]

	// Close releases resources held by the engine.
	Close() error
}
