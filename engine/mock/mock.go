// Package mock provides a scripted Engine for tests and offline runs.
//
// Scripted replies are consumed in order, one per call. Once the script is
// exhausted the engine echoes the last user message back word by word, which
// keeps the "mock" provider usable from the command line.
package mock

import (
	"context"
	"iter"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/core/response"
	"github.com/tailored-agentic-units/localchat/engine"
)

const modelName = "mock"

func init() {
	engine.Register("mock", func(cfg *engine.Config) (engine.Engine, error) {
		return New(), nil
	})
}

// Reply scripts one engine call: the fragments to stream, and an error
// raised after them. A Reply with Err and no Fragments fails immediately.
type Reply struct {
	Fragments    []string
	Err          error
	FinishReason string
}

// Option configures an Engine.
type Option func(*Engine)

// WithReplies queues scripted replies.
func WithReplies(replies ...Reply) Option {
	return func(e *Engine) { e.replies = append(e.replies, replies...) }
}

// Engine is a scripted engine. It records every request it receives and is
// safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	replies  []Reply
	requests []engine.Request
	closed   bool
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Requests returns a copy of every request received, in order.
func (e *Engine) Requests() []engine.Request {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]engine.Request, len(e.requests))
	for i, req := range e.requests {
		out[i] = *engine.NewRequest(req.Messages, req.Options)
	}
	return out
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) Chat(ctx context.Context, req *engine.Request) (*response.ChatResponse, error) {
	reply := e.next(req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return response.NewChatResponse(modelName, strings.Join(reply.Fragments, ""), reply.FinishReason), nil
}

func (e *Engine) ChatStream(ctx context.Context, req *engine.Request) iter.Seq2[*response.StreamingChunk, error] {
	reply := e.next(req)
	return func(yield func(*response.StreamingChunk, error) bool) {
		for _, frag := range reply.Fragments {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(response.NewStreamingChunk(modelName, frag), nil) {
				return
			}
		}
		if reply.Err != nil {
			yield(nil, reply.Err)
		}
	}
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *Engine) next(req *engine.Request) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.requests = append(e.requests, *engine.NewRequest(req.Messages, req.Options))

	if len(e.replies) > 0 {
		reply := e.replies[0]
		e.replies = e.replies[1:]
		if reply.FinishReason == "" && reply.Err == nil {
			reply.FinishReason = "stop"
		}
		return reply
	}
	return echo(req.Messages)
}

func echo(messages []protocol.Message) Reply {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == protocol.RoleUser {
			last = messages[i].Content
			break
		}
	}

	words := strings.Fields(last)
	fragments := make([]string, len(words))
	for i, w := range words {
		if i > 0 {
			w = " " + w
		}
		fragments[i] = w
	}
	return Reply{Fragments: fragments, FinishReason: "stop"}
}
