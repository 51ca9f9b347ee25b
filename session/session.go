// Package session implements the generation session: it owns the transcript
// and the sampling parameters, and runs chat turns against an engine with
// all-or-nothing commit semantics.
//
// A turn appends the user message, streams the reply fragment by fragment, and
// either commits the assistant message on success or truncates the transcript
// back to its pre-turn length on failure or interruption.
//
//	s, err := session.New(ctx, eng, &cfg)
//	for fragment, err := range s.RunTurn(ctx, "hello") {
//		...
//	}
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"

	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/engine"
	"github.com/tailored-agentic-units/localchat/memory"
	"github.com/tailored-agentic-units/localchat/observability"
	"github.com/tailored-agentic-units/localchat/transcript"
)

// Option configures a Session.
type Option func(*Session)

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithMemoryStore sets the store whose entries are appended to the system
// prompt when the session starts.
func WithMemoryStore(store memory.Store) Option {
	return func(s *Session) { s.store = store }
}

// Session owns one transcript and its parameters. Turns must not overlap;
// callers that share a Session across goroutines serialize turns themselves.
type Session struct {
	engine     engine.Engine
	transcript *transcript.Transcript
	store      memory.Store
	observer   observability.Observer

	mu      sync.RWMutex
	params  Params
	context string
}

// New creates a Session backed by eng. A nil cfg uses DefaultConfig. When a
// memory store is configured its composed entries are appended to the system
// prompt.
func New(ctx context.Context, eng engine.Engine, cfg *Config, opts ...Option) (*Session, error) {
	if eng == nil {
		return nil, fmt.Errorf("session requires an engine")
	}
	if cfg == nil {
		defaults := DefaultConfig()
		cfg = &defaults
	}

	s := &Session{
		engine:   eng,
		observer: observability.NewSlogObserver(slog.Default()),
		params:   paramsFromConfig(cfg),
	}

	for _, opt := range opts {
		opt(s)
	}

	memctx, err := memory.Compose(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to compose memory context: %w", err)
	}
	s.context = memctx
	s.transcript = transcript.New(s.systemContent())

	return s, nil
}

// ID returns the transcript identifier.
func (s *Session) ID() string {
	return s.transcript.ID()
}

// Len returns the transcript length, including the system message.
func (s *Session) Len() int {
	return s.transcript.Len()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []protocol.Message {
	return s.transcript.Messages()
}

// Params returns a copy of the current parameters.
func (s *Session) Params() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.clone()
}

// SetTemperature replaces the sampling temperature. NaN and infinities are
// rejected; range checks are left to the engine.
func (s *Session) SetTemperature(ctx context.Context, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: temperature %v", ErrInvalidParameter, v)
	}

	s.mu.Lock()
	s.params.Temperature = v
	s.mu.Unlock()

	s.paramChanged(ctx, "temperature", v)
	return nil
}

// SetMaxTokens replaces the reply token limit. Zero defers to the engine's
// default.
func (s *Session) SetMaxTokens(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: max tokens %d", ErrInvalidParameter, n)
	}

	s.mu.Lock()
	s.params.MaxTokens = n
	s.mu.Unlock()

	s.paramChanged(ctx, "max_tokens", n)
	return nil
}

// SetSystemPrompt replaces the system prompt and rewrites the transcript's
// system message in place. The rest of the transcript is untouched.
func (s *Session) SetSystemPrompt(ctx context.Context, prompt string) error {
	if prompt == "" {
		return fmt.Errorf("%w: system prompt is empty", ErrInvalidParameter)
	}

	s.mu.Lock()
	s.params.SystemPrompt = prompt
	content := s.systemContentLocked()
	s.mu.Unlock()

	s.transcript.SetSystem(content)
	s.paramChanged(ctx, "system_prompt_length", len(prompt))
	return nil
}

// Reset discards every message except the system message. Parameters are
// kept.
func (s *Session) Reset(ctx context.Context) {
	s.transcript.Reset()
	s.observer.OnEvent(ctx, observability.NewEvent(
		EventReset, observability.LevelInfo, "session.Reset",
		map[string]any{"session_id": s.ID()},
	))
}

// Save writes the transcript export to path, replacing any existing file.
// The write is atomic: a failed save leaves the previous file intact.
func (s *Session) Save(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: save path is empty", ErrInvalidParameter)
	}

	data := s.transcript.Export()
	store := memory.NewFileStore(filepath.Dir(path))
	if err := store.Save(ctx, memory.Entry{Key: filepath.Base(path), Value: data}); err != nil {
		return err
	}

	s.observer.OnEvent(ctx, observability.NewEvent(
		EventSave, observability.LevelInfo, "session.Save",
		map[string]any{
			"session_id": s.ID(),
			"path":       path,
			"bytes":      len(data),
		},
	))
	return nil
}

func (s *Session) paramChanged(ctx context.Context, name string, value any) {
	s.observer.OnEvent(ctx, observability.NewEvent(
		EventParamChange, observability.LevelVerbose, "session.Params",
		map[string]any{"session_id": s.ID(), name: value},
	))
}

func (s *Session) systemContent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemContentLocked()
}

func (s *Session) systemContentLocked() string {
	if s.context == "" {
		return s.params.SystemPrompt
	}
	return s.params.SystemPrompt + "\n\n" + s.context
}
