// Package openai talks to an OpenAI-compatible chat completions endpoint,
// the wire protocol served by llama.cpp's llama-server and the
// llama-cpp-python server.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/core/response"
	"github.com/tailored-agentic-units/localchat/engine"
)

const (
	maxErrorBody = 4 << 10
	maxLineSize  = 1 << 20
)

func init() {
	engine.Register("openai", func(cfg *engine.Config) (engine.Engine, error) {
		return New(cfg)
	})
}

// Engine performs chat completions over HTTP.
type Engine struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates an Engine from config. The HTTP client bounds only the wait
// for response headers so long generations are not cut off.
func New(cfg *engine.Config) (*Engine, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is required")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TimeoutSeconds > 0 {
		transport.ResponseHeaderTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Engine{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Transport: transport},
	}, nil
}

type chatRequest struct {
	Model    string             `json:"model,omitempty"`
	Messages []protocol.Message `json:"messages"`
	protocol.Options
	Stream bool `json:"stream,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorEnvelope struct {
	Error *apiError `json:"error,omitempty"`
}

// Chat sends a non-streaming completion request.
func (e *Engine) Chat(ctx context.Context, req *engine.Request) (*response.ChatResponse, error) {
	resp, err := e.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		return nil, fmt.Errorf("API error: %s", envelope.Error.Message)
	}

	result, err := response.ParseChat(body)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	return result, nil
}

// ChatStream sends a streaming completion request and yields each
// server-sent chunk. The stream is complete once "data: [DONE]" or a chunk
// carrying a finish reason has been seen; an EOF before either is reported
// as engine.ErrIncompleteStream.
func (e *Engine) ChatStream(ctx context.Context, req *engine.Request) iter.Seq2[*response.StreamingChunk, error] {
	return func(yield func(*response.StreamingChunk, error) bool) {
		resp, err := e.post(ctx, req, true)
		if err != nil {
			yield(nil, err)
			return
		}
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

		finished := false
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, ":") {
				continue
			}

			data, ok := strings.CutPrefix(line, "data:")
			if !ok {
				continue
			}
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				return
			}

			var envelope errorEnvelope
			if json.Unmarshal([]byte(data), &envelope) == nil && envelope.Error != nil {
				yield(nil, fmt.Errorf("API error: %s", envelope.Error.Message))
				return
			}

			chunk, err := response.ParseStreamingChunk([]byte(data))
			if err != nil {
				yield(nil, err)
				return
			}
			if chunk.FinishReason() != "" {
				finished = true
			}
			if !yield(chunk, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			yield(nil, fmt.Errorf("failed to read stream: %w", err))
			return
		}
		if !finished {
			yield(nil, engine.ErrIncompleteStream)
		}
	}
}

// Close releases idle connections.
func (e *Engine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *Engine) post(ctx context.Context, req *engine.Request, stream bool) (*http.Response, error) {
	data, err := json.Marshal(chatRequest{
		Model:    e.model,
		Messages: req.Messages,
		Options:  req.Options,
		Stream:   stream,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	if e.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
