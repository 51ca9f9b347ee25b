package response

import (
	"encoding/json"
	"fmt"
)

// StreamingChunk is one incremental piece of a streamed chat completion.
// FinishReason is nil until the final chunk.
type StreamingChunk struct {
	ID      string `json:"id,omitempty"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Content returns the delta text of the first choice, or "".
func (c *StreamingChunk) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}

// FinishReason returns the finish reason of the first choice, or "" while
// the stream is still running.
func (c *StreamingChunk) FinishReason() string {
	if len(c.Choices) == 0 || c.Choices[0].FinishReason == nil {
		return ""
	}
	return *c.Choices[0].FinishReason
}

// ParseStreamingChunk parses a single SSE data payload.
func ParseStreamingChunk(data []byte) (*StreamingChunk, error) {
	var chunk StreamingChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("failed to parse streaming chunk: %w", err)
	}
	return &chunk, nil
}

// NewStreamingChunk builds a single-choice chunk carrying content.
func NewStreamingChunk(model, content string) *StreamingChunk {
	chunk := &StreamingChunk{Model: model}
	chunk.Choices = make([]struct {
		Index int `json:"index"`
		Delta struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	}, 1)
	chunk.Choices[0].Delta.Content = content
	return chunk
}
