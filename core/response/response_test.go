package response_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/localchat/core/response"
)

func TestChatResponse_Content_StringContent(t *testing.T) {
	jsonData := `{
		"model": "tinyllama",
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "Hello, world!"
			}
		}]
	}`

	var resp response.ChatResponse
	if err := json.Unmarshal([]byte(jsonData), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if content := resp.Content(); content != "Hello, world!" {
		t.Errorf("got content %q, want %q", content, "Hello, world!")
	}
}

func TestChatResponse_Content_EmptyChoices(t *testing.T) {
	var resp response.ChatResponse
	if err := json.Unmarshal([]byte(`{"model": "tinyllama", "choices": []}`), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if content := resp.Content(); content != "" {
		t.Errorf("got content %q, want empty string", content)
	}
	if reason := resp.FinishReason(); reason != "" {
		t.Errorf("got finish reason %q, want empty string", reason)
	}
}

func TestParseChat(t *testing.T) {
	body := []byte(`{
		"id": "chatcmpl-123",
		"object": "chat.completion",
		"created": 1677652288,
		"model": "tinyllama",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "Hello there!"},
			"finish_reason": "length"
		}],
		"usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
	}`)

	resp, err := response.ParseChat(body)
	if err != nil {
		t.Fatalf("ParseChat failed: %v", err)
	}

	if resp.ID != "chatcmpl-123" {
		t.Errorf("got ID %q, want %q", resp.ID, "chatcmpl-123")
	}
	if resp.Content() != "Hello there!" {
		t.Errorf("got content %q, want %q", resp.Content(), "Hello there!")
	}
	if resp.FinishReason() != "length" {
		t.Errorf("got finish reason %q, want %q", resp.FinishReason(), "length")
	}
	if resp.Usage == nil {
		t.Fatal("usage is nil")
	}
	if resp.Usage.TotalTokens != 21 {
		t.Errorf("got total tokens %d, want 21", resp.Usage.TotalTokens)
	}
}

func TestParseChat_InvalidJSON(t *testing.T) {
	if _, err := response.ParseChat([]byte(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNewChatResponse(t *testing.T) {
	resp := response.NewChatResponse("mock", "done", "stop")

	if resp.Content() != "done" {
		t.Errorf("got content %q, want %q", resp.Content(), "done")
	}
	if resp.FinishReason() != "stop" {
		t.Errorf("got finish reason %q, want %q", resp.FinishReason(), "stop")
	}
}

func TestStreamingChunk_Content(t *testing.T) {
	jsonData := `{
		"model": "tinyllama",
		"choices": [{
			"index": 0,
			"delta": {
				"content": "Hello"
			}
		}]
	}`

	var chunk response.StreamingChunk
	if err := json.Unmarshal([]byte(jsonData), &chunk); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if content := chunk.Content(); content != "Hello" {
		t.Errorf("got content %q, want %q", content, "Hello")
	}
	if reason := chunk.FinishReason(); reason != "" {
		t.Errorf("got finish reason %q, want empty string", reason)
	}
}

func TestStreamingChunk_Content_EmptyChoices(t *testing.T) {
	chunk, err := response.ParseStreamingChunk([]byte(`{"model": "tinyllama", "choices": []}`))
	if err != nil {
		t.Fatalf("ParseStreamingChunk failed: %v", err)
	}

	if content := chunk.Content(); content != "" {
		t.Errorf("got content %q, want empty string", content)
	}
}

func TestParseStreamingChunk_FinalChunk(t *testing.T) {
	data := []byte(`{
		"id": "chatcmpl-123",
		"object": "chat.completion.chunk",
		"model": "tinyllama",
		"choices": [{"index": 0, "delta": {}, "finish_reason": "stop"}]
	}`)

	chunk, err := response.ParseStreamingChunk(data)
	if err != nil {
		t.Fatalf("ParseStreamingChunk failed: %v", err)
	}

	if chunk.ID != "chatcmpl-123" {
		t.Errorf("got ID %q, want %q", chunk.ID, "chatcmpl-123")
	}
	if chunk.Content() != "" {
		t.Errorf("got content %q, want empty string", chunk.Content())
	}
	if chunk.FinishReason() != "stop" {
		t.Errorf("got finish reason %q, want %q", chunk.FinishReason(), "stop")
	}
}

func TestParseStreamingChunk_InvalidJSON(t *testing.T) {
	if _, err := response.ParseStreamingChunk([]byte(`data: nope`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestNewStreamingChunk(t *testing.T) {
	chunk := response.NewStreamingChunk("mock", "Hel")

	if chunk.Content() != "Hel" {
		t.Errorf("got content %q, want %q", chunk.Content(), "Hel")
	}
	if chunk.Model != "mock" {
		t.Errorf("got model %q, want %q", chunk.Model, "mock")
	}
}
