// Package transcript holds the ordered conversation log sent to the engine on
// every turn. A transcript always starts with exactly one system message;
// callers can append user and assistant messages and truncate back to an
// earlier length, but never remove the system message.
package transcript

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/localchat/core/protocol"
)

// Transcript is an ordered, role-tagged message log. It is safe for
// concurrent use.
type Transcript struct {
	id       string
	messages []protocol.Message
	mu       sync.RWMutex
}

// New creates a transcript holding only the system message. It is assigned a
// unique UUIDv7 identifier.
func New(systemPrompt string) *Transcript {
	return &Transcript{
		id:       uuid.Must(uuid.NewV7()).String(),
		messages: protocol.InitMessages(protocol.RoleSystem, systemPrompt),
	}
}

// ID returns the unique transcript identifier.
func (t *Transcript) ID() string {
	return t.id
}

// Len returns the number of messages, including the system message.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Messages returns a copy of the log.
func (t *Transcript) Messages() []protocol.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	copied := make([]protocol.Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// System returns the system message.
func (t *Transcript) System() protocol.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.messages[0]
}

// SetSystem replaces the content of the system message in place.
func (t *Transcript) SetSystem(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages[0].Content = content
}

// Append adds a user or assistant message to the end of the log.
func (t *Transcript) Append(msg protocol.Message) error {
	if msg.Role == protocol.RoleSystem {
		return ErrSystemMessage
	}
	if !msg.Role.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	return nil
}

// Truncate drops every message after the first n. n must keep the system
// message and may not exceed the current length.
func (t *Transcript) Truncate(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 1 || n > len(t.messages) {
		return fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, n, len(t.messages))
	}
	clear(t.messages[n:])
	t.messages = t.messages[:n]
	return nil
}

// Reset truncates the log to the system message only.
func (t *Transcript) Reset() {
	t.Truncate(1)
}

// Export renders the log in the plain-text export format.
func (t *Transcript) Export() []byte {
	return []byte(Format(t.Messages()))
}
