package transcript

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/localchat/core/protocol"
)

// Format renders messages as blank-line separated blocks of the form
// "ROLE: content", followed by a trailing newline.
func Format(messages []protocol.Message) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.ToUpper(string(msg.Role)))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	if len(messages) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// Parse reads text produced by Format back into messages. A block starts at
// the first line, or after a blank line, at a line beginning with a known
// "ROLE:" prefix. Content that itself contains a blank line followed by such
// a prefix cannot be told apart from a block boundary.
func Parse(text string) ([]protocol.Message, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}

	var (
		messages []protocol.Message
		role     protocol.Role
		body     []string
	)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if r, content, ok := blockStart(line); ok && (i == 0 || lines[i-1] == "") {
			if i > 0 {
				// Drop the separator line that preceded this block.
				messages = append(messages, protocol.NewMessage(role, strings.Join(body[:len(body)-1], "\n")))
			}
			role, body = r, []string{content}
			continue
		}
		if i == 0 {
			return nil, fmt.Errorf("%w: line 1 does not start with a role", ErrMalformedExport)
		}
		body = append(body, line)
	}
	messages = append(messages, protocol.NewMessage(role, strings.Join(body, "\n")))

	return messages, nil
}

func blockStart(line string) (protocol.Role, string, bool) {
	label, rest, ok := strings.Cut(line, ":")
	if !ok || label != strings.ToUpper(label) {
		return "", "", false
	}
	role := protocol.Role(strings.ToLower(label))
	if !role.IsValid() {
		return "", "", false
	}
	return role, strings.TrimPrefix(rest, " "), true
}
