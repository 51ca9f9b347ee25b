package transcript_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/transcript"
)

func TestFormat(t *testing.T) {
	msgs := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "be brief"),
		protocol.NewMessage(protocol.RoleUser, "hi"),
		protocol.NewMessage(protocol.RoleAssistant, "Hello!"),
	}

	want := "SYSTEM: be brief\n\nUSER: hi\n\nASSISTANT: Hello!\n"
	if got := transcript.Format(msgs); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := transcript.Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestExport_ParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msgs []protocol.Message
	}{
		{
			name: "system only",
			msgs: []protocol.Message{protocol.NewMessage(protocol.RoleSystem, "sys")},
		},
		{
			name: "simple turn",
			msgs: []protocol.Message{
				protocol.NewMessage(protocol.RoleSystem, "sys"),
				protocol.NewMessage(protocol.RoleUser, "hi"),
				protocol.NewMessage(protocol.RoleAssistant, "Hello!"),
			},
		},
		{
			name: "multiline content with blank lines",
			msgs: []protocol.Message{
				protocol.NewMessage(protocol.RoleSystem, "line one\nline two"),
				protocol.NewMessage(protocol.RoleUser, "show code"),
				protocol.NewMessage(protocol.RoleAssistant, "Here:\n\n```go\nfmt.Println(1)\n```\n\nDone."),
			},
		},
		{
			name: "empty and colon-bearing content",
			msgs: []protocol.Message{
				protocol.NewMessage(protocol.RoleSystem, ""),
				protocol.NewMessage(protocol.RoleUser, "NOTE: not a role"),
				protocol.NewMessage(protocol.RoleAssistant, "ok\n\nuser: lowercase is content"),
			},
		},
		{
			name: "trailing newline in content",
			msgs: []protocol.Message{
				protocol.NewMessage(protocol.RoleSystem, "sys\n"),
				protocol.NewMessage(protocol.RoleUser, "end\n"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := transcript.New(tt.msgs[0].Content)
			for _, m := range tt.msgs[1:] {
				if err := tr.Append(m); err != nil {
					t.Fatalf("Append failed: %v", err)
				}
			}

			got, err := transcript.Parse(string(tr.Export()))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if diff := cmp.Diff(tt.msgs, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	got, err := transcript.Parse("SYSTEM: sys\r\n\r\nUSER: hi\r\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "sys"),
		protocol.NewMessage(protocol.RoleUser, "hi"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	got, err := transcript.Parse("")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d messages, want 0", len(got))
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := transcript.Parse("hello there\n\nUSER: hi\n")
	if !errors.Is(err, transcript.ErrMalformedExport) {
		t.Errorf("got %v, want ErrMalformedExport", err)
	}
}
