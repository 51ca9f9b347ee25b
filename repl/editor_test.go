package repl_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/localchat/repl"
)

func TestLineEditor_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello\r", "hello"},
		{"newline", "hello\n", "hello"},
		{"backspace", "hex\x7fllo\r", "hello"},
		{"ctrl h", "hex\x08llo\r", "hello"},
		{"left arrow insert", "ac\x1b[Db\r", "abc"},
		{"home and end", "bc\x1b[Ha\x1b[Fd\r", "abcd"},
		{"ctrl a and ctrl e", "bc\x01a\x05d\r", "abcd"},
		{"delete key", "abc\x1b[D\x1b[D\x1b[3~\r", "ac"},
		{"ctrl u", "junk\x15ok\r", "ok"},
		{"ctrl k", "keep this\x1b[D\x1b[D\x1b[D\x1b[D\x1b[D\x0b\r", "keep"},
		{"utf8", "héllo wörld\r", "héllo wörld"},
		{"utf8 backspace", "naïve\x7f\x7f\x7fïve\r", "naïve"},
		{"ignores control", "a\x02b\r", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			e := repl.NewLineEditor(strings.NewReader(tt.input), &out)

			got, err := e.ReadLine("> ")
			if err != nil {
				t.Fatalf("ReadLine failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadLine = %q, want %q", got, tt.want)
			}
			if !strings.HasPrefix(out.String(), "\r\x1b[K> ") {
				t.Errorf("prompt not drawn: %q", out.String())
			}
		})
	}
}

func TestLineEditor_CtrlC(t *testing.T) {
	e := repl.NewLineEditor(strings.NewReader("abc\x03"), io.Discard)

	if _, err := e.ReadLine("> "); !errors.Is(err, repl.ErrInterrupt) {
		t.Errorf("error = %v, want ErrInterrupt", err)
	}
}

func TestLineEditor_CtrlD(t *testing.T) {
	e := repl.NewLineEditor(strings.NewReader("\x04"), io.Discard)
	if _, err := e.ReadLine("> "); !errors.Is(err, io.EOF) {
		t.Errorf("empty line: error = %v, want io.EOF", err)
	}

	e = repl.NewLineEditor(strings.NewReader("ab\x1b[D\x04\r"), io.Discard)
	got, err := e.ReadLine("> ")
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got != "a" {
		t.Errorf("ReadLine = %q, want %q", got, "a")
	}
}

func TestLineEditor_History(t *testing.T) {
	input := "first\rsecond\r\x1b[A\x1b[A\r\x1b[A\x1b[B\r"
	e := repl.NewLineEditor(strings.NewReader(input), io.Discard)

	want := []string{"first", "second", "first", ""}
	for i, w := range want {
		got, err := e.ReadLine("> ")
		if err != nil {
			t.Fatalf("line %d: ReadLine failed: %v", i, err)
		}
		if got != w {
			t.Errorf("line %d = %q, want %q", i, got, w)
		}
	}
}

func TestLineEditor_SourceClosed(t *testing.T) {
	e := repl.NewLineEditor(strings.NewReader("partial"), io.Discard)
	if _, err := e.ReadLine("> "); !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want io.EOF", err)
	}
}

func TestScannerReader(t *testing.T) {
	var out bytes.Buffer
	r := repl.NewScannerReader(strings.NewReader("one\r\ntwo\n"), &out)

	for _, want := range []string{"one", "two"} {
		got, err := r.ReadLine("You: ")
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine = %q, want %q", got, want)
		}
	}

	if _, err := r.ReadLine("You: "); !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want io.EOF", err)
	}
	if out.String() != "You: You: You: " {
		t.Errorf("prompts = %q", out.String())
	}
}
