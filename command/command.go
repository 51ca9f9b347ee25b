// Package command interprets one line of user input. A line is either a slash
// command that is handled in place, a request to exit, or a chat utterance to
// be sent to the model.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/tailored-agentic-units/localchat/session"
)

// Kind classifies an interpreted line.
type Kind int

const (
	Handled Kind = iota
	ChatUtterance
	ExitRequested
)

func (k Kind) String() string {
	switch k {
	case Handled:
		return "handled"
	case ChatUtterance:
		return "chat"
	case ExitRequested:
		return "exit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of interpreting a line. Text holds the trimmed
// utterance when Kind is ChatUtterance.
type Outcome struct {
	Kind Kind
	Text string
}

// Session is the part of a generation session that commands operate on.
type Session interface {
	Params() session.Params
	SetTemperature(ctx context.Context, v float64) error
	SetMaxTokens(ctx context.Context, n int) error
	SetSystemPrompt(ctx context.Context, prompt string) error
	Reset(ctx context.Context)
	Save(ctx context.Context, path string) error
}

// exitWords end the session only when they make up the whole line.
var exitWords = map[string]bool{
	"exit": true,
	"quit": true,
	":q":   true,
}

// Interpreter maps input lines to outcomes, running slash commands against a
// Session and writing their output to w.
type Interpreter struct {
	session Session
	out     io.Writer
}

// New creates an Interpreter for s that writes command output to w.
func New(s Session, w io.Writer) *Interpreter {
	return &Interpreter{session: s, out: w}
}

// Interpret classifies line and, for slash commands, runs them. Command
// failures are written to the output and reported as Handled.
func (in *Interpreter) Interpret(ctx context.Context, line string) Outcome {
	line = strings.TrimSpace(line)
	if line == "" {
		return Outcome{Kind: Handled}
	}

	if exitWords[strings.ToLower(line)] {
		return Outcome{Kind: ExitRequested}
	}

	if !strings.HasPrefix(line, "/") {
		return Outcome{Kind: ChatUtterance, Text: line}
	}

	name, arg := split(line)
	cmd, ok := lookup(name)
	if !ok {
		fmt.Fprintf(in.out, "unrecognized command %s (type /help for a list)\n", name)
		return Outcome{Kind: Handled}
	}

	if cmd.exit {
		return Outcome{Kind: ExitRequested}
	}

	if err := cmd.run(ctx, in, arg); err != nil {
		in.report(cmd, err)
	}
	return Outcome{Kind: Handled}
}

// IsCommand reports whether line would be handled as a command rather than
// sent to the model.
func IsCommand(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "/") || exitWords[strings.ToLower(line)]
}

func (in *Interpreter) report(cmd *Command, err error) {
	if errors.Is(err, ErrUsage) {
		fmt.Fprintf(in.out, "usage: %s\n", cmd.Usage())
		return
	}
	fmt.Fprintf(in.out, "error: %v\n", err)
}

func (in *Interpreter) printf(format string, args ...any) {
	fmt.Fprintf(in.out, format, args...)
}

// split returns the lower-cased command word and the trimmed remainder.
func split(line string) (string, string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:i]), strings.TrimSpace(line[i:])
}
