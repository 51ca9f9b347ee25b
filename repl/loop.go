// Package repl runs the interactive chat loop: read a line, interpret it,
// and either handle a command in place or stream a model reply.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/tailored-agentic-units/localchat/command"
	"github.com/tailored-agentic-units/localchat/observability"
)

// State is the loop's position in its read/dispatch/render cycle.
type State int

const (
	Prompting State = iota
	Dispatching
	Rendering
	Terminated
)

func (s State) String() string {
	switch s {
	case Prompting:
		return "prompting"
	case Dispatching:
		return "dispatching"
	case Rendering:
		return "rendering"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Loop event types.
const (
	EventStart observability.EventType = "repl.start"
	EventStop  observability.EventType = "repl.stop"
)

// Session is the chat session driven by the loop.
type Session interface {
	command.Session
	ID() string
	RunTurn(ctx context.Context, utterance string) iter.Seq2[string, error]
}

// Option configures a Loop.
type Option func(*Loop)

// WithStyle enables lipgloss styling of labels and errors.
func WithStyle(enabled bool) Option {
	return func(l *Loop) { l.theme.styled = enabled }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(l *Loop) { l.observer = o }
}

// Loop owns the interactive cycle for one session. It is not safe for
// concurrent use.
type Loop struct {
	session  Session
	interp   *command.Interpreter
	reader   LineReader
	out      io.Writer
	theme    theme
	observer observability.Observer
	state    State
}

// New creates a Loop reading from r and writing prompts, replies and command
// output to w.
func New(s Session, r LineReader, w io.Writer, opts ...Option) *Loop {
	l := &Loop{
		session:  s,
		interp:   command.New(s, w),
		reader:   r,
		out:      w,
		observer: observability.NewSlogObserver(slog.Default()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the loop's current state.
func (l *Loop) State() State {
	return l.state
}

type readResult struct {
	line string
	err  error
}

// Run processes lines until the user exits, input ends, or ctx is cancelled.
// An interrupt during a reply rolls the turn back and ends the loop. Run
// returns nil on every clean termination and an error only when reading
// input fails.
func (l *Loop) Run(ctx context.Context) error {
	l.observer.OnEvent(ctx, observability.NewEvent(
		EventStart, observability.LevelInfo, "repl.Run",
		map[string]any{"session_id": l.session.ID()},
	))

	fmt.Fprintf(l.out, "%s\n\n", l.theme.dim("Local chat. Type /help for commands, /exit to quit."))

	for {
		l.state = Prompting
		line, err := l.read(ctx)
		if err != nil {
			reason := "input closed"
			if ctx.Err() != nil || errors.Is(err, ErrInterrupt) {
				reason = "interrupted"
			} else if !errors.Is(err, io.EOF) {
				l.state = Terminated
				l.closeReader()
				return fmt.Errorf("failed to read input: %w", err)
			}
			// The terminal must leave raw mode before the newline is written.
			l.closeReader()
			io.WriteString(l.out, "\n")
			return l.stop(ctx, reason)
		}

		l.state = Dispatching
		outcome := l.interp.Interpret(ctx, line)

		switch outcome.Kind {
		case command.ExitRequested:
			return l.stop(ctx, "exit requested")

		case command.ChatUtterance:
			l.state = Rendering
			if interrupted := l.render(ctx, outcome.Text); interrupted {
				return l.stop(ctx, "interrupted")
			}
		}
	}
}

// read waits for the next line or for ctx to be cancelled, whichever comes
// first. A cancelled read leaves the reader goroutine blocked until its
// source closes.
func (l *Loop) read(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := l.reader.ReadLine(l.theme.userPrompt())
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}

// render streams one reply and reports whether the turn was interrupted.
func (l *Loop) render(ctx context.Context, utterance string) bool {
	io.WriteString(l.out, l.theme.assistantPrefix())

	for fragment, err := range l.session.RunTurn(ctx, utterance) {
		if err != nil {
			io.WriteString(l.out, "\n")
			if ctx.Err() != nil {
				fmt.Fprintf(l.out, "%s\n", l.theme.dim("(interrupted)"))
				return true
			}
			fmt.Fprintf(l.out, "%s\n\n", l.theme.errorLine(err))
			return false
		}
		io.WriteString(l.out, fragment)
	}

	io.WriteString(l.out, "\n\n")
	return false
}

func (l *Loop) closeReader() {
	if c, ok := l.reader.(io.Closer); ok {
		c.Close()
	}
}

func (l *Loop) stop(ctx context.Context, reason string) error {
	l.state = Terminated
	l.closeReader()
	fmt.Fprintln(l.out, "Goodbye!")

	l.observer.OnEvent(context.WithoutCancel(ctx), observability.NewEvent(
		EventStop, observability.LevelInfo, "repl.Run",
		map[string]any{
			"session_id": l.session.ID(),
			"reason":     reason,
		},
	))
	return nil
}
