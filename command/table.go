package command

import (
	"context"
	"fmt"
	"strconv"
)

// Handler runs a command with its trimmed argument text.
type Handler func(ctx context.Context, in *Interpreter, arg string) error

// Command describes one slash command.
type Command struct {
	Name    string
	Args    string
	Summary string

	exit bool
	run  Handler
}

// Usage returns the command name followed by its argument placeholder.
func (c *Command) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

var commands []*Command

func init() {
	commands = []*Command{
		{Name: "/help", Summary: "show this help", run: runHelp},
		{Name: "/reset", Summary: "clear the conversation, keep the system prompt", run: runReset},
		{Name: "/save", Args: "<path>", Summary: "write the transcript to a file", run: runSave},
		{Name: "/temp", Args: "<value>", Summary: "set the sampling temperature", run: runTemp},
		{Name: "/max", Args: "<n>", Summary: "set the reply token limit (0 uses the engine default)", run: runMax},
		{Name: "/system", Args: "<text>", Summary: "replace the system prompt", run: runSystem},
		{Name: "/exit", Summary: "end the session (also exit, quit, :q)", exit: true},
	}
}

// Commands returns the command table in help order.
func Commands() []Command {
	out := make([]Command, len(commands))
	for i, c := range commands {
		out[i] = *c
	}
	return out
}

func lookup(name string) (*Command, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func runHelp(ctx context.Context, in *Interpreter, _ string) error {
	in.printf("Commands:\n")
	for _, c := range commands {
		in.printf("  %-16s %s\n", c.Usage(), c.Summary)
	}
	p := in.session.Params()
	in.printf("Current: temperature=%g max_tokens=%d\n", p.Temperature, p.MaxTokens)
	return nil
}

func runReset(ctx context.Context, in *Interpreter, _ string) error {
	in.session.Reset(ctx)
	in.printf("transcript cleared\n")
	return nil
}

func runSave(ctx context.Context, in *Interpreter, path string) error {
	if path == "" {
		return ErrUsage
	}
	if err := in.session.Save(ctx, path); err != nil {
		return err
	}
	in.printf("saved transcript to %s\n", path)
	return nil
}

func runTemp(ctx context.Context, in *Interpreter, arg string) error {
	if arg == "" {
		return ErrUsage
	}

	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("%w: temperature %q is not a number", ErrInvalidArgument, arg)
	}
	if err := in.session.SetTemperature(ctx, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	in.printf("temperature set to %g\n", v)
	return nil
}

func runMax(ctx context.Context, in *Interpreter, arg string) error {
	if arg == "" {
		return ErrUsage
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return ErrUsage
		}
	}

	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: max tokens %s is out of range", ErrInvalidArgument, arg)
	}
	if err := in.session.SetMaxTokens(ctx, n); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	in.printf("max tokens set to %d\n", n)
	return nil
}

func runSystem(ctx context.Context, in *Interpreter, text string) error {
	if text == "" {
		return ErrUsage
	}
	if err := in.session.SetSystemPrompt(ctx, text); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	in.printf("system prompt updated\n")
	return nil
}
