package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tailored-agentic-units/localchat/config"
	"github.com/tailored-agentic-units/localchat/engine"
	"github.com/tailored-agentic-units/localchat/memory"
	"github.com/tailored-agentic-units/localchat/observability"
	"github.com/tailored-agentic-units/localchat/repl"
	"github.com/tailored-agentic-units/localchat/session"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configFile   string
	provider     string
	baseURL      string
	model        string
	systemPrompt string
	memoryPath   string
	temperature  float64
	maxTokens    int
	verbose      bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "localchat",
		Short: "Chat with a local language model",
		Long: `localchat talks to a local model server through its OpenAI-compatible
chat completions API and keeps the conversation in memory.

Run without arguments to start an interactive chat. Inside the chat, type
/help for the list of commands.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, o)
		},
	}

	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "config file (.json, .toml, .yaml)")
	flags.StringVar(&o.provider, "provider", "", "inference provider (openai, mock)")
	flags.StringVar(&o.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	flags.StringVarP(&o.model, "model", "m", "", "model name sent with each request")
	flags.StringVar(&o.systemPrompt, "system", "", "system prompt")
	flags.StringVar(&o.memoryPath, "memory", "", "directory of context files appended to the system prompt")
	flags.Float64VarP(&o.temperature, "temperature", "t", 0, "sampling temperature")
	flags.IntVar(&o.maxTokens, "max-tokens", 0, "reply token limit (0 uses the engine default)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging to stderr")

	root.AddCommand(
		newChatCmd(o),
		newAskCmd(o),
		newServeCmd(o),
	)

	return root
}

// loadConfig resolves the config file and environment, then applies the
// flags the user set explicitly.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Engine.Provider = o.provider
	}
	if flags.Changed("base-url") {
		cfg.Engine.BaseURL = o.baseURL
	}
	if flags.Changed("model") {
		cfg.Engine.Model = o.model
	}
	if flags.Changed("system") {
		cfg.Session.SystemPrompt = o.systemPrompt
	}
	if flags.Changed("memory") {
		cfg.Memory.Path = o.memoryPath
	}
	if flags.Changed("temperature") {
		cfg.Session.Temperature = o.temperature
	}
	if flags.Changed("max-tokens") {
		if o.maxTokens < 0 {
			return nil, fmt.Errorf("--max-tokens must not be negative")
		}
		cfg.Session.MaxTokens = o.maxTokens
	}

	return cfg, nil
}

func (o *options) logger() *slog.Logger {
	// Lifecycle events are Info; keep them out of the conversation unless asked.
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

func (o *options) observer(cfg *config.Config) (observability.Observer, error) {
	if cfg.Observer == "slog" {
		return observability.NewSlogObserver(o.logger()), nil
	}
	return observability.GetObserver(cfg.Observer)
}

// runtime is a session and the engine behind it.
type runtime struct {
	cfg      *config.Config
	engine   engine.Engine
	session  *session.Session
	observer observability.Observer
}

func (r *runtime) Close() error {
	return r.engine.Close()
}

// newRuntime builds the engine and session from the resolved configuration.
func (o *options) newRuntime(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	observer, err := o.observer(cfg)
	if err != nil {
		return nil, err
	}

	store, err := memory.NewStore(&cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}

	eng, err := engine.New(&cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	opts := []session.Option{session.WithObserver(observer)}
	if store != nil {
		opts = append(opts, session.WithMemoryStore(store))
	}

	s, err := session.New(ctx, eng, &cfg.Session, opts...)
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &runtime{cfg: cfg, engine: eng, session: s, observer: observer}, nil
}

// terminal returns v as a file when it is connected to a terminal.
func terminal(v any) (*os.File, bool) {
	f, ok := v.(*os.File)
	if !ok || !repl.IsTerminal(f) {
		return nil, false
	}
	return f, true
}
