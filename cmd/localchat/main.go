// Command localchat is a terminal chat client for a local language model
// served over an OpenAI-compatible API (llama.cpp, Ollama, vLLM).
//
// Usage:
//
//	localchat                     # interactive chat
//	localchat ask "why is the sky blue?"
//	localchat serve --addr :8090  # web chat endpoint
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/tailored-agentic-units/localchat/engine/mock"
	_ "github.com/tailored-agentic-units/localchat/engine/openai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
