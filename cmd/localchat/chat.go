package main

import (
	"github.com/spf13/cobra"
	"github.com/tailored-agentic-units/localchat/repl"
)

func newChatCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, o)
		},
	}
}

func runChat(cmd *cobra.Command, o *options) error {
	ctx := cmd.Context()

	rt, err := o.newRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	var reader repl.LineReader
	if in, ok := terminal(o.stdin); ok {
		reader, err = repl.NewTerminalReader(in, o.stdout)
		if err != nil {
			return err
		}
	} else {
		reader = repl.NewScannerReader(o.stdin, o.stdout)
	}

	_, styled := terminal(o.stdout)
	loop := repl.New(rt.session, reader, o.stdout,
		repl.WithStyle(styled),
		repl.WithObserver(rt.observer),
	)
	return loop.Run(ctx)
}
