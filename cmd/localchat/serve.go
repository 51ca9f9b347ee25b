package main

import (
	"github.com/spf13/cobra"
	"github.com/tailored-agentic-units/localchat/server"
)

func newServeCmd(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one chat session over HTTP",
		Long: `Serves a single chat session to web clients using the Connect protocol.
Turns and commands from all clients are applied to the same conversation,
one at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := o.newRuntime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if cmd.Flags().Changed("addr") {
				rt.cfg.Server.Addr = addr
			}

			srv := server.New(rt.session, server.WithObserver(rt.observer))
			return srv.ListenAndServe(ctx, rt.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
