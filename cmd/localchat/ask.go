package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tailored-agentic-units/localchat/server"
)

func newAskCmd(o *options) *cobra.Command {
	var (
		stream bool
		remote string
	)

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one prompt and print the reply",
		Long: `Sends a single prompt in a fresh session and prints the reply.

With --remote the prompt is sent to a running "localchat serve" instead,
joining that server's conversation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if remote != "" {
				return askRemote(cmd, o, remote, prompt)
			}
			return ask(cmd, o, prompt, stream)
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "print the reply as it is generated")
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a localchat server")
	return cmd
}

func ask(cmd *cobra.Command, o *options, prompt string, stream bool) error {
	ctx := cmd.Context()

	rt, err := o.newRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !stream {
		reply, err := rt.session.Send(ctx, prompt)
		if err != nil {
			return err
		}
		fmt.Fprintln(o.stdout, reply)
		return nil
	}

	for fragment, err := range rt.session.RunTurn(ctx, prompt) {
		if err != nil {
			fmt.Fprintln(o.stdout)
			return err
		}
		fmt.Fprint(o.stdout, fragment)
	}
	fmt.Fprintln(o.stdout)
	return nil
}

func askRemote(cmd *cobra.Command, o *options, remote, prompt string) error {
	client := server.NewClient(http.DefaultClient, remote)

	for fragment, err := range client.Chat(cmd.Context(), prompt) {
		if err != nil {
			fmt.Fprintln(o.stdout)
			return err
		}
		fmt.Fprint(o.stdout, fragment)
	}
	fmt.Fprintln(o.stdout)
	return nil
}
