package server

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"connectrpc.com/connect"
	"github.com/tailored-agentic-units/localchat/core/protocol"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a localchat server.
type Client struct {
	chat       *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
	command    *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
	transcript *connect.Client[emptypb.Empty, structpb.ListValue]
}

// NewClient creates a Client for the server at baseURL, e.g.
// "http://127.0.0.1:8090".
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		chat:       connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](httpClient, baseURL+ChatProcedure, opts...),
		command:    connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](httpClient, baseURL+CommandProcedure, opts...),
		transcript: connect.NewClient[emptypb.Empty, structpb.ListValue](httpClient, baseURL+TranscriptProcedure, opts...),
	}
}

// Chat streams the reply to utterance. Stopping early closes the stream,
// which rolls the turn back on the server.
func (c *Client) Chat(ctx context.Context, utterance string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := c.chat.CallServerStream(ctx, connect.NewRequest(wrapperspb.String(utterance)))
		if err != nil {
			yield("", err)
			return
		}
		defer stream.Close()

		for stream.Receive() {
			if !yield(stream.Msg().GetValue(), nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", err)
		}
	}
}

// Command runs a slash command and returns its output.
func (c *Client) Command(ctx context.Context, line string) (string, error) {
	resp, err := c.command.CallUnary(ctx, connect.NewRequest(wrapperspb.String(line)))
	if err != nil {
		return "", err
	}
	return resp.Msg.GetValue(), nil
}

// Transcript returns the server session's messages.
func (c *Client) Transcript(ctx context.Context) ([]protocol.Message, error) {
	resp, err := c.transcript.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, err
	}

	values := resp.Msg.GetValues()
	msgs := make([]protocol.Message, 0, len(values))
	for i, v := range values {
		fields := v.GetStructValue().GetFields()
		role, err := protocol.ParseRole(fields["role"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("invalid transcript entry %d: %w", i, err)
		}
		msgs = append(msgs, protocol.NewMessage(role, fields["content"].GetStringValue()))
	}
	return msgs, nil
}
