// Package server exposes a chat session over connect-go. There is no
// generated code: requests and responses are protobuf well-known types.
//
//	POST /localchat.v1.ChatService/Chat        StringValue -> stream StringValue
//	POST /localchat.v1.ChatService/Command     StringValue -> StringValue
//	POST /localchat.v1.ChatService/Transcript  Empty -> ListValue
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"connectrpc.com/connect"
	"github.com/tailored-agentic-units/localchat/command"
	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/observability"
	"github.com/tailored-agentic-units/localchat/session"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Procedure paths served by Handler.
const (
	ServiceName         = "localchat.v1.ChatService"
	ChatProcedure       = "/" + ServiceName + "/Chat"
	CommandProcedure    = "/" + ServiceName + "/Command"
	TranscriptProcedure = "/" + ServiceName + "/Transcript"
)

// Server event types.
const (
	EventListen   observability.EventType = "server.listen"
	EventShutdown observability.EventType = "server.shutdown"
	EventRPCError observability.EventType = "server.rpc.error"
)

// Session is the chat session served over the endpoint.
type Session interface {
	command.Session
	ID() string
	Messages() []protocol.Message
	RunTurn(ctx context.Context, utterance string) iter.Seq2[string, error]
}

// Option configures a Server.
type Option func(*Server)

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// Server serves one session. Turns and commands are serialized; transcript
// reads are not.
type Server struct {
	session  Session
	observer observability.Observer
	mu       sync.Mutex
}

// New creates a Server for s.
func New(s Session, opts ...Option) *Server {
	srv := &Server{
		session:  s,
		observer: observability.NewSlogObserver(slog.Default()),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Handler returns an http.Handler serving every procedure.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ChatProcedure, connect.NewServerStreamHandler(ChatProcedure, s.chat))
	mux.Handle(CommandProcedure, connect.NewUnaryHandler(CommandProcedure, s.command))
	mux.Handle(TranscriptProcedure, connect.NewUnaryHandler(TranscriptProcedure, s.transcript))
	return mux
}

func (s *Server) chat(ctx context.Context, req *connect.Request[wrapperspb.StringValue], stream *connect.ServerStream[wrapperspb.StringValue]) error {
	utterance := strings.TrimSpace(req.Msg.GetValue())
	if command.IsCommand(utterance) {
		return connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("%q is a command or empty; send commands to %s", utterance, CommandProcedure))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for fragment, err := range s.session.RunTurn(ctx, utterance) {
		if err != nil {
			return s.fail(ctx, "server.Chat", err)
		}
		// Returning mid-range abandons the turn, which rolls it back.
		if err := stream.Send(wrapperspb.String(fragment)); err != nil {
			return s.fail(ctx, "server.Chat", err)
		}
	}
	return nil
}

func (s *Server) command(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.StringValue], error) {
	line := req.Msg.GetValue()
	if !strings.HasPrefix(strings.TrimSpace(line), "/") {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%q is not a command", line))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out bytes.Buffer
	outcome := command.New(s.session, &out).Interpret(ctx, line)
	if outcome.Kind != command.Handled {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%q is not available over this endpoint", line))
	}

	return connect.NewResponse(wrapperspb.String(out.String())), nil
}

func (s *Server) transcript(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[structpb.ListValue], error) {
	msgs := s.session.Messages()

	values := make([]any, len(msgs))
	for i, m := range msgs {
		values[i] = map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		}
	}

	list, err := structpb.NewList(values)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(list), nil
}

// fail maps a turn error to a connect error: cancellation is CodeAborted,
// anything else CodeUnavailable.
func (s *Server) fail(ctx context.Context, source string, err error) error {
	code := connect.CodeUnavailable
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeAborted
	case errors.Is(err, session.ErrEmptyUtterance):
		code = connect.CodeInvalidArgument
	}

	s.observer.OnEvent(context.WithoutCancel(ctx), observability.NewEvent(
		EventRPCError, observability.LevelWarning, source,
		map[string]any{
			"session_id": s.session.ID(),
			"code":       code.String(),
			"error":      err.Error(),
		},
	))
	return connect.NewError(code, err)
}
