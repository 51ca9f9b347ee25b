package server_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/go-cmp/cmp"
	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/engine/mock"
	"github.com/tailored-agentic-units/localchat/observability"
	"github.com/tailored-agentic-units/localchat/server"
	"github.com/tailored-agentic-units/localchat/session"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- Test helpers ---

func newTestServer(t *testing.T, replies ...mock.Reply) (*server.Client, *session.Session, *mock.Engine) {
	t.Helper()
	eng := mock.New(mock.WithReplies(replies...))
	cfg := session.DefaultConfig()
	s, err := session.New(context.Background(), eng, &cfg, session.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}

	srv := server.New(s, server.WithObserver(observability.NoOpObserver{}))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return server.NewClient(ts.Client(), ts.URL), s, eng
}

func collect(t *testing.T, c *server.Client, utterance string) ([]string, error) {
	t.Helper()
	var fragments []string
	for fragment, err := range c.Chat(context.Background(), utterance) {
		if err != nil {
			return fragments, err
		}
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

// --- Chat ---

func TestChat_StreamsAndCommits(t *testing.T) {
	c, s, _ := newTestServer(t, mock.Reply{Fragments: []string{"Hel", "lo", "!"}})

	fragments, err := collect(t, c, "hi")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if diff := cmp.Diff([]string{"Hel", "lo", "!"}, fragments); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestChat_EngineErrorRollsBack(t *testing.T) {
	c, s, _ := newTestServer(t, mock.Reply{Fragments: []string{"part"}, Err: errors.New("model crashed")})

	_, err := collect(t, c, "hi")
	if got := connect.CodeOf(err); got != connect.CodeUnavailable {
		t.Errorf("code = %v, want %v (err: %v)", got, connect.CodeUnavailable, err)
	}
	if !strings.Contains(err.Error(), "model crashed") {
		t.Errorf("error = %v, want cause in message", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestChat_RejectsCommandsAndBlank(t *testing.T) {
	c, _, eng := newTestServer(t)

	for _, line := range []string{"", "   ", "/reset", "quit"} {
		_, err := collect(t, c, line)
		if got := connect.CodeOf(err); got != connect.CodeInvalidArgument {
			t.Errorf("%q: code = %v, want %v", line, got, connect.CodeInvalidArgument)
		}
	}
	if n := len(eng.Requests()); n != 0 {
		t.Errorf("engine received %d requests, want 0", n)
	}
}

func TestChat_ConcurrentTurnsSerialized(t *testing.T) {
	c, s, _ := newTestServer(t)

	var wg sync.WaitGroup
	for _, u := range []string{"alpha beta", "gamma delta", "epsilon zeta"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := collect(t, c, u); err != nil {
				t.Errorf("Chat(%q) failed: %v", u, err)
			}
		}()
	}
	wg.Wait()

	msgs := s.Messages()
	if len(msgs) != 7 {
		t.Fatalf("len(Messages) = %d, want 7", len(msgs))
	}
	for i := 1; i < len(msgs); i += 2 {
		if msgs[i].Role != protocol.RoleUser || msgs[i+1].Role != protocol.RoleAssistant {
			t.Fatalf("turn at %d not contiguous: %+v, %+v", i, msgs[i], msgs[i+1])
		}
		if msgs[i].Content != msgs[i+1].Content {
			t.Errorf("echo reply %q does not match utterance %q", msgs[i+1].Content, msgs[i].Content)
		}
	}
}

// --- Command ---

func TestCommand(t *testing.T) {
	c, s, _ := newTestServer(t)

	out, err := c.Command(context.Background(), "/temp 0.4")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if !strings.Contains(out, "temperature set to 0.4") {
		t.Errorf("output = %q", out)
	}
	if got := s.Params().Temperature; got != 0.4 {
		t.Errorf("Temperature = %v, want 0.4", got)
	}

	out, err = c.Command(context.Background(), "/max x")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if !strings.Contains(out, "usage: /max <n>") {
		t.Errorf("output = %q", out)
	}
}

func TestCommand_Rejected(t *testing.T) {
	c, _, _ := newTestServer(t)

	for _, line := range []string{"hello", "exit", "/exit"} {
		_, err := c.Command(context.Background(), line)
		if got := connect.CodeOf(err); got != connect.CodeInvalidArgument {
			t.Errorf("%q: code = %v, want %v", line, got, connect.CodeInvalidArgument)
		}
	}
}

// --- Transcript ---

func TestTranscript(t *testing.T) {
	c, s, _ := newTestServer(t, mock.Reply{Fragments: []string{"pong"}})

	if _, err := collect(t, c, "ping"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	msgs, err := c.Transcript(context.Background())
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if diff := cmp.Diff(s.Messages(), msgs); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Command(context.Background(), "/reset"); err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	msgs, err = c.Transcript(context.Background())
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != protocol.RoleSystem {
		t.Errorf("transcript after reset = %+v", msgs)
	}
}

// --- Serve ---

func TestServe_ShutdownOnCancel(t *testing.T) {
	eng := mock.New()
	cfg := session.DefaultConfig()
	s, err := session.New(context.Background(), eng, &cfg, session.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := server.New(s, server.WithObserver(observability.NoOpObserver{}))

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	transport := &http.Transport{}
	defer transport.CloseIdleConnections()
	c := server.NewClient(&http.Client{Transport: transport}, "http://"+ln.Addr().String())

	var reply strings.Builder
	for fragment, err := range c.Chat(context.Background(), "still alive") {
		if err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		reply.WriteString(fragment)
	}
	if reply.String() != "still alive" {
		t.Errorf("reply = %q, want %q", reply.String(), "still alive")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	eng := mock.New()
	cfg := session.DefaultConfig()
	s, err := session.New(context.Background(), eng, &cfg, session.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}

	srv := server.New(s, server.WithObserver(observability.NoOpObserver{}))
	if err := srv.ListenAndServe(context.Background(), "not-an-address"); err == nil {
		t.Error("expected listen error")
	}
}
