package session

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/tailored-agentic-units/localchat/core/protocol"
	"github.com/tailored-agentic-units/localchat/engine"
	"github.com/tailored-agentic-units/localchat/observability"
)

// turn is the state of one in-flight exchange: the transcript length to roll
// back to and the request built from the parameters captured at its start.
type turn struct {
	mark    int
	request *engine.Request
}

// RunTurn returns a single-use sequence of reply fragments for utterance.
// Nothing happens until the sequence is ranged over.
//
// On success the full reply, trimmed of surrounding whitespace, is committed
// as an assistant message. If the engine fails, ctx is cancelled, or the
// caller stops ranging early, the transcript is truncated to its pre-turn
// length and a final error wrapping ErrGeneration is yielded (when the
// caller is still listening). Ranging a second time yields ErrTurnConsumed.
func (s *Session) RunTurn(ctx context.Context, utterance string) iter.Seq2[string, error] {
	var consumed atomic.Bool

	return func(yield func(string, error) bool) {
		if consumed.Swap(true) {
			yield("", ErrTurnConsumed)
			return
		}

		t, err := s.begin(ctx, utterance)
		if err != nil {
			yield("", err)
			return
		}

		var reply strings.Builder
		fragments := 0

		for chunk, err := range s.engine.ChatStream(ctx, t.request) {
			if err != nil {
				yield("", s.rollback(ctx, t, err))
				return
			}

			fragment := chunk.Content()
			if fragment == "" {
				continue
			}

			reply.WriteString(fragment)
			fragments++

			if !yield(fragment, nil) {
				s.rollback(ctx, t, ErrTurnAbandoned)
				return
			}
		}

		if err := ctx.Err(); err != nil {
			yield("", s.rollback(ctx, t, err))
			return
		}

		s.commit(ctx, t, reply.String(), fragments)
	}
}

// Send runs a turn without streaming and returns the committed reply.
func (s *Session) Send(ctx context.Context, utterance string) (string, error) {
	t, err := s.begin(ctx, utterance)
	if err != nil {
		return "", err
	}

	resp, err := s.engine.Chat(ctx, t.request)
	if err != nil {
		return "", s.rollback(ctx, t, err)
	}

	return s.commit(ctx, t, resp.Content(), 1), nil
}

func (s *Session) begin(ctx context.Context, utterance string) (*turn, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, ErrEmptyUtterance
	}

	params := s.Params()
	mark := s.transcript.Len()

	if err := s.transcript.Append(protocol.NewMessage(protocol.RoleUser, utterance)); err != nil {
		return nil, err
	}

	s.observer.OnEvent(ctx, observability.NewEvent(
		EventTurnStart, observability.LevelInfo, "session.RunTurn",
		map[string]any{
			"session_id":       s.ID(),
			"utterance_length": len(utterance),
			"messages":         mark + 1,
			"temperature":      params.Temperature,
			"max_tokens":       params.MaxTokens,
		},
	))

	return &turn{
		mark:    mark,
		request: engine.NewRequest(s.transcript.Messages(), params.Options()),
	}, nil
}

func (s *Session) commit(ctx context.Context, t *turn, reply string, fragments int) string {
	reply = strings.TrimSpace(reply)
	// Appending an assistant message cannot fail.
	_ = s.transcript.Append(protocol.NewMessage(protocol.RoleAssistant, reply))

	s.observer.OnEvent(ctx, observability.NewEvent(
		EventTurnCommit, observability.LevelInfo, "session.RunTurn",
		map[string]any{
			"session_id":   s.ID(),
			"fragments":    fragments,
			"reply_length": len(reply),
		},
	))
	return reply
}

func (s *Session) rollback(ctx context.Context, t *turn, cause error) error {
	if err := s.transcript.Truncate(t.mark); err != nil {
		return fmt.Errorf("%w: rollback failed: %w", ErrGeneration, err)
	}

	s.observer.OnEvent(ctx, observability.NewEvent(
		EventTurnRollback, observability.LevelWarning, "session.RunTurn",
		map[string]any{
			"session_id": s.ID(),
			"restored":   t.mark,
			"error":      cause.Error(),
		},
	))
	return fmt.Errorf("%w: %w", ErrGeneration, cause)
}
