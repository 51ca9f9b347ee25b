package session

import "github.com/tailored-agentic-units/localchat/observability"

// Session event types.
const (
	EventTurnStart    observability.EventType = "session.turn.start"
	EventTurnCommit   observability.EventType = "session.turn.commit"
	EventTurnRollback observability.EventType = "session.turn.rollback"
	EventParamChange  observability.EventType = "session.param.change"
	EventReset        observability.EventType = "session.reset"
	EventSave         observability.EventType = "session.save"
)
