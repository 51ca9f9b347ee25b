package session

import "errors"

// Sentinel errors for session operations.
var (
	// ErrGeneration wraps any failure during a turn. The transcript has been
	// rolled back when it is returned.
	ErrGeneration = errors.New("generation failed")

	// ErrTurnConsumed is returned when a turn sequence is ranged over twice.
	ErrTurnConsumed = errors.New("turn already consumed")

	// ErrTurnAbandoned is the rollback cause when the consumer stops pulling
	// fragments before the stream ends.
	ErrTurnAbandoned = errors.New("turn abandoned by caller")

	ErrEmptyUtterance   = errors.New("utterance is empty")
	ErrInvalidParameter = errors.New("invalid parameter")
)
