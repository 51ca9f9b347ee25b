package command

import "errors"

// Sentinel errors for command handling. Neither is fatal: the interpreter
// reports them and the session is left unchanged.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUsage           = errors.New("missing or malformed argument")
)
