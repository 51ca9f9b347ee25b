package transcript

import "errors"

// Sentinel errors for transcript operations.
var (
	ErrSystemMessage   = errors.New("system message can only be replaced")
	ErrInvalidRole     = errors.New("invalid role")
	ErrOutOfRange      = errors.New("truncate length out of range")
	ErrMalformedExport = errors.New("malformed transcript export")
)
