package engine

import "errors"

// Sentinel errors for the provider registry and engine implementations.
var (
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrProviderExists   = errors.New("provider already registered")
	ErrEmptyProvider    = errors.New("provider name is empty")
	ErrIncompleteStream = errors.New("stream ended before completion")
)
