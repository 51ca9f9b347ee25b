// Package memory is a file-backed key-value store. The chat session uses it
// to export transcripts atomically and to load context files that extend
// the system prompt.
package memory

import "context"

// Store translates between external storage and a flat key-value namespace.
// Implementations perform I/O on each call without caching.
type Store interface {
	// List returns all available keys in lexical order.
	List(ctx context.Context) ([]string, error)
	// Load retrieves entries for the specified keys.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save persists entries, creating or overwriting as needed.
	Save(ctx context.Context, entries ...Entry) error
}
