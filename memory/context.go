package memory

import (
	"context"
	"fmt"
	"strings"
)

// Compose loads every entry in store and joins the values, in key order,
// separated by blank lines. A nil store yields "".
func Compose(ctx context.Context, store Store) (string, error) {
	if store == nil {
		return "", nil
	}

	keys, err := store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list memory keys: %w", err)
	}
	if len(keys) == 0 {
		return "", nil
	}

	entries, err := store.Load(ctx, keys...)
	if err != nil {
		return "", fmt.Errorf("failed to load memory entries: %w", err)
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if v := strings.TrimSpace(string(e.Value)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
