package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs an Engine from configuration.
type Factory func(cfg *Config) (Engine, error)

type registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

var providers = &registry{
	factories: make(map[string]Factory),
}

// Register adds a provider factory under name. Provider packages call it
// from init, so importing a provider makes it available to New.
func Register(name string, factory Factory) error {
	if name == "" {
		return ErrEmptyProvider
	}

	providers.mu.Lock()
	defer providers.mu.Unlock()

	if _, exists := providers.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderExists, name)
	}

	providers.factories[name] = factory
	return nil
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providers.mu.RLock()
	defer providers.mu.RUnlock()

	names := make([]string, 0, len(providers.factories))
	for name := range providers.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates an Engine using the factory registered for cfg.Provider.
func New(cfg *Config) (Engine, error) {
	providers.mu.RLock()
	factory, exists := providers.factories[cfg.Provider]
	providers.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownProvider, cfg.Provider, Providers())
	}

	eng, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", cfg.Provider, err)
	}
	return eng, nil
}
