package store

import (
	"slices"
	"strings"
	"sync"
)

// Factory constructs an unopened Store.
type Factory func(opts Options) Store

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes an engine available for connection strings starting with
// prefix. Engines call it from init; the binary decides which engines exist
// by importing their packages. Register panics on a duplicate prefix or a nil
// factory.
func Register(prefix string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("store: Register factory is nil")
	}
	if _, dup := factories[prefix]; dup {
		panic("store: Register called twice for prefix " + prefix)
	}
	factories[prefix] = f
}

// Prefixes lists the registered connection-string prefixes.
func Prefixes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make([]string, 0, len(factories))
	for p := range factories {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// New resolves url to an unopened Store by its prefix.
func New(url string, opts Options) (Store, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	var best string
	for p := range factories {
		if strings.HasPrefix(url, p) && len(p) > len(best) {
			best = p
		}
	}
	if best == "" {
		return nil, ConfigurationError{URL: url, Reason: "no engine registered for this scheme"}
	}
	return factories[best](opts), nil
}

// Open resolves url and opens the resulting store.
func Open(url, user, password string, opts Options) (Store, error) {
	s, err := New(url, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Open(url, user, password); err != nil {
		return nil, err
	}
	return s, nil
}
