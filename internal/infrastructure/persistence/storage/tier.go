// Package storage provides the durable and ephemeral state tiers backing
// visitor identity and frequency records. Both tiers share one contract:
// reads report presence, writes report success, and neither ever returns
// an error to the caller. A failed write leaves the value in process
// memory so the engine keeps a consistent view for the rest of the run.
package storage

import (
	"sync"
)

// Tier is a namespaced key/value store with best-effort persistence.
type Tier interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
	// Set stores value under key. The return reports whether the value
	// reached the tier's backing store (an in-memory tier always succeeds).
	Set(key, value string) bool
}

// MemoryTier is the ephemeral tier: state scoped to one engine run.
type MemoryTier struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTier creates an empty in-memory tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{values: make(map[string]string)}
}

func (t *MemoryTier) Get(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, exists := t.values[key]
	return value, exists
}

func (t *MemoryTier) Set(key, value string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
	return true
}
