package search

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionIdle is how long an unused search session is kept.
const DefaultSessionIdle = 30 * time.Minute

type registryEntry struct {
	fetcher  *Fetcher
	lastUsed time.Time
}

// Registry keeps one Fetcher per browser session so pages accumulate across
// requests. Sessions unused for longer than the idle window are dropped.
type Registry struct {
	idle    time.Duration
	factory func() *Fetcher
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewRegistry returns a Registry building fetchers with factory.
func NewRegistry(idle time.Duration, factory func() *Fetcher) *Registry {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &Registry{
		idle:    idle,
		factory: factory,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
	}
}

// NewSessionID returns a fresh search session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Fetcher returns the fetcher of session id, creating it when missing or expired.
func (r *Registry) Fetcher(id string) *Fetcher {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	entry, ok := r.entries[id]
	if !ok {
		entry = &registryEntry{fetcher: r.factory()}
		r.entries[id] = entry
	}
	entry.lastUsed = now
	return entry.fetcher
}

// Drop forgets session id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops idle sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	removed := 0
	for id, entry := range r.entries {
		if now.Sub(entry.lastUsed) > r.idle {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}
