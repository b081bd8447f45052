package orchestrator

import (
	"sort"
	"sync"
	"time"
)

// Default registry limits.
const (
	DefaultRegistryTTL = 24 * time.Hour
	DefaultRegistryMax = 256
)

// Registry tracks workflow states by work-item id.
// Completed workflows are evicted once older than the TTL, and the oldest
// completed workflows go first when the registry exceeds its size cap.
// Running workflows are never evicted.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*WorkflowState
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewRegistry creates a registry. Zero ttl or max disables that limit.
func NewRegistry(ttl time.Duration, max int) *Registry {
	return &Registry{
		entries: make(map[string]*WorkflowState),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

// Put registers state under its work-item id, replacing any earlier run.
func (r *Registry) Put(state *WorkflowState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[state.WorkItem.ID] = state
	r.evictLocked()
}

// Get returns the state for a work-item id.
func (r *Registry) Get(id string) (*WorkflowState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[id]
	return s, ok
}

// Len returns the number of tracked workflows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// List returns snapshots of every tracked workflow, oldest first.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	states := make([]*WorkflowState, 0, len(r.entries))
	for _, s := range r.entries {
		states = append(states, s)
	}
	r.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(states))
	for _, s := range states {
		snaps = append(snaps, s.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].StartedAt.Before(snaps[j].StartedAt)
	})
	return snaps
}

// Evict applies the eviction policy now and returns how many entries were removed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked()
}

func (r *Registry) evictLocked() int {
	removed := 0
	now := r.now()

	type done struct {
		id string
		at time.Time
	}
	var completed []done
	for id, s := range r.entries {
		at, ok := s.Done()
		if !ok {
			continue
		}
		if r.ttl > 0 && now.Sub(at) > r.ttl {
			delete(r.entries, id)
			removed++
			continue
		}
		completed = append(completed, done{id: id, at: at})
	}

	if r.max > 0 && len(r.entries) > r.max {
		sort.Slice(completed, func(i, j int) bool { return completed[i].at.Before(completed[j].at) })
		for _, c := range completed {
			if len(r.entries) <= r.max {
				break
			}
			delete(r.entries, c.id)
			removed++
		}
	}

	if removed > 0 {
		debugLog("[registry] evicted %d workflow(s), %d remain", removed, len(r.entries))
	}
	return removed
}
