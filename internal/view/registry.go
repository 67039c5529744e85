package view

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"raffledash/internal/raffle"
)

// DefaultTTL is how long an idle view keeps its snapshot
const DefaultTTL = 30 * time.Minute

// ErrViewNotFound is returned for unknown or expired view IDs
var ErrViewNotFound = errors.New("view not found")

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithClock replaces time.Now
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// WithIDGenerator replaces the random view ID source
func WithIDGenerator(newID func() string) RegistryOption {
	return func(r *Registry) {
		r.newID = newID
	}
}

type entry struct {
	snapshot *raffle.Snapshot
	expires  time.Time
}

// Registry keeps one snapshot per page load so filter requests derive from
// the set that page fetched instead of hitting the store again. Views expire
// after the TTL without access.
type Registry struct {
	ttl   time.Duration
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	views map[string]*entry
}

func NewRegistry(ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
		views: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a snapshot and returns its view ID. Expired views are
// swept on the way.
func (r *Registry) Add(s *raffle.Snapshot) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	id := r.newID()
	r.views[id] = &entry{snapshot: s, expires: now.Add(r.ttl)}
	return id
}

// Get returns the snapshot for id and extends its lifetime
func (r *Registry) Get(id string) (*raffle.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	now := r.now()
	if !now.Before(e.expires) {
		delete(r.views, id)
		return nil, ErrViewNotFound
	}
	e.expires = now.Add(r.ttl)
	return e.snapshot, nil
}

// Remove drops a view. Unknown IDs are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, id)
}

// Sweep evicts expired views and reports how many were removed
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

// Len returns the number of live and not yet swept views
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *Registry) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range r.views {
		if !now.Before(e.expires) {
			delete(r.views, id)
			removed++
		}
	}
	return removed
}
