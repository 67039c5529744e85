package view

import (
	"sync"

	"raffledash/internal/debounce"
	"raffledash/internal/raffle"
)

// Session is one interactive view over a snapshot. Criteria edits go
// through the debouncer; the derived result is recomputed once the edits
// settle and handed to the change callback.
//
// Safe for concurrent use.
type Session struct {
	snapshot  *raffle.Snapshot
	debouncer *debounce.Debouncer
	onChange  func(raffle.Result)

	mu       sync.Mutex
	criteria raffle.Criteria
	result   raffle.Result
	rev      uint64
}

// NewSession starts a session with empty criteria. onChange may be nil.
func NewSession(s *raffle.Snapshot, d *debounce.Debouncer, onChange func(raffle.Result)) *Session {
	if d == nil {
		d = debounce.New(debounce.DefaultWait)
	}
	return &Session{
		snapshot:  s,
		debouncer: d,
		onChange:  onChange,
		result:    s.Derive(raffle.Criteria{}),
	}
}

// Snapshot returns the set this session derives from
func (s *Session) Snapshot() *raffle.Snapshot {
	return s.snapshot
}

// Criteria returns the latest criteria, including edits not yet applied
func (s *Session) Criteria() raffle.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Result returns the most recently derived result
func (s *Session) Result() raffle.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Update records new criteria and schedules a re-derive after the
// debounce window. A later Update or Apply supersedes it.
func (s *Session) Update(c raffle.Criteria) {
	s.mu.Lock()
	s.criteria = c
	s.rev++
	rev := s.rev
	s.mu.Unlock()

	s.debouncer.Trigger(func() {
		s.derive(c, rev)
	})
}

// Apply derives immediately, cancelling any pending Update
func (s *Session) Apply(c raffle.Criteria) raffle.Result {
	s.debouncer.Stop()

	s.mu.Lock()
	s.criteria = c
	s.rev++
	rev := s.rev
	s.mu.Unlock()

	return s.derive(c, rev)
}

// Pending reports whether an Update is waiting for the window to pass
func (s *Session) Pending() bool {
	return s.debouncer.Pending()
}

// Close cancels any pending Update
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) derive(c raffle.Criteria, rev uint64) raffle.Result {
	res := s.snapshot.Derive(c)

	s.mu.Lock()
	if rev != s.rev {
		// superseded while deriving
		s.mu.Unlock()
		return res
	}
	s.result = res
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(res)
	}
	return res
}
