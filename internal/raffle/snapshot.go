package raffle

import (
	"time"

	"raffledash/internal/models"
)

// Snapshot is the full raffle set of one page load. It is immutable once
// built, so Derive may be called from any number of goroutines.
type Snapshot struct {
	raffles   []models.Raffle
	fetchedAt time.Time
}

// Result is what a view renders for one set of criteria
type Result struct {
	Criteria Criteria
	Raffles  []models.Raffle
	Summary  Summary
}

// NewSnapshot copies raffles and sorts the copy most recent first
func NewSnapshot(raffles []models.Raffle, fetchedAt time.Time) *Snapshot {
	sorted := make([]models.Raffle, len(raffles))
	copy(sorted, raffles)
	SortByStartDesc(sorted)
	return &Snapshot{raffles: sorted, fetchedAt: fetchedAt}
}

// Len returns the number of raffles, deleted ones included
func (s *Snapshot) Len() int {
	return len(s.raffles)
}

// FetchedAt returns when the underlying set was read from the store
func (s *Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// Raffles returns a copy of the sorted set
func (s *Snapshot) Raffles() []models.Raffle {
	out := make([]models.Raffle, len(s.raffles))
	copy(out, s.raffles)
	return out
}

// Derive filters the snapshot and summarizes the filtered raffles
func (s *Snapshot) Derive(c Criteria) Result {
	filtered := Filter(s.raffles, c)
	return Result{
		Criteria: c,
		Raffles:  filtered,
		Summary:  Summarize(filtered),
	}
}
