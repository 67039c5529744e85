package view

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffledash/internal/debounce"
	"raffledash/internal/models"
	"raffledash/internal/raffle"
)

func testSnapshot() *raffle.Snapshot {
	return raffle.NewSnapshot([]models.Raffle{
		{ID: "a", Creator: "Alice", StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), FloorPrice: "1.5"},
		{ID: "b", Creator: "Bob", StartTime: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), FloorPrice: "0.5"},
		{ID: "c", Creator: "alicia", StartTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), FloorPrice: "2"},
	}, time.Now())
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("view-%d", n)
	}
}

func TestRegistry_AddGet(t *testing.T) {
	reg := NewRegistry(time.Minute, WithIDGenerator(sequentialIDs()))
	snap := testSnapshot()

	id := reg.Add(snap)
	assert.Equal(t, "view-1", id)

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Same(t, snap, got)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestRegistry_DefaultIDsAreUnique(t *testing.T) {
	reg := NewRegistry(0)
	a := reg.Add(testSnapshot())
	b := reg.Add(testSnapshot())
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestRegistry_Expiry(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg := NewRegistry(10*time.Minute, WithClock(clock.Now))

	id := reg.Add(testSnapshot())

	clock.Advance(9 * time.Minute)
	_, err := reg.Get(id)
	require.NoError(t, err, "access extends the lifetime")

	clock.Advance(9 * time.Minute)
	_, err = reg.Get(id)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = reg.Get(id)
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Sweep(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg := NewRegistry(time.Minute, WithClock(clock.Now))

	reg.Add(testSnapshot())
	reg.Add(testSnapshot())
	clock.Advance(2 * time.Minute)
	fresh := reg.Add(testSnapshot())
	assert.Equal(t, 1, reg.Len(), "Add sweeps expired views")

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 0, reg.Len())

	reg.Remove(fresh)
	reg.Remove("never-existed")
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry(time.Minute)
	snap := testSnapshot()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := reg.Add(snap)
			got, err := reg.Get(id)
			assert.NoError(t, err)
			assert.Equal(t, 3, got.Derive(raffle.Criteria{}).Summary.Count)
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, reg.Len())
}

// queuedTimers captures scheduled callbacks so tests fire them explicitly
type queuedTimers struct {
	mu      sync.Mutex
	pending []*queuedTimer
}

type queuedTimer struct {
	f       func()
	stopped bool
}

func (q *queuedTimers) AfterFunc(_ time.Duration, f func()) debounce.Timer {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := &queuedTimer{f: f}
	q.pending = append(q.pending, t)
	return t
}

func (t *queuedTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// FireAll runs every scheduled callback, stopped or not, to mimic timers
// racing with Stop
func (q *queuedTimers) FireAll() {
	q.mu.Lock()
	due := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func TestSession_InitialResult(t *testing.T) {
	s := NewSession(testSnapshot(), nil, nil)
	defer s.Close()

	res := s.Result()
	assert.Equal(t, 3, res.Summary.Count)
	assert.Equal(t, "c", res.Raffles[0].ID)
	assert.True(t, s.Criteria().IsZero())
}

func TestSession_UpdateIsDebounced(t *testing.T) {
	timers := &queuedTimers{}
	d := debounce.New(debounce.DefaultWait, debounce.WithAfterFunc(timers.AfterFunc))

	var changes []raffle.Result
	s := NewSession(testSnapshot(), d, func(r raffle.Result) {
		changes = append(changes, r)
	})

	s.Update(raffle.Criteria{Creator: "a"})
	s.Update(raffle.Criteria{Creator: "ali"})
	s.Update(raffle.Criteria{Creator: "alic"})

	assert.Equal(t, "alic", s.Criteria().Creator, "criteria reflect the latest edit at once")
	assert.Equal(t, 3, s.Result().Summary.Count, "result waits for the window")
	assert.True(t, s.Pending())

	timers.FireAll()

	require.Len(t, changes, 1, "only the last edit derives")
	assert.Equal(t, "alic", changes[0].Criteria.Creator)
	assert.Equal(t, 2, changes[0].Summary.Count)
	assert.Equal(t, 2, s.Result().Summary.Count)
	assert.False(t, s.Pending())
}

func TestSession_ApplyCancelsPending(t *testing.T) {
	timers := &queuedTimers{}
	d := debounce.New(debounce.DefaultWait, debounce.WithAfterFunc(timers.AfterFunc))

	calls := 0
	s := NewSession(testSnapshot(), d, func(raffle.Result) { calls++ })

	s.Update(raffle.Criteria{Creator: "bob"})
	min := decimal.RequireFromString("1")
	res := s.Apply(raffle.Criteria{MinFloorPrice: &min})

	assert.Equal(t, 2, res.Summary.Count)
	assert.Equal(t, "3.50", res.Summary.FloorPriceDisplay())

	timers.FireAll()
	assert.Equal(t, 1, calls, "the superseded update never fires")
	assert.Equal(t, 2, s.Result().Summary.Count)
}

func TestSession_RealTimer(t *testing.T) {
	done := make(chan raffle.Result, 1)
	s := NewSession(testSnapshot(), debounce.New(10*time.Millisecond), func(r raffle.Result) {
		done <- r
	})
	defer s.Close()

	s.Update(raffle.Criteria{Creator: "BOB"})

	select {
	case res := <-done:
		require.Len(t, res.Raffles, 1)
		assert.Equal(t, "b", res.Raffles[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced update never ran")
	}
}
