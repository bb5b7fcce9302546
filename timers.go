package luctisity

import (
	"container/heap"
	"sync"
	"time"
)

// Clock is a source of the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a controllable clock for tests and fixed-step hosts.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock creates a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TimerToken identifies an armed timer. The zero token is never issued.
type TimerToken uint64

type timer struct {
	token TimerToken
	due   time.Time
	fn    func()
	index int
}

// timerHeap orders timers by deadline, then by arming order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].token < h[j].token
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	t.index = -1
	return t
}

// Timers schedules callbacks against a Clock. Callbacks run from Fire, on the
// caller's goroutine, so they never overlap frame work.
type Timers struct {
	clock  Clock
	heap   timerHeap
	byTok  map[TimerToken]*timer
	nextID TimerToken
}

// NewTimers creates a scheduler reading clock. A nil clock uses SystemClock.
func NewTimers(clock Clock) *Timers {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timers{clock: clock, byTok: make(map[TimerToken]*timer)}
}

// Clock returns the scheduler's clock.
func (t *Timers) Clock() Clock { return t.clock }

// After arms fn to run once d from now and returns its token.
func (t *Timers) After(d time.Duration, fn func()) TimerToken {
	t.nextID++
	tm := &timer{token: t.nextID, due: t.clock.Now().Add(d), fn: fn}
	heap.Push(&t.heap, tm)
	t.byTok[tm.token] = tm
	return tm.token
}

// Cancel disarms a timer. It reports false if the timer already fired or was
// cancelled.
func (t *Timers) Cancel(tok TimerToken) bool {
	tm, ok := t.byTok[tok]
	if !ok {
		return false
	}
	delete(t.byTok, tok)
	heap.Remove(&t.heap, tm.index)
	return true
}

// Fire runs every timer due at the current clock time, in deadline order, and
// returns how many ran. Timers armed by a callback run in the same call only
// if already due.
func (t *Timers) Fire() int {
	now := t.clock.Now()
	fired := 0
	for len(t.heap) > 0 && !t.heap[0].due.After(now) {
		tm := heap.Pop(&t.heap).(*timer)
		delete(t.byTok, tm.token)
		tm.fn()
		fired++
	}
	return fired
}

// Pending returns the number of armed timers.
func (t *Timers) Pending() int { return len(t.heap) }
