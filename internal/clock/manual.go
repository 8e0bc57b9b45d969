package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock that only moves when Advance is called.
//
// Ticks are delivered synchronously: Advance blocks until the receiver has
// taken each tick off the channel or the ticker is stopped. AfterFunc
// callbacks run on the goroutine calling Advance.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
	timers  []*manualTimer
}

// NewManual returns a Manual clock starting at now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// NewTicker implements Clock.
func (m *Manual) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{
		c:      make(chan time.Time),
		done:   make(chan struct{}),
		period: d,
		next:   m.now.Add(d),
	}
	m.tickers = append(m.tickers, t)
	return t
}

// AfterFunc implements Clock.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{at: m.now.Add(d), f: f}
	m.timers = append(m.timers, t)
	return t
}

// Pending returns the number of AfterFunc callbacks that have not fired or
// been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.isDone() {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers and ticks in time
// order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		ev, at, ok := m.nextEventLocked(target)
		if !ok {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = at
		m.mu.Unlock()
		ev()
	}
}

// nextEventLocked finds the earliest event due at or before target.
func (m *Manual) nextEventLocked(target time.Time) (func(), time.Time, bool) {
	var (
		best   func()
		bestAt time.Time
		found  bool
	)

	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.isDone() {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool { return m.timers[i].at.Before(m.timers[j].at) })
	if len(m.timers) > 0 && !m.timers[0].at.After(target) {
		t := m.timers[0]
		best, bestAt, found = t.fire, t.at, true
	}

	activeTickers := m.tickers[:0]
	for _, tk := range m.tickers {
		if !tk.stopped() {
			activeTickers = append(activeTickers, tk)
		}
	}
	m.tickers = activeTickers
	var chosen *manualTicker
	for _, tk := range m.tickers {
		if tk.next.After(target) {
			continue
		}
		if !found || tk.next.Before(bestAt) {
			chosen, bestAt, found = tk, tk.next, true
		}
	}
	if chosen != nil {
		at := chosen.next
		chosen.next = at.Add(chosen.period)
		best = func() { chosen.deliver(at) }
	}
	return best, bestAt, found
}

type manualTicker struct {
	c      chan time.Time
	done   chan struct{}
	once   sync.Once
	period time.Duration
	next   time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *manualTicker) stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *manualTicker) deliver(at time.Time) {
	select {
	case t.c <- at:
	case <-t.done:
	}
}

type manualTimer struct {
	mu   sync.Mutex
	at   time.Time
	f    func()
	done bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (t *manualTimer) isDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *manualTimer) fire() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	t.mu.Unlock()
	t.f()
}
