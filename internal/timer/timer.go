// Package timer implements the rest timer: a one-second countdown that rings
// an alarm when it reaches zero and then rolls back to its full duration.
package timer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meltforce/fithome/internal/clock"
)

// DefaultSeconds is the rest duration used when none is configured.
const DefaultSeconds = 50

var (
	ErrInvalidDuration = errors.New("initial seconds must be positive")
	ErrInvalidDelta    = errors.New("added seconds must be positive")
)

// Alarm is rung once per expiry. Ring must not block.
type Alarm interface {
	Ring()
}

// AlarmFunc adapts a function to Alarm.
type AlarmFunc func()

// Ring implements Alarm.
func (f AlarmFunc) Ring() { f() }

// EventType names a state change.
type EventType string

const (
	EventStart EventType = "start"
	EventPause EventType = "pause"
	EventReset EventType = "reset"
	EventAdd   EventType = "add"
	EventTick  EventType = "tick"
	EventAlarm EventType = "alarm"
)

// Event is delivered to listeners after every state change.
type Event struct {
	Type  EventType `json:"type"`
	State State     `json:"state"`
}

// State is a point-in-time snapshot of the timer.
type State struct {
	RemainingSeconds int     `json:"remaining_seconds"`
	InitialSeconds   int     `json:"initial_seconds"`
	Running          bool    `json:"running"`
	Progress         float64 `json:"progress"`
	Display          string  `json:"display"`
}

// Timer is a rest countdown. The zero value is not usable; call New.
type Timer struct {
	mu        sync.Mutex
	clock     clock.Clock
	alarm     Alarm
	listeners []func(Event)
	log       *slog.Logger

	initial   int
	remaining int
	running   bool
	closed    bool

	// stop is non-nil while a tick loop is live; closing it ends that loop.
	stop chan struct{}
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock sets the tick scheduler.
func WithClock(c clock.Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithAlarm sets the alarm rung on expiry.
func WithAlarm(a Alarm) Option {
	return func(t *Timer) { t.alarm = a }
}

// WithListener registers a callback for every event. Listeners run with the
// timer locked and must not call back into it or block.
func WithListener(f func(Event)) Option {
	return func(t *Timer) { t.listeners = append(t.listeners, f) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Timer) { t.log = l }
}

// New creates an idle timer with remaining == initial == initialSeconds.
func New(initialSeconds int, opts ...Option) (*Timer, error) {
	if initialSeconds <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, initialSeconds)
	}
	t := &Timer{
		clock:     clock.Real(),
		alarm:     AlarmFunc(func() {}),
		log:       slog.Default(),
		initial:   initialSeconds,
		remaining: initialSeconds,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Start begins counting down. It is a no-op when already running.
func (t *Timer) Start() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startLocked()
	return t.stateLocked()
}

// Pause stops counting down and keeps the remaining time.
func (t *Timer) Pause() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pauseLocked()
	return t.stateLocked()
}

// Toggle starts an idle timer and pauses a running one.
func (t *Timer) Toggle() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.pauseLocked()
	} else {
		t.startLocked()
	}
	return t.stateLocked()
}

func (t *Timer) startLocked() {
	if t.running || t.closed {
		return
	}
	t.running = true
	t.emitLocked(EventStart)
	if t.remaining == 0 {
		t.expireLocked()
		return
	}
	t.startLoopLocked()
}

func (t *Timer) pauseLocked() {
	if !t.running {
		return
	}
	t.running = false
	t.stopLoopLocked()
	t.emitLocked(EventPause)
}

// Reset stops the timer and restores the full duration.
func (t *Timer) Reset() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.stopLoopLocked()
	t.remaining = t.initial
	t.emitLocked(EventReset)
	return t.stateLocked()
}

// AddTime extends the remaining time by delta seconds in any state. The
// initial duration is unchanged, so remaining may exceed it.
func (t *Timer) AddTime(delta int) (State, error) {
	if delta <= 0 {
		return t.State(), fmt.Errorf("%w: %d", ErrInvalidDelta, delta)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.remaining += delta
	t.emitLocked(EventAdd)
	return t.stateLocked(), nil
}

// State returns a snapshot.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Close stops the tick loop for good. Later Start calls do nothing.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.running = false
	t.stopLoopLocked()
}

func (t *Timer) stateLocked() State {
	return State{
		RemainingSeconds: t.remaining,
		InitialSeconds:   t.initial,
		Running:          t.running,
		Progress:         Progress(t.initial, t.remaining),
		Display:          Format(t.remaining),
	}
}

func (t *Timer) emitLocked(typ EventType) {
	if len(t.listeners) == 0 {
		return
	}
	ev := Event{Type: typ, State: t.stateLocked()}
	for _, l := range t.listeners {
		l(ev)
	}
}

func (t *Timer) startLoopLocked() {
	stop := make(chan struct{})
	t.stop = stop
	go t.loop(t.clock.NewTicker(time.Second), stop)
}

func (t *Timer) stopLoopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) loop(tk clock.Ticker, stop chan struct{}) {
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C():
			t.tick(stop)
		}
	}
}

// tick applies one second of countdown on behalf of the loop owning stop.
// Ticks from a loop that has since been stopped are dropped.
func (t *Timer) tick(stop chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != stop || !t.running || t.remaining <= 0 {
		return
	}
	t.remaining--
	t.emitLocked(EventTick)
	if t.remaining == 0 {
		t.expireLocked()
	}
}

// expireLocked stops the countdown, rings the alarm and restores the full
// duration.
func (t *Timer) expireLocked() {
	t.running = false
	t.stopLoopLocked()
	t.log.Debug("rest timer expired", "initial_seconds", t.initial)
	t.alarm.Ring()
	t.emitLocked(EventAlarm)
	t.remaining = t.initial
	t.emitLocked(EventReset)
}

// Progress is the elapsed share of the initial duration in percent. It is not
// clamped: extra time pushes it below zero.
func Progress(initial, remaining int) float64 {
	if initial <= 0 {
		return 0
	}
	return float64(initial-remaining) / float64(initial) * 100
}

// Format renders seconds as m:ss.
func Format(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
