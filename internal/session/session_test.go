package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/meltforce/fithome/internal/alarm"
	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/clock"
	"github.com/meltforce/fithome/internal/tracker"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Thursday morning.
var epoch = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

type tonesPlayed struct {
	mu    sync.Mutex
	tones []string
}

func (p *tonesPlayed) Play(_ context.Context, t alarm.Tone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tones = append(p.tones, t.Name)
	return nil
}

func (p *tonesPlayed) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tones...)
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(epoch)
	cfg.Clock = clk
	m := NewManager(catalog.Default(), cfg, discard)
	t.Cleanup(m.Shutdown)
	return m, clk
}

// waitFor reads events until one of type typ arrives.
func waitFor(t *testing.T, ch <-chan Event, typ string) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				t.Fatalf("stream closed waiting for %s", typ)
			}
			if e.Type == typ {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

// TestCreateDefaultsToToday verifies an empty day id picks the weekday's plan.
func TestCreateDefaultsToToday(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s, err := m.Create("")
	if err != nil {
		t.Fatal(err)
	}
	v := s.View()
	if v.Day.ID != "thursday" {
		t.Errorf("day = %q, want thursday", v.Day.ID)
	}
	if v.Timer.RemainingSeconds != 50 || v.Timer.Running {
		t.Errorf("timer = %+v, want idle 50", v.Timer)
	}
	if len(v.QuickAdd) != 3 || v.QuickAdd[0] != 10 || v.QuickAdd[2] != 50 {
		t.Errorf("quick add = %v", v.QuickAdd)
	}
	if !v.CreatedAt.Equal(epoch) {
		t.Errorf("created at = %v", v.CreatedAt)
	}
}

// TestCreateUnknownDay verifies creation fails without registering a session.
func TestCreateUnknownDay(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	if _, err := m.Create("sunday"); !errors.Is(err, tracker.ErrUnknownDay) {
		t.Fatalf("error = %v, want ErrUnknownDay", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

// TestSessionsAreIndependent verifies two sessions keep separate state.
func TestSessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	a, _ := m.Create("monday")
	b, _ := m.Create("monday")
	if a.ID == b.ID {
		t.Fatal("duplicate session ids")
	}
	a.ToggleExercise("mon-1")
	if _, err := a.Timer().AddTime(30); err != nil {
		t.Fatal(err)
	}
	if got := b.View(); len(got.Completed) != 0 || got.Timer.RemainingSeconds != 50 {
		t.Errorf("b view = %+v", got)
	}
}

// TestViewAllDone verifies the flag follows a fully completed day.
func TestViewAllDone(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s, _ := m.Create("friday")
	if s.View().AllDone {
		t.Error("all done before any progress")
	}
	s.CompleteAll()
	v := s.View()
	if !v.AllDone || v.Stats.Percentage != 100 {
		t.Errorf("view after complete all = %+v", v.Stats)
	}
	if v.Day.Icon != "flame" {
		t.Errorf("icon = %q, want flame", v.Day.Icon)
	}
}

// TestStatsForOtherDay verifies stats can be asked for any catalog day.
func TestStatsForOtherDay(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s, _ := m.Create("monday")
	s.ToggleExercise("wed-1")
	s.ToggleExercise("wed-3")

	got, err := s.Stats("wednesday")
	if err != nil {
		t.Fatal(err)
	}
	if want := (tracker.Stats{Completed: 2, Total: 7, Percentage: 29}); got != want {
		t.Errorf("Stats(wednesday) = %+v, want %+v", got, want)
	}
	if _, err := s.Stats("nope"); !errors.Is(err, tracker.ErrUnknownDay) {
		t.Errorf("Stats(nope) error = %v", err)
	}
}

// TestProgressEvents verifies tracker changes are published with stats.
func TestProgressEvents(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s, _ := m.Create("wednesday")
	events, stop := s.Subscribe()
	defer stop()

	s.ToggleExercise("wed-1")
	e := waitFor(t, events, EventProgress)
	if e.Stats == nil || e.Stats.Completed != 1 || len(e.Completed) != 1 {
		t.Errorf("progress event = %+v", e)
	}
}

// TestExpiryRingsHostAndClients verifies an expiring timer plays the three
// tones on the host player and publishes a beep event for each.
func TestExpiryRingsHostAndClients(t *testing.T) {
	host := &tonesPlayed{}
	m, clk := newTestManager(t, Config{InitialSeconds: 2, Player: host})
	s, _ := m.Create("monday")
	events, stop := s.Subscribe()
	defer stop()

	s.Timer().Start()
	waitFor(t, events, "start")
	clk.Advance(2 * time.Second)
	waitFor(t, events, "alarm")
	if st := waitFor(t, events, "reset").Timer; st == nil || st.RemainingSeconds != 2 || st.Running {
		t.Errorf("state after expiry = %+v", st)
	}

	clk.Advance(1300 * time.Millisecond)

	want := []string{"chirp", "beep", "beep"}
	for i, name := range want {
		e := waitFor(t, events, EventBeep)
		if e.Tone != name || e.URL != AlarmPath(name) {
			t.Errorf("beep %d = %+v, want tone %s", i, e, name)
		}
	}
	got := host.names()
	if len(got) != len(want) {
		t.Fatalf("host played %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("host tone %d = %s, want %s", i, got[i], want[i])
		}
	}
}

// TestAlarmSurvivesResetAndStart verifies tones already scheduled keep
// playing when the timer is reset and restarted mid-alarm.
func TestAlarmSurvivesResetAndStart(t *testing.T) {
	host := &tonesPlayed{}
	m, clk := newTestManager(t, Config{InitialSeconds: 2, Player: host})
	s, _ := m.Create("monday")
	events, stop := s.Subscribe()
	defer stop()

	s.Timer().Start()
	clk.Advance(2 * time.Second)
	waitFor(t, events, "alarm")

	clk.Advance(100 * time.Millisecond)
	if e := waitFor(t, events, EventBeep); e.Tone != "chirp" {
		t.Fatalf("first tone = %q, want chirp", e.Tone)
	}
	s.Timer().Reset()
	s.Timer().Start()

	clk.Advance(550 * time.Millisecond)
	if e := waitFor(t, events, EventBeep); e.Tone != "beep" {
		t.Errorf("second tone = %q, want beep", e.Tone)
	}
	if st := s.Timer().State(); !st.Running || st.RemainingSeconds != 2 {
		t.Errorf("timer after restart = %+v", st)
	}
	got := host.names()
	if len(got) != 2 || got[0] != "chirp" || got[1] != "beep" {
		t.Errorf("host played %v, want [chirp beep]", got)
	}
}

// TestCloseTearsDown verifies Close stops the timer, ends subscriptions and
// forgets the session.
func TestCloseTearsDown(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s, _ := m.Create("monday")
	events, _ := s.Subscribe()
	s.Timer().Start()

	if err := m.Close(s.ID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, events, EventClosed)
	if _, ok := <-events; ok {
		t.Error("stream still open after close")
	}
	if s.Timer().State().Running {
		t.Error("timer still running after close")
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after close error = %v", err)
	}
	if err := m.Close(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Close error = %v", err)
	}
}

// TestSweepClosesIdle verifies only sessions idle past the TTL are closed and
// that Get keeps a session alive.
func TestSweepClosesIdle(t *testing.T) {
	m, clk := newTestManager(t, Config{IdleTTL: time.Hour})
	idle, _ := m.Create("monday")
	busy, _ := m.Create("monday")

	clk.Advance(50 * time.Minute)
	if _, err := m.Get(busy.ID); err != nil {
		t.Fatal(err)
	}
	clk.Advance(20 * time.Minute)

	if n := m.Sweep(clk.Now()); n != 1 {
		t.Errorf("Sweep closed %d, want 1", n)
	}
	if _, err := m.Get(idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived sweep")
	}
	if _, err := m.Get(busy.ID); err != nil {
		t.Errorf("busy session swept: %v", err)
	}
}

// TestRunSweepsOnInterval verifies Run sweeps on its ticker and stops with
// its context.
func TestRunSweepsOnInterval(t *testing.T) {
	m, clk := newTestManager(t, Config{IdleTTL: time.Minute, SweepInterval: 5 * time.Minute})
	if _, err := m.Create("monday"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// Wait until Run has registered its ticker before moving time.
	deadline := time.Now().Add(2 * time.Second)
	for {
		clk.Advance(5 * time.Minute)
		if m.Len() == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("session never swept")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// TestBrokerDropsWhenFull verifies Publish never blocks on a slow subscriber.
func TestBrokerDropsWhenFull(t *testing.T) {
	b := NewBroker()
	ch, stop := b.Subscribe()
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(Event{Type: EventProgress})
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered %d, want %d", len(ch), subscriberBuffer)
	}
	stop()
	stop()
	if b.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after unsubscribe", b.Subscribers())
	}
	b.Close()
	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close returned open channel")
	}
}

// TestTimerAction verifies named controls map onto the timer.
func TestTimerAction(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s, _ := m.Create("monday")

	if st, err := s.TimerAction("start"); err != nil || !st.Running {
		t.Fatalf("start = %+v, %v", st, err)
	}
	if st, _ := s.TimerAction("toggle"); st.Running {
		t.Error("toggle did not pause")
	}
	if st, _ := s.TimerAction("reset"); st.RemainingSeconds != 50 || st.Running {
		t.Errorf("reset = %+v", st)
	}
	if _, err := s.TimerAction("explode"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action error = %v", err)
	}
}
