package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/fithome/internal/alarm"
	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/clock"
	"github.com/meltforce/fithome/internal/timer"
	"github.com/meltforce/fithome/internal/tracker"
)

var ErrSessionNotFound = errors.New("session not found")

// Defaults for Config fields left zero.
const (
	DefaultIdleTTL       = 2 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// DefaultQuickAdd are the extra-time presets offered to clients.
var DefaultQuickAdd = []int{10, 30, 50}

// Config controls the sessions a Manager creates.
type Config struct {
	InitialSeconds int
	QuickAdd       []int
	IdleTTL        time.Duration
	SweepInterval  time.Duration
	// Player sounds alarm tones on this host. Nil means silent.
	Player alarm.Player
	Clock  clock.Clock
}

func (c Config) withDefaults() Config {
	if c.InitialSeconds <= 0 {
		c.InitialSeconds = timer.DefaultSeconds
	}
	if len(c.QuickAdd) == 0 {
		c.QuickAdd = DefaultQuickAdd
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = DefaultIdleTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.Player == nil {
		c.Player = alarm.Silent{}
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	return c
}

// Manager owns every live session.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	catalog *catalog.Catalog
	cfg     Config
	log     *slog.Logger
}

func NewManager(c *catalog.Catalog, cfg Config, log *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		catalog:  c,
		cfg:      cfg.withDefaults(),
		log:      log,
	}
}

// Catalog returns the catalog sessions are built from.
func (m *Manager) Catalog() *catalog.Catalog { return m.catalog }

// Create starts a session showing dayID, or today's day when dayID is empty.
func (m *Manager) Create(dayID string) (*Session, error) {
	now := m.cfg.Clock.Now()
	if dayID == "" {
		dayID = m.catalog.Today(now).ID
	}
	tr, err := tracker.New(m.catalog, dayID)
	if err != nil {
		return nil, fmt.Errorf("creating tracker for %q: %w", dayID, err)
	}

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		catalog:   m.catalog,
		tracker:   tr,
		events:    NewBroker(),
		quickAdd:  m.cfg.QuickAdd,
		lastSeen:  now,
	}
	log := m.log.With("session", s.ID)
	seq := alarm.NewSequence(
		alarm.Multi(m.cfg.Player, beepPlayer(s.events)),
		log,
		alarm.WithClock(m.cfg.Clock),
	)
	s.timer, err = timer.New(m.cfg.InitialSeconds,
		timer.WithClock(m.cfg.Clock),
		timer.WithAlarm(seq),
		timer.WithListener(s.publishTimer),
		timer.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("creating timer: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Info("session started", "day", dayID)
	return s, nil
}

// Get returns the session and marks it used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Touch(m.cfg.Clock.Now())
	return s, nil
}

// Close tears the session down: its timer stops and its subscribers are
// disconnected.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	m.log.Info("session closed", "session", id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions not used within the idle TTL before now and returns
// how many were closed.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.close()
		m.log.Info("idle session closed", "session", s.ID, "last_seen", s.LastSeen())
	}
	return len(stale)
}

// Run sweeps idle sessions every sweep interval until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	tk := m.cfg.Clock.NewTicker(m.cfg.SweepInterval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tk.C():
			m.Sweep(now)
		}
	}
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	if len(all) > 0 {
		m.log.Info("sessions closed", "count", len(all))
	}
}
