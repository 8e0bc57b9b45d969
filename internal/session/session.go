// Package session hosts in-memory workout views. A session pairs a
// completion tracker with a rest timer and streams their changes to
// subscribers. Nothing here outlives the process.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/meltforce/fithome/internal/alarm"
	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/models"
	"github.com/meltforce/fithome/internal/timer"
	"github.com/meltforce/fithome/internal/tracker"
)

// ErrUnknownAction is returned for timer actions other than start, pause,
// toggle and reset.
var ErrUnknownAction = errors.New("unknown timer action")

// AlarmPath returns the URL path serving tone as WAV.
func AlarmPath(tone string) string {
	return "/api/v1/alarm/" + tone + ".wav"
}

// View is a JSON snapshot of a session as a client renders it.
type View struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Day       models.DayView `json:"day"`
	Completed []string       `json:"completed"`
	Stats     tracker.Stats  `json:"stats"`
	AllDone   bool           `json:"all_done"`
	Timer     timer.State    `json:"timer"`
	QuickAdd  []int          `json:"quick_add"`
}

// ToggleResult reports the new completion state of one exercise.
type ToggleResult struct {
	ExerciseID string `json:"exercise_id"`
	Completed  bool   `json:"completed"`
	Session    View   `json:"session"`
}

// Session is one workout view.
type Session struct {
	ID        string
	CreatedAt time.Time

	catalog  *catalog.Catalog
	tracker  *tracker.Tracker
	timer    *timer.Timer
	events   *Broker
	quickAdd []int

	mu       sync.Mutex
	lastSeen time.Time
}

// beepPlayer publishes a beep event for every tone played so remote clients
// can sound it themselves.
func beepPlayer(b *Broker) alarm.Player {
	return alarm.PlayerFunc(func(_ context.Context, t alarm.Tone) error {
		b.Publish(Event{Type: EventBeep, Tone: t.Name, URL: AlarmPath(t.Name)})
		return nil
	})
}

// Timer returns the session's rest timer.
func (s *Session) Timer() *timer.Timer { return s.timer }

// TimerAction runs the named timer control.
func (s *Session) TimerAction(action string) (timer.State, error) {
	switch action {
	case "start":
		return s.timer.Start(), nil
	case "pause":
		return s.timer.Pause(), nil
	case "toggle":
		return s.timer.Toggle(), nil
	case "reset":
		return s.timer.Reset(), nil
	default:
		return s.timer.State(), ErrUnknownAction
	}
}

// Subscribe streams the session's events. Call the returned function to stop.
func (s *Session) Subscribe() (<-chan Event, func()) { return s.events.Subscribe() }

// Touch marks the session as used at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// LastSeen returns the time of the latest Touch.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SelectDay switches the displayed day. Completion marks are kept.
func (s *Session) SelectDay(dayID string) error {
	if err := s.tracker.SelectDay(dayID); err != nil {
		return err
	}
	s.publishProgress()
	return nil
}

// ToggleExercise flips exerciseID's completion mark and reports the new value.
func (s *Session) ToggleExercise(exerciseID string) bool {
	done := s.tracker.Toggle(exerciseID)
	s.publishProgress()
	return done
}

// ResetProgress clears all completion marks.
func (s *Session) ResetProgress() {
	s.tracker.ResetProgress()
	s.publishProgress()
}

// CompleteAll marks exactly the selected day's exercises as done.
func (s *Session) CompleteAll() {
	s.tracker.CompleteAll()
	s.publishProgress()
}

// Stats returns completion of dayID, or of the selected day when dayID is
// empty.
func (s *Session) Stats(dayID string) (tracker.Stats, error) {
	if dayID == "" {
		return s.tracker.SelectedStats(), nil
	}
	day, ok := s.catalog.Day(dayID)
	if !ok {
		return tracker.Stats{}, tracker.ErrUnknownDay
	}
	return s.tracker.Stats(day), nil
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	snap := s.tracker.Snapshot()
	quick := make([]int, len(s.quickAdd))
	copy(quick, s.quickAdd)
	return View{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Day:       snap.Day.View(),
		Completed: snap.Completed,
		Stats:     snap.Stats,
		AllDone:   snap.Stats.Total > 0 && snap.Stats.Percentage == 100,
		Timer:     s.timer.State(),
		QuickAdd:  quick,
	}
}

func (s *Session) publishProgress() {
	snap := s.tracker.Snapshot()
	s.events.Publish(Event{
		Type:      EventProgress,
		Stats:     &snap.Stats,
		Completed: snap.Completed,
	})
}

func (s *Session) publishTimer(ev timer.Event) {
	st := ev.State
	s.events.Publish(Event{Type: string(ev.Type), Timer: &st})
}

// close stops the timer and ends every subscription.
func (s *Session) close() {
	s.timer.Close()
	s.events.Close()
}
