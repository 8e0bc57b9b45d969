package mcp

import (
	"context"
	"time"

	"github.com/meltforce/fithome/internal/models"
	"github.com/meltforce/fithome/internal/session"
	"github.com/meltforce/fithome/internal/timer"
	"github.com/meltforce/fithome/internal/tracker"
)

// Backend abstracts where sessions live for MCP tools. Both Local (an
// in-process manager) and HTTPClient (remote via REST API) satisfy this
// interface.
type Backend interface {
	ListDays(ctx context.Context) ([]models.DayView, error)
	Today(ctx context.Context) (models.DayView, error)
	StartSession(ctx context.Context, dayID string) (session.View, error)
	GetSession(ctx context.Context, id string) (session.View, error)
	EndSession(ctx context.Context, id string) error
	SelectDay(ctx context.Context, id, dayID string) (session.View, error)
	ToggleExercise(ctx context.Context, id, exerciseID string) (session.ToggleResult, error)
	CompleteAll(ctx context.Context, id string) (session.View, error)
	ResetProgress(ctx context.Context, id string) (session.View, error)
	Stats(ctx context.Context, id, dayID string) (tracker.Stats, error)
	TimerControl(ctx context.Context, id, action string) (timer.State, error)
	TimerAddTime(ctx context.Context, id string, seconds int) (timer.State, error)
}

// Local serves MCP tools from an in-process session manager.
type Local struct {
	sessions *session.Manager
	now      func() time.Time
}

// Compile-time check: Local satisfies Backend.
var _ Backend = (*Local)(nil)

func NewLocal(sessions *session.Manager) *Local {
	return &Local{sessions: sessions, now: time.Now}
}

func (l *Local) ListDays(_ context.Context) ([]models.DayView, error) {
	days := l.sessions.Catalog().Days()
	views := make([]models.DayView, len(days))
	for i, d := range days {
		views[i] = d.View()
	}
	return views, nil
}

func (l *Local) Today(_ context.Context) (models.DayView, error) {
	return l.sessions.Catalog().Today(l.now()).View(), nil
}

func (l *Local) StartSession(_ context.Context, dayID string) (session.View, error) {
	s, err := l.sessions.Create(dayID)
	if err != nil {
		return session.View{}, err
	}
	return s.View(), nil
}

func (l *Local) GetSession(_ context.Context, id string) (session.View, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return session.View{}, err
	}
	return s.View(), nil
}

func (l *Local) EndSession(_ context.Context, id string) error {
	return l.sessions.Close(id)
}

func (l *Local) SelectDay(_ context.Context, id, dayID string) (session.View, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return session.View{}, err
	}
	if err := s.SelectDay(dayID); err != nil {
		return session.View{}, err
	}
	return s.View(), nil
}

func (l *Local) ToggleExercise(_ context.Context, id, exerciseID string) (session.ToggleResult, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return session.ToggleResult{}, err
	}
	done := s.ToggleExercise(exerciseID)
	return session.ToggleResult{ExerciseID: exerciseID, Completed: done, Session: s.View()}, nil
}

func (l *Local) CompleteAll(_ context.Context, id string) (session.View, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return session.View{}, err
	}
	s.CompleteAll()
	return s.View(), nil
}

func (l *Local) ResetProgress(_ context.Context, id string) (session.View, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return session.View{}, err
	}
	s.ResetProgress()
	return s.View(), nil
}

func (l *Local) Stats(_ context.Context, id, dayID string) (tracker.Stats, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return tracker.Stats{}, err
	}
	return s.Stats(dayID)
}

func (l *Local) TimerControl(_ context.Context, id, action string) (timer.State, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return timer.State{}, err
	}
	return s.TimerAction(action)
}

func (l *Local) TimerAddTime(_ context.Context, id string, seconds int) (timer.State, error) {
	s, err := l.sessions.Get(id)
	if err != nil {
		return timer.State{}, err
	}
	return s.Timer().AddTime(seconds)
}
