// Package tracker records which exercises have been marked done in a session.
package tracker

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/models"
)

var ErrUnknownDay = errors.New("unknown workout day")

// Stats summarises completion of one day.
type Stats struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Tracker holds the selected day and the set of completed exercise ids.
//
// Completion marks are not scoped to a day: switching days keeps them, and
// ids outside the selected day may be present.
type Tracker struct {
	mu        sync.RWMutex
	catalog   *catalog.Catalog
	selected  string
	completed map[string]struct{}
}

// New creates a Tracker with dayID selected. An empty dayID selects the
// catalog's first day.
func New(c *catalog.Catalog, dayID string) (*Tracker, error) {
	if dayID == "" {
		dayID = c.First().ID
	}
	if _, ok := c.Day(dayID); !ok {
		return nil, ErrUnknownDay
	}
	return &Tracker{
		catalog:   c,
		selected:  dayID,
		completed: make(map[string]struct{}),
	}, nil
}

// SelectedDay returns the currently selected day.
func (t *Tracker) SelectedDay() models.WorkoutDay {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, _ := t.catalog.Day(t.selected)
	return d
}

// SelectDay changes the selected day. Completion marks are kept.
func (t *Tracker) SelectDay(dayID string) error {
	if _, ok := t.catalog.Day(dayID); !ok {
		return ErrUnknownDay
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected = dayID
	return nil
}

// Toggle flips the completion mark of exerciseID and reports the new value.
// Any id is accepted.
func (t *Tracker) Toggle(exerciseID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.completed[exerciseID]; ok {
		delete(t.completed, exerciseID)
		return false
	}
	t.completed[exerciseID] = struct{}{}
	return true
}

// ResetProgress clears every completion mark, for all days.
func (t *Tracker) ResetProgress() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed = make(map[string]struct{})
}

// CompleteAll replaces the completion set with exactly the selected day's
// exercises. Marks on other days are dropped.
func (t *Tracker) CompleteAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	day, _ := t.catalog.Day(t.selected)
	t.completed = make(map[string]struct{}, len(day.Exercises))
	for _, ex := range day.Exercises {
		t.completed[ex.ID] = struct{}{}
	}
}

// IsCompleted reports whether exerciseID is marked done.
func (t *Tracker) IsCompleted(exerciseID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.completed[exerciseID]
	return ok
}

// Completed returns every marked id, sorted.
func (t *Tracker) Completed() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completedLocked()
}

func (t *Tracker) completedLocked() []string {
	ids := make([]string, 0, len(t.completed))
	for id := range t.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot is the selected day with its stats and the completed ids, read
// together so they always agree.
type Snapshot struct {
	Day       models.WorkoutDay
	Stats     Stats
	Completed []string
}

// Snapshot reads the selected day, its stats and the completed ids under one
// lock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	day, _ := t.catalog.Day(t.selected)
	return Snapshot{
		Day:       day,
		Stats:     statsFor(day, t.completed),
		Completed: t.completedLocked(),
	}
}

// Stats counts how many of day's exercises are marked done.
func (t *Tracker) Stats(day models.WorkoutDay) Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return statsFor(day, t.completed)
}

// SelectedStats returns Stats for the selected day.
func (t *Tracker) SelectedStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	day, _ := t.catalog.Day(t.selected)
	return statsFor(day, t.completed)
}

func statsFor(day models.WorkoutDay, completed map[string]struct{}) Stats {
	total := len(day.Exercises)
	if total == 0 {
		return Stats{}
	}
	done := 0
	for _, ex := range day.Exercises {
		if _, ok := completed[ex.ID]; ok {
			done++
		}
	}
	return Stats{
		Completed:  done,
		Total:      total,
		Percentage: int(math.Round(float64(done) / float64(total) * 100)),
	}
}
