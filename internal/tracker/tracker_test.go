package tracker

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/models"
)

func newTracker(t *testing.T, day string) *Tracker {
	t.Helper()
	tr, err := New(catalog.Default(), day)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]bool, len(got))
	for _, g := range got {
		seen[g] = true
	}
	for _, w := range want {
		if !seen[w] {
			return false
		}
	}
	return true
}

// TestNewDefaultsToFirstDay verifies an empty day id selects the first day
// and an unknown id is rejected.
func TestNewDefaultsToFirstDay(t *testing.T) {
	tr := newTracker(t, "")
	if got := tr.SelectedDay().ID; got != "monday" {
		t.Errorf("selected = %q, want monday", got)
	}
	if _, err := New(catalog.Default(), "sunday"); !errors.Is(err, ErrUnknownDay) {
		t.Errorf("New(sunday) error = %v, want ErrUnknownDay", err)
	}
}

// TestToggleRoundTrip verifies toggling twice restores the original membership.
func TestToggleRoundTrip(t *testing.T) {
	tr := newTracker(t, "monday")
	for _, id := range []string{"mon-1", "not-in-catalog"} {
		before := tr.IsCompleted(id)
		if got := tr.Toggle(id); got == before {
			t.Errorf("first Toggle(%s) = %v", id, got)
		}
		tr.Toggle(id)
		if tr.IsCompleted(id) != before {
			t.Errorf("Toggle(%s) twice changed membership", id)
		}
	}
}

// TestToggleAnyID verifies ids from other days are accepted and kept.
func TestToggleAnyID(t *testing.T) {
	tr := newTracker(t, "monday")
	tr.Toggle("fri-3")
	if !tr.IsCompleted("fri-3") {
		t.Error("fri-3 not marked")
	}
	if s := tr.SelectedStats(); s.Completed != 0 {
		t.Errorf("monday completed = %d, want 0", s.Completed)
	}
}

// TestSelectDayKeepsMarks verifies switching days never clears completions.
func TestSelectDayKeepsMarks(t *testing.T) {
	tr := newTracker(t, "monday")
	tr.Toggle("mon-1")
	if err := tr.SelectDay("tuesday"); err != nil {
		t.Fatal(err)
	}
	if !tr.IsCompleted("mon-1") {
		t.Error("mon-1 cleared by day switch")
	}
	if err := tr.SelectDay("monday"); err != nil {
		t.Fatal(err)
	}
	if s := tr.SelectedStats(); s.Completed != 1 {
		t.Errorf("monday completed = %d, want 1", s.Completed)
	}
}

// TestSelectDayUnknown verifies an unknown day leaves the selection alone.
func TestSelectDayUnknown(t *testing.T) {
	tr := newTracker(t, "monday")
	if err := tr.SelectDay("saturday"); !errors.Is(err, ErrUnknownDay) {
		t.Errorf("error = %v, want ErrUnknownDay", err)
	}
	if got := tr.SelectedDay().ID; got != "monday" {
		t.Errorf("selected = %q, want monday", got)
	}
}

// TestCompleteAllReplaces verifies CompleteAll yields exactly the selected
// day's ids and drops marks from other days.
func TestCompleteAllReplaces(t *testing.T) {
	c, err := catalog.New([]models.WorkoutDay{
		{ID: "d1", Exercises: []models.Exercise{{ID: "a"}, {ID: "b"}, {ID: "c"}}},
		{ID: "d2", Exercises: []models.Exercise{{ID: "x"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	tr, err := New(c, "d1")
	if err != nil {
		t.Fatal(err)
	}
	tr.Toggle("x")
	tr.Toggle("stray")

	tr.CompleteAll()

	if got := tr.Completed(); !sameSet(got, []string{"a", "b", "c"}) {
		t.Errorf("Completed() = %v, want [a b c]", got)
	}
}

// TestResetProgress verifies every mark is cleared, for all days.
func TestResetProgress(t *testing.T) {
	tr := newTracker(t, "monday")
	tr.Toggle("mon-1")
	tr.Toggle("tue-2")
	tr.ResetProgress()
	if got := tr.Completed(); len(got) != 0 {
		t.Errorf("Completed() = %v, want empty", got)
	}
}

// TestStatsEmptyDay verifies an empty day reports 0/0/0.
func TestStatsEmptyDay(t *testing.T) {
	tr := newTracker(t, "monday")
	tr.Toggle("mon-1")
	if s := tr.Stats(models.WorkoutDay{ID: "rest"}); s != (Stats{}) {
		t.Errorf("Stats(empty) = %+v, want zero", s)
	}
}

// TestStatsWednesday verifies two of wednesday's seven exercises give 29%.
func TestStatsWednesday(t *testing.T) {
	tr := newTracker(t, "wednesday")
	tr.Toggle("wed-1")
	tr.Toggle("wed-3")

	want := Stats{Completed: 2, Total: 7, Percentage: 29}
	if s := tr.SelectedStats(); s != want {
		t.Errorf("SelectedStats() = %+v, want %+v", s, want)
	}
	day, _ := catalog.Default().Day("wednesday")
	if s := tr.Stats(day); s != want {
		t.Errorf("Stats(wednesday) = %+v, want %+v", s, want)
	}
}

// TestStatsRounding verifies percentages round to nearest.
func TestStatsRounding(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 6, 17},
		{1, 8, 13},
		{7, 7, 100},
	}
	for _, tt := range tests {
		day := models.WorkoutDay{ID: "d"}
		completed := map[string]struct{}{}
		for i := 0; i < tt.total; i++ {
			id := string(rune('a' + i))
			day.Exercises = append(day.Exercises, models.Exercise{ID: id})
			if i < tt.done {
				completed[id] = struct{}{}
			}
		}
		if got := statsFor(day, completed).Percentage; got != tt.want {
			t.Errorf("%d/%d = %d%%, want %d%%", tt.done, tt.total, got, tt.want)
		}
	}
}

// TestSnapshotConsistentUnderToggles verifies a snapshot's stats always match
// its completed ids while another goroutine keeps toggling.
func TestSnapshotConsistentUnderToggles(t *testing.T) {
	tr := newTracker(t, "wednesday")

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				tr.Toggle("wed-1")
				tr.Toggle("wed-4")
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		snap := tr.Snapshot()
		onDay := 0
		for _, id := range snap.Completed {
			if strings.HasPrefix(id, "wed-") {
				onDay++
			}
		}
		if snap.Stats.Completed != onDay {
			t.Fatalf("stats %+v disagree with completed %v", snap.Stats, snap.Completed)
		}
		if snap.Day.ID != "wednesday" {
			t.Fatalf("day = %q", snap.Day.ID)
		}
	}
	close(done)
	wg.Wait()
}
