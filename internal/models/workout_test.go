package models

import "testing"

// TestExerciseIDsOrder verifies ids come back in display order.
func TestExerciseIDsOrder(t *testing.T) {
	d := WorkoutDay{ID: "monday", Exercises: []Exercise{{ID: "mon-2"}, {ID: "mon-1"}}}
	got := d.ExerciseIDs()
	if len(got) != 2 || got[0] != "mon-2" || got[1] != "mon-1" {
		t.Errorf("ExerciseIDs() = %v, want [mon-2 mon-1]", got)
	}
}

// TestCloneIsDeep verifies mutating a clone's exercises leaves the original intact.
func TestCloneIsDeep(t *testing.T) {
	d := WorkoutDay{ID: "monday", Exercises: []Exercise{{ID: "mon-1", Name: "Flexão"}}}
	c := d.Clone()
	c.Exercises[0].Name = "changed"
	if d.Exercises[0].Name != "Flexão" {
		t.Errorf("original mutated through clone: %q", d.Exercises[0].Name)
	}
}

// TestIcon verifies friday gets the flame icon and other days the dumbbell.
func TestIcon(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"friday", "flame"},
		{"monday", "dumbbell"},
		{"", "dumbbell"},
	}
	for _, tt := range tests {
		if got := (WorkoutDay{ID: tt.id}).Icon(); got != tt.want {
			t.Errorf("Icon(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// TestDayViewCarriesIcon verifies the client rendering adds the icon and
// copies the exercises.
func TestDayViewCarriesIcon(t *testing.T) {
	d := WorkoutDay{ID: "friday", Exercises: []Exercise{{ID: "fri-1"}}}
	v := d.View()
	if v.Icon != "flame" || v.ID != "friday" {
		t.Errorf("View() = %+v", v)
	}
	v.Exercises[0].ID = "changed"
	if d.Exercises[0].ID != "fri-1" {
		t.Error("original mutated through view")
	}
}
