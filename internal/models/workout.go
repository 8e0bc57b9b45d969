package models

// Exercise is a single entry in a workout day. Sets and Reps are free-form
// prescriptions ("4x", "até a falha", "30-60s") and are never parsed.
type Exercise struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Sets string `json:"sets" yaml:"sets"`
	Reps string `json:"reps" yaml:"reps"`
}

// WorkoutDay is one day of the weekly plan. Exercise order is display order.
type WorkoutDay struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Title     string     `json:"title" yaml:"title"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
}

// ExerciseIDs returns the ids of the day's exercises in order.
func (d WorkoutDay) ExerciseIDs() []string {
	ids := make([]string, len(d.Exercises))
	for i, ex := range d.Exercises {
		ids[i] = ex.ID
	}
	return ids
}

// Clone returns a deep copy of the day.
func (d WorkoutDay) Clone() WorkoutDay {
	c := d
	if d.Exercises != nil {
		c.Exercises = make([]Exercise, len(d.Exercises))
		copy(c.Exercises, d.Exercises)
	}
	return c
}

// Icon returns the Lucide icon name clients use for the day.
func (d WorkoutDay) Icon() string {
	if d.ID == "friday" {
		return "flame"
	}
	return "dumbbell"
}

// DayView is a WorkoutDay as rendered to clients.
type DayView struct {
	WorkoutDay
	Icon string `json:"icon"`
}

// View returns the client rendering of the day.
func (d WorkoutDay) View() DayView {
	return DayView{WorkoutDay: d.Clone(), Icon: d.Icon()}
}
