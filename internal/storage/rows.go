package storage

import "github.com/meltforce/fithome/internal/models"

// loadDaysQuery yields one row per exercise, plus one row with NULL exercise
// columns for each day without exercises.
const loadDaysQuery = `SELECT d.id, d.name, d.title, e.id, e.name, e.sets, e.reps
	FROM workout_days d
	LEFT JOIN exercises e ON e.day_id = d.id
	ORDER BY d.position, e.position`

type catalogRow struct {
	dayID, dayName, dayTitle     string
	exID, exName, exSets, exReps *string
}

// assembler folds ordered catalog rows back into days.
type assembler struct {
	days []models.WorkoutDay
}

func (a *assembler) add(r catalogRow) {
	if n := len(a.days); n == 0 || a.days[n-1].ID != r.dayID {
		a.days = append(a.days, models.WorkoutDay{
			ID:        r.dayID,
			Name:      r.dayName,
			Title:     r.dayTitle,
			Exercises: []models.Exercise{},
		})
	}
	if r.exID == nil {
		return
	}
	day := &a.days[len(a.days)-1]
	day.Exercises = append(day.Exercises, models.Exercise{
		ID:   *r.exID,
		Name: deref(r.exName),
		Sets: deref(r.exSets),
		Reps: deref(r.exReps),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
