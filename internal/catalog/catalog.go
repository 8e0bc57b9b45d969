// Package catalog holds the read-only weekly workout plan.
//
// A Catalog is built once at startup from a Source (the embedded default
// plan, a YAML file, or the SQL store) and never changes afterwards. All
// accessors hand out copies.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/meltforce/fithome/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyCatalog = errors.New("catalog has no days")
	ErrDuplicateID  = errors.New("duplicate id")
	ErrMissingID    = errors.New("missing id")
)

//go:embed default.yaml
var defaultYAML []byte

// weekdayIndex maps time.Weekday (Sunday=0) to a catalog position.
// Monday is the first entry; Saturday and Sunday point past a five-day plan
// and resolve to the first day.
var weekdayIndex = [7]int{6, 0, 1, 2, 3, 4, 5}

// Source yields the raw days a Catalog is built from.
type Source interface {
	LoadDays(ctx context.Context) ([]models.WorkoutDay, error)
}

// Catalog is an immutable, ordered list of workout days.
type Catalog struct {
	days       []models.WorkoutDay
	dayIndex   map[string]int
	exerciseOf map[string]string
}

// New validates days and returns a Catalog holding a private copy of them.
func New(days []models.WorkoutDay) (*Catalog, error) {
	if len(days) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		days:       make([]models.WorkoutDay, len(days)),
		dayIndex:   make(map[string]int, len(days)),
		exerciseOf: make(map[string]string),
	}
	for i, d := range days {
		if d.ID == "" {
			return nil, fmt.Errorf("day %d: %w", i, ErrMissingID)
		}
		if _, dup := c.dayIndex[d.ID]; dup {
			return nil, fmt.Errorf("day %q: %w", d.ID, ErrDuplicateID)
		}
		c.dayIndex[d.ID] = i
		for j, ex := range d.Exercises {
			if ex.ID == "" {
				return nil, fmt.Errorf("day %q exercise %d: %w", d.ID, j, ErrMissingID)
			}
			if other, dup := c.exerciseOf[ex.ID]; dup {
				return nil, fmt.Errorf("exercise %q in %q and %q: %w", ex.ID, other, d.ID, ErrDuplicateID)
			}
			c.exerciseOf[ex.ID] = d.ID
		}
		c.days[i] = d.Clone()
	}
	return c, nil
}

// Load builds a Catalog from src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	days, err := src.LoadDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return New(days)
}

// Len returns the number of days.
func (c *Catalog) Len() int { return len(c.days) }

// Days returns every day in catalog order.
func (c *Catalog) Days() []models.WorkoutDay {
	out := make([]models.WorkoutDay, len(c.days))
	for i, d := range c.days {
		out[i] = d.Clone()
	}
	return out
}

// Day looks up a day by id.
func (c *Catalog) Day(id string) (models.WorkoutDay, bool) {
	i, ok := c.dayIndex[id]
	if !ok {
		return models.WorkoutDay{}, false
	}
	return c.days[i].Clone(), true
}

// First returns the first day of the plan.
func (c *Catalog) First() models.WorkoutDay {
	return c.days[0].Clone()
}

// DayOfExercise returns the id of the day an exercise belongs to.
func (c *Catalog) DayOfExercise(exerciseID string) (string, bool) {
	id, ok := c.exerciseOf[exerciseID]
	return id, ok
}

// ForWeekday resolves a weekday to a day, falling back to the first day when
// the weekday has no entry.
func (c *Catalog) ForWeekday(w time.Weekday) models.WorkoutDay {
	if w < time.Sunday || w > time.Saturday {
		return c.First()
	}
	idx := weekdayIndex[w]
	if idx >= len(c.days) {
		return c.First()
	}
	return c.days[idx].Clone()
}

// Today resolves the day for the weekday of now.
func (c *Catalog) Today(now time.Time) models.WorkoutDay {
	return c.ForWeekday(now.Weekday())
}

type document struct {
	Days []models.WorkoutDay `yaml:"days"`
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(doc.Days)
}

// Default returns the built-in five-day plan.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic("catalog: embedded default: " + err.Error())
	}
	return c
}

// FileSource reads days from a YAML file.
type FileSource struct {
	Path string
}

// LoadDays implements Source.
func (f FileSource) LoadDays(_ context.Context) ([]models.WorkoutDay, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", f.Path, err)
	}
	return doc.Days, nil
}

// BuiltinSource yields the embedded default plan.
type BuiltinSource struct{}

// LoadDays implements Source.
func (BuiltinSource) LoadDays(_ context.Context) ([]models.WorkoutDay, error) {
	var doc document
	if err := yaml.Unmarshal(defaultYAML, &doc); err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}
	return doc.Days, nil
}
