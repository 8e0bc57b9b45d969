package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/meltforce/fithome/internal/models"
)

// SQLite is a catalog store in a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite database at path. The schema must already be
// migrated.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadDays returns the stored plan in display order.
func (s *SQLite) LoadDays(ctx context.Context) ([]models.WorkoutDay, error) {
	rows, err := s.db.QueryContext(ctx, loadDaysQuery)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var a assembler
	for rows.Next() {
		var (
			r                            catalogRow
			exID, exName, exSets, exReps sql.NullString
		)
		if err := rows.Scan(&r.dayID, &r.dayName, &r.dayTitle, &exID, &exName, &exSets, &exReps); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if exID.Valid {
			r.exID, r.exName, r.exSets, r.exReps = &exID.String, &exName.String, &exSets.String, &exReps.String
		}
		a.add(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog rows: %w", err)
	}
	return a.days, nil
}

// ReplaceCatalog swaps the stored plan for days in one transaction.
func (s *SQLite) ReplaceCatalog(ctx context.Context, days []models.WorkoutDay) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercises`); err != nil {
		return fmt.Errorf("clearing exercises: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM workout_days`); err != nil {
		return fmt.Errorf("clearing days: %w", err)
	}
	for i, d := range days {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workout_days (id, position, name, title) VALUES (?, ?, ?, ?)`,
			d.ID, i, d.Name, d.Title); err != nil {
			return fmt.Errorf("inserting day %s: %w", d.ID, err)
		}
		for j, ex := range d.Exercises {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO exercises (id, day_id, position, name, sets, reps) VALUES (?, ?, ?, ?, ?, ?)`,
				ex.ID, d.ID, j, ex.Name, ex.Sets, ex.Reps); err != nil {
				return fmt.Errorf("inserting exercise %s: %w", ex.ID, err)
			}
		}
	}
	return tx.Commit()
}
