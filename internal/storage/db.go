// Package storage keeps the workout catalog in PostgreSQL or SQLite. It only
// holds the plan itself; session progress is never written here.
package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meltforce/fithome/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a catalog source that can also be rewritten.
type Store interface {
	LoadDays(ctx context.Context) ([]models.WorkoutDay, error)
	ReplaceCatalog(ctx context.Context, days []models.WorkoutDay) error
	Close() error
}

// Open connects to the catalog store for driver ("postgres" or "sqlite").
// For sqlite, dsn is the database file path.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return New(ctx, dsn)
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// DB wraps a pgxpool.Pool and provides catalog methods.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// LoadDays returns the stored plan in display order.
func (db *DB) LoadDays(ctx context.Context) ([]models.WorkoutDay, error) {
	rows, err := db.Pool.Query(ctx, loadDaysQuery)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var a assembler
	for rows.Next() {
		var r catalogRow
		if err := rows.Scan(&r.dayID, &r.dayName, &r.dayTitle, &r.exID, &r.exName, &r.exSets, &r.exReps); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		a.add(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog rows: %w", err)
	}
	return a.days, nil
}

// ReplaceCatalog swaps the stored plan for days in one transaction.
func (db *DB) ReplaceCatalog(ctx context.Context, days []models.WorkoutDay) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM exercises`); err != nil {
		return fmt.Errorf("clearing exercises: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workout_days`); err != nil {
		return fmt.Errorf("clearing days: %w", err)
	}

	batch := &pgx.Batch{}
	for i, d := range days {
		batch.Queue(`INSERT INTO workout_days (id, position, name, title) VALUES ($1,$2,$3,$4)`,
			d.ID, i, d.Name, d.Title)
		for j, ex := range d.Exercises {
			batch.Queue(`INSERT INTO exercises (id, day_id, position, name, sets, reps) VALUES ($1,$2,$3,$4,$5,$6)`,
				ex.ID, d.ID, j, ex.Name, ex.Sets, ex.Reps)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting catalog: %w", err)
	}
	return tx.Commit(ctx)
}

// RunMigrations applies all pending catalog migrations to the database at
// url ("postgres://..." or "sqlite://path").
func RunMigrations(url string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
