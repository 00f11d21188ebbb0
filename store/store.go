// Package store persists Monte Carlo outcomes to SQLite so finish-day
// distributions can be compared across board revisions. The sim core stays
// I/O-free; only the cmd layer touches this package.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Fixed-width variant of RFC3339Nano so stored timestamps sort
// lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one persisted Monte Carlo invocation.
type Run struct {
	ID        string
	Board     string
	Trials    int
	Seed      int64
	CreatedAt time.Time
}

// TrialResult is the outcome of a single trial within a run.
type TrialResult struct {
	RunID     string
	Trial     int
	FinishDay int
	CardsDone int
}

// Store manages the SQLite database holding runs and trial results.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		board      TEXT NOT NULL,
		trials     INTEGER NOT NULL,
		seed       INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trials (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		trial      INTEGER NOT NULL,
		finish_day INTEGER NOT NULL,
		cards_done INTEGER NOT NULL,
		PRIMARY KEY (run_id, trial)
	);

	CREATE INDEX IF NOT EXISTS idx_trials_run ON trials(run_id, finish_day);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists a Monte Carlo invocation and its per-trial results in
// one transaction, returning the created Run with a fresh ID.
func (s *Store) SaveRun(board string, seed int64, results []TrialResult) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Board:     board,
		Trials:    len(results),
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, board, trials, seed, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Board, run.Trials, run.Seed, run.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	for _, r := range results {
		_, err = tx.Exec(
			`INSERT INTO trials (run_id, trial, finish_day, cards_done) VALUES (?, ?, ?, ?)`,
			run.ID, r.Trial, r.FinishDay, r.CardsDone,
		)
		if err != nil {
			return nil, fmt.Errorf("insert trial %d: %w", r.Trial, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	var run Run
	var created string
	err := s.db.QueryRow(
		`SELECT id, board, trials, seed, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Board, &run.Trials, &run.Seed, &created)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	run.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, board, trials, seed, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &run.Board, &run.Trials, &run.Seed, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListTrials returns a run's trial results in trial order.
func (s *Store) ListTrials(runID string) ([]TrialResult, error) {
	rows, err := s.db.Query(
		`SELECT run_id, trial, finish_day, cards_done FROM trials WHERE run_id = ? ORDER BY trial`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()

	var results []TrialResult
	for rows.Next() {
		var r TrialResult
		if err := rows.Scan(&r.RunID, &r.Trial, &r.FinishDay, &r.CardsDone); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
