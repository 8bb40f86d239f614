package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) a SQLite database at path and returns a
// store backed by it. The special path ":memory:" gives a private
// in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore creates a store on an existing database handle and
// ensures the schema exists. The store takes ownership of db: Close
// closes it.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		workflow    TEXT NOT NULL,
		status      TEXT NOT NULL,
		steps       INTEGER NOT NULL DEFAULT 0,
		error       TEXT,
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_workflow ON runs(workflow);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

	CREATE TABLE IF NOT EXISTS run_steps (
		run_id      TEXT NOT NULL,
		step        INTEGER NOT NULL,
		agent       TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		retries     INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, step)
	);

	CREATE INDEX IF NOT EXISTS idx_run_steps_run_id ON run_steps(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(rec *Record) error {
	query := `
	INSERT INTO runs (run_id, workflow, status, steps, error, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		rec.RunID,
		rec.Workflow,
		string(rec.Status),
		rec.Steps,
		nullString(rec.Error),
		rec.StartedAt.UTC(),
		nullTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateRun(rec *Record) error {
	query := `
	UPDATE runs
	SET status = ?, steps = ?, error = ?, finished_at = ?
	WHERE run_id = ?
	`
	result, err := s.db.Exec(query,
		string(rec.Status),
		rec.Steps,
		nullString(rec.Error),
		nullTime(rec.FinishedAt),
		rec.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *SQLiteStore) GetRun(runID string) (*Record, error) {
	query := `
	SELECT run_id, workflow, status, steps, error, started_at, finished_at
	FROM runs
	WHERE run_id = ?
	`
	rec, err := scanRun(s.db.QueryRow(query, runID))
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListRuns(f Filter) ([]*Record, error) {
	query := `
	SELECT run_id, workflow, status, steps, error, started_at, finished_at
	FROM runs
	`
	var conditions []string
	var args []any

	if f.Workflow != "" {
		conditions = append(conditions, "workflow = ?")
		args = append(args, f.Workflow)
	}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(f.Status))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC, run_id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendStep(step *StepRecord) error {
	query := `
	INSERT INTO run_steps (run_id, step, agent, outcome, retries, duration_ns)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		step.RunID,
		step.Step,
		step.Agent,
		step.Outcome,
		step.Retries,
		step.Duration.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSteps(runID string) ([]*StepRecord, error) {
	query := `
	SELECT run_id, step, agent, outcome, retries, duration_ns
	FROM run_steps
	WHERE run_id = ?
	ORDER BY step
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []*StepRecord
	for rows.Next() {
		var step StepRecord
		var durationNS int64
		if err := rows.Scan(
			&step.RunID,
			&step.Step,
			&step.Agent,
			&step.Outcome,
			&step.Retries,
			&durationNS,
		); err != nil {
			return nil, fmt.Errorf("list steps: %w", err)
		}
		step.Duration = time.Duration(durationNS)
		out = append(out, &step)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Record, error) {
	var rec Record
	var status string
	var errMsg sql.NullString
	var finishedAt sql.NullTime

	if err := row.Scan(
		&rec.RunID,
		&rec.Workflow,
		&status,
		&rec.Steps,
		&errMsg,
		&rec.StartedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	if errMsg.Valid {
		rec.Error = errMsg.String
	}
	if finishedAt.Valid {
		rec.FinishedAt = finishedAt.Time
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
