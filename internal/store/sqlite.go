package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fakeyudi/stride/internal/session"
)

// SQLiteStore keeps runs as JSON documents in a SQLite database.
type SQLiteStore struct{ DB *sql.DB }

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

// OpenSQLite opens the database at path, verifies the connection and makes
// sure the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", path, err)
	}
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

// InitSchema creates the runs and in_progress tables.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		data TEXT NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS in_progress (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		data TEXT NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadAllRuns(ctx context.Context) ([]session.Run, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT data FROM runs ORDER BY started_at, id;`)
	if err != nil {
		return nil, fmt.Errorf("load runs: query runs table: %w", err)
	}
	defer rows.Close()

	var raw [][]byte
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("load runs: scan row: %w", err)
		}
		raw = append(raw, []byte(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load runs: row iteration: %w", err)
	}

	runs, _ := decodeRuns(ctx, raw)
	return runs, nil
}

func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (session.Run, error) {
	var data string
	err := s.DB.QueryRowContext(ctx, `SELECT data FROM runs WHERE id = ?;`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return session.Run{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return decodeRun(ctx, id, []byte(data))
}

func (s *SQLiteStore) Save(ctx context.Context, r session.Run) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("save run: marshal: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, started_at, data) VALUES (?, ?, ?);`,
		r.ID, r.StartedAt.UnixMilli(), string(data))
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM runs WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return nil
}

func (s *SQLiteStore) LoadInProgress(ctx context.Context) (*session.RunSession, error) {
	var data string
	err := s.DB.QueryRowContext(ctx, `SELECT data FROM in_progress WHERE slot = 1;`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load in-progress run: %w", err)
	}
	return decodeSession([]byte(data))
}

func (s *SQLiteStore) SaveInProgress(ctx context.Context, rs *session.RunSession) error {
	if rs == nil {
		if _, err := s.DB.ExecContext(ctx, `DELETE FROM in_progress WHERE slot = 1;`); err != nil {
			return fmt.Errorf("clear in-progress run: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("save in-progress run: marshal: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx,
		`INSERT OR REPLACE INTO in_progress (slot, data) VALUES (1, ?);`, string(data)); err != nil {
		return fmt.Errorf("save in-progress run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.DB.Close() }
