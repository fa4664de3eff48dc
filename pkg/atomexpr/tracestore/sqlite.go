package tracestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists trace records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite trace store.
// The path should be a file path (e.g., "./traces.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS traces (
			eval_id TEXT PRIMARY KEY,
			rule TEXT NOT NULL,
			expression TEXT NOT NULL,
			value INTEGER NOT NULL,
			fired TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_traces_rule
		ON traces(rule, sequence)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(rec Record) error {
	if rec.EvalID == "" {
		return ErrMissingEvalID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	fired, err := json.Marshal(rec.Fired)
	if err != nil {
		return fmt.Errorf("encode fired atoms: %w", err)
	}
	stamp(&rec)

	_, err = s.db.Exec(`
		INSERT INTO traces (eval_id, rule, expression, value, fired, sequence, timestamp)
		VALUES (
			?, ?, ?, ?, ?,
			COALESCE((SELECT MAX(sequence) FROM traces WHERE rule = ?), 0) + 1,
			?
		)
		ON CONFLICT(eval_id) DO UPDATE SET
			rule = excluded.rule,
			expression = excluded.expression,
			value = excluded.value,
			fired = excluded.fired,
			sequence = COALESCE((SELECT MAX(sequence) FROM traces WHERE rule = excluded.rule), 0) + 1,
			timestamp = excluded.timestamp
	`, rec.EvalID, rec.Rule, rec.Expression, rec.Value, string(fired), rec.Rule,
		rec.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save trace: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(evalID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT eval_id, rule, expression, value, fired, sequence, timestamp
		FROM traces
		WHERE eval_id = ?
	`, evalID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load trace: %w", err)
	}
	return rec, nil
}

// List implements Store.
func (s *SQLiteStore) List(rule string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT eval_id, rule, expression, value, fired, sequence, timestamp
		FROM traces
		WHERE rule = ?
		ORDER BY sequence
	`, rule)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traces: %w", err)
	}
	return out, nil
}

// DeleteRule implements Store.
func (s *SQLiteStore) DeleteRule(rule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM traces WHERE rule = ?`, rule); err != nil {
		return fmt.Errorf("delete rule traces: %w", err)
	}
	return nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	// RFC3339Nano drops trailing zeros, so compare as time values, not text.
	res, err := s.db.Exec(`
		DELETE FROM traces WHERE julianday(timestamp) < julianday(?)
	`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune traces: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune traces: %w", err)
	}
	return int(n), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		fired     string
		timestamp string
	)
	if err := row.Scan(&rec.EvalID, &rec.Rule, &rec.Expression, &rec.Value, &fired, &rec.Sequence, &timestamp); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(fired), &rec.Fired); err != nil {
		return Record{}, fmt.Errorf("decode fired atoms: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return Record{}, fmt.Errorf("decode timestamp: %w", err)
	}
	rec.Timestamp = ts
	return rec, nil
}
