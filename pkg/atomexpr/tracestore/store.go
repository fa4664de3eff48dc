// Package tracestore records which atoms fired during rule evaluations.
//
// Only evaluation outcomes are stored, never expressions themselves: a record
// names the rule, the value it produced and the atoms whose callbacks ran.
package tracestore

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr/config"
)

// Store persists evaluation traces.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a record. A record with the same EvalID is replaced and
	// moves to the end of its rule's listing.
	Save(rec Record) error

	// Get retrieves one record.
	// Returns ErrNotFound if no record has the evaluation ID.
	Get(evalID string) (Record, error)

	// List returns every record of a rule, oldest first.
	// Returns an empty slice (not error) if the rule has no records.
	List(rule string) ([]Record, error)

	// DeleteRule removes every record of a rule.
	// Returns nil if the rule has no records.
	DeleteRule(rule string) error

	// Prune removes records saved before cutoff and reports how many.
	Prune(cutoff time.Time) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Record is the outcome of one traced evaluation of a rule.
type Record struct {
	// EvalID identifies the evaluation.
	EvalID string
	// Rule is the rule name.
	Rule string
	// Expression is the canonical text of the rule's expression.
	Expression string
	// Value is the evaluation result.
	Value int
	// Fired lists the atoms whose callbacks ran, in order.
	Fired []string
	// Sequence orders records within a rule. Assigned by the store.
	Sequence int
	// Timestamp is when the record was saved. Assigned by the store when zero.
	Timestamp time.Time
}

// Matched reports whether the evaluation produced a nonzero value.
func (r Record) Matched() bool {
	return r.Value != 0
}

// Sentinel errors for trace store operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("trace record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("trace store closed")

	// ErrMissingEvalID indicates a record without an evaluation ID.
	ErrMissingEvalID = errors.New("trace record has no evaluation ID")
)

// Open creates the store selected by cfg and applies its retention.
// It returns a nil Store when no backend is configured.
func Open(cfg config.TraceConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMemory:
		store = NewMemoryStore()
	case config.BackendSQLite:
		store, err = NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown trace backend %q", cfg.Backend)
	}

	if cfg.Retention > 0 {
		if _, err := store.Prune(time.Now().UTC().Add(-cfg.Retention)); err != nil {
			store.Close()
			return nil, fmt.Errorf("apply retention: %w", err)
		}
	}
	return store, nil
}

func stamp(rec *Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
}
