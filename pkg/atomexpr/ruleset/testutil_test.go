package ruleset_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/tracestore"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flagHandler treats each identifier as a lookup in a map[string]int input.
// Atoms named "boom" fail.
var flagHandler = atomexpr.HandlerFuncs[map[string]int]{
	Parse: func(rest string) (atomexpr.ParsedAtom, error) {
		n := 0
		for n < len(rest) && (rest[n] == '_' || rest[n] >= 'a' && rest[n] <= 'z') {
			n++
		}
		return atomexpr.ParsedAtom{Text: rest[:n]}, nil
	},
	Process: func(a *atomexpr.Atom, in map[string]int) (int, error) {
		if a.Text == "boom" {
			return 0, errors.New("boom")
		}
		return in[a.Text], nil
	},
}

// seqIDs returns an ID generator producing eval-1, eval-2, ...
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "eval-" + strconv.Itoa(n)
	}
}

// ruleMetrics counts evaluations per rule name.
type ruleMetrics struct {
	mu    sync.Mutex
	evals map[string]int
	atoms int
}

func (m *ruleMetrics) RecordParse(context.Context, bool, time.Duration, int) {}

func (m *ruleMetrics) RecordEvaluation(_ context.Context, rule string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.evals == nil {
		m.evals = make(map[string]int)
	}
	m.evals[rule]++
}

func (m *ruleMetrics) RecordAtomCall(context.Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.atoms++
}

// failingStore is a trace store whose writes always fail.
type failingStore struct {
	*tracestore.MemoryStore
}

func (failingStore) Save(tracestore.Record) error {
	return errors.New("disk full")
}

func (failingStore) DeleteRule(string) error {
	return errors.New("read-only database")
}
