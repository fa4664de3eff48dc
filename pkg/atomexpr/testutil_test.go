package atomexpr

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// quietLogger discards everything.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// identParse recognizes [A-Za-z0-9_]+ and nothing else.
func identParse(rest string) (ParsedAtom, error) {
	n := 0
	for n < len(rest) && isIdentByte(rest[n]) {
		n++
	}
	return ParsedAtom{Text: rest[:n]}, nil
}

// testHandler evaluates identifiers by looking them up in the input map and
// records the order in which atoms were processed.
type testHandler struct {
	priority map[string]int
	fail     map[string]error
	panicOn  string
	calls    []string
}

func (h *testHandler) ParseAtom(rest string) (ParsedAtom, error) {
	return identParse(rest)
}

func (h *testHandler) ProcessAtom(a *Atom, in map[string]int) (int, error) {
	h.calls = append(h.calls, a.Text)
	if a.Text == h.panicOn {
		panic("atom exploded")
	}
	if err := h.fail[a.Text]; err != nil {
		return 0, err
	}
	return in[a.Text], nil
}

func (h *testHandler) AtomPriority(a *Atom) int {
	if p, ok := h.priority[a.Text]; ok {
		return p
	}
	return DefaultPriority
}

// mustParse parses with a quiet logger and fails the test on error.
func mustParse(t interface {
	Helper()
	Fatalf(string, ...any)
}, text string, h Handler[map[string]int], opts ...ParseOption) *Expression[map[string]int] {
	t.Helper()
	opts = append([]ParseOption{WithLogger(quietLogger())}, opts...)
	expr, err := Parse(text, h, opts...)
	if err != nil {
		t.Fatalf("Parse(%q) unexpected error: %v", text, err)
	}
	return expr
}

// countingMetrics is a MetricsRecorder that counts calls.
type countingMetrics struct {
	parses, parseFailures   int
	evaluations             int
	atomCalls, atomFailures int
}

func (m *countingMetrics) RecordParse(_ context.Context, success bool, _ time.Duration, _ int) {
	m.parses++
	if !success {
		m.parseFailures++
	}
}

func (m *countingMetrics) RecordEvaluation(_ context.Context, _ string, _ int, _ time.Duration) {
	m.evaluations++
}

func (m *countingMetrics) RecordAtomCall(_ context.Context, failed bool) {
	m.atomCalls++
	if failed {
		m.atomFailures++
	}
}
