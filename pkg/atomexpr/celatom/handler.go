package celatom

import (
	"fmt"
	"math/bits"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
)

const (
	// DefaultVariable is the name under which the evaluation input is visible
	// to CEL atoms.
	DefaultVariable = "input"

	// DefaultCostLimit is the runtime cost limit for one CEL atom evaluation.
	DefaultCostLimit = 1000000
)

// Compile-time interface checks.
var (
	_ atomexpr.Handler[map[string]any] = (*Handler)(nil)
	_ atomexpr.Prioritizer             = (*Handler)(nil)
)

// Handler recognizes and evaluates CEL and name atoms.
// It is safe for concurrent use.
type Handler struct {
	variable  string
	costLimit uint64
	envOpts   []cel.EnvOption

	envOnce sync.Once
	env     *cel.Env
	envErr  error

	mu       sync.RWMutex
	programs map[string]*program
}

// program is a compiled CEL atom, carried in atomexpr.Atom.Data.
type program struct {
	source string
	prg    cel.Program
	cost   uint64
}

// Option configures a Handler.
type Option func(*Handler)

// WithVariable sets the CEL variable bound to the evaluation input.
// Default: "input"
func WithVariable(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.variable = name
		}
	}
}

// WithCostLimit sets the runtime cost limit for each CEL atom.
// Default: 1000000
func WithCostLimit(limit uint64) Option {
	return func(h *Handler) {
		h.costLimit = limit
	}
}

// WithEnvOptions adds declarations (functions, extra variables, libraries)
// to the CEL environment.
func WithEnvOptions(opts ...cel.EnvOption) Option {
	return func(h *Handler) {
		h.envOpts = append(h.envOpts, opts...)
	}
}

// New creates a Handler.
func New(opts ...Option) *Handler {
	h := &Handler{
		variable:  DefaultVariable,
		costLimit: DefaultCostLimit,
		programs:  make(map[string]*program),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) getEnv() (*cel.Env, error) {
	h.envOnce.Do(func() {
		opts := append([]cel.EnvOption{
			cel.Variable(h.variable, cel.MapType(cel.StringType, cel.DynType)),
		}, h.envOpts...)
		h.env, h.envErr = cel.NewEnv(opts...)
	})
	return h.env, h.envErr
}

// ParseAtom recognizes a braced CEL atom or a dotted name at the start of rest.
// CEL atoms are compiled here, once per distinct source.
func (h *Handler) ParseAtom(rest string) (atomexpr.ParsedAtom, error) {
	if rest == "" {
		return atomexpr.ParsedAtom{}, nil
	}
	if rest[0] == '{' {
		n, err := scanBraced(rest)
		if err != nil {
			return atomexpr.ParsedAtom{}, err
		}
		prg, err := h.compile(strings.TrimSpace(rest[1 : n-1]))
		if err != nil {
			return atomexpr.ParsedAtom{}, err
		}
		return atomexpr.ParsedAtom{Text: rest[:n], Data: prg}, nil
	}
	n := scanName(rest)
	if n == 0 {
		return atomexpr.ParsedAtom{}, nil
	}
	return atomexpr.ParsedAtom{Text: rest[:n], Data: strings.Split(rest[:n], ".")}, nil
}

// ProcessAtom evaluates the atom against input.
func (h *Handler) ProcessAtom(atom *atomexpr.Atom, input map[string]any) (int, error) {
	switch data := atom.Data.(type) {
	case *program:
		out, _, err := data.prg.Eval(map[string]any{h.variable: input})
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %s", ErrEvaluation, data.source, err)
		}
		return truthValue(out.Value())
	case []string:
		v, ok := lookup(input, data)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, atom.Text)
		}
		return truthValue(v)
	default:
		return 0, fmt.Errorf("atom %q was not parsed by this handler", atom.Text)
	}
}

// AtomPriority places name atoms first, then CEL atoms by estimated cost.
func (h *Handler) AtomPriority(atom *atomexpr.Atom) int {
	prg, ok := atom.Data.(*program)
	if !ok {
		return atomexpr.DefaultPriority
	}
	return 1 + bits.Len64(prg.cost)
}

// Compiled returns the number of distinct CEL programs compiled so far.
func (h *Handler) Compiled() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.programs)
}

func (h *Handler) compile(source string) (*program, error) {
	h.mu.RLock()
	prg, ok := h.programs[source]
	h.mu.RUnlock()
	if ok {
		return prg, nil
	}

	env, err := h.getEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	checked, issues := env.Compile(source)
	if issues.Err() != nil {
		return nil, newCompileError(source, issues)
	}
	p, err := env.Program(checked, cel.CostLimit(h.costLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program for %q: %w", source, err)
	}
	var cost uint64
	if est, err := env.EstimateCost(checked, sizeless{}); err == nil {
		cost = est.Min
	}

	prg = &program{source: source, prg: p, cost: cost}
	h.mu.Lock()
	if existing, ok := h.programs[source]; ok {
		prg = existing
	} else {
		h.programs[source] = prg
	}
	h.mu.Unlock()
	return prg, nil
}

// sizeless is a cost estimator with no knowledge of input sizes, leaving
// CEL's defaults in place.
type sizeless struct{}

func (sizeless) EstimateSize(checker.AstNode) *checker.SizeEstimate {
	return nil
}

func (sizeless) EstimateCallCost(string, string, *checker.AstNode, []checker.AstNode) *checker.CallEstimate {
	return nil
}

// scanBraced returns the length of the braced atom at the start of s,
// including both braces.
func scanBraced(s string) (int, error) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, ErrUnterminatedAtom
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case first:
		return false
	default:
		return c == '.' || c >= '0' && c <= '9'
	}
}

// scanName returns the length of the name at the start of s. A trailing dot
// is not part of the name.
func scanName(s string) int {
	n := 0
	for n < len(s) && isNameByte(s[n], n == 0) {
		n++
	}
	for n > 0 && s[n-1] == '.' {
		n--
	}
	return n
}

func lookup(input map[string]any, path []string) (any, bool) {
	var cur any = input
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// truthValue converts an atom result to its integer value.
func truthValue(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float32:
		return int(x), nil
	case float64:
		return int(x), nil
	case string:
		return nonEmpty(len(x)), nil
	case []any:
		return nonEmpty(len(x)), nil
	case map[string]any:
		return nonEmpty(len(x)), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidResult, v)
	}
}

func nonEmpty(n int) int {
	if n > 0 {
		return 1
	}
	return 0
}
