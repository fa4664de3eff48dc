package atomexpr

import (
	"log/slog"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr/observability"
)

// nodeKind identifies the operator of an AST node.
type nodeKind uint8

const (
	kindAtom nodeKind = iota
	kindNot
	kindAnd
	kindOr
)

// String returns the operator symbol.
func (k nodeKind) String() string {
	switch k {
	case kindAtom:
		return "atom"
	case kindNot:
		return "!"
	case kindAnd:
		return "&"
	case kindOr:
		return "|"
	default:
		return "unknown"
	}
}

// nodeID indexes Pool.nodes.
type nodeID int32

// node is one AST node. And/Or nodes always have at least two children;
// Not nodes have exactly one.
type node struct {
	kind     nodeKind
	atom     int
	children []nodeID
}

// Expression is a parsed, optimized boolean expression over atoms.
// It is immutable after Parse returns and lives as long as its Pool.
type Expression[T any] struct {
	name    string
	source  string
	pool    *Pool
	root    nodeID
	atoms   int
	handler Handler[T]
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// Name returns the name given with WithName, or "".
func (e *Expression[T]) Name() string {
	return e.name
}

// Source returns the expression text the expression was parsed from.
func (e *Expression[T]) Source() string {
	return e.source
}

// Pool returns the pool that owns the expression.
func (e *Expression[T]) Pool() *Pool {
	return e.pool
}

// AtomCount returns the number of atom leaves in the expression.
func (e *Expression[T]) AtomCount() int {
	return e.atoms
}

func (e *Expression[T]) node(id nodeID) *node {
	return &e.pool.nodes[id]
}

func (e *Expression[T]) atom(n *node) *Atom {
	return e.pool.atoms[n.atom]
}
