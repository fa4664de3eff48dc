package atomexpr

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr/observability"
)

// Flags alter evaluation policy. Bits the engine does not define are ignored.
type Flags uint32

const (
	// FlagNone is normal short-circuit evaluation.
	FlagNone Flags = 0

	// FlagNoShortCircuit evaluates every child of every And/Or node, so a
	// traced evaluation records every reachable atom. Results are unchanged.
	FlagNoShortCircuit Flags = 1 << 0
)

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Trace is the ordered list of atoms whose processing callback ran during one
// evaluation.
type Trace []*Atom

// Texts returns the atom texts in evaluation order.
func (t Trace) Texts() []string {
	out := make([]string, len(t))
	for i, a := range t {
		out[i] = a.Text
	}
	return out
}

// String joins the atom texts with ", ".
func (t Trace) String() string {
	return strings.Join(t.Texts(), ", ")
}

// Evaluate evaluates the expression against input.
//
// Atoms are processed by the handler given to Parse. A Not node yields 1 when
// its child is 0 and 0 otherwise. An And node stops at the first child that
// yields 0 and returns 0; when every child is nonzero it returns the value of
// the last child. An Or node returns the value of the first nonzero child, or
// 0. An atom whose callback fails or panics yields 0 and evaluation continues.
//
// The only error is ErrPoolDestroyed.
func (e *Expression[T]) Evaluate(input T, flags Flags) (int, error) {
	return e.evaluate(input, flags, nil)
}

// EvaluateTraced is Evaluate that also returns the atoms whose callback ran,
// in the order they ran.
func (e *Expression[T]) EvaluateTraced(input T, flags Flags) (int, Trace, error) {
	trace := make(Trace, 0, e.atoms)
	result, err := e.evaluate(input, flags, &trace)
	if err != nil {
		return 0, nil, err
	}
	return result, trace, nil
}

func (e *Expression[T]) evaluate(input T, flags Flags, trace *Trace) (int, error) {
	if e.pool.Destroyed() {
		return 0, ErrPoolDestroyed
	}

	start := time.Now()
	ev := &evaluator[T]{
		expr:  e,
		input: input,
		full:  flags.Has(FlagNoShortCircuit),
		trace: trace,
		ctx:   context.Background(),
	}
	result := ev.eval(e.root)

	e.metrics.RecordEvaluation(ev.ctx, e.name, result, time.Since(start))
	observability.LogEvaluation(e.logger, e.source, result, ev.calls, float64(time.Since(start).Microseconds())/1000)
	return result, nil
}

// evaluator holds the state of one evaluation.
type evaluator[T any] struct {
	expr  *Expression[T]
	input T
	full  bool
	trace *Trace
	calls int
	ctx   context.Context
}

func (ev *evaluator[T]) eval(id nodeID) int {
	n := ev.expr.node(id)
	switch n.kind {
	case kindAtom:
		return ev.process(ev.expr.atom(n))

	case kindNot:
		if ev.eval(n.children[0]) != 0 {
			return 0
		}
		return 1

	case kindAnd:
		result, failed := 0, false
		for _, child := range n.children {
			v := ev.eval(child)
			if v == 0 {
				if !ev.full {
					return 0
				}
				failed = true
			}
			result = v
		}
		if failed {
			return 0
		}
		return result

	case kindOr:
		result := 0
		for _, child := range n.children {
			v := ev.eval(child)
			if v != 0 && result == 0 {
				if !ev.full {
					return v
				}
				result = v
			}
		}
		return result
	}
	return 0
}

// process runs the handler for one atom. Failures are logged and count as 0.
func (ev *evaluator[T]) process(atom *Atom) (value int) {
	ev.calls++
	if ev.trace != nil {
		defer func() { *ev.trace = append(*ev.trace, atom) }()
	}
	defer func() {
		if r := recover(); r != nil {
			value = 0
			err := &CallbackError{
				Phase: "process",
				Atom:  atom.Text,
				Value: r,
				Stack: string(debug.Stack()),
				Err:   fmt.Errorf("panic: %v", r),
			}
			ev.expr.metrics.RecordAtomCall(ev.ctx, true)
			observability.LogCallbackFailure(ev.expr.logger, "process", atom.Text, err)
		}
	}()

	v, err := ev.expr.handler.ProcessAtom(atom, ev.input)
	if err != nil {
		ev.expr.metrics.RecordAtomCall(ev.ctx, true)
		observability.LogCallbackFailure(ev.expr.logger, "process", atom.Text, err)
		return 0
	}
	ev.expr.metrics.RecordAtomCall(ev.ctx, false)
	return v
}
