// Package binding exposes atomexpr through the loosely typed surface a script
// host uses: arguments arrive as any, callbacks as plain functions over atom
// text, and failures come back as a message rather than a Go error.
//
//	h, msg := binding.Create("A & B | !C", []any{parseFn, processFn}, pool)
//	if h == nil {
//	    return msg
//	}
//	score := h.Process(input)
//	score, fired := h.ProcessTraced(input)
//
// Expressions belong to the pool passed to Create and are destroyed with it.
package binding

import (
	"log/slog"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
)

// Handle is a compiled expression owned by a pool.
type Handle struct {
	expr *atomexpr.Expression[any]
}

// Create compiles line using the parse and process callbacks in funcs
// (a two-element []any) and allocates it from pool (a *atomexpr.Pool).
//
// Exactly one of the results is set: the handle on success, otherwise the
// error message.
func Create(line, funcs, pool any, opts ...atomexpr.ParseOption) (*Handle, string) {
	h, err := CreateE(line, funcs, pool, opts...)
	if err != nil {
		return nil, err.Error()
	}
	return h, ""
}

// CreateE is Create returning a typed error: *ArgumentError for malformed
// arguments, *atomexpr.CallbackTypeError for a callback that is missing or
// not callable, and the errors of atomexpr.Parse otherwise.
func CreateE(line, funcs, pool any, opts ...atomexpr.ParseOption) (*Handle, error) {
	text, ok := line.(string)
	if !ok {
		return nil, badArgument(atomexpr.LoggerOf(opts...), "line", "string", line)
	}
	table, ok := funcs.([]any)
	if !ok {
		return nil, badArgument(atomexpr.LoggerOf(opts...), "funcs", "[]any", funcs)
	}
	p, ok := pool.(*atomexpr.Pool)
	if !ok || p == nil {
		return nil, badArgument(atomexpr.LoggerOf(opts...), "pool", "*atomexpr.Pool", pool)
	}

	var parseFn, processFn any
	if len(table) > 0 {
		parseFn = table[0]
	}
	if len(table) > 1 {
		processFn = table[1]
	}
	parse, err := adaptParse(parseFn)
	if err != nil {
		return nil, err
	}
	process, err := adaptProcess(processFn)
	if err != nil {
		return nil, err
	}

	h := atomexpr.HandlerFuncs[any]{
		Parse:   parse,
		Process: process,
	}
	opts = append([]atomexpr.ParseOption{atomexpr.WithPool(p)}, opts...)
	expr, err := atomexpr.Parse[any](text, h, opts...)
	if err != nil {
		return nil, err
	}
	return &Handle{expr: expr}, nil
}

func badArgument(logger *slog.Logger, name, want string, got any) error {
	err := &ArgumentError{Arg: name, Want: want, Got: got}
	logger.Info("bad arguments to create", slog.String("detail", err.Detail()))
	return err
}

// ToString returns the canonical text of the expression. The boolean is
// false when there is no live expression.
func (h *Handle) ToString() (string, bool) {
	if h == nil || h.expr == nil || h.expr.Pool().Destroyed() {
		return "", false
	}
	return h.expr.String(), true
}

// String implements fmt.Stringer.
func (h *Handle) String() string {
	s, _ := h.ToString()
	return s
}

// Process evaluates the expression, passing input to every process callback.
// An optional flags value selects evaluation policy (see atomexpr.Flags).
func (h *Handle) Process(input any, flags ...int) int {
	if h == nil || h.expr == nil {
		return 0
	}
	res, err := h.expr.Evaluate(input, flagsOf(flags))
	if err != nil {
		return 0
	}
	return res
}

// ProcessTraced is Process that also returns the text of every atom whose
// callback ran, in order.
func (h *Handle) ProcessTraced(input any, flags ...int) (int, []string) {
	if h == nil || h.expr == nil {
		return 0, nil
	}
	res, trace, err := h.expr.EvaluateTraced(input, flagsOf(flags))
	if err != nil {
		return 0, nil
	}
	return res, trace.Texts()
}

// Atoms returns the text of every atom in the expression, or nil when there
// is no live expression.
func (h *Handle) Atoms() []string {
	if h == nil || h.expr == nil || h.expr.Pool().Destroyed() {
		return nil
	}
	return h.expr.Atoms()
}

// Expression returns the underlying expression.
func (h *Handle) Expression() *atomexpr.Expression[any] {
	if h == nil {
		return nil
	}
	return h.expr
}

func flagsOf(flags []int) atomexpr.Flags {
	if len(flags) == 0 {
		return atomexpr.FlagNone
	}
	return atomexpr.Flags(uint32(flags[0]))
}
