package atomexpr

//go:generate mockgen -source=atom.go -destination=mocks/mock_handler.go -package=mocks Handler,Prioritizer

import "errors"

// DefaultPriority is the priority of atoms whose handler expresses no preference.
const DefaultPriority = 0

// Atom is a leaf term of an expression.
// Atoms are created once during parsing and owned by the expression's Pool.
type Atom struct {
	// Text is the atom text as returned by the atom parser.
	Text string
	// Len is the number of source bytes the atom spans.
	Len int
	// Offset is the byte offset of the atom in the source expression.
	Offset int
	// Data is the opaque value the atom parser attached. The engine never inspects it.
	Data any
	// Priority orders atoms within And/Or groups; lower values are evaluated first.
	Priority int
}

// ParsedAtom is what an atom parser returns for the input it recognized.
type ParsedAtom struct {
	// Text is the atom text. When empty, the consumed source slice is used.
	Text string
	// Consumed is the number of bytes recognized. Zero means len(Text).
	Consumed int
	// Data is carried unchanged into Atom.Data.
	Data any
}

// Handler recognizes and evaluates atoms for expressions whose evaluation
// input has type T.
//
// ParseAtom receives the unconsumed remainder of the expression and reports
// how much of its prefix forms one atom. It must be a pure function of its
// input. ProcessAtom returns the value of an atom for one evaluation; it may
// be called many times across evaluations of the same expression.
type Handler[T any] interface {
	ParseAtom(remaining string) (ParsedAtom, error)
	ProcessAtom(atom *Atom, input T) (int, error)
}

// Prioritizer is implemented by handlers that rank atoms for evaluation order.
// Atoms with a lower priority run first within an And/Or group.
type Prioritizer interface {
	AtomPriority(atom *Atom) int
}

// HandlerFuncs adapts plain functions to the Handler interface.
type HandlerFuncs[T any] struct {
	Parse    func(remaining string) (ParsedAtom, error)
	Process  func(atom *Atom, input T) (int, error)
	Priority func(atom *Atom) int
}

// Compile-time interface checks.
var (
	_ Handler[any] = HandlerFuncs[any]{}
	_ Prioritizer  = HandlerFuncs[any]{}
)

// ParseAtom calls h.Parse.
func (h HandlerFuncs[T]) ParseAtom(remaining string) (ParsedAtom, error) {
	return h.Parse(remaining)
}

// ProcessAtom calls h.Process.
func (h HandlerFuncs[T]) ProcessAtom(atom *Atom, input T) (int, error) {
	return h.Process(atom, input)
}

// AtomPriority calls h.Priority, or returns DefaultPriority when it is nil.
func (h HandlerFuncs[T]) AtomPriority(atom *Atom) int {
	if h.Priority == nil {
		return DefaultPriority
	}
	return h.Priority(atom)
}

// Validate reports a CallbackTypeError when Parse or Process is nil.
func (h HandlerFuncs[T]) Validate() error {
	var errs []error
	if h.Parse == nil {
		errs = append(errs, &CallbackTypeError{Callback: "parse"})
	}
	if h.Process == nil {
		errs = append(errs, &CallbackTypeError{Callback: "process"})
	}
	return errors.Join(errs...)
}
