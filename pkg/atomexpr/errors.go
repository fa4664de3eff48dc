package atomexpr

import (
	"errors"
	"fmt"
)

// Sentinel errors for expression parsing.
var (
	// ErrEmptyExpression indicates the expression contained no terms.
	ErrEmptyExpression = errors.New("empty expression")

	// ErrUnexpectedToken indicates a token in a position the grammar does not
	// allow, such as two operands with no operator between them.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrUnbalancedParens indicates a missing '(' or ')'.
	ErrUnbalancedParens = errors.New("unbalanced parentheses")

	// ErrDanglingOperator indicates an operator with no right-hand operand.
	ErrDanglingOperator = errors.New("dangling operator")

	// ErrAtomNotRecognized indicates the atom parser consumed no input.
	ErrAtomNotRecognized = errors.New("atom not recognized")

	// ErrExpressionTooLong indicates the expression exceeds the configured length limit.
	ErrExpressionTooLong = errors.New("expression too long")

	// ErrExpressionTooDeep indicates nesting exceeds the configured depth limit.
	ErrExpressionTooDeep = errors.New("expression nested too deeply")
)

// Sentinel errors for handlers and pools.
var (
	// ErrNilHandler indicates Parse was called without a Handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrPoolExhausted indicates the pool reached its allocation limit.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrPoolDestroyed indicates the pool owning an expression has been destroyed.
	ErrPoolDestroyed = errors.New("pool destroyed")
)

// ParseError reports an invalid expression.
// Msg is reported verbatim by Error; when the atom parser failed, Msg is the
// atom parser's own error text.
type ParseError struct {
	// Offset is the byte offset in the source where the error was detected.
	Offset int
	// Msg is the human-readable message.
	Msg string
	// Err is the underlying sentinel or callback error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// newParseError builds a ParseError for one of the parse sentinels.
func newParseError(sentinel error, offset int, format string, args ...any) *ParseError {
	msg := sentinel.Error()
	if format != "" {
		msg = fmt.Sprintf("%s: %s", msg, fmt.Sprintf(format, args...))
	}
	return &ParseError{
		Offset: offset,
		Msg:    fmt.Sprintf("%s at offset %d", msg, offset),
		Err:    sentinel,
	}
}

// CallbackTypeError indicates a missing handler callback.
type CallbackTypeError struct {
	// Callback names the missing callback ("parse" or "process").
	Callback string
}

// Error implements the error interface.
func (e *CallbackTypeError) Error() string {
	return fmt.Sprintf("bad %s callback", e.Callback)
}

// CallbackError captures a runtime failure inside an atom callback.
// During parsing it aborts the parse; during evaluation the atom counts as 0.
type CallbackError struct {
	// Phase is "parse" or "process".
	Phase string
	// Atom is the atom text, or the unconsumed input during parsing.
	Atom string
	// Value is the value passed to panic(), nil when the callback returned an error.
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s callback panicked on %q: %v", e.Phase, e.Atom, e.Value)
	}
	return fmt.Sprintf("%s callback failed on %q: %v", e.Phase, e.Atom, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// AllocationError reports a pool that could not satisfy an allocation.
type AllocationError struct {
	// Requested is the number of slots that were requested.
	Requested int
	// Limit is the pool's configured limit, 0 when unlimited.
	Limit int
	// Err is ErrPoolExhausted or ErrPoolDestroyed.
	Err error
}

// Error implements the error interface.
func (e *AllocationError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("allocate %d slot(s) (limit %d): %v", e.Requested, e.Limit, e.Err)
	}
	return fmt.Sprintf("allocate %d slot(s): %v", e.Requested, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AllocationError) Unwrap() error {
	return e.Err
}
