package celatom

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Sentinel errors for CEL atoms.
var (
	// ErrUnterminatedAtom is returned when a '{' atom has no closing brace.
	ErrUnterminatedAtom = errors.New("unterminated CEL atom")

	// ErrCompile is returned when a CEL atom fails to parse or type check.
	ErrCompile = errors.New("CEL atom does not compile")

	// ErrEvaluation is returned when a CEL program fails at evaluation time.
	ErrEvaluation = errors.New("CEL atom evaluation failed")

	// ErrInvalidResult is returned when an atom produces a value with no
	// numeric interpretation.
	ErrInvalidResult = errors.New("CEL atom returned invalid result type")

	// ErrUnknownVariable is returned when a name atom is missing from the input.
	ErrUnknownVariable = errors.New("unknown variable")
)

// Issue is one problem reported by the CEL compiler.
type Issue struct {
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// CompileError reports a CEL atom that failed to parse or type check.
type CompileError struct {
	// Source is the CEL source between the braces.
	Source string
	// Issues lists the compiler diagnostics.
	Issues   []Issue
	original error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrCompile, e.Source, e.original)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CompileError) Unwrap() []error {
	return []error{ErrCompile, e.original}
}

func newCompileError(source string, issues *cel.Issues) *CompileError {
	ce := &CompileError{
		Source:   source,
		Issues:   make([]Issue, 0, len(issues.Errors())),
		original: issues.Err(),
	}
	for _, err := range issues.Errors() {
		ce.Issues = append(ce.Issues, Issue{
			Line: err.Location.Line(),
			Col:  err.Location.Column(),
			Msg:  err.Message,
		})
	}
	return ce
}
