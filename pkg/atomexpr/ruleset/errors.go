package ruleset

import (
	"errors"
	"fmt"
)

// Sentinel errors for rule sets.
var (
	// ErrDuplicateRule indicates a rule name is already registered.
	ErrDuplicateRule = errors.New("duplicate rule name")

	// ErrRuleNotFound indicates no rule has the requested name.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrEmptyRuleName indicates a rule was added without a name.
	ErrEmptyRuleName = errors.New("rule name cannot be empty")

	// ErrClosed indicates the rule set has been closed.
	ErrClosed = errors.New("rule set closed")
)

// RuleError reports a rule that could not be added.
type RuleError struct {
	// Rule is the rule name.
	Rule string
	// Err is the underlying error, often an *atomexpr.ParseError.
	Err error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RuleError) Unwrap() error {
	return e.Err
}
