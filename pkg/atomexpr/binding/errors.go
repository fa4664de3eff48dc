package binding

import (
	"errors"
	"fmt"
)

// ErrCannotParseAtom is returned when a parse callback produces something
// other than a string.
var ErrCannotParseAtom = errors.New("cannot parse atom")

// ArgumentError reports a Create argument of the wrong type.
type ArgumentError struct {
	// Arg names the argument ("line", "funcs" or "pool").
	Arg string
	// Want describes the accepted type.
	Want string
	// Got is the value that was passed.
	Got any
}

// Error implements the error interface. The message is fixed; use Detail
// for the offending argument.
func (e *ArgumentError) Error() string {
	return "bad arguments"
}

// Detail describes which argument was wrong.
func (e *ArgumentError) Detail() string {
	return fmt.Sprintf("%s must be %s, got %T", e.Arg, e.Want, e.Got)
}
