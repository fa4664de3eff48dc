package binding

import (
	"fmt"
	"strconv"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
)

// adaptParse converts a host parse callback into an atom parser. The token
// the callback returns is the atom; its length is the number of bytes consumed.
//
// Accepted shapes:
//
//	func(string) string
//	func(string) (string, error)
//	func(string) any
func adaptParse(fn any) (func(string) (atomexpr.ParsedAtom, error), error) {
	switch f := fn.(type) {
	case func(string) string:
		if f == nil {
			break
		}
		return func(rest string) (atomexpr.ParsedAtom, error) {
			return atomexpr.ParsedAtom{Text: f(rest)}, nil
		}, nil
	case func(string) (string, error):
		if f == nil {
			break
		}
		return func(rest string) (atomexpr.ParsedAtom, error) {
			tok, err := f(rest)
			if err != nil {
				return atomexpr.ParsedAtom{}, err
			}
			return atomexpr.ParsedAtom{Text: tok}, nil
		}, nil
	case func(string) any:
		if f == nil {
			break
		}
		return func(rest string) (atomexpr.ParsedAtom, error) {
			tok, ok := f(rest).(string)
			if !ok {
				return atomexpr.ParsedAtom{}, ErrCannotParseAtom
			}
			return atomexpr.ParsedAtom{Text: tok}, nil
		}, nil
	}
	return nil, &atomexpr.CallbackTypeError{Callback: "parse"}
}

// adaptProcess converts a host process callback into an atom processor.
// Non-integer results are truncated toward zero.
//
// Accepted shapes:
//
//	func(string, any) int
//	func(string, any) float64
//	func(string, any) (int, error)
//	func(string, any) (float64, error)
//	func(string, any) any
func adaptProcess(fn any) (func(*atomexpr.Atom, any) (int, error), error) {
	switch f := fn.(type) {
	case func(string, any) int:
		if f == nil {
			break
		}
		return func(a *atomexpr.Atom, in any) (int, error) {
			return f(a.Text, in), nil
		}, nil
	case func(string, any) float64:
		if f == nil {
			break
		}
		return func(a *atomexpr.Atom, in any) (int, error) {
			return int(f(a.Text, in)), nil
		}, nil
	case func(string, any) (int, error):
		if f == nil {
			break
		}
		return func(a *atomexpr.Atom, in any) (int, error) {
			return f(a.Text, in)
		}, nil
	case func(string, any) (float64, error):
		if f == nil {
			break
		}
		return func(a *atomexpr.Atom, in any) (int, error) {
			v, err := f(a.Text, in)
			return int(v), err
		}, nil
	case func(string, any) any:
		if f == nil {
			break
		}
		return func(a *atomexpr.Atom, in any) (int, error) {
			return toNumber(f(a.Text, in))
		}, nil
	}
	return nil, &atomexpr.CallbackTypeError{Callback: "process"}
}

// toNumber converts a dynamically typed callback result to an atom value.
// Numeric strings are accepted; anything else is an error.
func toNumber(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float32:
		return int(n), nil
	case float64:
		return int(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("atom result %q is not a number", n)
		}
		return int(f), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("atom result of type %T is not a number", v)
	}
}
