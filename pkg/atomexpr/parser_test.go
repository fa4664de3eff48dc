package atomexpr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		want  string
		atoms int
	}{
		{name: "single atom", expr: "A", want: "A", atoms: 1},
		{name: "and", expr: "A & B", want: "A & B", atoms: 2},
		{name: "and chain is flattened", expr: "A & B & C", want: "A & B & C", atoms: 3},
		{name: "and binds tighter than or", expr: "A | B & C", want: "A | (B & C)", atoms: 3},
		{name: "parens override precedence", expr: "(A | B) & C", want: "(A | B) & C", atoms: 3},
		{name: "not binds tightest", expr: "!A & B", want: "!A & B", atoms: 2},
		{name: "not of group", expr: "!(A & B)", want: "!(A & B)", atoms: 2},
		{name: "redundant parens collapse", expr: "((A))", want: "A", atoms: 1},
		{name: "left group flattened", expr: "(A & B) & C", want: "A & B & C", atoms: 3},
		{name: "right group flattened", expr: "A & (B & C)", want: "A & B & C", atoms: 3},
		{name: "or groups flattened", expr: "(A | B) | (C | D)", want: "A | B | C | D", atoms: 4},
		{name: "whitespace ignored", expr: "  A\t&\nB  ", want: "A & B", atoms: 2},
		{name: "no whitespace", expr: "A&B|!C", want: "(A & B) | !C", atoms: 3},
		{name: "double negation kept", expr: "!!A", want: "!!A", atoms: 1},
		{name: "not before group in chain", expr: "A | !(B | C) | D", want: "A | !(B | C) | D", atoms: 4},
		{name: "repeated atom", expr: "A & !A", want: "A & !A", atoms: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := mustParse(t, tt.expr, &testHandler{})
			assert.Equal(t, tt.want, expr.String())
			assert.Equal(t, tt.atoms, expr.AtomCount())
			assert.Equal(t, tt.expr, expr.Source())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		want   error
		offset int
	}{
		{name: "empty", expr: "", want: ErrEmptyExpression, offset: 0},
		{name: "only whitespace", expr: "   ", want: ErrEmptyExpression, offset: 3},
		{name: "trailing and", expr: "A &", want: ErrDanglingOperator, offset: 3},
		{name: "trailing or", expr: "A | ", want: ErrDanglingOperator, offset: 4},
		{name: "lone not", expr: "!", want: ErrDanglingOperator, offset: 1},
		{name: "unclosed paren", expr: "(A", want: ErrUnbalancedParens, offset: 0},
		{name: "lone open paren", expr: "(", want: ErrUnbalancedParens, offset: 1},
		{name: "extra close paren", expr: "A)", want: ErrUnbalancedParens, offset: 1},
		{name: "empty group", expr: "()", want: ErrUnexpectedToken, offset: 1},
		{name: "consecutive atoms", expr: "A B", want: ErrUnexpectedToken, offset: 2},
		{name: "consecutive atoms in group", expr: "(A B)", want: ErrUnexpectedToken, offset: 3},
		{name: "atom then group", expr: "A (B)", want: ErrUnexpectedToken, offset: 2},
		{name: "leading operator", expr: "& A", want: ErrUnexpectedToken, offset: 0},
		{name: "doubled operator", expr: "A && B", want: ErrUnexpectedToken, offset: 3},
		{name: "mixed operators", expr: "A & | B", want: ErrUnexpectedToken, offset: 4},
		{name: "unrecognized atom", expr: "A & ?", want: ErrAtomNotRecognized, offset: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.expr, &testHandler{}, WithLogger(quietLogger()))
			require.Error(t, err)
			assert.Nil(t, expr)
			assert.ErrorIs(t, err, tt.want)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.offset, pe.Offset)
			assert.Contains(t, pe.Error(), tt.want.Error())
		})
	}
}

func TestParse_CallbackErrorIsVerbatim(t *testing.T) {
	cbErr := errors.New("no such header: X-Spam")
	h := HandlerFuncs[map[string]int]{
		Parse: func(rest string) (ParsedAtom, error) {
			if strings.HasPrefix(rest, "X") {
				return ParsedAtom{}, cbErr
			}
			return identParse(rest)
		},
		Process: func(*Atom, map[string]int) (int, error) { return 1, nil },
	}

	_, err := Parse("A & X", h, WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Equal(t, "no such header: X-Spam", err.Error())
	assert.ErrorIs(t, err, cbErr)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 4, pe.Offset)
}

func TestParse_CallbackPanic(t *testing.T) {
	h := HandlerFuncs[map[string]int]{
		Parse: func(rest string) (ParsedAtom, error) {
			if rest[0] == 'B' {
				panic("parser bug")
			}
			return identParse(rest)
		},
		Process: func(*Atom, map[string]int) (int, error) { return 1, nil },
	}

	_, err := Parse("A | B", h, WithLogger(quietLogger()))
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	var ce *CallbackError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "parse", ce.Phase)
	assert.Equal(t, "parser bug", ce.Value)
	assert.NotEmpty(t, ce.Stack)
	assert.Contains(t, err.Error(), "panicked")
}

func TestParse_ConsumedLength(t *testing.T) {
	// Atoms look like {name}; the braces are consumed but not part of the text.
	h := HandlerFuncs[map[string]int]{
		Parse: func(rest string) (ParsedAtom, error) {
			end := strings.IndexByte(rest, '}')
			if rest[0] != '{' || end < 0 {
				return ParsedAtom{}, errors.New("expected {name}")
			}
			return ParsedAtom{Text: rest[1:end], Consumed: end + 1, Data: "meta"}, nil
		},
		Process: func(*Atom, map[string]int) (int, error) { return 1, nil },
	}

	expr := mustParse(t, "{a b} & !{c}", h)

	var atoms []*Atom
	expr.ForEachAtom(func(a *Atom) { atoms = append(atoms, a) })
	require.Len(t, atoms, 2)

	assert.Equal(t, "a b", atoms[0].Text)
	assert.Equal(t, 5, atoms[0].Len)
	assert.Equal(t, 0, atoms[0].Offset)
	assert.Equal(t, "meta", atoms[0].Data)

	assert.Equal(t, "c", atoms[1].Text)
	assert.Equal(t, 3, atoms[1].Len)
	assert.Equal(t, 9, atoms[1].Offset)
}

func TestParse_TextDefaultsToConsumedSlice(t *testing.T) {
	h := HandlerFuncs[map[string]int]{
		Parse: func(rest string) (ParsedAtom, error) {
			p, _ := identParse(rest)
			return ParsedAtom{Consumed: len(p.Text)}, nil
		},
		Process: func(*Atom, map[string]int) (int, error) { return 1, nil },
	}

	expr := mustParse(t, "foo | bar", h)
	assert.Equal(t, []string{"foo", "bar"}, expr.Atoms())
}

func TestParse_ConsumedBeyondInput(t *testing.T) {
	h := HandlerFuncs[map[string]int]{
		Parse: func(rest string) (ParsedAtom, error) {
			return ParsedAtom{Text: "A", Consumed: len(rest) + 1}, nil
		},
		Process: func(*Atom, map[string]int) (int, error) { return 1, nil },
	}

	_, err := Parse("A", h, WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrAtomNotRecognized)
}

func TestParse_Limits(t *testing.T) {
	t.Run("max length", func(t *testing.T) {
		_, err := Parse("A & B & C", &testHandler{}, WithMaxLength(5), WithLogger(quietLogger()))
		assert.ErrorIs(t, err, ErrExpressionTooLong)

		_, err = Parse("A & B", &testHandler{}, WithMaxLength(5), WithLogger(quietLogger()))
		assert.NoError(t, err)
	})

	t.Run("length is unlimited by default", func(t *testing.T) {
		text := strings.Repeat("A & ", 5000) + "A"
		expr, err := Parse(text, &testHandler{}, WithLogger(quietLogger()))
		require.NoError(t, err)
		assert.Equal(t, 5001, expr.AtomCount())
	})

	t.Run("max depth of groups", func(t *testing.T) {
		_, err := Parse("((A))", &testHandler{}, WithMaxDepth(2), WithLogger(quietLogger()))
		assert.NoError(t, err)

		_, err = Parse("(((A)))", &testHandler{}, WithMaxDepth(2), WithLogger(quietLogger()))
		assert.ErrorIs(t, err, ErrExpressionTooDeep)
	})

	t.Run("max depth of negations", func(t *testing.T) {
		_, err := Parse("!!!A", &testHandler{}, WithMaxDepth(2), WithLogger(quietLogger()))
		assert.ErrorIs(t, err, ErrExpressionTooDeep)
	})

	t.Run("sibling groups do not accumulate depth", func(t *testing.T) {
		_, err := Parse("(A) & (B) & (C) & !D & !E", &testHandler{}, WithMaxDepth(1), WithLogger(quietLogger()))
		assert.NoError(t, err)
	})

	t.Run("deep input is rejected by default", func(t *testing.T) {
		text := strings.Repeat("(", 1000) + "A" + strings.Repeat(")", 1000)
		_, err := Parse(text, &testHandler{}, WithLogger(quietLogger()))
		assert.ErrorIs(t, err, ErrExpressionTooDeep)
	})
}

func TestParse_HandlerValidation(t *testing.T) {
	t.Run("nil handler", func(t *testing.T) {
		_, err := Parse[map[string]int]("A", nil)
		assert.ErrorIs(t, err, ErrNilHandler)
	})

	t.Run("missing process callback", func(t *testing.T) {
		h := HandlerFuncs[map[string]int]{Parse: identParse}
		_, err := Parse("A", h)

		var cte *CallbackTypeError
		require.ErrorAs(t, err, &cte)
		assert.Equal(t, "process", cte.Callback)
		assert.Equal(t, "bad process callback", cte.Error())
	})

	t.Run("missing parse callback", func(t *testing.T) {
		h := HandlerFuncs[map[string]int]{
			Process: func(*Atom, map[string]int) (int, error) { return 0, nil },
		}
		_, err := Parse("A", h)

		var cte *CallbackTypeError
		require.ErrorAs(t, err, &cte)
		assert.Equal(t, "parse", cte.Callback)
	})
}

func TestParse_ParseCallbackCalledOncePerAtom(t *testing.T) {
	calls := 0
	h := HandlerFuncs[map[string]int]{
		Parse: func(rest string) (ParsedAtom, error) {
			calls++
			return identParse(rest)
		},
		Process: func(*Atom, map[string]int) (int, error) { return 1, nil },
	}

	expr := mustParse(t, "A & (B | !C) & D", h)
	assert.Equal(t, 4, calls)

	_, err := expr.Evaluate(nil, FlagNone)
	require.NoError(t, err)
	assert.Equal(t, 4, calls, "evaluation must not re-parse atoms")
}
