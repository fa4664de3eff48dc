package benchmarks

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
)

// Input maps atom names to values.
type Input map[string]int

var (
	quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	quiet       = atomexpr.WithLogger(quietLogger)
)

var identHandler = atomexpr.HandlerFuncs[Input]{
	Parse: func(rest string) (atomexpr.ParsedAtom, error) {
		n := 0
		for n < len(rest) && (rest[n] == '_' || rest[n] >= 'a' && rest[n] <= 'z' || rest[n] >= '0' && rest[n] <= '9') {
			n++
		}
		return atomexpr.ParsedAtom{Text: rest[:n]}, nil
	},
	Process: func(a *atomexpr.Atom, in Input) (int, error) {
		return in[a.Text], nil
	},
}

// buildChain returns "a0 op a1 op ... a(n-1)".
func buildChain(n int, op string) string {
	atoms := make([]string, n)
	for i := range atoms {
		atoms[i] = fmt.Sprintf("a%d", i)
	}
	return strings.Join(atoms, " "+op+" ")
}

// buildNested returns an expression alternating & and | across depth levels,
// each level grouping two copies of the level below.
func buildNested(depth int) string {
	if depth == 0 {
		return "x"
	}
	op := " & "
	if depth%2 == 0 {
		op = " | "
	}
	inner := buildNested(depth - 1)
	return "(" + inner + op + "!" + inner + ")"
}

func mustParse(text string, opts ...atomexpr.ParseOption) *atomexpr.Expression[Input] {
	expr, err := atomexpr.Parse(text, identHandler, append([]atomexpr.ParseOption{quiet}, opts...)...)
	if err != nil {
		panic(err)
	}
	return expr
}

// allSet returns an input where every chain atom is 1.
func allSet(n int) Input {
	in := make(Input, n)
	for i := 0; i < n; i++ {
		in[fmt.Sprintf("a%d", i)] = 1
	}
	return in
}
