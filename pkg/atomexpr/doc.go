/*
Package atomexpr parses and evaluates boolean expressions over caller-defined atoms.

# Overview

atomexpr knows how to combine boolean results, not what they mean. An
expression such as

	A & B | !C

is made of operators and atoms. The engine recognizes the operators itself;
every other substring is handed to a Handler, which decides how many bytes
form one atom and later computes each atom's value for a given input.

# Expression Syntax

	<expr>   := <and> ('|' <and>)*
	<and>    := <unary> ('&' <unary>)*
	<unary>  := '!' <unary> | <primary>
	<primary>:= '(' <expr> ')' | <atom>

'!' binds tighter than '&', which binds tighter than '|'. Whitespace between
tokens is ignored. Chains of one operator become a single n-ary node.

# Basic Usage

	h := atomexpr.HandlerFuncs[map[string]int]{
	    Parse: func(rest string) (atomexpr.ParsedAtom, error) {
	        n := strings.IndexAny(rest, " &|!()")
	        if n < 0 {
	            n = len(rest)
	        }
	        return atomexpr.ParsedAtom{Text: rest[:n]}, nil
	    },
	    Process: func(a *atomexpr.Atom, in map[string]int) (int, error) {
	        return in[a.Text], nil
	    },
	}

	expr, err := atomexpr.Parse("A & B | !C", h)
	if err != nil {
	    log.Fatal(err)
	}
	result, _ := expr.Evaluate(map[string]int{"A": 1}, atomexpr.FlagNone)
	fmt.Println(result) // 1: A & B is 0, !C is 1

# Evaluation Order

Evaluation short-circuits: an And stops at the first 0, an Or at the first
nonzero value. After parsing, the children of each And/Or node are stably
sorted by priority (see Prioritizer), so cheap or decisive atoms run first.
The engine does not preserve source order.

An And whose children are all nonzero yields the value of its last child;
an Or yields the value of its first nonzero child. This keeps graded atom
values (weights, scores) visible to the caller.

# Tracing

EvaluateTraced also returns the atoms whose callback actually ran.
FlagNoShortCircuit forces every atom to run, which is useful for
explaining a result.

# Memory

Expressions live in a Pool. Every node and atom is an index into the pool;
Pool.Destroy releases them all at once and makes the expressions built from
it return ErrPoolDestroyed.

# Concurrency

Parsing is not safe for concurrent use of one Pool. A parsed Expression is
immutable and may be evaluated from several goroutines if the handler allows
it.
*/
package atomexpr
