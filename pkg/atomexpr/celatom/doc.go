// Package celatom provides an atomexpr.Handler whose atoms are CEL
// expressions or plain variable names, evaluated against a map input.
//
// Two atom forms are recognized:
//
//	{input.age >= 18 && input.country == "NZ"}   CEL, compiled at parse time
//	premium                                       truthiness of input["premium"]
//
// A bare name may contain dots to reach into nested maps ("account.active").
// Inside braces, quoted strings may contain braces and escaped quotes.
//
// Atom values follow the usual truthiness rules: booleans are 0 or 1, numbers
// are truncated to int, strings, lists and maps are 1 when non-empty.
//
// Name atoms are always evaluated before CEL atoms within a group, and cheap
// CEL programs before expensive ones, using CEL's static cost estimate.
//
// Example:
//
//	h := celatom.New()
//	expr, err := atomexpr.Parse[map[string]any](`premium | {input.spend > 1000}`, h)
//	if err != nil {
//	    return err
//	}
//	v, _ := expr.Evaluate(map[string]any{"premium": false, "spend": 1500}, atomexpr.FlagNone)
package celatom
