package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/celatom"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/config"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/ruleset"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/tracestore"
)

// BenchmarkEvaluate_And_10 evaluates a fully-true 10-atom conjunction.
func BenchmarkEvaluate_And_10(b *testing.B) {
	expr := mustParse(buildChain(10, "&"))
	in := allSet(10)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.Evaluate(in, atomexpr.FlagNone)
	}
}

// BenchmarkEvaluate_And_100_ShortCircuit stops at the first atom.
func BenchmarkEvaluate_And_100_ShortCircuit(b *testing.B) {
	expr := mustParse(buildChain(100, "&"))
	in := Input{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.Evaluate(in, atomexpr.FlagNone)
	}
}

// BenchmarkEvaluate_And_100_Full evaluates every atom of the same expression.
func BenchmarkEvaluate_And_100_Full(b *testing.B) {
	expr := mustParse(buildChain(100, "&"))
	in := Input{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.Evaluate(in, atomexpr.FlagNoShortCircuit)
	}
}

// BenchmarkEvaluate_Nested_6 evaluates a balanced tree of depth 6.
func BenchmarkEvaluate_Nested_6(b *testing.B) {
	expr := mustParse(buildNested(6))
	in := Input{"x": 1}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.Evaluate(in, atomexpr.FlagNone)
	}
}

// BenchmarkEvaluateTraced_Or_10 records the atoms of a 10-atom disjunction.
func BenchmarkEvaluateTraced_Or_10(b *testing.B) {
	expr := mustParse(buildChain(10, "|"))
	in := Input{"a9": 1}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = expr.EvaluateTraced(in, atomexpr.FlagNone)
	}
}

// BenchmarkEvaluate_Parallel evaluates one expression from many goroutines.
func BenchmarkEvaluate_Parallel(b *testing.B) {
	expr := mustParse(buildChain(10, "&"))
	in := allSet(10)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = expr.Evaluate(in, atomexpr.FlagNone)
		}
	})
}

// BenchmarkEvaluate_CEL evaluates a mix of CEL and name atoms.
func BenchmarkEvaluate_CEL(b *testing.B) {
	expr, err := atomexpr.Parse[map[string]any](`{input.age >= 18} & ({input.spend > 1000} | premium)`, celatom.New(), quiet)
	if err != nil {
		b.Fatal(err)
	}
	in := map[string]any{"age": 30, "spend": 1500, "premium": false}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = expr.Evaluate(in, atomexpr.FlagNone)
	}
}

// BenchmarkRuleSet_Evaluate evaluates 10 rules, with and without a trace store.
func BenchmarkRuleSet_Evaluate(b *testing.B) {
	rules := make([]config.RuleConfig, 10)
	for i := range rules {
		rules[i] = config.RuleConfig{
			Name:       "rule_" + string(rune('a'+i)),
			Expression: buildChain(i+1, "|"),
		}
	}
	cfg := config.Config{Rules: rules}
	in := Input{"a3": 1}

	b.Run("untraced", func(b *testing.B) {
		rs, err := ruleset.FromConfig(cfg, identHandler, ruleset.WithLogger(quietLogger))
		if err != nil {
			b.Fatal(err)
		}
		defer rs.Close()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = rs.Evaluate(context.Background(), in)
		}
	})

	b.Run("memory_store", func(b *testing.B) {
		store := tracestore.NewMemoryStore()
		defer store.Close()
		rs, err := ruleset.FromConfig(cfg, identHandler,
			ruleset.WithLogger(quietLogger), ruleset.WithTraceStore(store))
		if err != nil {
			b.Fatal(err)
		}
		defer rs.Close()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = rs.Evaluate(context.Background(), in)
		}
	})
}
