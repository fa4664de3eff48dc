// Package ruleset evaluates a named collection of expressions against the
// same input.
//
// Rules are compiled once into a shared pool. Every evaluation gets an ID,
// an OpenTelemetry span, and the list of atoms that fired; with a trace
// store configured, that list is persisted under the ID.
//
//	rs, err := ruleset.FromConfig(cfg, celatom.New())
//	if err != nil {
//	    return err
//	}
//	defer rs.Close()
//
//	results, err := rs.Evaluate(ctx, input)
//	for _, r := range results {
//	    if r.Matched() {
//	        fmt.Println(r.Rule, r.Fired)
//	    }
//	}
package ruleset

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/config"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/observability"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/tracestore"
)

// ErrNoTraceStore indicates trace history was requested from a rule set
// without a trace store.
var ErrNoTraceStore = errors.New("no trace store configured")

// Rule is a compiled, named expression.
type Rule[T any] struct {
	Name        string
	Description string
	Params      config.Params
	// Flags are the evaluation flags used for this rule.
	Flags atomexpr.Flags
	// Record is false when the rule's traces are never persisted.
	Record bool
	Expr   *atomexpr.Expression[T]
}

// Result is the outcome of evaluating one rule.
type Result struct {
	Rule   string
	Value  int
	Fired  []string
	EvalID string
}

// Matched reports whether the rule evaluated to a nonzero value.
func (r Result) Matched() bool {
	return r.Value != 0
}

// RuleSet is a concurrency-safe collection of rules sharing one handler and pool.
type RuleSet[T any] struct {
	// mu serializes parsing into the pool against evaluation.
	mu     sync.RWMutex
	closed bool

	handler   atomexpr.Handler[T]
	rules     *registry[*Rule[T]]
	pool      *atomexpr.Pool
	ownsPool  bool
	store     tracestore.Store
	ownsStore bool
	parseOpts []atomexpr.ParseOption
	flags     atomexpr.Flags

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	newID   func() string
}

// New creates an empty rule set.
func New[T any](h atomexpr.Handler[T], opts ...Option) *RuleSet[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newRuleSet(h, o, nil, nil, atomexpr.FlagNone)
}

// FromConfig creates a rule set holding every enabled rule of cfg.
// The pool and trace store are created from cfg unless given as options.
// Every rule that fails to compile is reported in one aggregated error.
func FromConfig[T any](cfg config.Config, h atomexpr.Handler[T], opts ...Option) (*RuleSet[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var pool *atomexpr.Pool
	if o.pool == nil {
		pool = cfg.NewPool()
	}
	var store tracestore.Store
	if o.store == nil {
		s, err := tracestore.Open(cfg.Traces)
		if err != nil {
			if pool != nil {
				pool.Destroy()
			}
			return nil, err
		}
		store = s
	}
	o.parseOpts = append(cfg.ParseOptions(), o.parseOpts...)

	rs := newRuleSet(h, o, pool, store, cfg.Flags())

	done := observability.TimedOperation()
	var merr *multierror.Error
	for _, rc := range cfg.Rules {
		if rc.Disabled {
			rs.logger.Debug("rule disabled", slog.String("rule", rc.Name))
			continue
		}
		if err := rs.Add(rc); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		rs.Close()
		return nil, err
	}
	observability.LogRuleSetLoaded(rs.logger, rs.Len(), done())
	return rs, nil
}

// newRuleSet assembles a rule set. A non-nil pool or store passed here is
// owned by the rule set; options supply caller-owned ones.
func newRuleSet[T any](h atomexpr.Handler[T], o options, pool *atomexpr.Pool, store tracestore.Store, flags atomexpr.Flags) *RuleSet[T] {
	rs := &RuleSet[T]{
		handler:   h,
		rules:     newRegistry[*Rule[T]](),
		pool:      o.pool,
		store:     o.store,
		parseOpts: o.parseOpts,
		flags:     flags,
		logger:    o.logger,
		metrics:   o.metrics,
		spans:     o.spans,
		newID:     o.newID,
	}
	if rs.pool == nil {
		rs.pool = pool
		if rs.pool == nil {
			rs.pool = atomexpr.NewPool()
		}
		rs.ownsPool = true
	}
	if rs.store == nil && store != nil {
		rs.store = store
		rs.ownsStore = true
	}
	if o.flags != nil {
		rs.flags = *o.flags
	}
	return rs
}

// Add compiles rc and registers it under rc.Name.
// Errors are *RuleError wrapping ErrEmptyRuleName, ErrDuplicateRule or the
// parse error. A failed Add leaves the pool unchanged.
func (rs *RuleSet[T]) Add(rc config.RuleConfig) error {
	if rc.Name == "" {
		return &RuleError{Rule: rc.Name, Err: ErrEmptyRuleName}
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.closed {
		return &RuleError{Rule: rc.Name, Err: ErrClosed}
	}
	if _, ok := rs.rules.get(rc.Name); ok {
		return &RuleError{Rule: rc.Name, Err: ErrDuplicateRule}
	}

	ruleOpts := rc.ParseOptions()
	opts := make([]atomexpr.ParseOption, 0, len(rs.parseOpts)+len(ruleOpts)+4)
	opts = append(opts, rs.parseOpts...)
	opts = append(opts, ruleOpts...)
	opts = append(opts,
		atomexpr.WithPool(rs.pool),
		atomexpr.WithName(rc.Name),
		atomexpr.WithLogger(rs.logger),
		atomexpr.WithMetrics(rs.metrics),
	)
	expr, err := atomexpr.Parse(rc.Expression, rs.handler, opts...)
	if err != nil {
		return &RuleError{Rule: rc.Name, Err: err}
	}

	rs.rules.add(rc.Name, &Rule[T]{
		Name:        rc.Name,
		Description: rc.Description,
		Params:      rc.Params,
		Flags:       rc.Flags(rs.flags),
		Record:      rc.Record(),
		Expr:        expr,
	})
	return nil
}

// AddExpression is Add for a rule with only a name and an expression.
func (rs *RuleSet[T]) AddExpression(name, expression string) error {
	return rs.Add(config.RuleConfig{Name: name, Expression: expression})
}

// Remove unregisters a rule and reports whether it existed. Its nodes stay
// in the pool until the rule set is closed. Recorded traces of the rule are
// deleted from the trace store.
func (rs *RuleSet[T]) Remove(name string) bool {
	if !rs.rules.remove(name) {
		return false
	}
	if rs.store != nil {
		if err := rs.store.DeleteRule(name); err != nil {
			observability.LogTraceStoreError(rs.logger, name, "delete", err)
		}
	}
	return true
}

// Get returns the rule with the given name.
func (rs *RuleSet[T]) Get(name string) (*Rule[T], bool) {
	return rs.rules.get(name)
}

// Names returns the rule names in sorted order.
func (rs *RuleSet[T]) Names() []string {
	return rs.rules.names()
}

// Len returns the number of rules.
func (rs *RuleSet[T]) Len() int {
	return rs.rules.len()
}

// Evaluate evaluates every rule against input, in name order.
//
// Results are returned for every rule that could be evaluated. The error
// aggregates per-rule failures and a cancelled context, which stops
// evaluation before the next rule.
func (rs *RuleSet[T]) Evaluate(ctx context.Context, input T) ([]Result, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if rs.closed {
		return nil, ErrClosed
	}

	rules := rs.rules.snapshot()
	ctx, span := rs.spans.StartRuleSetSpan(ctx, len(rules))

	results := make([]Result, 0, len(rules))
	var merr *multierror.Error
	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			merr = multierror.Append(merr, err)
			break
		}
		res, err := rs.evaluate(ctx, r, input)
		if err != nil {
			merr = multierror.Append(merr, &RuleError{Rule: r.Name, Err: err})
			continue
		}
		results = append(results, res)
	}

	err := merr.ErrorOrNil()
	rs.spans.EndSpanWithError(span, err)
	return results, err
}

// EvaluateRule evaluates a single rule.
func (rs *RuleSet[T]) EvaluateRule(ctx context.Context, name string, input T) (Result, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if rs.closed {
		return Result{}, ErrClosed
	}
	r, ok := rs.rules.get(name)
	if !ok {
		return Result{}, &RuleError{Rule: name, Err: ErrRuleNotFound}
	}
	res, err := rs.evaluate(ctx, r, input)
	if err != nil {
		return Result{}, &RuleError{Rule: name, Err: err}
	}
	return res, nil
}

// evaluate runs one rule under its own span and records its trace.
func (rs *RuleSet[T]) evaluate(ctx context.Context, r *Rule[T], input T) (Result, error) {
	evalID := rs.newID()
	ctx, span := rs.spans.StartEvaluateSpan(ctx, r.Name, evalID)

	value, trace, err := r.Expr.EvaluateTraced(input, r.Flags)
	if err != nil {
		rs.spans.EndSpanWithError(span, err)
		return Result{}, err
	}

	res := Result{
		Rule:   r.Name,
		Value:  value,
		Fired:  trace.Texts(),
		EvalID: evalID,
	}
	rs.spans.AddSpanEvent(ctx, "rule.evaluated",
		attribute.Int("result", value),
		attribute.Int("atoms.fired", len(trace)),
	)

	if rs.store != nil && r.Record {
		rec := tracestore.Record{
			EvalID:     evalID,
			Rule:       r.Name,
			Expression: r.Expr.String(),
			Value:      value,
			Fired:      res.Fired,
		}
		if err := rs.store.Save(rec); err != nil {
			logger := observability.EnrichLogger(rs.logger, r.Name, evalID)
			observability.LogTraceStoreError(logger, r.Name, "save", err)
		}
	}

	rs.spans.EndSpanWithError(span, nil)
	return res, nil
}

// Traces returns the recorded evaluations of a rule, oldest first.
func (rs *RuleSet[T]) Traces(rule string) ([]tracestore.Record, error) {
	if rs.store == nil {
		return nil, ErrNoTraceStore
	}
	return rs.store.List(rule)
}

// Trace returns one recorded evaluation by ID.
func (rs *RuleSet[T]) Trace(evalID string) (tracestore.Record, error) {
	if rs.store == nil {
		return tracestore.Record{}, ErrNoTraceStore
	}
	return rs.store.Get(evalID)
}

// Close releases the pool and trace store if the rule set created them.
// Rules cannot be added or evaluated afterwards. Close is idempotent.
func (rs *RuleSet[T]) Close() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.closed {
		return nil
	}
	rs.closed = true
	if rs.ownsPool {
		rs.pool.Destroy()
	}
	if rs.ownsStore {
		return rs.store.Close()
	}
	return nil
}
