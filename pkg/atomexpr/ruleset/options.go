package ruleset

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/observability"
	"github.com/randalmurphal/atomexpr/pkg/atomexpr/tracestore"
)

// options holds configuration shared by New and FromConfig.
type options struct {
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	store     tracestore.Store
	pool      *atomexpr.Pool
	parseOpts []atomexpr.ParseOption
	flags     *atomexpr.Flags
	newID     func() string
}

func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		newID:   uuid.NewString,
	}
}

// Option configures a RuleSet.
type Option func(*options)

// WithLogger sets the logger for the rule set and its expressions.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder for parses, evaluations and atom calls.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used to trace evaluations.
// Default: observability.NoopSpanManager{}
func WithSpanManager(s observability.SpanManager) Option {
	return func(o *options) {
		if s != nil {
			o.spans = s
		}
	}
}

// WithTraceStore records traced evaluations in store. The caller keeps
// ownership: Close does not close it. Overrides any configured backend.
func WithTraceStore(store tracestore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithPool allocates rules from p. The caller keeps ownership: Close does
// not destroy it. Overrides any configured pool limit.
func WithPool(p *atomexpr.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithParseOptions adds options applied to every rule's Parse call,
// after those derived from configuration.
func WithParseOptions(opts ...atomexpr.ParseOption) Option {
	return func(o *options) {
		o.parseOpts = append(o.parseOpts, opts...)
	}
}

// WithFlags sets the default evaluation flags of every rule.
// Default: atomexpr.FlagNone, or the configured engine default.
func WithFlags(f atomexpr.Flags) Option {
	return func(o *options) {
		o.flags = &f
	}
}

// WithIDGenerator sets the function that names evaluations.
// Default: uuid.NewString
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}
