package atomexpr

import (
	"log/slog"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr/observability"
)

const (
	// DefaultMaxLength is the maximum expression length in bytes. Zero means
	// no limit; nesting is still bounded by the depth limit.
	DefaultMaxLength = 0

	// DefaultMaxDepth is the maximum nesting of groups and negations.
	DefaultMaxDepth = 128
)

// parseConfig holds configuration for Parse.
type parseConfig struct {
	name      string
	pool      *Pool
	maxLength int
	maxDepth  int
	optimize  bool
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
}

// defaultParseConfig returns the default parse configuration.
func defaultParseConfig() parseConfig {
	return parseConfig{
		maxLength: DefaultMaxLength,
		maxDepth:  DefaultMaxDepth,
		optimize:  true,
		metrics:   observability.NoopMetrics{},
	}
}

// ParseOption configures parsing and the resulting Expression.
type ParseOption func(*parseConfig)

// newParseConfig applies opts to the defaults and resolves the logger.
func newParseConfig(opts []ParseOption) parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.name != "" {
		cfg.logger = cfg.logger.With(slog.String("rule", cfg.name))
	}
	return cfg
}

// LoggerOf returns the logger Parse would use with opts.
func LoggerOf(opts ...ParseOption) *slog.Logger {
	return newParseConfig(opts).logger
}

// WithPool allocates the expression from p instead of a private pool.
// The expression becomes invalid when p is destroyed.
func WithPool(p *Pool) ParseOption {
	return func(c *parseConfig) {
		c.pool = p
	}
}

// WithMaxLength sets the maximum accepted expression length in bytes.
// Default: no limit
func WithMaxLength(n int) ParseOption {
	return func(c *parseConfig) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// WithMaxDepth sets the maximum nesting of parentheses and negations.
// Default: 128
//
// Parsing is recursive, so the limit bounds stack use for hostile input.
func WithMaxDepth(n int) ParseOption {
	return func(c *parseConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithoutOptimization keeps And/Or children in source order.
func WithoutOptimization() ParseOption {
	return func(c *parseConfig) {
		c.optimize = false
	}
}

// WithLogger sets the logger used for parse results and callback failures.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for parses, evaluations and atom calls.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) ParseOption {
	return func(c *parseConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithName labels the expression. The name is attached to its log records
// and evaluation metrics.
func WithName(name string) ParseOption {
	return func(c *parseConfig) {
		c.name = name
	}
}
