package config

import (
	"time"

	"github.com/randalmurphal/atomexpr/pkg/atomexpr"
)

// Trace store backends.
const (
	BackendNone   = ""
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Rule parameters understood by the ruleset package.
const (
	// ParamFullTrace evaluates every atom of the rule (bool).
	ParamFullTrace = "full_trace"
	// ParamRecord persists the rule's traces when a store is configured (bool).
	ParamRecord = "record"
	// ParamMaxLength overrides engine.max_length for the rule (int).
	ParamMaxLength = "max_length"
	// ParamMaxDepth overrides engine.max_depth for the rule (int).
	ParamMaxDepth = "max_depth"
	// ParamOptimize set to false keeps the rule's And/Or children in source
	// order (bool).
	ParamOptimize = "optimize"
)

// Config is the complete configuration of a rule engine.
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Rules  []RuleConfig `mapstructure:"rules"`
	Traces TraceConfig  `mapstructure:"traces"`
}

// EngineConfig holds parser and evaluator limits.
type EngineConfig struct {
	// MaxLength is the maximum expression length in bytes. Zero is unlimited.
	MaxLength int `mapstructure:"max_length"`
	// MaxDepth is the maximum nesting depth. Zero uses the default.
	MaxDepth int `mapstructure:"max_depth"`
	// PoolLimit caps the nodes plus atoms of all rules. Zero is unlimited.
	PoolLimit int `mapstructure:"pool_limit"`
	// DisableOptimization keeps And/Or children in source order.
	DisableOptimization bool `mapstructure:"disable_optimization"`
	// FullTrace evaluates every atom instead of short-circuiting.
	FullTrace bool `mapstructure:"full_trace"`
}

// RuleConfig defines one named expression.
type RuleConfig struct {
	Name        string `mapstructure:"name"`
	Expression  string `mapstructure:"expression"`
	Description string `mapstructure:"description"`
	Disabled    bool   `mapstructure:"disabled"`
	Params      Params `mapstructure:"params"`
}

// TraceConfig selects where fired atoms are recorded.
type TraceConfig struct {
	// Backend is "", "memory" or "sqlite".
	Backend string `mapstructure:"backend"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// Retention drops records older than this when the store is opened.
	// Zero keeps everything.
	Retention time.Duration `mapstructure:"retention"`
}

// ParseOptions converts the engine limits into parse options.
func (c Config) ParseOptions() []atomexpr.ParseOption {
	var opts []atomexpr.ParseOption
	if c.Engine.MaxLength > 0 {
		opts = append(opts, atomexpr.WithMaxLength(c.Engine.MaxLength))
	}
	if c.Engine.MaxDepth > 0 {
		opts = append(opts, atomexpr.WithMaxDepth(c.Engine.MaxDepth))
	}
	if c.Engine.DisableOptimization {
		opts = append(opts, atomexpr.WithoutOptimization())
	}
	return opts
}

// NewPool creates a pool honoring the configured limit.
func (c Config) NewPool() *atomexpr.Pool {
	return atomexpr.NewPool(atomexpr.WithPoolLimit(c.Engine.PoolLimit))
}

// Flags returns the default evaluation flags.
func (c Config) Flags() atomexpr.Flags {
	if c.Engine.FullTrace {
		return atomexpr.FlagNoShortCircuit
	}
	return atomexpr.FlagNone
}

// ParseOptions returns the parse options set by r's params. Applied after
// Config.ParseOptions, they override the engine limits for this rule.
func (r RuleConfig) ParseOptions() []atomexpr.ParseOption {
	var opts []atomexpr.ParseOption
	if n := r.Params.Int(ParamMaxLength, 0); n > 0 {
		opts = append(opts, atomexpr.WithMaxLength(n))
	}
	if n := r.Params.Int(ParamMaxDepth, 0); n > 0 {
		opts = append(opts, atomexpr.WithMaxDepth(n))
	}
	if !r.Params.Bool(ParamOptimize, true) {
		opts = append(opts, atomexpr.WithoutOptimization())
	}
	return opts
}

// Flags returns the evaluation flags for r, given the engine default.
func (r RuleConfig) Flags(def atomexpr.Flags) atomexpr.Flags {
	if r.Params.Bool(ParamFullTrace, def.Has(atomexpr.FlagNoShortCircuit)) {
		return atomexpr.FlagNoShortCircuit
	}
	return atomexpr.FlagNone
}

// Record reports whether traces of r should be persisted.
func (r RuleConfig) Record() bool {
	return r.Params.Bool(ParamRecord, true)
}
