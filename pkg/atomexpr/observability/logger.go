// Package observability provides logging, metrics, and tracing helpers
// for atomexpr parsing and evaluation.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds expression context to a logger.
// Returns a new logger with rule and eval_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "spam_rule", "3f0c...")
//	enriched.Info("evaluating") // includes rule, eval_id
func EnrichLogger(logger *slog.Logger, rule, evalID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("rule", rule),
		slog.String("eval_id", evalID),
	)
}

// LogParse logs a successful expression parse.
func LogParse(logger *slog.Logger, expression string, atoms int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("expression parsed",
		slog.String("expression", expression),
		slog.Int("atoms", atoms),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogParseError logs an expression that failed to parse.
func LogParseError(logger *slog.Logger, expression string, err error) {
	if logger == nil {
		return
	}
	logger.Info("expression parse failed",
		slog.String("expression", expression),
		slog.String("error", err.Error()),
	)
}

// LogCallbackFailure logs a failed atom callback (non-fatal).
// Phase is "parse" or "process".
func LogCallbackFailure(logger *slog.Logger, phase, atom string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("atom callback failed",
		slog.String("phase", phase),
		slog.String("atom", atom),
		slog.String("error", err.Error()),
	)
}

// LogEvaluation logs the result of one expression evaluation.
func LogEvaluation(logger *slog.Logger, expression string, result, fired int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("expression evaluated",
		slog.String("expression", expression),
		slog.Int("result", result),
		slog.Int("atoms_fired", fired),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogRuleSetLoaded logs the compilation of a rule set.
func LogRuleSetLoaded(logger *slog.Logger, rules int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("rule set compiled",
		slog.Int("rules", rules),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTraceStoreError logs a trace persistence failure (non-fatal).
func LogTraceStoreError(logger *slog.Logger, rule, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("trace store failed",
		slog.String("rule", rule),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
