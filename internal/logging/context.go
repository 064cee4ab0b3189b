package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	queryIDKey ctxKey = iota
	actionKey
	rulesetKey
)

// WithQueryID returns a context with the query ID set.
func WithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryIDKey, id)
}

// WithAction returns a context with the action rule name set.
func WithAction(ctx context.Context, action string) context.Context {
	return context.WithValue(ctx, actionKey, action)
}

// WithRuleset returns a context with the ruleset name set.
func WithRuleset(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, rulesetKey, name)
}

// QueryID extracts the query ID from the context, or "" if absent.
func QueryID(ctx context.Context) string {
	v, _ := ctx.Value(queryIDKey).(string)
	return v
}

// Action extracts the action rule name from the context, or "" if absent.
func Action(ctx context.Context) string {
	v, _ := ctx.Value(actionKey).(string)
	return v
}

// Ruleset extracts the ruleset name from the context, or "" if absent.
func Ruleset(ctx context.Context) string {
	v, _ := ctx.Value(rulesetKey).(string)
	return v
}

// WithIDs sets all three correlation values on the context at once.
func WithIDs(ctx context.Context, queryID, action, ruleset string) context.Context {
	ctx = WithQueryID(ctx, queryID)
	ctx = WithAction(ctx, action)
	ctx = WithRuleset(ctx, ruleset)
	return ctx
}

func correlationAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := QueryID(ctx); v != "" {
		attrs = append(attrs, slog.String("query_id", v))
	}
	if v := Action(ctx); v != "" {
		attrs = append(attrs, slog.String("action", v))
	}
	if v := Ruleset(ctx); v != "" {
		attrs = append(attrs, slog.String("ruleset", v))
	}
	return attrs
}

// LogWith returns a logger enriched with correlation values from the context.
// Only non-empty values are added as attributes. A logger whose handler is a
// CorrelationHandler is returned as is, since it adds the same values itself.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if _, ok := logger.Handler().(*CorrelationHandler); ok {
		return logger
	}
	for _, a := range correlationAttrs(ctx) {
		logger = logger.With(a)
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation values from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.DebugContext(ctx, ...) and the values appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(correlationAttrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
