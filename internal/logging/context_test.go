package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "", QueryID(ctx))
	assert.Equal(t, "", Action(ctx))
	assert.Equal(t, "", Ruleset(ctx))

	ctx = WithQueryID(ctx, "q-123")
	ctx = WithAction(ctx, "Establish Embassy")
	ctx = WithRuleset(ctx, "civ2civ3")

	assert.Equal(t, "q-123", QueryID(ctx))
	assert.Equal(t, "Establish Embassy", Action(ctx))
	assert.Equal(t, "civ2civ3", Ruleset(ctx))
}

func TestLogWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithIDs(context.Background(), "q-abc", "Bribe_Unit", "classic")

	enriched := LogWith(ctx, logger)
	enriched.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "query_id=q-abc")
	assert.Contains(t, output, "action=Bribe_Unit")
	assert.Contains(t, output, "ruleset=classic")
	assert.Contains(t, output, "test message")
}

func TestLogWithMissingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithQueryID(context.Background(), "q-only")

	enriched := LogWith(ctx, logger)
	enriched.Info("partial context")

	output := buf.String()
	assert.Contains(t, output, "query_id=q-only")
	assert.NotContains(t, output, "action=")
	assert.NotContains(t, output, "ruleset=")
}

func TestLogWithEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	enriched := LogWith(context.Background(), logger)
	enriched.Info("no context")

	output := buf.String()
	assert.NotContains(t, output, "query_id")
	assert.NotContains(t, output, "ruleset")
	assert.Contains(t, output, "no context")
}

func TestCorrelationHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	ctx := WithIDs(context.Background(), "q-auto", "Steal_Gold", "sandbox")
	logger.InfoContext(ctx, "auto inject")

	output := buf.String()
	assert.Contains(t, output, `"query_id":"q-auto"`)
	assert.Contains(t, output, `"action":"Steal_Gold"`)
	assert.Contains(t, output, `"ruleset":"sandbox"`)
	assert.Contains(t, output, "auto inject")
}

func TestCorrelationHandlerEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	logger.InfoContext(context.Background(), "bare log")

	output := buf.String()
	assert.NotContains(t, output, "query_id")
	assert.NotContains(t, output, `"action"`)
	assert.NotContains(t, output, `"ruleset"`)
	assert.Contains(t, output, "bare log")
}

func TestCorrelationHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := NewCorrelationHandler(inner)
	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("component", "engine")}))

	ctx := WithQueryID(context.Background(), "q-attr")
	logger.InfoContext(ctx, "with attrs")

	output := buf.String()
	assert.Contains(t, output, `"query_id":"q-attr"`)
	assert.Contains(t, output, `"component":"engine"`)
}

func TestCorrelationHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := NewCorrelationHandler(inner)
	logger := slog.New(handler.WithGroup("engine"))

	ctx := WithQueryID(context.Background(), "q-grp")
	logger.InfoContext(ctx, "grouped", "key", "val")

	output := buf.String()
	assert.Contains(t, output, "q-grp")
	assert.Contains(t, output, "grouped")
}

func TestLogWithCorrelationHandlerAddsOnce(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	ctx := WithIDs(context.Background(), "q-once", "Steal_Gold", "classic")
	LogWith(ctx, logger).With("component", "engine").DebugContext(ctx, "once")

	output := buf.String()
	assert.Equal(t, 1, strings.Count(output, `"action"`))
	assert.Equal(t, 1, strings.Count(output, `"query_id"`))
	assert.Equal(t, 1, strings.Count(output, `"ruleset"`))
}
