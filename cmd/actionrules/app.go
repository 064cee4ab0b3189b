package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rendis/actionrules/internal/actions"
	"github.com/rendis/actionrules/internal/logging"
	"github.com/rendis/actionrules/internal/metrics"
	"github.com/rendis/actionrules/internal/requirements"
	"github.com/rendis/actionrules/internal/ruleset"
	"github.com/rendis/actionrules/internal/world"
)

// app is the wired engine over one ruleset and one game state.
type app struct {
	ruleset *ruleset.Ruleset
	state   *world.State
	engine  *actions.Engine
	logger  *slog.Logger
}

// newLogger writes JSON records with correlation ids to stderr. Stdout is
// reserved for the MCP transport and command output.
func newLogger(cfg Config) *slog.Logger {
	inner := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()})
	return slog.New(logging.NewCorrelationHandler(inner))
}

// newApp loads the ruleset and scenario named by cfg. reg may be nil, in
// which case no metrics are recorded.
func newApp(ctx context.Context, cfg Config, logger *slog.Logger, reg prometheus.Registerer) (*app, error) {
	ev, err := requirements.NewEvaluator(logger)
	if err != nil {
		return nil, err
	}
	loader, err := ruleset.NewLoader(ev, logger)
	if err != nil {
		return nil, err
	}
	rs, err := loader.LoadFile(ctx, cfg.RulesetPath)
	if err != nil {
		return nil, err
	}
	state, err := world.LoadScenarioFile(cfg.ScenarioPath)
	if err != nil {
		return nil, err
	}

	var rec *metrics.Recorder
	if reg != nil {
		if rec, err = metrics.NewRecorder(reg); err != nil {
			return nil, err
		}
	}

	engine, err := actions.NewEngine(actions.Config{
		Registry:  rs.Registry,
		World:     state,
		Evaluator: ev,
		Effects:   rs.Effects,
		Settings:  rs.Settings,
		Logger:    logger,
		Metrics:   rec,
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(logging.WithRuleset(ctx, rs.Name), "engine ready",
		slog.String("scenario", cfg.ScenarioPath),
		slog.Int("units", len(state.Units)),
		slog.Int("cities", len(state.Cities)))
	return &app{ruleset: rs, state: state, engine: engine, logger: logger}, nil
}
