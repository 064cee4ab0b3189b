package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	actionmcp "github.com/rendis/actionrules/pkg/mcp"
)

// bindConfigFlags lets flags override the loaded configuration.
func bindConfigFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.RulesetPath, "ruleset", cfg.RulesetPath, "ruleset document (YAML or JSON)")
	fs.StringVar(&cfg.ScenarioPath, "scenario", cfg.ScenarioPath, "scenario document (YAML)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
}

func runServe(args []string) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (disabled if empty)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(cfg)
	reg := prometheus.NewRegistry()
	a, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		return 1
	}

	if cfg.MetricsAddr != "" {
		metricsSrv := startMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	srv := actionmcp.NewActionServer(actionmcp.ActionServerDeps{
		Engine:  a.engine,
		World:   a.state,
		Ruleset: a.ruleset.Name,
		Version: version,
		Logger:  logger,
	})
	logger.Info("serving MCP on stdio", slog.String("ruleset", a.ruleset.Name))
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server stopped", slog.Any("error", err))
		return 1
	}
	return 0
}

func startMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.String("addr", addr), slog.Any("error", err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", addr))
	return srv
}
