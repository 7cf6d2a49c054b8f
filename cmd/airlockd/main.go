// Command airlockd wires the tool-dispatch runtime together: safety
// policy, confirmation store, session manager, event log, launch
// orchestrator, and the tool registry/dispatcher. The transport that
// actually delivers tool invocations, and the production UI automation
// driver, are out-of-scope external collaborators (spec.md §1); this
// binary exposes the wired Dispatcher for an external transport
// process to call and runs a supervising loop that periodically
// evicts stale sessions, grounded on the teacher's cmd/buckley/main.go
// startup/shutdown shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/airlockhq/airlock/pkg/artifact"
	"github.com/airlockhq/airlock/pkg/config"
	"github.com/airlockhq/airlock/pkg/confirmation"
	"github.com/airlockhq/airlock/pkg/driver/memdriver"
	"github.com/airlockhq/airlock/pkg/eventlog"
	"github.com/airlockhq/airlock/pkg/launch"
	"github.com/airlockhq/airlock/pkg/logging"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
	"github.com/airlockhq/airlock/pkg/tool/handlers"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to airlock config YAML (defaults to ./.airlock/config.yaml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("airlockd %s (%s)\n", version, commit)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "airlockd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logWriter, closeLog, err := openLogDestination(cfg.Logging.Destination)
	if err != nil {
		return fmt.Errorf("open log destination: %w", err)
	}
	defer closeLog()

	logger := logging.New(logWriter)
	logger.SetMinLevel(logging.Level(cfg.Logging.MinLevel))

	runtime, err := buildRuntime(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runtime.policy.Watch(ctx); err != nil {
		logger.Warn(logging.CategoryPolicy, "policy watcher failed to start", map[string]any{"error": err.Error()})
	}

	logger.Info(logging.CategoryDispatch, "airlockd started", map[string]any{
		"runtimeMode":  cfg.RuntimeMode,
		"artifactRoot": cfg.ArtifactRoot,
		"listen":       cfg.Listen,
	})

	ticker := time.NewTicker(evictionInterval(cfg.Session.TTL))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(logging.CategoryDispatch, "airlockd shutting down", nil)
			runtime.sessions.Reset(context.Background(), "shutdown")
			return nil
		case <-ticker.C:
			if failures := runtime.sessions.CleanupStale(context.Background()); len(failures) > 0 {
				for _, f := range failures {
					logger.Error(logging.CategorySession, "stale session cleanup failed", map[string]any{
						"sessionId": string(f.SessionID), "error": f.Err.Error(),
					})
				}
			}
		}
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func openLogDestination(destination string) (*os.File, func(), error) {
	if destination == "" || destination == "stderr" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(destination, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// wiredRuntime holds every collaborator the dispatcher needs to process
// a tool invocation; an external transport process is expected to
// import this package's equivalents (or link this binary as a
// library) to actually deliver calls to Dispatcher.Dispatch.
type wiredRuntime struct {
	policy       *policy.Engine
	sessions     *session.Manager
	confirms     *confirmation.Store
	events       *eventlog.Log
	artifacts    artifact.Layout
	orchestrator *launch.Orchestrator
	registry     *tool.Registry
	dispatcher   *tool.Dispatcher
	metricsReg   *prometheus.Registry
}

func buildRuntime(cfg *config.Config, logger *logging.Logger) (*wiredRuntime, error) {
	mode := cfg.Mode()

	engine := policy.NewEngine(mode, cfg.ArtifactRoot, logger)
	if cfg.PolicyFilePath != "" {
		if err := engine.LoadFile(cfg.PolicyFilePath); err != nil {
			return nil, fmt.Errorf("load policy file: %w", err)
		}
	}

	sessions := session.NewManager(cfg.Session.TTL, logger)
	confirms := confirmation.New()
	events := eventlog.New(cfg.EventLog.Capacity)
	layout := artifact.New(cfg.ArtifactRoot)

	// The production UI automation driver is an out-of-scope external
	// collaborator (spec.md §6.5); memdriver is the only concrete
	// driver.Runtime/Capability this repo ships, so it is wired here as
	// the default until a real driver is plugged in (documented in
	// DESIGN.md's open-question resolutions).
	rt := memdriver.New()

	metricsReg := prometheus.NewRegistry()
	orch := launch.NewOrchestrator(rt, rt, sessions, layout, mode, logger).
		WithMetrics(launch.NewMetrics(metricsReg))

	registry := tool.NewRegistry()
	handlers.RegisterAll(registry, sessions, rt, layout)

	dispatcher := tool.NewDispatcher(registry, tool.DispatchOptions{
		DefaultTimeout: time.Duration(cfg.Dispatch.DefaultTimeoutMs) * time.Millisecond,
		PerToolTimeout: cfg.DispatchPerToolTimeouts(),
	})

	return &wiredRuntime{
		policy:       engine,
		sessions:     sessions,
		confirms:     confirms,
		events:       events,
		artifacts:    layout,
		orchestrator: orch,
		registry:     registry,
		dispatcher:   dispatcher,
		metricsReg:   metricsReg,
	}, nil
}

// evictionInterval runs the stale-session sweep at a quarter of the
// configured TTL, bounded to a sane range so a very small or very large
// TTL doesn't produce a degenerate sweep cadence.
func evictionInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	return interval
}
