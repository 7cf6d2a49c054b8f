package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/artifact"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/logging"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
)

// DevServerConfig configures the optional dev-server child process a
// preset may require.
type DevServerConfig struct {
	Command      string
	Args         []string
	URL          string
	ReadyPattern string
	TimeoutMs    int64
}

// ElectronConfig configures the driver's custom/electron launch path.
type ElectronConfig struct {
	EntryPath      string
	ExecutablePath string
	Args           []string
	Env            map[string]string
}

// TimeoutsConfig bounds the overall launch and first-window waits.
type TimeoutsConfig struct {
	LaunchMs      int64
	FirstWindowMs int64
}

// AttachFallback controls CDP attach-on-launch-failure behavior.
type AttachFallback struct {
	Enabled bool
}

// LaunchInput is the orchestrator's launch request.
type LaunchInput struct {
	ProjectRoot    string
	SessionID      session.ID
	Preset         string
	DevServer      *DevServerConfig
	Electron       *ElectronConfig
	Timeouts       TimeoutsConfig
	AttachFallback AttachFallback
}

// Preset declares whether a named launch preset spawns a dev server and
// how it builds the driver launch config.
type Preset struct {
	Name              string
	RequiresDevServer bool
	BuildLaunchConfig func(input LaunchInput, sessionID session.ID) driver.LaunchConfig
}

// DefaultPresets returns the small built-in preset registry. Callers may
// extend it with their own presets before constructing an Orchestrator.
func DefaultPresets() map[string]Preset {
	return map[string]Preset{
		"electron-default": {
			Name:              "electron-default",
			RequiresDevServer: false,
			BuildLaunchConfig: func(input LaunchInput, sessionID session.ID) driver.LaunchConfig {
				return driver.LaunchConfig{
					Preset:         "electron-default",
					ExecutablePath: input.Electron.ExecutablePath,
					EntryPath:      input.Electron.EntryPath,
					Args:           input.Electron.Args,
					Env:            input.Electron.Env,
				}
			},
		},
		"electron-dev-server": {
			Name:              "electron-dev-server",
			RequiresDevServer: true,
			BuildLaunchConfig: func(input LaunchInput, sessionID session.ID) driver.LaunchConfig {
				return driver.LaunchConfig{
					Preset:         "electron-dev-server",
					ExecutablePath: input.Electron.ExecutablePath,
					EntryPath:      input.Electron.EntryPath,
					Args:           input.Electron.Args,
					Env:            input.Electron.Env,
				}
			},
		},
	}
}

var remoteDebugPortArg = regexp.MustCompile(`--remote-debugging-port=(\d+)`)
var devToolsWSEndpoint = regexp.MustCompile(`ws://([^/\s]+)/devtools/browser/([\w-]+)`)

// Orchestrator drives dev-server spawn, driver launch, and CDP attach
// fallback (SPEC_FULL.md §4.6), registering the resulting session with
// the session manager.
type Orchestrator struct {
	Runtime    driver.Runtime
	Capability driver.Capability
	Sessions   *session.Manager
	Artifacts  artifact.Layout
	Presets    map[string]Preset
	Logger     *logging.Logger
	Mode       policy.Mode
	Metrics    *Metrics

	mu         sync.Mutex
	procGroup  map[session.ID]*exec.Cmd
}

// WithMetrics installs the Prometheus instrument set the orchestrator
// updates around each launch attempt. Optional; a nil Metrics disables
// instrumentation entirely.
func (o *Orchestrator) WithMetrics(m *Metrics) *Orchestrator {
	o.Metrics = m
	return o
}

// NewOrchestrator constructs an Orchestrator wired to its collaborators.
func NewOrchestrator(runtime driver.Runtime, capability driver.Capability, sessions *session.Manager, artifacts artifact.Layout, mode policy.Mode, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Orchestrator{
		Runtime:    runtime,
		Capability: capability,
		Sessions:   sessions,
		Artifacts:  artifacts,
		Presets:    DefaultPresets(),
		Logger:     logger,
		Mode:       mode,
		procGroup:  make(map[session.ID]*exec.Cmd),
	}
}

// Launch executes the full launch protocol of SPEC_FULL.md §4.6 and
// returns the newly tracked managed session.
func (o *Orchestrator) Launch(ctx context.Context, input LaunchInput) (*session.ManagedSession, error) {
	launchStartedAt := time.Now()
	managed, err := o.launch(ctx, input)
	if o.Metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		o.Metrics.LaunchTotal.WithLabelValues(outcome).Inc()
		o.Metrics.LaunchDuration.Observe(time.Since(launchStartedAt).Seconds())
	}
	return managed, err
}

func (o *Orchestrator) launch(ctx context.Context, input LaunchInput) (*session.ManagedSession, error) {
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = session.ID(uuid.NewString())
	}
	if err := o.Artifacts.EnsureSessionDirs(sessionID); err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.LaunchFailed, "allocate artifact directory").WithRetriable(true)
	}

	diagnostics := NewDiagnostics()
	diagnostics.Events.Record(DiagnosticEvent{Type: DiagnosticEventLaunch, Detail: map[string]any{"sessionId": string(sessionID), "preset": input.Preset}})

	launchConfig, preset, err := o.resolvePreset(input, sessionID)
	if err != nil {
		return nil, err
	}

	attachEnabled := input.AttachFallback.Enabled || autoDeriveAttachFallback(input.Electron)

	var cmd *exec.Cmd
	if preset.RequiresDevServer && input.DevServer != nil && input.DevServer.Command != "" {
		cmd, err = o.spawnDevServer(ctx, input.DevServer, diagnostics)
		if err != nil {
			return nil, err
		}
		o.mu.Lock()
		o.procGroup[sessionID] = cmd
		o.mu.Unlock()

		if err := o.waitForReadiness(ctx, input.DevServer, diagnostics); err != nil {
			o.killGracefully(cmd)
			return nil, err
		}
	}

	driverSession, launchMeta, err := o.launchOrAttach(ctx, launchConfig, attachEnabled, diagnostics)
	if err != nil {
		if cmd != nil {
			o.killGracefully(cmd)
		}
		return nil, err
	}

	windows, err := o.Capability.GetWindows(ctx, driverSession)
	if err != nil {
		windows = nil
	}
	var defaultWindowID *driver.WindowID
	if primary := firstPrimary(windows); primary != nil {
		defaultWindowID = primary
	} else if len(windows) > 0 {
		id := windows[0].WindowID
		defaultWindowID = &id
	}

	now := time.Now()
	managed := &session.ManagedSession{
		Session: session.Session{
			SessionID:      sessionID,
			State:          session.StateRunning,
			Mode:           o.Mode,
			LaunchMode:     launchModeFor(input.Preset, launchMeta.attachFallback),
			CreatedAt:      now,
			UpdatedAt:      now,
			LastActivityAt: now,
			ArtifactDir:    o.Artifacts.SessionDir(sessionID),
			Windows:        windows,
		},
		DriverSession:   driverSession,
		DefaultWindowID: defaultWindowID,
	}
	if defaultWindowID != nil {
		managed.Session.SelectedWindowID = defaultWindowID
	}

	o.Sessions.Add(managed)
	o.Sessions.WrapCleanup(sessionID, false, o.buildCleanup(managed, cmd), nil)

	diagnostics.Events.Record(DiagnosticEvent{Type: DiagnosticEventTarget, Detail: map[string]any{
		"sessionId": string(sessionID), "launchPath": launchMeta.launchPath,
	}})
	return managed, nil
}

type launchMeta struct {
	launchPath            string
	launchFallbackReason  string
	attachFallback        bool
}

func (o *Orchestrator) resolvePreset(input LaunchInput, sessionID session.ID) (driver.LaunchConfig, Preset, error) {
	if input.Preset == "custom" {
		if input.Electron == nil {
			return driver.LaunchConfig{}, Preset{}, airlockerr.New(airlockerr.InvalidInput, "custom preset requires an electron config")
		}
		return driver.LaunchConfig{
			Preset:         "custom",
			ExecutablePath: input.Electron.ExecutablePath,
			EntryPath:      input.Electron.EntryPath,
			Args:           input.Electron.Args,
			Env:            input.Electron.Env,
		}, Preset{Name: "custom", RequiresDevServer: input.DevServer != nil}, nil
	}

	preset, ok := o.Presets[input.Preset]
	if !ok {
		return driver.LaunchConfig{}, Preset{}, airlockerr.Newf(airlockerr.InvalidInput, "unknown launch preset %q", input.Preset)
	}
	return preset.BuildLaunchConfig(input, sessionID), preset, nil
}

func autoDeriveAttachFallback(electron *ElectronConfig) bool {
	if electron == nil {
		return false
	}
	for _, arg := range electron.Args {
		if remoteDebugPortArg.MatchString(arg) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) spawnDevServer(ctx context.Context, cfg *DevServerConfig, diagnostics *Diagnostics) (*exec.Cmd, error) {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Stdout = lineCollectorWriter{diagnostics.Stdout}
	cmd.Stderr = lineCollectorWriter{diagnostics.Stderr}
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.LaunchFailed, "spawn dev server").WithRetriable(true)
	}
	diagnostics.Events.Record(DiagnosticEvent{Type: DiagnosticEventProcess, Detail: map[string]any{"command": cfg.Command, "pid": cmd.Process.Pid}})
	return cmd, nil
}

type lineCollectorWriter struct{ c *LineCollector }

func (w lineCollectorWriter) Write(p []byte) (int, error) { return w.c.Write(p) }

var _ io.Writer = lineCollectorWriter{}

// waitForReadiness polls the dev server's stdout/stderr collectors for a
// line matching cfg.ReadyPattern, backing off between polls via
// cenkalti/backoff while the overall deadline remains a hard context
// timeout (SPEC_FULL.md §4.6 step 4: backoff governs poll cadence only).
func (o *Orchestrator) waitForReadiness(ctx context.Context, cfg *DevServerConfig, diagnostics *Diagnostics) error {
	re, err := regexp.Compile("(?i)" + cfg.ReadyPattern)
	if err != nil {
		return airlockerr.Wrap(err, airlockerr.InvalidInput, "invalid readyPattern")
	}

	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = 10_000
	}
	deadlineCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 25 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	attempt := 0
	startedAt := time.Now()
	for {
		attempt++
		if line, ok := diagnostics.Stdout.MatchFirst(re); ok {
			return o.recordReadiness(diagnostics, attempt, startedAt, true, false, line)
		}
		if line, ok := diagnostics.Stderr.MatchFirst(re); ok {
			return o.recordReadiness(diagnostics, attempt, startedAt, true, false, line)
		}

		wait := b.NextBackOff()
		select {
		case <-deadlineCtx.Done():
			o.recordReadiness(diagnostics, attempt, startedAt, false, true, "")
			return airlockerr.New(airlockerr.LaunchFailed, "Timed out waiting for dev server readiness signal").
				WithRetriable(true).
				WithDetail("stdoutTail", diagnostics.Stdout.Tail(20)).
				WithDetail("stderrTail", diagnostics.Stderr.Tail(20)).
				WithDetail("readiness", diagnostics.Readiness.Records())
		case <-time.After(wait):
		}
	}
}

func (o *Orchestrator) recordReadiness(diagnostics *Diagnostics, attempt int, startedAt time.Time, ready, timedOut bool, detail string) error {
	finishedAt := time.Now()
	diagnostics.Readiness.Append(ReadinessRecord{
		SignalName: "dev_server_ready",
		Attempt:    attempt,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		DurationMs: finishedAt.Sub(startedAt).Milliseconds(),
		Ready:      ready,
		TimedOut:   timedOut,
		Detail:     detail,
	})
	if o.Metrics != nil {
		o.Metrics.ReadinessWaitSeconds.Observe(finishedAt.Sub(startedAt).Seconds())
	}
	return nil
}

func (o *Orchestrator) killGracefully(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(syscall.SIGTERM)
}

func (o *Orchestrator) launchOrAttach(ctx context.Context, cfg driver.LaunchConfig, attachEnabled bool, diagnostics *Diagnostics) (driver.Session, launchMeta, error) {
	driverSession, err := o.Runtime.Launch(ctx, cfg)
	if err == nil {
		return driverSession, launchMeta{launchPath: "launch"}, nil
	}

	if !attachEnabled {
		return nil, launchMeta{}, airlockerr.Wrap(err, airlockerr.LaunchFailed, "driver launch failed").
			WithRetriable(true).
			WithDetail("stderrTail", diagnostics.Stderr.Tail(20))
	}

	stderrText := strings.Join(diagnostics.Stderr.Lines(), "\n") + "\n" + err.Error()
	match := devToolsWSEndpoint.FindStringSubmatch(stderrText)
	if match == nil {
		return nil, launchMeta{}, airlockerr.Wrap(err, airlockerr.LaunchFailed, "driver launch failed").
			WithRetriable(true).
			WithDetail("stderrTail", diagnostics.Stderr.Tail(20))
	}

	wsEndpoint := match[0]
	cdpURL := fmt.Sprintf("http://%s", match[1])
	attached, attachErr := o.Runtime.Attach(ctx, driver.AttachConfig{WSEndpoint: wsEndpoint, CDPURL: cdpURL})
	if attachErr != nil {
		return nil, launchMeta{}, airlockerr.Wrap(attachErr, airlockerr.LaunchFailed, "CDP attach fallback failed").
			WithRetriable(true).
			WithDetail("originalError", err.Error())
	}

	diagnostics.Events.Record(DiagnosticEvent{Type: DiagnosticEventAttach, Detail: map[string]any{
		"wsEndpoint": wsEndpoint, "cdpUrl": cdpURL, "launchFallbackReason": err.Error(),
	}})
	if o.Metrics != nil {
		o.Metrics.AttachFallbackTotal.Inc()
	}
	return attached, launchMeta{launchPath: "cdp_attach_fallback", launchFallbackReason: err.Error(), attachFallback: true}, nil
}

func firstPrimary(windows []driver.Window) *driver.WindowID {
	for _, w := range windows {
		if w.Kind == driver.WindowKindPrimary {
			id := w.WindowID
			return &id
		}
	}
	return nil
}

func launchModeFor(preset string, attachFallback bool) session.LaunchMode {
	switch {
	case attachFallback:
		return session.LaunchModeAttached
	case preset == "custom":
		return session.LaunchModeCustom
	default:
		return session.LaunchModePreset
	}
}

// buildCleanup returns the session cleanup registered at launch: set
// state closed, close the driver session (best-effort), then terminate
// the dev-server child with the graceful signal (best-effort), in that
// order (SPEC_FULL.md §4.6 step 6).
func (o *Orchestrator) buildCleanup(managed *session.ManagedSession, cmd *exec.Cmd) session.CleanupFunc {
	return func(ctx context.Context) error {
		managed.State = session.StateClosed
		if managed.DriverSession != nil {
			_ = o.Capability.Close(ctx, managed.DriverSession)
		}
		o.killGracefully(cmd)
		return nil
	}
}
