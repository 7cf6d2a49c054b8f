package launch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/artifact"
	"github.com/airlockhq/airlock/pkg/driver/memdriver"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
)

func newTestOrchestrator(t *testing.T, runtime *memdriver.Runtime) *Orchestrator {
	t.Helper()
	sessions := session.NewManager(time.Hour, nil)
	layout := artifact.New(t.TempDir())
	return NewOrchestrator(runtime, runtime, sessions, layout, policy.ModeStandard, nil)
}

func TestLaunch_ElectronDefaultNoDevServer(t *testing.T) {
	runtime := memdriver.New()
	orch := newTestOrchestrator(t, runtime)

	managed, err := orch.Launch(context.Background(), LaunchInput{
		Preset:   "electron-default",
		Electron: &ElectronConfig{ExecutablePath: "/bin/electron", EntryPath: "main.js"},
	})
	require.NoError(t, err)
	assert.Equal(t, session.StateRunning, managed.State)
	assert.Equal(t, session.LaunchModePreset, managed.LaunchMode)
	require.NotNil(t, managed.DefaultWindowID)
}

func TestLaunch_UnknownPresetRejected(t *testing.T) {
	runtime := memdriver.New()
	orch := newTestOrchestrator(t, runtime)

	_, err := orch.Launch(context.Background(), LaunchInput{Preset: "does-not-exist"})
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.InvalidInput, structured.Code)
}

func TestLaunch_DevServerTimeout_DriverLaunchNeverCalled(t *testing.T) {
	runtime := memdriver.New()
	runtime.LaunchErr = errors.New("should never be called")
	orch := newTestOrchestrator(t, runtime)

	_, err := orch.Launch(context.Background(), LaunchInput{
		Preset:   "electron-dev-server",
		Electron: &ElectronConfig{ExecutablePath: "/bin/electron"},
		DevServer: &DevServerConfig{
			Command:      "sh",
			Args:         []string{"-c", "sleep 2"},
			ReadyPattern: "ready",
			TimeoutMs:    25,
		},
	})
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.LaunchFailed, structured.Code)
	assert.Contains(t, structured.Message, "Timed out waiting for dev server readiness signal")
}

func TestLaunch_DevServerReadySignalsDriverLaunch(t *testing.T) {
	runtime := memdriver.New()
	orch := newTestOrchestrator(t, runtime)

	managed, err := orch.Launch(context.Background(), LaunchInput{
		Preset:   "electron-dev-server",
		Electron: &ElectronConfig{ExecutablePath: "/bin/electron"},
		DevServer: &DevServerConfig{
			Command:      "sh",
			Args:         []string{"-c", "echo server ready on :3000"},
			ReadyPattern: "ready",
			TimeoutMs:    2000,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, session.StateRunning, managed.State)
}

func TestLaunch_CDPAttachFallback(t *testing.T) {
	runtime := memdriver.New()
	runtime.LaunchErr = errors.New("driver launch failed")
	runtime.LaunchStderr = "DevTools listening on ws://127.0.0.1:9222/devtools/browser/abc"
	orch := newTestOrchestrator(t, runtime)

	managed, err := orch.Launch(context.Background(), LaunchInput{
		Preset: "electron-default",
		Electron: &ElectronConfig{
			ExecutablePath: "/bin/electron",
			Args:           []string{"--remote-debugging-port=9222"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, session.LaunchModeAttached, managed.LaunchMode)
}

func TestLaunch_NoAttachFallback_PropagatesLaunchFailed(t *testing.T) {
	runtime := memdriver.New()
	runtime.LaunchErr = errors.New("driver launch failed")
	orch := newTestOrchestrator(t, runtime)

	_, err := orch.Launch(context.Background(), LaunchInput{
		Preset:   "electron-default",
		Electron: &ElectronConfig{ExecutablePath: "/bin/electron"},
	})
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.LaunchFailed, structured.Code)
}

func TestLaunch_WithMetrics_RecordsOutcomeAndAttachFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	runtime := memdriver.New()
	runtime.LaunchErr = errors.New("driver launch failed")
	runtime.LaunchStderr = "DevTools listening on ws://127.0.0.1:9222/devtools/browser/abc"
	orch := newTestOrchestrator(t, runtime).WithMetrics(metrics)

	_, err := orch.Launch(context.Background(), LaunchInput{
		Preset: "electron-default",
		Electron: &ElectronConfig{
			ExecutablePath: "/bin/electron",
			Args:           []string{"--remote-debugging-port=9222"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LaunchTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.AttachFallbackTotal))
	assert.Equal(t, uint64(1), testutil.CollectAndCount(metrics.LaunchDuration))
}

func TestLaunch_WithMetrics_RecordsErrorOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	runtime := memdriver.New()
	runtime.LaunchErr = errors.New("driver launch failed")
	orch := newTestOrchestrator(t, runtime).WithMetrics(metrics)

	_, err := orch.Launch(context.Background(), LaunchInput{
		Preset:   "electron-default",
		Electron: &ElectronConfig{ExecutablePath: "/bin/electron"},
	})
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LaunchTotal.WithLabelValues("error")))
}

func TestLaunch_CleanupClosesDriverSession(t *testing.T) {
	runtime := memdriver.New()
	sessions := session.NewManager(time.Hour, nil)
	layout := artifact.New(t.TempDir())
	orch := NewOrchestrator(runtime, runtime, sessions, layout, policy.ModeStandard, nil)

	managed, err := orch.Launch(context.Background(), LaunchInput{
		Preset:   "electron-default",
		Electron: &ElectronConfig{ExecutablePath: "/bin/electron"},
	})
	require.NoError(t, err)

	require.NoError(t, managed.Cleanup(context.Background()))
	assert.True(t, runtime.Closed(managed.DriverSession))
	assert.Equal(t, session.StateClosed, managed.State)
}
