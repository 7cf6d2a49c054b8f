// Package memdriver is an in-memory fake of the driver.Runtime and
// driver.Capability ports, used by the tests of pkg/launch and
// pkg/tool/handlers instead of exercising a real renderer
// host. It is grounded on the teacher's servo adapter's shape
// (Runtime.NewSession / per-session methods) but backed by plain
// maps instead of a subprocess and a wire codec.
package memdriver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airlockhq/airlock/pkg/driver"
)

// Session is the fake driver.Session handle.
type Session struct {
	id string
}

// ID implements driver.Session.
func (s *Session) ID() string { return s.id }

// Runtime is an in-memory driver.Runtime.
type Runtime struct {
	mu       sync.Mutex
	sessions map[string]*sessionState

	// LaunchErr, when set, is returned by Launch for every call — used
	// to exercise the CDP attach fallback path deterministically.
	LaunchErr error
	// LaunchStderr is attached to LaunchErr's context for the
	// orchestrator's attach-fallback stderr scan.
	LaunchStderr string
}

type sessionState struct {
	windows  []driver.Window
	closed   bool
	tracing  bool
	tracedTo string
}

// New creates an empty in-memory runtime.
func New() *Runtime {
	return &Runtime{sessions: make(map[string]*sessionState)}
}

// Launch implements driver.Runtime. When LaunchErr is set it is
// returned verbatim except that LaunchStderr, if also set, is appended
// to the error text — exercising the orchestrator's CDP attach
// fallback scan, which treats the launch error's message as the
// driver's captured stderr (the driver process itself is opaque, so
// its stderr has no other channel into this package).
func (r *Runtime) Launch(ctx context.Context, cfg driver.LaunchConfig) (driver.Session, error) {
	if r.LaunchErr != nil {
		if r.LaunchStderr != "" {
			return nil, fmt.Errorf("%w\nstderr: %s", r.LaunchErr, r.LaunchStderr)
		}
		return nil, r.LaunchErr
	}
	return r.newSession(), nil
}

// Attach implements driver.Runtime.
func (r *Runtime) Attach(ctx context.Context, cfg driver.AttachConfig) (driver.Session, error) {
	return r.newSession(), nil
}

func (r *Runtime) newSession() driver.Session {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionState{
		windows: []driver.Window{
			{
				WindowID:   "win-main",
				Title:      "Main Window",
				Kind:       driver.WindowKindPrimary,
				Focused:    true,
				Visible:    true,
				LastSeenAt: time.Now(),
			},
		},
	}
	return &Session{id: id}
}

func (r *Runtime) state(session driver.Session) (*sessionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[session.ID()]
	if !ok {
		return nil, fmt.Errorf("unknown driver session %q", session.ID())
	}
	return st, nil
}

// SetWindows overrides the fake windows reported for a session — test helper.
func (r *Runtime) SetWindows(session driver.Session, windows []driver.Window) {
	st, err := r.state(session)
	if err != nil {
		return
	}
	r.mu.Lock()
	st.windows = windows
	r.mu.Unlock()
}

// GetWindows implements driver.Capability.
func (r *Runtime) GetWindows(ctx context.Context, session driver.Session) ([]driver.Window, error) {
	st, err := r.state(session)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]driver.Window, len(st.windows))
	copy(out, st.windows)
	return out, nil
}

// GetSnapshot implements driver.Capability with an empty snapshot by default.
func (r *Runtime) GetSnapshot(ctx context.Context, session driver.Session, windowID driver.WindowID) (*driver.RawSnapshot, error) {
	if _, err := r.state(session); err != nil {
		return nil, err
	}
	return &driver.RawSnapshot{Version: time.Now().UnixNano(), CreatedAt: time.Now()}, nil
}

// PerformAction implements driver.Capability as a no-op success.
func (r *Runtime) PerformAction(ctx context.Context, session driver.Session, windowID driver.WindowID, action driver.ActionDescriptor) error {
	_, err := r.state(session)
	return err
}

// Screenshot implements driver.Capability, returning an empty PNG-ish payload.
func (r *Runtime) Screenshot(ctx context.Context, session driver.Session, windowID driver.WindowID) ([]byte, error) {
	if _, err := r.state(session); err != nil {
		return nil, err
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

// GetConsoleLogs implements driver.Capability with an empty slice.
func (r *Runtime) GetConsoleLogs(ctx context.Context, session driver.Session, windowID driver.WindowID) ([]driver.ConsoleLogEntry, error) {
	if _, err := r.state(session); err != nil {
		return nil, err
	}
	return nil, nil
}

// GetNetworkLogs implements driver.Capability with an empty slice.
func (r *Runtime) GetNetworkLogs(ctx context.Context, session driver.Session, windowID driver.WindowID) ([]driver.NetworkLogEntry, error) {
	if _, err := r.state(session); err != nil {
		return nil, err
	}
	return nil, nil
}

// StartTracing implements driver.Capability.
func (r *Runtime) StartTracing(ctx context.Context, session driver.Session) error {
	st, err := r.state(session)
	if err != nil {
		return err
	}
	r.mu.Lock()
	st.tracing = true
	r.mu.Unlock()
	return nil
}

// StopTracing implements driver.Capability.
func (r *Runtime) StopTracing(ctx context.Context, session driver.Session, path string) error {
	st, err := r.state(session)
	if err != nil {
		return err
	}
	r.mu.Lock()
	st.tracing = false
	st.tracedTo = path
	r.mu.Unlock()
	return nil
}

// Close implements driver.Capability.
func (r *Runtime) Close(ctx context.Context, session driver.Session) error {
	st, err := r.state(session)
	if err != nil {
		return err
	}
	r.mu.Lock()
	st.closed = true
	r.mu.Unlock()
	return nil
}

// FocusWindow implements driver.Capability.
func (r *Runtime) FocusWindow(ctx context.Context, session driver.Session, windowID driver.WindowID) error {
	st, err := r.state(session)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range st.windows {
		st.windows[i].Focused = st.windows[i].WindowID == windowID
	}
	return nil
}

// Closed reports whether Close has been called for session — test helper.
func (r *Runtime) Closed(session driver.Session) bool {
	st, err := r.state(session)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return st.closed
}
