// Package session tracks the lifecycle of automated driver instances:
// the externally visible Session and the richer internal
// ManagedSession, plus the Manager that owns them (SPEC_FULL.md §4.4).
// Grounded on the teacher's session package for ID generation idiom
// (ulid-based, sanitized base name) and on pkg/browser/manager.go for
// the map-plus-mutex manager shape, adapted to this spec's explicit
// insertion-order listing and LIFO cleanup-hook composition.
package session

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/logging"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/refmap"
)

// ID is a branded session identifier.
type ID string

// State is the lifecycle state of a Session.
type State string

const (
	StateLaunching State = "launching"
	StateRunning   State = "running"
	StateClosed    State = "closed"
	StateError     State = "error"
)

// LaunchMode records how a session's driver instance came to exist.
type LaunchMode string

const (
	LaunchModePreset   LaunchMode = "preset"
	LaunchModeCustom   LaunchMode = "custom"
	LaunchModeAttached LaunchMode = "attached"
)

// TraceState tracks an in-progress or completed trace recording.
type TraceState struct {
	Active    bool
	TracePath string
}

// Session is the externally visible record of one tracked instance.
type Session struct {
	SessionID        ID
	State            State
	Mode             policy.Mode
	LaunchMode       LaunchMode
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastActivityAt   time.Time
	ArtifactDir      string
	SelectedWindowID *driver.WindowID
	TraceState       *TraceState
	Windows          []driver.Window
}

// CleanupFunc releases the resources associated with a session.
type CleanupFunc func(ctx context.Context) error

// ManagedSession is the internal record the Manager owns: a Session
// plus driver/ref-map plumbing invisible to tool callers.
type ManagedSession struct {
	Session

	DriverSession              driver.Session
	DefaultWindowID            *driver.WindowID
	LastInteractedWindowID     *driver.WindowID
	LastFocusedPrimaryWindowID *driver.WindowID
	RefMaps                    map[driver.WindowID]*refmap.RefMap
	Cleanup                    CleanupFunc
	TraceCleanupWrapped        bool
}

// Summary is the reduced view returned by ListSummaries.
type Summary struct {
	SessionID ID
	State     State
	Mode      policy.Mode
	CreatedAt time.Time
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9\-]`)
var ulidEntropy = ulid.Monotonic(cryptorand.Reader, 0)

// NewID generates a unique session ID from a base name, in the
// teacher's "sanitized-base + lowercase ulid" idiom.
func NewID(base string) ID {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "session"
	}
	base = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	base = idSanitizer.ReplaceAllString(base, "")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "session"
	}
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
	return ID(fmt.Sprintf("%s-%s", base, strings.ToLower(id)))
}

// Manager owns every tracked ManagedSession, evicting by TTL.
type Manager struct {
	mu      sync.Mutex
	ttl     time.Duration
	order   []ID
	entries map[ID]*ManagedSession
	logger  *logging.Logger
	now     func() time.Time
}

// NewManager constructs a Manager with the given eviction TTL.
func NewManager(ttl time.Duration, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		ttl:     ttl,
		entries: make(map[ID]*ManagedSession),
		logger:  logger,
		now:     time.Now,
	}
}

// Add inserts m, initializing RefMaps if absent, and records insertion order.
func (mgr *Manager) Add(m *ManagedSession) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if m.RefMaps == nil {
		m.RefMaps = make(map[driver.WindowID]*refmap.RefMap)
	}
	if _, exists := mgr.entries[m.SessionID]; !exists {
		mgr.order = append(mgr.order, m.SessionID)
	}
	mgr.entries[m.SessionID] = m
}

// Get returns the managed session for id, if tracked.
func (mgr *Manager) Get(id ID) (*ManagedSession, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.entries[id]
	return m, ok
}

// GetOrThrow returns the managed session for id or a SESSION_NOT_FOUND error.
func (mgr *Manager) GetOrThrow(id ID) (*ManagedSession, error) {
	m, ok := mgr.Get(id)
	if !ok {
		return nil, airlockerr.Newf(airlockerr.SessionNotFound, "session %q not found", id)
	}
	return m, nil
}

// Has reports whether id is tracked.
func (mgr *Manager) Has(id ID) bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	_, ok := mgr.entries[id]
	return ok
}

// Remove drops id from the manager without invoking its cleanup.
func (mgr *Manager) Remove(id ID) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.removeLocked(id)
}

func (mgr *Manager) removeLocked(id ID) {
	delete(mgr.entries, id)
	for i, oid := range mgr.order {
		if oid == id {
			mgr.order = append(mgr.order[:i], mgr.order[i+1:]...)
			break
		}
	}
}

// Count returns the number of tracked sessions.
func (mgr *Manager) Count() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return len(mgr.entries)
}

// List returns tracked sessions in insertion order.
func (mgr *Manager) List() []*ManagedSession {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	out := make([]*ManagedSession, 0, len(mgr.order))
	for _, id := range mgr.order {
		out = append(out, mgr.entries[id])
	}
	return out
}

// ListSummaries returns reduced summaries in insertion order.
func (mgr *Manager) ListSummaries() []Summary {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	out := make([]Summary, 0, len(mgr.order))
	for _, id := range mgr.order {
		m := mgr.entries[id]
		out = append(out, Summary{SessionID: m.SessionID, State: m.State, Mode: m.Mode, CreatedAt: m.CreatedAt})
	}
	return out
}

// Touch updates updatedAt/lastActivityAt to now; a no-op if id is unknown.
func (mgr *Manager) Touch(id ID) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.entries[id]
	if !ok {
		return
	}
	now := mgr.now()
	m.UpdatedAt = now
	m.LastActivityAt = now
}

// SetTraceState installs the trace state for id; a no-op if id is unknown.
func (mgr *Manager) SetTraceState(id ID, state *TraceState) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.entries[id]
	if !ok {
		return
	}
	m.TraceState = state
}

// SetRefMap installs rm as the ref map for (id, windowID).
func (mgr *Manager) SetRefMap(id ID, windowID driver.WindowID, rm *refmap.RefMap) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.entries[id]
	if !ok {
		return
	}
	if m.RefMaps == nil {
		m.RefMaps = make(map[driver.WindowID]*refmap.RefMap)
	}
	m.RefMaps[windowID] = rm
}

// GetRefMap returns the ref map for (id, windowID), if any.
func (mgr *Manager) GetRefMap(id ID, windowID driver.WindowID) (*refmap.RefMap, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.entries[id]
	if !ok {
		return nil, false
	}
	rm, ok := m.RefMaps[windowID]
	return rm, ok
}

// ClearRefMaps drops every ref map tracked for id.
func (mgr *Manager) ClearRefMaps(id ID) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.entries[id]
	if !ok {
		return
	}
	m.RefMaps = make(map[driver.WindowID]*refmap.RefMap)
}

// WrapCleanup installs a new cleanup for id that runs fn then delegates to
// the previously installed cleanup (falling back to driverClose when none
// exists), guarding against double-wrapping with traceCleanupWrapped when
// wrapTrace is true. Ordering guarantee: the most recently registered
// cleanup runs first; driverClose always runs last.
func (mgr *Manager) WrapCleanup(id ID, wrapTrace bool, fn CleanupFunc, driverClose CleanupFunc) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.entries[id]
	if !ok {
		return
	}
	if wrapTrace && m.TraceCleanupWrapped {
		return
	}
	prior := m.Cleanup
	if prior == nil {
		prior = driverClose
	}
	m.Cleanup = func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		if prior == nil {
			return nil
		}
		return prior(ctx)
	}
	if wrapTrace {
		m.TraceCleanupWrapped = true
	}
}

// CleanupFailure records one session's cleanup error during a bulk sweep.
type CleanupFailure struct {
	SessionID ID
	Err       *airlockerr.Error
}

// CleanupStale evicts every session whose lastActivityAt is older than the
// manager's TTL, invoking cleanup (if any) before removal. Per-session
// cleanup failures are collected rather than raised.
func (mgr *Manager) CleanupStale(ctx context.Context) []CleanupFailure {
	return mgr.sweep(ctx, func(m *ManagedSession, now time.Time) bool {
		return now.Sub(m.LastActivityAt) > mgr.ttl
	})
}

// Reset evicts every tracked session regardless of TTL, invoking cleanup
// (if any) before removal. reason is logged once, after every session
// has been evicted.
func (mgr *Manager) Reset(ctx context.Context, reason string) []CleanupFailure {
	failures := mgr.sweep(ctx, func(*ManagedSession, time.Time) bool { return true })
	mgr.logger.Info(logging.CategorySession, "session manager reset", map[string]any{"reason": reason})
	return failures
}

func (mgr *Manager) sweep(ctx context.Context, shouldEvict func(*ManagedSession, time.Time) bool) []CleanupFailure {
	mgr.mu.Lock()
	now := mgr.now()
	var toEvict []*ManagedSession
	for _, id := range mgr.order {
		m := mgr.entries[id]
		if shouldEvict(m, now) {
			toEvict = append(toEvict, m)
		}
	}
	mgr.mu.Unlock()

	var failures []CleanupFailure
	for _, m := range toEvict {
		if m.Cleanup != nil {
			if err := m.Cleanup(ctx); err != nil {
				structured := airlockerr.Wrap(err, airlockerr.InternalError, "session cleanup failed")
				failures = append(failures, CleanupFailure{SessionID: m.SessionID, Err: structured})
				mgr.logger.Error(logging.CategorySession, "session cleanup failed", map[string]any{
					"sessionId": string(m.SessionID), "error": err.Error(),
				})
			}
		}
		mgr.mu.Lock()
		mgr.removeLocked(m.SessionID)
		mgr.mu.Unlock()
	}
	return failures
}
