package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/policy"
)

func newManaged(id ID) *ManagedSession {
	now := time.Now()
	return &ManagedSession{
		Session: Session{
			SessionID:      id,
			State:          StateRunning,
			Mode:           policy.ModeStandard,
			LaunchMode:     LaunchModePreset,
			CreatedAt:      now,
			UpdatedAt:      now,
			LastActivityAt: now,
		},
	}
}

func TestAdd_InitializesRefMaps(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	m := newManaged("s1")
	m.RefMaps = nil
	mgr.Add(m)

	got, ok := mgr.Get("s1")
	require.True(t, ok)
	assert.NotNil(t, got.RefMaps)
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	mgr.Add(newManaged("s1"))
	mgr.Add(newManaged("s2"))
	mgr.Add(newManaged("s3"))

	list := mgr.List()
	require.Len(t, list, 3)
	assert.Equal(t, []ID{"s1", "s2", "s3"}, []ID{list[0].SessionID, list[1].SessionID, list[2].SessionID})
}

func TestGetOrThrow_UnknownSessionNotFound(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	_, err := mgr.GetOrThrow("missing")
	require.Error(t, err)
}

func TestTouch_UpdatesActivityTimestampsOnly(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	m := newManaged("s1")
	past := time.Now().Add(-time.Hour)
	m.CreatedAt = past
	m.UpdatedAt = past
	m.LastActivityAt = past
	mgr.Add(m)

	mgr.Touch("s1")
	got, _ := mgr.Get("s1")
	assert.Equal(t, past, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(past))
	assert.True(t, got.LastActivityAt.After(past))
}

func TestTouch_UnknownSessionIsNoop(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	assert.NotPanics(t, func() { mgr.Touch("missing") })
}

func TestCleanupStale_EvictsOnlyExpiredAndInvokesCleanupOnce(t *testing.T) {
	mgr := NewManager(50*time.Millisecond, nil)
	calls := 0

	stale := newManaged("stale")
	stale.LastActivityAt = time.Now().Add(-time.Hour)
	stale.Cleanup = func(ctx context.Context) error {
		calls++
		return nil
	}
	mgr.Add(stale)

	fresh := newManaged("fresh")
	mgr.Add(fresh)

	failures := mgr.CleanupStale(context.Background())
	assert.Empty(t, failures)
	assert.Equal(t, 1, calls)
	assert.False(t, mgr.Has("stale"))
	assert.True(t, mgr.Has("fresh"))
}

func TestCleanupStale_CollectsFailuresWithoutRaising(t *testing.T) {
	mgr := NewManager(time.Millisecond, nil)
	stale := newManaged("stale")
	stale.LastActivityAt = time.Now().Add(-time.Hour)
	stale.Cleanup = func(ctx context.Context) error {
		return errors.New("boom")
	}
	mgr.Add(stale)

	failures := mgr.CleanupStale(context.Background())
	require.Len(t, failures, 1)
	assert.Equal(t, ID("stale"), failures[0].SessionID)
	assert.False(t, mgr.Has("stale"))
}

func TestWrapCleanup_LatestRegisteredRunsFirstDriverCloseLast(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	m := newManaged("s1")
	mgr.Add(m)

	var order []string
	driverClose := func(ctx context.Context) error {
		order = append(order, "driverClose")
		return nil
	}
	traceCleanup := func(ctx context.Context) error {
		order = append(order, "trace")
		return nil
	}
	screenshotCleanup := func(ctx context.Context) error {
		order = append(order, "screenshot")
		return nil
	}

	mgr.WrapCleanup("s1", true, traceCleanup, driverClose)
	mgr.WrapCleanup("s1", false, screenshotCleanup, driverClose)

	got, _ := mgr.Get("s1")
	require.NoError(t, got.Cleanup(context.Background()))
	assert.Equal(t, []string{"screenshot", "trace", "driverClose"}, order)
}

func TestWrapCleanup_TraceDoubleWrapGuard(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	m := newManaged("s1")
	mgr.Add(m)

	calls := 0
	trace := func(ctx context.Context) error {
		calls++
		return nil
	}
	mgr.WrapCleanup("s1", true, trace, nil)
	mgr.WrapCleanup("s1", true, trace, nil)

	got, _ := mgr.Get("s1")
	require.NoError(t, got.Cleanup(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestReset_EvictsEveryTrackedSession(t *testing.T) {
	mgr := NewManager(time.Hour, nil)
	mgr.Add(newManaged("s1"))
	mgr.Add(newManaged("s2"))

	mgr.Reset(context.Background(), "shutdown")
	assert.Equal(t, 0, mgr.Count())
}

func TestNewID_SanitizesBaseAndIsUnique(t *testing.T) {
	id1 := NewID("My Session!!")
	id2 := NewID("My Session!!")
	assert.NotEqual(t, id1, id2)
	assert.Contains(t, string(id1), "my-session")
}
