package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/session"
)

func windowed(windows ...driver.Window) *session.ManagedSession {
	return &session.ManagedSession{
		Session: session.Session{SessionID: "s1", Windows: windows},
	}
}

func TestIsLikelyModal_TitleMatch(t *testing.T) {
	w := driver.Window{Title: "Confirm deletion"}
	assert.True(t, IsLikelyModal(w, []driver.Window{w}))
}

func TestIsLikelyModal_AboutBlank(t *testing.T) {
	w := driver.Window{URL: "about:blank"}
	assert.True(t, IsLikelyModal(w, []driver.Window{w}))
}

func TestIsLikelyModal_ExplicitKind(t *testing.T) {
	w := driver.Window{Kind: driver.WindowKindModal}
	assert.True(t, IsLikelyModal(w, []driver.Window{w}))
}

func TestIsLikelyModal_SmallerThanLargest(t *testing.T) {
	big := driver.Window{WindowID: "big", Bounds: &driver.Bounds{Width: 1200, Height: 900}}
	small := driver.Window{WindowID: "small", Bounds: &driver.Bounds{Width: 400, Height: 300}}
	assert.True(t, IsLikelyModal(small, []driver.Window{big, small}))
	assert.False(t, IsLikelyModal(big, []driver.Window{big, small}))
}

func TestIsLikelyModal_PlainPrimaryWindowIsNotModal(t *testing.T) {
	w := driver.Window{Title: "My App", Kind: driver.WindowKindPrimary, Bounds: &driver.Bounds{Width: 1200, Height: 900}}
	assert.False(t, IsLikelyModal(w, []driver.Window{w}))
}

func TestResolveWindow_ExplicitIDKnown(t *testing.T) {
	w := driver.Window{WindowID: "w1"}
	m := windowed(w)
	got, strategy, err := ResolveWindow(m, "w1", ResolveWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "explicit", strategy)
	assert.Equal(t, driver.WindowID("w1"), got.WindowID)
}

func TestResolveWindow_ExplicitIDUnknown(t *testing.T) {
	m := windowed(driver.Window{WindowID: "w1"})
	_, _, err := ResolveWindow(m, "ghost", ResolveWindowOptions{})
	require.Error(t, err)
}

func TestResolveWindow_DefaultWindowIDWins(t *testing.T) {
	w1 := driver.Window{WindowID: "w1"}
	w2 := driver.Window{WindowID: "w2"}
	m := windowed(w1, w2)
	id := driver.WindowID("w2")
	m.DefaultWindowID = &id
	_, strategy, err := ResolveWindow(m, "", ResolveWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "defaultWindowId", strategy)
}

func TestResolveWindow_LikelyModalBeforeLastInteracted(t *testing.T) {
	primary := driver.Window{WindowID: "main", Kind: driver.WindowKindPrimary}
	modal := driver.Window{WindowID: "dlg", Title: "Confirm action"}
	m := windowed(primary, modal)
	lastID := driver.WindowID("main")
	m.LastInteractedWindowID = &lastID
	got, strategy, err := ResolveWindow(m, "", ResolveWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "likelyModal", strategy)
	assert.Equal(t, driver.WindowID("dlg"), got.WindowID)
}

func TestResolveWindow_LastInteractedWhenNoModal(t *testing.T) {
	w1 := driver.Window{WindowID: "w1", Kind: driver.WindowKindPrimary}
	w2 := driver.Window{WindowID: "w2", Kind: driver.WindowKindPrimary}
	m := windowed(w1, w2)
	id := driver.WindowID("w2")
	m.LastInteractedWindowID = &id
	_, strategy, err := ResolveWindow(m, "", ResolveWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "lastInteractedWindowId", strategy)
}

func TestResolveWindow_FocusedPrimaryFallback(t *testing.T) {
	w1 := driver.Window{WindowID: "w1", Kind: driver.WindowKindPrimary, Focused: false}
	w2 := driver.Window{WindowID: "w2", Kind: driver.WindowKindPrimary, Focused: true}
	m := windowed(w1, w2)
	_, strategy, err := ResolveWindow(m, "", ResolveWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "focusedPrimary", strategy)
}

func TestResolveWindow_FirstNonDevtoolsFallback(t *testing.T) {
	devtools := driver.Window{WindowID: "dt", Kind: driver.WindowKindDevtools}
	other := driver.Window{WindowID: "other", Kind: driver.WindowKindUtility}
	m := windowed(devtools, other)
	got, strategy, err := ResolveWindow(m, "", ResolveWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "firstNonDevtools", strategy)
	assert.Equal(t, driver.WindowID("other"), got.WindowID)
}

func TestResolveWindow_OnlyDevtoolsFallsBackToFirstWindow(t *testing.T) {
	devtools := driver.Window{WindowID: "dt", Kind: driver.WindowKindDevtools}
	m := windowed(devtools)
	got, strategy, err := ResolveWindow(m, "", ResolveWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "firstWindow", strategy)
	assert.Equal(t, driver.WindowID("dt"), got.WindowID)
}

func TestResolveWindow_NoWindowsIsWindowNotFound(t *testing.T) {
	m := windowed()
	_, _, err := ResolveWindow(m, "", ResolveWindowOptions{})
	require.Error(t, err)
}

func TestResolveWindow_TracksAsInteractedByDefault(t *testing.T) {
	w := driver.Window{WindowID: "w1", Kind: driver.WindowKindPrimary}
	m := windowed(w)
	_, _, err := ResolveWindow(m, "w1", ResolveWindowOptions{})
	require.NoError(t, err)
	require.NotNil(t, m.LastInteractedWindowID)
	assert.Equal(t, driver.WindowID("w1"), *m.LastInteractedWindowID)
	require.NotNil(t, m.SelectedWindowID)
}

func TestResolveWindow_SkipTrackAsInteracted(t *testing.T) {
	w := driver.Window{WindowID: "w1", Kind: driver.WindowKindPrimary}
	m := windowed(w)
	_, _, err := ResolveWindow(m, "w1", ResolveWindowOptions{SkipTrackAsInteracted: true})
	require.NoError(t, err)
	assert.Nil(t, m.LastInteractedWindowID)
}
