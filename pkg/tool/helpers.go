package tool

import (
	"regexp"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/session"
)

// ResolveManagedSession looks up id in sessions, returning SESSION_NOT_FOUND
// when untracked (SPEC_FULL.md §4.5).
func ResolveManagedSession(sessions *session.Manager, id session.ID) (*session.ManagedSession, error) {
	return sessions.GetOrThrow(id)
}

// ResolveWindowOptions tunes ResolveWindow's side effects.
type ResolveWindowOptions struct {
	// SkipTrackAsInteracted opts out of the default (true) behavior of
	// recording the chosen window as lastInteractedWindowId/
	// selectedWindowId; read-only tools set this to avoid perturbing
	// selection state.
	SkipTrackAsInteracted bool
}

var likelyModalTitle = regexp.MustCompile(`(?i)(dialog|alert|modal|popup|preferences|settings|confirm|about)`)

// IsLikelyModal reports whether window looks like a transient dialog
// rather than a primary application surface (SPEC_FULL.md §4.5).
func IsLikelyModal(window driver.Window, allWindows []driver.Window) bool {
	if likelyModalTitle.MatchString(window.Title) {
		return true
	}
	if window.URL == "about:blank" {
		return true
	}
	if window.Kind == driver.WindowKindModal {
		return true
	}
	if window.Bounds == nil {
		return false
	}
	var largestW, largestH int
	for _, w := range allWindows {
		if w.Bounds == nil {
			continue
		}
		if w.Bounds.Width > largestW {
			largestW = w.Bounds.Width
		}
		if w.Bounds.Height > largestH {
			largestH = w.Bounds.Height
		}
	}
	return window.Bounds.Width < largestW && window.Bounds.Height < largestH
}

// ResolveWindow implements the seven-step window-selection heuristic
// (SPEC_FULL.md §4.5). windowID, if non-empty, short-circuits the
// heuristic: a known window is used as-is, otherwise WINDOW_NOT_FOUND.
// Returns the chosen window and the strategy name used to select it, for
// meta.diagnostics.windowSelection.
func ResolveWindow(managed *session.ManagedSession, windowID driver.WindowID, opts ResolveWindowOptions) (driver.Window, string, error) {
	windows := managed.Windows
	byID := make(map[driver.WindowID]driver.Window, len(windows))
	for _, w := range windows {
		byID[w.WindowID] = w
	}

	if windowID != "" {
		w, ok := byID[windowID]
		if !ok {
			return driver.Window{}, "", airlockerr.Newf(airlockerr.WindowNotFound, "window %q not found", windowID)
		}
		return finishResolve(managed, w, "explicit", opts)
	}

	if managed.DefaultWindowID != nil {
		if w, ok := byID[*managed.DefaultWindowID]; ok {
			return finishResolve(managed, w, "defaultWindowId", opts)
		}
	}

	for _, w := range windows {
		if IsLikelyModal(w, windows) {
			return finishResolve(managed, w, "likelyModal", opts)
		}
	}

	if managed.LastInteractedWindowID != nil {
		if w, ok := byID[*managed.LastInteractedWindowID]; ok {
			return finishResolve(managed, w, "lastInteractedWindowId", opts)
		}
	}

	for _, w := range windows {
		if w.Focused && w.Kind == driver.WindowKindPrimary {
			return finishResolve(managed, w, "focusedPrimary", opts)
		}
	}

	if managed.SelectedWindowID != nil {
		if w, ok := byID[*managed.SelectedWindowID]; ok {
			return finishResolve(managed, w, "selectedWindowId", opts)
		}
	}

	for _, w := range windows {
		if w.Kind != driver.WindowKindDevtools {
			return finishResolve(managed, w, "firstNonDevtools", opts)
		}
	}

	if len(windows) > 0 {
		return finishResolve(managed, windows[0], "firstWindow", opts)
	}

	return driver.Window{}, "", airlockerr.New(airlockerr.WindowNotFound, "session has no windows")
}

func finishResolve(managed *session.ManagedSession, w driver.Window, strategy string, opts ResolveWindowOptions) (driver.Window, string, error) {
	if !opts.SkipTrackAsInteracted {
		id := w.WindowID
		managed.LastInteractedWindowID = &id
		managed.SelectedWindowID = &id
	}
	return w, strategy, nil
}
