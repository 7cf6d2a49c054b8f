// Package artifact is the thin filesystem-layout helper for the
// artifact root (SPEC_FULL.md §6.4): per-session screenshot
// directories under <root>/artifacts/<sessionId>, plus a shared logs
// directory and deterministic trace paths under <root>. Artifact directory creation is explicitly an external
// collaborator's concern per the system's out-of-scope list, so this
// package only computes paths and ensures directories exist — it
// never interprets artifact contents. Grounded on the teacher's
// sandbox path-join helpers for the "join, clean, never trust caller
// escaping the root" idiom.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airlockhq/airlock/pkg/session"
)

// Layout resolves the on-disk paths for one artifact root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root.
func New(root string) Layout {
	return Layout{Root: root}
}

// SessionDir returns <root>/artifacts/<sessionId>.
func (l Layout) SessionDir(id session.ID) string {
	return filepath.Join(l.Root, "artifacts", string(id))
}

// ScreenshotsDir returns <root>/artifacts/<sessionId>/screenshots.
func (l Layout) ScreenshotsDir(id session.ID) string {
	return filepath.Join(l.SessionDir(id), "screenshots")
}

// ScreenshotPath returns ScreenshotsDir(id) joined with name; the caller
// chooses the file name (no timestamp is added here).
func (l Layout) ScreenshotPath(id session.ID, name string) string {
	return filepath.Join(l.ScreenshotsDir(id), name)
}

// LogsDir returns <root>/logs.
func (l Layout) LogsDir() string {
	return filepath.Join(l.Root, "logs")
}

// TracesDir returns <root>/traces.
func (l Layout) TracesDir() string {
	return filepath.Join(l.Root, "traces")
}

// TracePath returns the deterministic trace archive path for a session:
// <root>/traces/<sessionId>.zip.
func (l Layout) TracePath(id session.ID) string {
	return filepath.Join(l.TracesDir(), fmt.Sprintf("%s.zip", id))
}

// EnsureSessionDirs creates the screenshots, logs, and traces
// directories for id, idempotently.
func (l Layout) EnsureSessionDirs(id session.ID) error {
	for _, dir := range []string{l.ScreenshotsDir(id), l.LogsDir(), l.TracesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact directory %q: %w", dir, err)
		}
	}
	return nil
}
