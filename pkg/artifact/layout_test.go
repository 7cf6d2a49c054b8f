package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/session"
)

func TestTracePath_IsDeterministicPerSession(t *testing.T) {
	l := New("/artifacts")
	want := filepath.Join("/artifacts", "traces", "sess1.zip")
	assert.Equal(t, want, l.TracePath("sess1"))
	assert.Equal(t, l.TracePath("sess1"), l.TracePath(session.ID("sess1")))
}

func TestEnsureSessionDirs_CreatesExpectedLayout(t *testing.T) {
	root := t.TempDir()
	l := New(root)
	require.NoError(t, l.EnsureSessionDirs("sess1"))

	for _, dir := range []string{l.ScreenshotsDir("sess1"), l.LogsDir(), l.TracesDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
