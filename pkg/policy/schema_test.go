package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeTempFile(t, "policy.json", `{"version":1,"mode":"standard","maxSnapshotNodes":500}`)
	file, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "standard", file.Mode)
	assert.Equal(t, 500, file.MaxSnapshotNodes)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeTempFile(t, "policy.yaml", "version: 1\nmode: trusted\ntools:\n  disabled:\n    - dangerous_tool\n")
	file, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "trusted", file.Mode)
	assert.Equal(t, []string{"dangerous_tool"}, file.Tools.Disabled)
}

func TestLoadFile_UnknownFieldRejected(t *testing.T) {
	path := writeTempFile(t, "policy.json", `{"version":1,"bogusField":true}`)
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "policy.toml", "version = 1")
	_, err := LoadFile(path)
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.InvalidInput, structured.Code)
	assert.Contains(t, structured.Message, "supported")
}

func TestLoadFile_WrongVersionRejected(t *testing.T) {
	path := writeTempFile(t, "policy.json", `{"version":2}`)
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadLiteral_InvalidRedactionPatternRejectedAtLoad(t *testing.T) {
	_, err := LoadLiteral(FilePolicy{Version: 1, RedactionPatterns: []string{"[invalid"}})
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.InvalidInput, structured.Code)
}
