package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

func TestResolve_ModeDowngrade(t *testing.T) {
	file := &FilePolicy{
		Version:        1,
		Mode:           "safe",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	resolved, err := Resolve(ModeTrusted, file, "/tmp/artifacts")
	require.NoError(t, err)
	assert.Equal(t, ModeSafe, resolved.Mode)
	assert.Equal(t, []string{"http://localhost:3000"}, resolved.AllowedOrigins)
}

func TestResolve_OriginRejection(t *testing.T) {
	file := &FilePolicy{
		Version:        1,
		Mode:           "safe",
		AllowedOrigins: []string{"https://example.com"},
	}
	_, err := Resolve(ModeTrusted, file, "/tmp/artifacts")
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.PolicyViolation, structured.Code)
}

func TestResolve_TTLCap(t *testing.T) {
	file := &FilePolicy{
		Version:         1,
		MaxSessionTTLMs: int64(3_600_000),
	}
	_, err := Resolve(ModeSafe, file, "/tmp/artifacts")
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.PolicyViolation, structured.Code)
}

func TestResolve_NoFilePolicyUsesModeDefaults(t *testing.T) {
	resolved, err := Resolve(ModeStandard, nil, "/tmp/artifacts")
	require.NoError(t, err)
	assert.Equal(t, ModeStandard, resolved.Mode)
	assert.Equal(t, 2*time.Hour, resolved.MaxSessionTTL)
	assert.Contains(t, resolved.AllowedOrigins, "file://")
}

func TestResolve_DedupePreservesFirstSeenOrder(t *testing.T) {
	file := &FilePolicy{
		Version: 1,
		Tools: ToolPolicy{
			Disabled: []string{"a", "b", "a", "c", "b"},
		},
	}
	resolved, err := Resolve(ModeTrusted, file, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, resolved.Tools.Disabled)
}

func TestResolve_InvalidRedactionPattern(t *testing.T) {
	file := &FilePolicy{
		Version:           1,
		RedactionPatterns: []string{"("},
	}
	_, err := Resolve(ModeTrusted, file, "")
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.InvalidInput, structured.Code)
}

func TestOriginAdmissible(t *testing.T) {
	cases := []struct {
		mode   Mode
		origin string
		want   bool
	}{
		{ModeSafe, "http://localhost:5173", true},
		{ModeSafe, "file:///tmp", false},
		{ModeStandard, "file:///tmp", true},
		{ModeStandard, "https://example.com", false},
		{ModeTrusted, "https://example.com", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, originAdmissible(tc.mode, tc.origin), "%v %s", tc.mode, tc.origin)
	}
}

func TestShouldRequireConfirmation_ConfirmToolExempt(t *testing.T) {
	p := &ResolvedPolicy{Tools: ToolPolicy{RequireConfirmation: []string{"confirm", "close_window"}}}
	assert.False(t, p.ShouldRequireConfirmation("confirm"))
	assert.True(t, p.ShouldRequireConfirmation("close_window"))
	assert.False(t, p.ShouldRequireConfirmation("navigate"))
}
