package refmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
)

func roleHint(role, name string) *driver.LocatorHints {
	return &driver.LocatorHints{RoleAndName: &struct {
		Role string `json:"role"`
		Name string `json:"name"`
	}{Role: role, Name: name}}
}

func TestRebuildFromSnapshot_EpochMonotonicity(t *testing.T) {
	m := New()
	nodes := []driver.SnapshotNode{
		{Ref: "e1", Role: "button", Name: "Save", LocatorHints: roleHint("button", "Save")},
	}

	epoch1 := m.RebuildFromSnapshot(nodes)
	assert.Equal(t, int64(1), epoch1)
	assert.True(t, m.IsStale(0))
	assert.False(t, m.IsStale(1))

	epoch2 := m.RebuildFromSnapshot(nodes)
	assert.Equal(t, int64(2), epoch2)
	assert.True(t, m.IsStale(1))
	assert.False(t, m.IsStale(2))
}

func TestDescriptorPriority_TestIDWins(t *testing.T) {
	m := New()
	nodes := []driver.SnapshotNode{
		{Ref: "e1", LocatorHints: &driver.LocatorHints{
			TestID:      "save-button",
			Label:       "Save",
			TextContent: "Save",
		}},
	}
	m.RebuildFromSnapshot(nodes)
	desc, ok := m.ResolveRef("e1")
	require.True(t, ok)
	assert.Equal(t, DescriptorTestID, desc.Type)
	assert.Equal(t, "save-button", desc.Value)
	assert.Equal(t, 100, desc.Priority)
}

func TestDescriptorPriority_RoleBeatsLabelAndText(t *testing.T) {
	m := New()
	nodes := []driver.SnapshotNode{
		{Ref: "e1", LocatorHints: &driver.LocatorHints{
			RoleAndName: roleHint("button", "Save").RoleAndName,
			Label:       "Save button",
			TextContent: "Save",
		}},
	}
	m.RebuildFromSnapshot(nodes)
	desc, ok := m.ResolveRef("e1")
	require.True(t, ok)
	assert.Equal(t, DescriptorRole, desc.Type)
	assert.JSONEq(t, `{"role":"button","name":"Save"}`, desc.Value)
}

func TestDescriptorPriority_LabelBeatsText(t *testing.T) {
	m := New()
	nodes := []driver.SnapshotNode{
		{Ref: "e1", LocatorHints: &driver.LocatorHints{Label: "Email", TextContent: "Email address"}},
	}
	m.RebuildFromSnapshot(nodes)
	desc, ok := m.ResolveRef("e1")
	require.True(t, ok)
	assert.Equal(t, DescriptorLabel, desc.Type)
	assert.Equal(t, "Email", desc.Value)
}

func TestDescriptorPriority_TextFallback(t *testing.T) {
	m := New()
	nodes := []driver.SnapshotNode{
		{Ref: "e1", LocatorHints: &driver.LocatorHints{TextContent: "Click here"}},
	}
	m.RebuildFromSnapshot(nodes)
	desc, ok := m.ResolveRef("e1")
	require.True(t, ok)
	assert.Equal(t, DescriptorText, desc.Type)
}

func TestNode_WithNoHints_Unresolvable(t *testing.T) {
	m := New()
	nodes := []driver.SnapshotNode{{Ref: "e1", Role: "generic"}}
	m.RebuildFromSnapshot(nodes)
	_, ok := m.ResolveRef("e1")
	assert.False(t, ok)
}

func TestResolveRefChecked_StaleEpoch(t *testing.T) {
	m := New()
	nodes := []driver.SnapshotNode{{Ref: "e1", LocatorHints: &driver.LocatorHints{Label: "Save"}}}
	epoch := m.RebuildFromSnapshot(nodes)
	m.RebuildFromSnapshot(nodes)

	_, err := m.ResolveRefChecked("e1", epoch)
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.RefStale, structured.Code)
}

func TestResolveRefChecked_NotFound(t *testing.T) {
	m := New()
	epoch := m.RebuildFromSnapshot(nil)
	_, err := m.ResolveRefChecked("missing", epoch)
	require.Error(t, err)
	structured, ok := airlockerr.As(err)
	require.True(t, ok)
	assert.Equal(t, airlockerr.RefNotFound, structured.Code)
}

func TestStaleNodes_TracksPreviousAndCurrentRebuild(t *testing.T) {
	m := New()
	first := []driver.SnapshotNode{{Ref: "e1", Role: "button"}}
	second := []driver.SnapshotNode{{Ref: "e2", Role: "button"}}

	m.RebuildFromSnapshot(first)
	stale, current := m.StaleNodes()
	assert.Empty(t, stale)
	assert.Equal(t, first, current)

	m.RebuildFromSnapshot(second)
	stale, current = m.StaleNodes()
	assert.Equal(t, first, stale)
	assert.Equal(t, second, current)
}

func TestToLocator(t *testing.T) {
	cases := []struct {
		desc SelectorDescriptor
		want string
	}{
		{SelectorDescriptor{Type: DescriptorTestID, Value: "save-btn"}, `[data-testid="save-btn"]`},
		{SelectorDescriptor{Type: DescriptorRole, Value: `{"role":"button","name":"Save"}`}, `role=button[name="Save"]`},
		{SelectorDescriptor{Type: DescriptorLabel, Value: "Email"}, `text="Email"`},
		{SelectorDescriptor{Type: DescriptorText, Value: "Click here"}, `text="Click here"`},
		{SelectorDescriptor{Type: DescriptorCSS, Value: "#save"}, "#save"},
	}
	for _, tc := range cases {
		got, err := ToLocator(tc.desc)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}
