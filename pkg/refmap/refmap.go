// Package refmap caches, per (session, window), the mapping from a
// snapshot ref to the selector descriptor that locates it in the
// underlying driver, invalidating by a monotonically increasing epoch
// (SPEC_FULL.md §4.3). It has no teacher analogue in odvcencio-buckley
// (the browser package exposes refs but no selector-priority cache);
// it is grounded on spec.md §4.3 directly and expressed in the
// idiom of the teacher's small mutex-guarded value types (e.g.
// pkg/session/identifier.go).
package refmap

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
)

// DescriptorType enumerates the kinds of selector a RefMap can produce.
type DescriptorType string

const (
	DescriptorTestID DescriptorType = "testId"
	DescriptorRole   DescriptorType = "role"
	DescriptorLabel  DescriptorType = "label"
	DescriptorText   DescriptorType = "text"
	DescriptorCSS    DescriptorType = "css"
)

// priority mirrors the fixed ordering in SPEC_FULL.md §4.3.
var priority = map[DescriptorType]int{
	DescriptorTestID: 100,
	DescriptorRole:   90,
	DescriptorLabel:  80,
	DescriptorText:   70,
	DescriptorCSS:    10,
}

// SelectorDescriptor is the resolved locator for one ref, chosen by the
// highest-priority hint available on its snapshot node.
type SelectorDescriptor struct {
	Type     DescriptorType
	Value    string
	Priority int
}

// roleAndName is the canonical JSON shape a role descriptor's Value encodes.
type roleAndName struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// RefMap is the per-(session, window) ref → SelectorDescriptor cache.
type RefMap struct {
	mu           sync.RWMutex
	entries      map[string]SelectorDescriptor
	currentEpoch int64

	// currentNodes and previousNodes retain the two most recent
	// RebuildFromSnapshot inputs so a REF_STALE error can report what
	// changed between the snapshot a stale ref was resolved against
	// and the one now current; see StaleNodes.
	currentNodes  []driver.SnapshotNode
	previousNodes []driver.SnapshotNode
}

// New returns an empty RefMap at epoch 0.
func New() *RefMap {
	return &RefMap{entries: make(map[string]SelectorDescriptor)}
}

// RebuildFromSnapshot increments currentEpoch and replaces all entries
// with descriptors derived from nodes' locator hints, per the priority
// order testId > role > label > text; a node with none of these is
// left unresolvable (absent from the map).
func (m *RefMap) RebuildFromSnapshot(nodes []driver.SnapshotNode) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentEpoch++
	entries := make(map[string]SelectorDescriptor, len(nodes))
	for _, node := range nodes {
		desc, ok := descriptorFor(node)
		if !ok {
			continue
		}
		entries[node.Ref] = desc
	}
	m.entries = entries
	m.previousNodes = m.currentNodes
	m.currentNodes = nodes
	return m.currentEpoch
}

// StaleNodes returns the node list as of the previous rebuild and the
// node list as of the current one, for diffing a REF_STALE error
// against what actually changed. Either slice may be empty if fewer
// than two rebuilds have happened yet.
func (m *RefMap) StaleNodes() (stale, current []driver.SnapshotNode) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previousNodes, m.currentNodes
}

func descriptorFor(node driver.SnapshotNode) (SelectorDescriptor, bool) {
	hints := node.LocatorHints
	if hints == nil {
		return SelectorDescriptor{}, false
	}
	switch {
	case hints.TestID != "":
		return SelectorDescriptor{Type: DescriptorTestID, Value: hints.TestID, Priority: priority[DescriptorTestID]}, true
	case hints.RoleAndName != nil:
		canonical, _ := json.Marshal(roleAndName{Role: hints.RoleAndName.Role, Name: hints.RoleAndName.Name})
		return SelectorDescriptor{Type: DescriptorRole, Value: string(canonical), Priority: priority[DescriptorRole]}, true
	case hints.Label != "":
		return SelectorDescriptor{Type: DescriptorLabel, Value: hints.Label, Priority: priority[DescriptorLabel]}, true
	case hints.TextContent != "":
		return SelectorDescriptor{Type: DescriptorText, Value: hints.TextContent, Priority: priority[DescriptorText]}, true
	default:
		return SelectorDescriptor{}, false
	}
}

// ResolveRef returns the descriptor cached for ref, if any.
func (m *RefMap) ResolveRef(ref string) (SelectorDescriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	desc, ok := m.entries[ref]
	return desc, ok
}

// Epoch returns the current rebuild epoch.
func (m *RefMap) Epoch() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentEpoch
}

// IsStale reports whether epoch is older than the map's current epoch.
func (m *RefMap) IsStale(epoch int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return epoch < m.currentEpoch
}

// ResolveRefChecked resolves ref and validates it against epoch, returning
// REF_STALE if epoch predates the current rebuild and REF_NOT_FOUND if
// the ref has no resolvable descriptor.
func (m *RefMap) ResolveRefChecked(ref string, epoch int64) (SelectorDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if epoch < m.currentEpoch {
		return SelectorDescriptor{}, airlockerr.New(airlockerr.RefStale, fmt.Sprintf("ref %q was resolved at a stale epoch", ref))
	}
	desc, ok := m.entries[ref]
	if !ok {
		return SelectorDescriptor{}, airlockerr.New(airlockerr.RefNotFound, fmt.Sprintf("ref %q not found", ref))
	}
	return desc, nil
}

// ToLocator produces the external locator string appropriate to the
// driver for a resolved descriptor.
func ToLocator(desc SelectorDescriptor) (string, error) {
	switch desc.Type {
	case DescriptorTestID:
		return fmt.Sprintf(`[data-testid="%s"]`, desc.Value), nil
	case DescriptorRole:
		var rn roleAndName
		if err := json.Unmarshal([]byte(desc.Value), &rn); err != nil {
			return "", airlockerr.Wrap(err, airlockerr.InternalError, "decode role descriptor")
		}
		return fmt.Sprintf(`role=%s[name="%s"]`, rn.Role, rn.Name), nil
	case DescriptorLabel, DescriptorText:
		return fmt.Sprintf(`text="%s"`, desc.Value), nil
	case DescriptorCSS:
		return desc.Value, nil
	default:
		return "", airlockerr.Newf(airlockerr.InternalError, "unknown descriptor type %q", desc.Type)
	}
}
