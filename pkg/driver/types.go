// Package driver defines the opaque automation-driver capability
// consumed by the tool-execution runtime (SPEC_FULL.md §6.5). The
// driver itself is an external collaborator — this package only
// carries the port (interface) and the value types that cross it,
// following the teacher's pkg/browser port-and-adapter split
// (Runtime/BrowserSession there, Runtime/Capability here).
package driver

import (
	"context"
	"time"
)

// WindowID identifies a window surface within a driver session.
type WindowID string

// WindowKind classifies a window for selection heuristics.
type WindowKind string

const (
	WindowKindPrimary  WindowKind = "primary"
	WindowKindModal    WindowKind = "modal"
	WindowKindDevtools WindowKind = "devtools"
	WindowKindUtility  WindowKind = "utility"
	WindowKindUnknown  WindowKind = "unknown"
)

// Bounds describes a window's on-screen rectangle, when known.
type Bounds struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window describes a single window surface reported by the driver.
type Window struct {
	WindowID   WindowID   `json:"windowId"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Kind       WindowKind `json:"kind"`
	Focused    bool       `json:"focused"`
	Visible    bool       `json:"visible"`
	LastSeenAt time.Time  `json:"lastSeenAt"`
	Bounds     *Bounds    `json:"bounds,omitempty"`
}

// LocatorHints are the raw hints a driver attaches to a snapshot node;
// the ref map (pkg/refmap) turns these into a SelectorDescriptor.
type LocatorHints struct {
	TestID      string `json:"testId,omitempty"`
	RoleAndName *struct {
		Role string `json:"role"`
		Name string `json:"name"`
	} `json:"roleAndName,omitempty"`
	Label       string `json:"label,omitempty"`
	TextContent string `json:"textContent,omitempty"`
}

// SnapshotNode is a single accessibility node within a RawSnapshot.
type SnapshotNode struct {
	Ref          string        `json:"ref"`
	Role         string        `json:"role"`
	Name         string        `json:"name"`
	Value        string        `json:"value,omitempty"`
	Disabled     bool          `json:"disabled,omitempty"`
	Checked      *bool         `json:"checked,omitempty"`
	LocatorHints *LocatorHints `json:"locatorHints,omitempty"`
}

// RawSnapshot is the driver's raw accessibility tree for one window.
type RawSnapshot struct {
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"createdAt"`
	Truncated    bool           `json:"truncated"`
	ViewportRect Bounds         `json:"viewportRect"`
	Nodes        []SnapshotNode `json:"nodes"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ActionKind enumerates the action verbs the driver can perform.
type ActionKind string

const (
	ActionClick   ActionKind = "click"
	ActionType    ActionKind = "type"
	ActionHover   ActionKind = "hover"
	ActionPress   ActionKind = "press"
	ActionScroll  ActionKind = "scroll"
	ActionFocus   ActionKind = "focus"
	ActionSelect  ActionKind = "select"
	ActionNavigate ActionKind = "navigate"
)

// ActionDescriptor describes one driver-level action against a ref or locator.
type ActionDescriptor struct {
	Kind    ActionKind `json:"kind"`
	Ref     string     `json:"ref,omitempty"`
	Locator string     `json:"locator,omitempty"`
	Text    string     `json:"text,omitempty"`
	Key     string     `json:"key,omitempty"`
}

// ConsoleLogEntry is one captured console message.
type ConsoleLogEntry struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NetworkLogEntry is one captured network event.
type NetworkLogEntry struct {
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// LaunchConfig configures a fresh driver launch.
type LaunchConfig struct {
	Preset         string
	EntryPath      string
	ExecutablePath string
	Args           []string
	Env            map[string]string
}

// AttachConfig configures a CDP attach fallback.
type AttachConfig struct {
	WSEndpoint string
	CDPURL     string
}

// Session is the opaque handle a Runtime hands back for a launched or
// attached instance.
type Session interface {
	ID() string
}

// Runtime launches or attaches driver sessions. It is the top-level
// entry point an implementation of the external driver collaborator
// must provide.
type Runtime interface {
	Launch(ctx context.Context, cfg LaunchConfig) (Session, error)
	Attach(ctx context.Context, cfg AttachConfig) (Session, error)
}

// Capability is the per-session surface the tool handlers drive.
// Every method may suspend (SPEC_FULL.md §5).
//
//go:generate mockgen -package=drivermock -destination=drivermock/driver_mock.go github.com/airlockhq/airlock/pkg/driver Capability,Runtime
type Capability interface {
	GetWindows(ctx context.Context, session Session) ([]Window, error)
	GetSnapshot(ctx context.Context, session Session, windowID WindowID) (*RawSnapshot, error)
	PerformAction(ctx context.Context, session Session, windowID WindowID, action ActionDescriptor) error
	Screenshot(ctx context.Context, session Session, windowID WindowID) ([]byte, error)
	GetConsoleLogs(ctx context.Context, session Session, windowID WindowID) ([]ConsoleLogEntry, error)
	GetNetworkLogs(ctx context.Context, session Session, windowID WindowID) ([]NetworkLogEntry, error)
	StartTracing(ctx context.Context, session Session) error
	StopTracing(ctx context.Context, session Session, path string) error
	Close(ctx context.Context, session Session) error
	FocusWindow(ctx context.Context, session Session, windowID WindowID) error
}
