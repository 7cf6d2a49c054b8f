package handlers

import (
	"github.com/airlockhq/airlock/pkg/artifact"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
)

// RegisterAll registers every handler tool against registry, wiring the
// shared session manager, driver capability, and artifact layout.
func RegisterAll(registry *tool.Registry, sessions *session.Manager, capability driver.Capability, layout artifact.Layout) {
	registry.Register(&ConfirmTool{})
	registry.Register(&NavigateTool{Sessions: sessions, Driver: capability})
	registry.Register(&InteractTool{Sessions: sessions, Driver: capability})
	registry.Register(&SnapshotTool{Sessions: sessions, Driver: capability})
	registry.Register(&ScreenshotTool{Sessions: sessions, Driver: capability})
	registry.Register(&ListWindowsTool{Sessions: sessions, Driver: capability})
	registry.Register(&WaitForWindowTool{Sessions: sessions, Driver: capability})
	registry.Register(&StartTraceTool{Sessions: sessions, Driver: capability, Layout: layout})
	registry.Register(&StopTraceTool{Sessions: sessions, Driver: capability})
	registry.Register(&GetConsoleLogsTool{Sessions: sessions, Driver: capability})
	registry.Register(&GetNetworkLogsTool{Sessions: sessions, Driver: capability})
}
