package facade

import (
	"context"
	"fmt"

	"github.com/stardust-xr/stardust/internal/scenegraph"
	"github.com/stardust-xr/stardust/pkg/datamap"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
	"github.com/stardust-xr/stardust/pkg/fnv1a"
	"github.com/stardust-xr/stardust/pkg/node"
)

// startupSettingsAspectID identifies the aspect a created /startup/settings
// node answers "set_root"/"generate_desktop_startup_id" on. Hashed the same
// way every other aspect id is derived from its schema name (§4.G), even
// though this aspect is wired by hand rather than generated from a .kdl
// file (no schema in schemas/ declares it).
var startupSettingsAspectID = fnv1a.Hash64("startup_settings")

var (
	createStartupSettingsOpcode    = fnv1a.Hash64("create_startup_settings")
	setRootOpcode                  = fnv1a.Hash64("set_root")
	generateDesktopStartupIDOpcode = fnv1a.Hash64("generate_desktop_startup_id")
)

// StartupSettings is a client-local handle to the server's /startup/settings
// node (fusion/src/startup_settings.rs): it lets a launcher tell the
// compositor which spatial root a freshly spawned client should attach
// under, and mint the DESKTOP_STARTUP_ID that client reads on Connect.
type StartupSettings struct {
	h *node.Handle
}

// CreateStartupSettings asks the interface node to create a /startup/settings
// node and wraps the result.
func CreateStartupSettings(ctx context.Context, c *Client) (*StartupSettings, error) {
	payload, err := datamap.Marshal(datamap.NewMap(nil), fdctx.Token(0))
	if err != nil {
		return nil, fmt.Errorf("facade: encode create startup settings: %w", err)
	}
	respPayload, _, err := c.node.InterfaceHandle().CallMethod(ctx, scenegraph.InterfaceNodeID, createStartupSettingsOpcode, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("facade: create startup settings: %w", err)
	}
	h, err := node.DecodeCreatedHandle(c.node, respPayload)
	if err != nil {
		return nil, fmt.Errorf("facade: create startup settings: %w", err)
	}
	return &StartupSettings{h: h}, nil
}

// SetRoot tells the compositor which spatial node a client launched with
// the resulting DESKTOP_STARTUP_ID should attach under.
func (s *StartupSettings) SetRoot(root *node.Handle) error {
	m := datamap.NewMap(map[string]datamap.Value{"root_path": datamap.String(root.Path())})
	payload, err := datamap.Marshal(m, fdctx.Token(0))
	if err != nil {
		return fmt.Errorf("facade: encode set root: %w", err)
	}
	return s.h.SendSignal(startupSettingsAspectID, setRootOpcode, payload, nil)
}

// GenerateDesktopStartupID asks the compositor to mint a fresh
// DESKTOP_STARTUP_ID token bound to this settings node, suitable for
// setting in the environment of a process about to call facade.Connect.
func (s *StartupSettings) GenerateDesktopStartupID(ctx context.Context) (string, error) {
	payload, err := datamap.Marshal(datamap.NewMap(nil), fdctx.Token(0))
	if err != nil {
		return "", fmt.Errorf("facade: encode generate startup id: %w", err)
	}
	respPayload, _, err := s.h.CallMethod(ctx, startupSettingsAspectID, generateDesktopStartupIDOpcode, payload, nil)
	if err != nil {
		return "", fmt.Errorf("facade: generate startup id: %w", err)
	}
	m, err := datamap.Unmarshal(respPayload, fdctx.Token(0))
	if err != nil {
		return "", fmt.Errorf("facade: decode startup id: %w", err)
	}
	return datamap.GetString(m, "startup_id")
}

// Close releases the local handle to the settings node.
func (s *StartupSettings) Close() error {
	return s.h.Close()
}
