package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/portal"
)

// PortalControl queues player input for one portal. Move is consumed on the
// next tick; Turn is -1, 0 or 1 and persists until changed.
type PortalControl struct {
	Portal      portal.ID
	Move        cp.Vector
	Turn        float64
	RotateSpeed float64
}

var PortalControlComponent = NewComponent[PortalControl]()
