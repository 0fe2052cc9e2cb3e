package component

import "github.com/milk9111/portalchef/portal"

// Portals is the singleton holding the linked portal pair.
type Portals struct {
	Pair *portal.Pair
}

var PortalsComponent = NewComponent[Portals]()
