package system

import (
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/portal"
)

// Event payloads pushed on the world queue. Entity may already be destroyed
// by the time the event is drained.

type Spawned struct {
	Entity ecs.Entity
	Food   string
}

type Teleported struct {
	Entity ecs.Entity
	Food   string
	// Entry is the portal the food went into.
	Entry portal.ID
}

type Bounced struct {
	Entity ecs.Entity
	Food   string
	Portal portal.ID
}

type PotHit struct {
	Entity ecs.Entity
	Food   string
	Pot    int
}

type FellOff struct {
	Entity ecs.Entity
	Food   string
}
