package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
)

// PortalMotionSystem applies queued portal input and refreshes the portal
// velocities used by the crossing test.
type PortalMotionSystem struct{}

func NewPortalMotionSystem() *PortalMotionSystem {
	return &PortalMotionSystem{}
}

func (s *PortalMotionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	pr := pairOf(w)
	if pr == nil {
		return
	}
	elapsed := elapsedOf(w)

	ecs.ForEach(w, component.PortalControlComponent.Kind(), func(_ ecs.Entity, c *component.PortalControl) {
		p := pr.Portal(c.Portal)
		if p == nil {
			return
		}
		if c.Move != (cp.Vector{}) {
			p.Move(c.Move)
			c.Move = cp.Vector{}
		}
		if c.Turn != 0 {
			p.Rotate(c.Turn * c.RotateSpeed * elapsed)
		}
	})

	pr.Update(elapsed)
}
