package system

import (
	"math"

	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
)

// BallisticsSystem integrates gravity and keeps foods inside the arena's
// ceiling and side walls.
type BallisticsSystem struct{}

func NewBallisticsSystem() *BallisticsSystem {
	return &BallisticsSystem{}
}

func (s *BallisticsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	_, phys, ok := ecs.First(w, component.PhysicsComponent.Kind())
	if !ok {
		return
	}
	arena, hasArena := arenaOf(w)
	elapsed := elapsedOf(w)

	ecs.ForEach(w, component.BodyComponent.Kind(), func(_ ecs.Entity, b *component.Body) {
		v := b.Velocity
		v.Y += phys.Gravity * elapsed
		if phys.TerminalSpeed > 0 {
			v.Y = math.Max(-phys.TerminalSpeed, v.Y)
		}
		b.Velocity = v
		b.Translate(v.Mult(elapsed))

		if !hasArena {
			return
		}

		// the ceiling eats horizontal speed and sends the food back down
		if b.Position.Y >= arena.Ceiling && b.Velocity.Y > 0 {
			if b.Velocity.X > 0 {
				b.Velocity.X = math.Max(b.Velocity.X-b.Velocity.Y, 0)
			} else {
				b.Velocity.X = math.Min(b.Velocity.X+b.Velocity.Y, 0)
			}
			b.Velocity.Y *= -arena.CeilingDamping
		}

		if (b.Position.X >= arena.Wall && b.Velocity.X > 0) || (b.Position.X <= -arena.Wall && b.Velocity.X < 0) {
			b.Velocity.X = -b.Velocity.X * arena.WallDamping
		}
	})
}
