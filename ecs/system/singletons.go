package system

import (
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
	"github.com/milk9111/portalchef/level"
	"github.com/milk9111/portalchef/portal"
)

func elapsedOf(w *ecs.World) float64 {
	if _, c, ok := ecs.First(w, component.ClockComponent.Kind()); ok {
		return c.Elapsed
	}
	return 0
}

func pairOf(w *ecs.World) *portal.Pair {
	if _, p, ok := ecs.First(w, component.PortalsComponent.Kind()); ok {
		return p.Pair
	}
	return nil
}

func levelOf(w *ecs.World) level.Level {
	if _, l, ok := ecs.First(w, component.LevelStateComponent.Kind()); ok {
		return l.Level
	}
	return nil
}

func arenaOf(w *ecs.World) (component.Arena, bool) {
	if _, a, ok := ecs.First(w, component.ArenaComponent.Kind()); ok {
		return *a, true
	}
	return component.Arena{}, false
}

// worldBodies resolves portal object ids back to the entities that own them.
type worldBodies struct {
	w *ecs.World
}

func (r worldBodies) Body(id portal.ObjectID) (*portal.Body, bool) {
	return ecs.Get(r.w, ecs.Entity(id), component.BodyComponent.Kind())
}

// release removes a food from the portals and the world.
func release(w *ecs.World, e ecs.Entity, b *portal.Body) {
	if pr := pairOf(w); pr != nil && b != nil {
		pr.Release(b)
	}
	ecs.DestroyEntity(w, e)
}
