package system

import (
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
)

// FloorSystem removes foods that dropped below the table and tells the level.
type FloorSystem struct{}

func NewFloorSystem() *FloorSystem {
	return &FloorSystem{}
}

func (s *FloorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	arena, ok := arenaOf(w)
	if !ok {
		return
	}
	lvl := levelOf(w)

	ecs.ForEach2(w, component.FoodComponent.Kind(), component.BodyComponent.Kind(), func(e ecs.Entity, f *component.Food, b *component.Body) {
		if b.Position.Y >= arena.Floor {
			return
		}
		name := f.Name
		if lvl != nil {
			lvl.FallOff(name)
		}
		release(w, e, b)
		w.Events().Push(ecs.Event{Kind: ecs.EventFellOff, Data: FellOff{Entity: e, Food: name}})
	})
}
