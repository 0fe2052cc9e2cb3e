package system

import (
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
	"github.com/milk9111/portalchef/level"
)

// LevelSystem ticks the running level and turns its spawn requests into
// SpawnRequest entities.
type LevelSystem struct {
	foods []level.Food
}

func NewLevelSystem() *LevelSystem {
	return &LevelSystem{}
}

func (s *LevelSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	lvl := levelOf(w)
	if lvl == nil {
		return
	}

	s.foods = s.foods[:0]
	ecs.ForEach2(w, component.FoodComponent.Kind(), component.BodyComponent.Kind(), func(_ ecs.Entity, f *component.Food, b *component.Body) {
		s.foods = append(s.foods, level.Food{Name: f.Name, X: b.Position.X, Y: b.Position.Y})
	})

	for _, sp := range lvl.Update(elapsedOf(w), s.foods) {
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.SpawnRequestComponent.Kind(), &component.SpawnRequest{Food: sp.Food, X: sp.X, Y: sp.Y}); err != nil {
			panic("level system: add spawn request: " + err.Error())
		}
	}
}
