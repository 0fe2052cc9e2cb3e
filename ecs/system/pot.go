package system

import (
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
)

// PotSystem asks the level whether a food whose center entered a pot mouth
// is consumed, and removes it if so.
type PotSystem struct {
	pots []component.Pot
}

func NewPotSystem() *PotSystem {
	return &PotSystem{}
}

// PotMouth is the region above which a pot at pos catches food: anything
// below the arena's pot top within half width of the pot.
func PotMouth(pos cp.Vector, arena component.Arena) cp.BB {
	return cp.BB{
		L: pos.X - arena.PotHalfWidth,
		B: math.Inf(-1),
		R: pos.X + arena.PotHalfWidth,
		T: arena.PotTop,
	}
}

func (s *PotSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	lvl := levelOf(w)
	if lvl == nil {
		return
	}

	s.pots = s.pots[:0]
	ecs.ForEach(w, component.PotComponent.Kind(), func(_ ecs.Entity, p *component.Pot) {
		s.pots = append(s.pots, *p)
	})
	if len(s.pots) == 0 {
		return
	}
	slices.SortFunc(s.pots, func(a, b component.Pot) int { return a.Index - b.Index })

	ecs.ForEach2(w, component.FoodComponent.Kind(), component.BodyComponent.Kind(), func(e ecs.Entity, f *component.Food, b *component.Body) {
		for _, pot := range s.pots {
			if !pot.Mouth.ContainsVect(b.Position) {
				continue
			}
			if lvl.Collision(f.Name, pot.Index) {
				name := f.Name
				release(w, e, b)
				w.Events().Push(ecs.Event{Kind: ecs.EventPotHit, Data: PotHit{Entity: e, Food: name, Pot: pot.Index}})
				return
			}
		}
	})
}
