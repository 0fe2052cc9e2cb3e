package system

import (
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
	"github.com/milk9111/portalchef/portal"
)

// TeleportSystem runs the portal membership state machine once per food per
// tick, in entity order.
type TeleportSystem struct{}

func NewTeleportSystem() *TeleportSystem {
	return &TeleportSystem{}
}

func (s *TeleportSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	pr := pairOf(w)
	if pr == nil {
		return
	}

	ecs.ForEach(w, component.BodyComponent.Kind(), func(e ecs.Entity, b *component.Body) {
		tr := pr.Evaluate(b)
		// a bounce off the first portal comes before whatever the second did
		if tr.Bounce != portal.None {
			w.Events().Push(ecs.Event{Kind: ecs.EventBounced, Data: Bounced{Entity: e, Food: foodName(w, e), Portal: tr.Bounce}})
		}
		if tr.Outcome == portal.Teleported {
			w.Events().Push(ecs.Event{Kind: ecs.EventTeleported, Data: Teleported{Entity: e, Food: foodName(w, e), Entry: tr.Portal}})
		}
	})
}

func foodName(w *ecs.World, e ecs.Entity) string {
	if f, ok := ecs.Get(w, e, component.FoodComponent.Kind()); ok {
		return f.Name
	}
	return ""
}
