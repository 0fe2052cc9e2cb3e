package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/catalog"
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
	"github.com/milk9111/portalchef/portal"
	"go.uber.org/zap"
)

// SpawnSystem turns SpawnRequest entities into foods built from catalog
// templates. Requests for unknown templates are logged and dropped.
type SpawnSystem struct {
	catalog *catalog.Catalog
	log     *zap.Logger
}

func NewSpawnSystem(cat *catalog.Catalog, log *zap.Logger) *SpawnSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &SpawnSystem{catalog: cat, log: log}
}

// SetCatalog swaps the template source. Existing foods keep their boxes.
func (s *SpawnSystem) SetCatalog(cat *catalog.Catalog) {
	s.catalog = cat
}

func (s *SpawnSystem) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *SpawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.SpawnRequestComponent.Kind(), func(e ecs.Entity, req *component.SpawnRequest) {
		ecs.Remove(w, e, component.SpawnRequestComponent.Kind())

		if s.catalog == nil {
			s.log.Warn("spawn: no catalog", zap.String("food", req.Food))
			ecs.DestroyEntity(w, e)
			return
		}
		box, err := s.catalog.Lookup(req.Food)
		if err != nil {
			s.log.Warn("spawn: unknown food", zap.String("food", req.Food), zap.Error(err))
			ecs.DestroyEntity(w, e)
			return
		}
		body, err := portal.NewBody(portal.ObjectID(e), box, cp.Vector{X: req.X, Y: req.Y})
		if err != nil {
			s.log.Warn("spawn: bad template", zap.String("food", req.Food), zap.Error(err))
			ecs.DestroyEntity(w, e)
			return
		}

		if err := ecs.Add(w, e, component.BodyComponent.Kind(), body); err != nil {
			panic("spawn system: add body: " + err.Error())
		}
		if err := ecs.Add(w, e, component.FoodComponent.Kind(), &component.Food{Name: req.Food}); err != nil {
			panic("spawn system: add food: " + err.Error())
		}
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: req.X, Y: req.Y}); err != nil {
			panic("spawn system: add transform: " + err.Error())
		}

		w.Events().Push(ecs.Event{Kind: ecs.EventSpawned, Data: Spawned{Entity: e, Food: req.Food}})
		s.log.Debug("spawn: food",
			zap.Stringer("entity", e),
			zap.String("food", req.Food),
			zap.Float64("x", req.X),
			zap.Float64("y", req.Y))
	})
}
