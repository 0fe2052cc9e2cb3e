package system

import (
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/component"
)

// TransformSyncSystem mirrors simulated bodies into transforms for drawing.
type TransformSyncSystem struct{}

func NewTransformSyncSystem() *TransformSyncSystem {
	return &TransformSyncSystem{}
}

func (s *TransformSyncSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.BodyComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, b *component.Body, t *component.Transform) {
		t.X = b.Position.X
		t.Y = b.Position.Y
		t.Rotation = b.Rotation
	})
}
