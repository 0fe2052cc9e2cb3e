package component

// Transform is the render-facing pose of an entity in world units.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
