package common

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// Camera is an orthographic projection from world units (y up) to screen
// pixels (y down).
type Camera struct {
	view    mgl64.Mat3
	inverse mgl64.Mat3
	scale   float64
}

// NewCamera centers the view on center and fits halfHeight world units
// between the middle of a width x height screen and its top edge.
func NewCamera(center cp.Vector, halfHeight, width, height float64) *Camera {
	if halfHeight <= 0 {
		halfHeight = 1
	}
	s := height / (2 * halfHeight)
	view := mgl64.Translate2D(width/2, height/2).
		Mul3(mgl64.Scale2D(s, -s)).
		Mul3(mgl64.Translate2D(-center.X, -center.Y))
	return &Camera{view: view, inverse: view.Inv(), scale: s}
}

// ToScreen maps a world point to pixel coordinates.
func (c *Camera) ToScreen(p cp.Vector) (x, y float64) {
	v := c.view.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return v[0], v[1]
}

// ToWorld maps pixel coordinates back to the world.
func (c *Camera) ToWorld(x, y float64) cp.Vector {
	v := c.inverse.Mul3x1(mgl64.Vec3{x, y, 1})
	return cp.Vector{X: v[0], Y: v[1]}
}

// Scale is the number of pixels per world unit.
func (c *Camera) Scale() float64 {
	return c.scale
}
