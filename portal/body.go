package portal

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/geom"
)

// ObjectID identifies a movable object. Portals only ever hold IDs.
type ObjectID uint64

// Body is the portal-facing view of a movable object: its pose, speed and
// collision box, kept in sync with each other.
type Body struct {
	ID       ObjectID
	Position cp.Vector
	Velocity cp.Vector
	// Rotation in radians, counter-clockwise from upright.
	Rotation float64
	Box      geom.OrientedBox

	// Owner is the portal whose vicinity currently holds the body, or None.
	// It is a lookup key into the Pair, not a reference that keeps anything alive.
	Owner ID
}

// NewBody places box (fresh from a catalog lookup) around position.
func NewBody(id ObjectID, box geom.OrientedBox, position cp.Vector) (*Body, error) {
	if err := box.InitCenter(position); err != nil {
		return nil, err
	}
	return &Body{
		ID:       id,
		Position: position,
		Box:      box,
		Owner:    None,
	}, nil
}

// SetPosition moves the body and its box.
func (b *Body) SetPosition(p cp.Vector) {
	b.Position = p
	b.Box.Recompute(p, false)
}

// Translate moves the body by delta.
func (b *Body) Translate(delta cp.Vector) {
	b.SetPosition(b.Position.Add(delta))
}

// SetRotation turns the body; the box normal follows the rotation.
func (b *Body) SetRotation(angle float64) {
	b.Rotation = normalizeAngle(angle)
	b.Box.Orient(b.Position, geom.Up.Rotate(cp.ForAngle(b.Rotation)))
}

// Rotate adds delta radians to the body's rotation.
func (b *Body) Rotate(delta float64) {
	b.SetRotation(b.Rotation + delta)
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
