package portal

import (
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/geom"
)

// ID names one of the two portals of a pair.
type ID int

const (
	None ID = iota - 1
	First
	Second
)

// Other returns the opposite portal of the pair.
func (id ID) Other() ID {
	switch id {
	case First:
		return Second
	case Second:
		return First
	default:
		return None
	}
}

func (id ID) Valid() bool {
	return id == First || id == Second
}

const (
	DefaultWidth     = 12.0
	DefaultThickness = 0.9
)

// Portal is a gateway with a facing normal. Objects leave a portal along its
// normal; velocity is derived from how far the portal moved last tick.
type Portal struct {
	id ID

	position     cp.Vector
	prevPosition cp.Vector
	normal       cp.Vector
	velocity     cp.Vector

	box geom.OrientedBox

	vicinity map[ObjectID]struct{}
}

// New creates a portal at position facing normal with a width x thickness
// activation box.
func New(id ID, position, normal cp.Vector, width, thickness float64) *Portal {
	p := &Portal{
		id:           id,
		position:     position,
		prevPosition: position,
		box:          geom.New(width, thickness),
		vicinity:     make(map[ObjectID]struct{}),
	}
	p.setNormal(normal)
	return p
}

func (p *Portal) ID() ID                { return p.id }
func (p *Portal) Position() cp.Vector   { return p.position }
func (p *Portal) Normal() cp.Vector     { return p.normal }
func (p *Portal) Parallel() cp.Vector   { return p.box.Parallel() }
func (p *Portal) Velocity() cp.Vector   { return p.velocity }
func (p *Portal) Box() geom.OrientedBox { return p.box }

// Move shifts the portal by delta. Velocity picks the displacement up on the
// next Update.
func (p *Portal) Move(delta cp.Vector) {
	p.position = p.position.Add(delta)
	p.box.Recompute(p.position, false)
}

// Rotate turns the normal counter-clockwise by angle radians.
func (p *Portal) Rotate(angle float64) {
	if angle == 0 {
		return
	}
	p.setNormal(p.normal.Rotate(cp.ForAngle(angle)))
}

// SetPose places the portal directly, e.g. when a level is loaded. The move
// does not count towards velocity.
func (p *Portal) SetPose(position, normal cp.Vector) {
	p.position = position
	p.prevPosition = position
	p.velocity = cp.Vector{}
	p.setNormal(normal)
}

func (p *Portal) setNormal(n cp.Vector) {
	p.box.Orient(p.position, n)
	p.normal = p.box.Normal()
}

// Update derives the portal velocity from the motion since the last call.
func (p *Portal) Update(elapsed float64) {
	if elapsed <= 0 {
		p.velocity = cp.Vector{}
	} else {
		p.velocity = p.position.Sub(p.prevPosition).Mult(1 / elapsed)
	}
	p.prevPosition = p.position
}

// Threshold is the distance under which b is worth testing against p.
func (p *Portal) Threshold(b *Body) float64 {
	return p.box.MaxExtent() + b.Box.MaxExtent()
}

// Near reports whether b is strictly closer than the proximity threshold.
func (p *Portal) Near(b *Body) bool {
	return p.position.Distance(b.Position) < p.Threshold(b)
}

// InVicinity reports whether every corner of b's box lies laterally within
// the gate.
func (p *Portal) InVicinity(b *Body) bool {
	for _, c := range b.Box.Corners() {
		along, _ := p.box.Project(c)
		if along < 0 || along > p.box.Width() {
			return false
		}
	}
	return true
}

// RelativeNormalSpeed is the component of b's velocity, relative to the
// portal's own motion, along the portal normal. Negative means b is heading
// into the portal from its front side.
func (p *Portal) RelativeNormalSpeed(b *Body) float64 {
	return b.Velocity.Sub(p.velocity).Dot(p.normal)
}

// Depth is the signed distance of pt in front of the portal plane.
func (p *Portal) Depth(pt cp.Vector) float64 {
	return pt.Sub(p.position).Dot(p.normal)
}

// ShouldTeleport reports whether b is passing through the gate: laterally
// inside it, moving inwards and with its center at or behind the plane. The
// plane test goes beyond a velocity-only crossing check; without it a body
// moving inwards is teleported while still wholly in front of the portal.
func (p *Portal) ShouldTeleport(b *Body) bool {
	return p.InVicinity(b) && p.RelativeNormalSpeed(b) < 0 && p.Depth(b.Position) <= 0
}

// ShouldBounce reports whether b touches the portal without moving into it.
func (p *Portal) ShouldBounce(b *Body) bool {
	return p.box.Overlaps(b.Box) && p.RelativeNormalSpeed(b) >= 0
}

// State is the membership of one body with respect to one portal.
type State int

const (
	Outside State = iota
	InVicinity
	Owned
)

func (s State) String() string {
	switch s {
	case InVicinity:
		return "in_vicinity"
	case Owned:
		return "owned"
	default:
		return "outside"
	}
}

// Classify runs the membership predicates for one tick. Owned means b is
// crossing and should be teleported.
func (p *Portal) Classify(b *Body) State {
	switch {
	case !p.Near(b):
		return Outside
	case p.ShouldTeleport(b):
		return Owned
	case p.InVicinity(b):
		return InVicinity
	default:
		return Outside
	}
}

// Contains reports whether id is in the portal's vicinity.
func (p *Portal) Contains(id ObjectID) bool {
	_, ok := p.vicinity[id]
	return ok
}

// Vicinity returns the IDs in the vicinity in ascending order.
func (p *Portal) Vicinity() []ObjectID {
	ids := make([]ObjectID, 0, len(p.vicinity))
	for id := range p.vicinity {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (p *Portal) Len() int { return len(p.vicinity) }

func (p *Portal) insert(id ObjectID) { p.vicinity[id] = struct{}{} }
func (p *Portal) erase(id ObjectID)  { delete(p.vicinity, id) }
