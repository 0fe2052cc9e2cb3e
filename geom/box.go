package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/common"
)

var (
	ErrPrecondition    = errors.New("geom: precondition violated")
	ErrNotUpright      = fmt.Errorf("%w: box is not in upright orientation", ErrPrecondition)
	ErrAlreadyCentered = fmt.Errorf("%w: box center already initialized", ErrPrecondition)
	ErrDegenerate      = errors.New("geom: degenerate box corners")
)

// Up is the normal of a box in its default orientation.
var Up = cp.Vector{X: 0, Y: 1}

// OrientedBox is a 2D rectangle with a fixed size and a mutable pose.
//
// With the normal pointing up the corners are laid out as
//
//	3 -------- 2
//	|          |
//	0 -------- 1
//
// where width is the length of 0->1 and thickness the length of 0->3.
type OrientedBox struct {
	width     float64
	thickness float64

	normal   cp.Vector
	parallel cp.Vector
	origin   cp.Vector

	// offset from the owner's logical center to the box center, upright frame.
	offset   cp.Vector
	centered bool
}

// New returns an upright box whose center coincides with its owner's center.
func New(width, thickness float64) OrientedBox {
	b := OrientedBox{
		width:     width,
		thickness: thickness,
		normal:    Up,
		parallel:  Up.ReversePerp(),
	}
	b.origin = b.parallel.Mult(-width / 2).Add(b.normal.Mult(-thickness / 2))
	return b
}

// FromCorners builds a box from four object-space corners given relative to
// the owner's logical center. corners[3]-corners[0] is the thickness edge and
// sets the normal; corners[1] is the adjacent width corner on either side, so
// both windings describe the same box.
func FromCorners(corners [4]cp.Vector) (OrientedBox, error) {
	edgeW := corners[1].Sub(corners[0])
	edgeT := corners[3].Sub(corners[0])
	width := edgeW.Length()
	thickness := edgeT.Length()
	if width < common.Epsilon || thickness < common.Epsilon {
		return OrientedBox{}, fmt.Errorf("%w: width=%g thickness=%g", ErrDegenerate, width, thickness)
	}
	if math.Abs(edgeW.Dot(edgeT)) > common.Epsilon*width*thickness*1e3 {
		return OrientedBox{}, fmt.Errorf("%w: edges are not perpendicular", ErrDegenerate)
	}

	normal := edgeT.Mult(1 / thickness)
	parallel := normal.ReversePerp()
	origin := corners[0]
	// mirrored winding: the width edge runs against parallel, so the
	// reference corner is the other end of it
	if edgeW.Dot(parallel) < 0 {
		origin = corners[1]
	}
	return OrientedBox{
		width:     width,
		thickness: thickness,
		normal:    normal,
		parallel:  parallel,
		origin:    origin,
	}, nil
}

// InitCenter fixes the offset between the owner's logical center and the box
// center, then places the box around center. The box must still be upright
// and may only be centered once; the current origin is read as object space.
func (b *OrientedBox) InitCenter(center cp.Vector) error {
	if b.centered {
		return ErrAlreadyCentered
	}
	if !common.NearlyEqual(b.normal.X, Up.X) || !common.NearlyEqual(b.normal.Y, Up.Y) {
		return fmt.Errorf("%w: normal=(%g, %g)", ErrNotUpright, b.normal.X, b.normal.Y)
	}
	b.normal = Up
	b.parallel = Up.ReversePerp()
	b.offset = b.Center()
	b.centered = true
	b.Recompute(center, false)
	return nil
}

// Recompute moves the box so it is consistent with center. Pass
// normalChanged when the normal was modified since the last call.
func (b *OrientedBox) Recompute(center cp.Vector, normalChanged bool) {
	if normalChanged {
		b.parallel = b.normal.ReversePerp()
	}
	boxCenter := center.Add(b.parallel.Mult(b.offset.X)).Add(b.normal.Mult(b.offset.Y))
	b.origin = boxCenter.
		Sub(b.parallel.Mult(b.width / 2)).
		Sub(b.normal.Mult(b.thickness / 2))
}

// SetNormal stores a new facing. Recompute(center, true) must follow before
// the box is queried again.
func (b *OrientedBox) SetNormal(n cp.Vector) {
	b.normal = n.Normalize()
}

// Orient sets the normal and repositions the box around center.
func (b *OrientedBox) Orient(center, normal cp.Vector) {
	b.SetNormal(normal)
	b.Recompute(center, true)
}

// Corners returns the world-space corners in winding order.
func (b OrientedBox) Corners() [4]cp.Vector {
	w := b.parallel.Mult(b.width)
	t := b.normal.Mult(b.thickness)
	return [4]cp.Vector{
		b.origin,
		b.origin.Add(w),
		b.origin.Add(w).Add(t),
		b.origin.Add(t),
	}
}

// Project returns the coordinates of p along parallel and normal, measured
// from the origin corner.
func (b OrientedBox) Project(p cp.Vector) (along, up float64) {
	d := p.Sub(b.origin)
	return d.Dot(b.parallel), d.Dot(b.normal)
}

// Encloses reports whether every corner of other lies inside b.
func (b OrientedBox) Encloses(other OrientedBox) bool {
	for _, c := range other.Corners() {
		along, up := b.Project(c)
		if along < -common.Epsilon || along > b.width+common.Epsilon {
			return false
		}
		if up < -common.Epsilon || up > b.thickness+common.Epsilon {
			return false
		}
	}
	return true
}

// Overlaps reports whether the two boxes intersect, using the separating axis
// test on the four edge axes.
func (b OrientedBox) Overlaps(other OrientedBox) bool {
	axes := [4]cp.Vector{b.parallel, b.normal, other.parallel, other.normal}
	bc := b.Corners()
	oc := other.Corners()
	for _, axis := range axes {
		bMin, bMax := projectOnto(bc, axis)
		oMin, oMax := projectOnto(oc, axis)
		if bMax < oMin || oMax < bMin {
			return false
		}
	}
	return true
}

func projectOnto(corners [4]cp.Vector, axis cp.Vector) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, c := range corners {
		d := c.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

func (b OrientedBox) Width() float64      { return b.width }
func (b OrientedBox) Thickness() float64  { return b.thickness }
func (b OrientedBox) Normal() cp.Vector   { return b.normal }
func (b OrientedBox) Parallel() cp.Vector { return b.parallel }
func (b OrientedBox) Origin() cp.Vector   { return b.origin }
func (b OrientedBox) Centered() bool      { return b.centered }

// Offset is the upright-frame displacement from the owner's center to the
// box center.
func (b OrientedBox) Offset() cp.Vector { return b.offset }

// Center returns the geometric center of the box.
func (b OrientedBox) Center() cp.Vector {
	return b.origin.
		Add(b.parallel.Mult(b.width / 2)).
		Add(b.normal.Mult(b.thickness / 2))
}

// MaxExtent is the larger of width and thickness, used for cheap proximity
// rejection.
func (b OrientedBox) MaxExtent() float64 {
	return math.Max(b.width, b.thickness)
}

func (b OrientedBox) String() string {
	return fmt.Sprintf("box{w=%g t=%g p0=(%g, %g) n=(%g, %g)}",
		b.width, b.thickness, b.origin.X, b.origin.Y, b.normal.X, b.normal.Y)
}
