package geom

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/common"
)

// ClipHalfPlane cuts a convex polygon down to the part in front of the line
// through origin with the given normal (points p with (p-origin)·normal >= 0).
// It returns nil when nothing is left.
func ClipHalfPlane(poly []cp.Vector, origin, normal cp.Vector) []cp.Vector {
	if len(poly) == 0 {
		return nil
	}
	side := func(p cp.Vector) float64 { return p.Sub(origin).Dot(normal) }

	var out []cp.Vector
	prev := poly[len(poly)-1]
	prevSide := side(prev)
	for _, cur := range poly {
		curSide := side(cur)
		if (prevSide > 0 && curSide < 0) || (prevSide < 0 && curSide > 0) {
			t := prevSide / (prevSide - curSide)
			out = append(out, cp.Vector{X: common.Lerp(prev.X, cur.X, t), Y: common.Lerp(prev.Y, cur.Y, t)})
		}
		if curSide >= 0 {
			out = append(out, cur)
		}
		prev, prevSide = cur, curSide
	}
	if len(out) < 3 {
		return nil
	}
	return out
}
