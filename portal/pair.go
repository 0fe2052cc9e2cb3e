package portal

import (
	"math"

	"go.uber.org/zap"
)

// Settings are the tuning constants of the crossing response.
type Settings struct {
	// MinExitSpeed is the smallest speed an object leaves a portal with.
	MinExitSpeed float64 `yaml:"min_exit_speed"`
	// Restitution scales the velocity after a bounce off a portal edge.
	Restitution float64 `yaml:"restitution"`
}

func DefaultSettings() Settings {
	return Settings{MinExitSpeed: 5, Restitution: 0.8}
}

// Outcome is what Evaluate did with a body this tick.
type Outcome int

const (
	Untracked Outcome = iota
	Claimed
	Teleported
	Bounced
)

func (o Outcome) String() string {
	switch o {
	case Claimed:
		return "claimed"
	case Teleported:
		return "teleported"
	case Bounced:
		return "bounced"
	default:
		return "untracked"
	}
}

// Transition reports the outcome of one evaluation. Portal is the portal that
// claimed, teleported or bounced the body; for Teleported it is the entry
// portal. Bounce is the portal whose edge reflected the body this tick, or
// None. A body can bounce off the first portal and still be claimed or
// teleported by the second in the same tick, so Bounce is reported apart from
// Outcome.
type Transition struct {
	Outcome Outcome
	Portal  ID
	Bounce  ID
}

type pose struct {
	body *Body
	prev Body
}

// Pair owns the two linked portals and moves bodies between them. It is not
// safe for concurrent use.
type Pair struct {
	portals  [2]*Portal
	settings Settings
	log      *zap.Logger

	relocated []pose
}

type PairOption func(*Pair)

func WithPairLogger(l *zap.Logger) PairOption {
	return func(p *Pair) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPair links first and second. first is always evaluated before second.
func NewPair(first, second *Portal, settings Settings, opts ...PairOption) *Pair {
	first.id = First
	second.id = Second
	p := &Pair{
		portals:  [2]*Portal{first, second},
		settings: settings,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Portal returns the portal with the given id, or nil.
func (pr *Pair) Portal(id ID) *Portal {
	if !id.Valid() {
		return nil
	}
	return pr.portals[id]
}

func (pr *Pair) Settings() Settings { return pr.settings }

func (pr *Pair) SetSettings(s Settings) { pr.settings = s }

// Update advances both portals' velocity tracking.
func (pr *Pair) Update(elapsed float64) {
	for _, p := range pr.portals {
		p.Update(elapsed)
	}
}

// Evaluate runs one tick of the membership state machine for b, teleporting
// or bouncing it as needed. The first portal is resolved first; when it only
// holds b in its vicinity the second portal can still take b if b is
// crossing it.
func (pr *Pair) Evaluate(b *Body) Transition {
	first, second := pr.portals[First], pr.portals[Second]

	switch first.Classify(b) {
	case Owned:
		return pr.cross(b, First, None)
	case InVicinity:
		if second.Near(b) && second.ShouldTeleport(b) {
			return pr.cross(b, Second, None)
		}
		pr.claim(b, First)
		return Transition{Outcome: Claimed, Portal: First, Bounce: None}
	}

	bounced := None
	if first.Near(b) && first.ShouldBounce(b) {
		pr.bounce(b, first)
		bounced = First
	}

	switch second.Classify(b) {
	case Owned:
		return pr.cross(b, Second, bounced)
	case InVicinity:
		pr.claim(b, Second)
		return Transition{Outcome: Claimed, Portal: Second, Bounce: bounced}
	}

	if second.Near(b) && second.ShouldBounce(b) {
		pr.bounce(b, second)
		bounced = Second
	}

	pr.Release(b)
	if bounced != None {
		return Transition{Outcome: Bounced, Portal: bounced, Bounce: bounced}
	}
	return Transition{Outcome: Untracked, Portal: None, Bounce: None}
}

func (pr *Pair) cross(b *Body, entry, bounced ID) Transition {
	exit := entry.Other()
	pr.Teleport(b, exit, true)
	pr.claim(b, exit)
	pr.log.Debug("portal: teleported",
		zap.Uint64("object", uint64(b.ID)),
		zap.Int("from", int(entry)),
		zap.Int("to", int(exit)))
	return Transition{Outcome: Teleported, Portal: entry, Bounce: bounced}
}

// claim moves b into the vicinity of id, leaving the other portal's set.
func (pr *Pair) claim(b *Body, id ID) {
	pr.portals[id.Other()].erase(b.ID)
	pr.portals[id].insert(b.ID)
	b.Owner = id
}

// Release drops b from whichever vicinity holds it.
func (pr *Pair) Release(b *Body) {
	for _, p := range pr.portals {
		p.erase(b.ID)
	}
	b.Owner = None
}

func (pr *Pair) bounce(b *Body, p *Portal) {
	n := p.Normal()
	v := b.Velocity.Sub(n.Mult(2 * b.Velocity.Dot(n)))
	b.Velocity = v.Mult(pr.settings.Restitution)
}

// Teleport maps b from the other portal's frame into to's frame. Velocity is
// only remapped when updateSpeed is set.
func (pr *Pair) Teleport(b *Body, to ID, updateSpeed bool) {
	src, dst := pr.portals[to.Other()], pr.portals[to]

	d := b.Position.Sub(src.Position())
	depth, lateral := d.Dot(src.Normal()), d.Dot(src.Parallel())
	b.Position = dst.Position().
		Sub(dst.Normal().Mult(depth)).
		Sub(dst.Parallel().Mult(lateral))

	if updateSpeed {
		rel := b.Velocity.Sub(src.Velocity())
		vn, vp := rel.Dot(src.Normal()), rel.Dot(src.Parallel())
		if vn > -pr.settings.MinExitSpeed {
			vn = -pr.settings.MinExitSpeed
		}
		b.Velocity = dst.Velocity().
			Sub(dst.Normal().Mult(vn)).
			Sub(dst.Parallel().Mult(vp))
	}

	from, toN := src.Normal(), dst.Normal()
	b.SetRotation(b.Rotation + math.Atan2(from.Cross(toN), from.Dot(toN)))
}

// Relocate moves every body held by the portal opposite to into to's frame
// without touching velocities, so a view through to can draw them. Restore
// must be called before the next Evaluate.
func (pr *Pair) Relocate(to ID, bodies Resolver) {
	src := pr.portals[to.Other()]
	for _, id := range src.Vicinity() {
		b, ok := bodies.Body(id)
		if !ok {
			continue
		}
		pr.relocated = append(pr.relocated, pose{body: b, prev: *b})
		pr.Teleport(b, to, false)
	}
}

// Restore undoes every Relocate since the last Restore.
func (pr *Pair) Restore() {
	for i := len(pr.relocated) - 1; i >= 0; i-- {
		r := pr.relocated[i]
		*r.body = r.prev
	}
	pr.relocated = pr.relocated[:0]
}

// Resolver looks bodies up by id.
type Resolver interface {
	Body(id ObjectID) (*Body, bool)
}

// Bodies is a Resolver over a plain map.
type Bodies map[ObjectID]*Body

func (m Bodies) Body(id ObjectID) (*Body, bool) {
	b, ok := m[id]
	return b, ok
}
