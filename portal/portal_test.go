package portal

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const tol = 1e-9

// facingPair places A at the origin facing up and B at (100, 0) facing down.
func facingPair(t *testing.T) *Pair {
	t.Helper()
	a := New(First, cp.Vector{}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness)
	b := New(Second, cp.Vector{X: 100}, cp.Vector{X: 0, Y: -1}, DefaultWidth, DefaultThickness)
	return NewPair(a, b, DefaultSettings())
}

func newBody(t *testing.T, id ObjectID, pos cp.Vector) *Body {
	t.Helper()
	b, err := NewBody(id, geom.New(2, 2), pos)
	require.NoError(t, err)
	return b
}

func TestFacingPortalsScenario(t *testing.T) {
	pr := facingPair(t)
	b := newBody(t, 1, cp.Vector{X: 0, Y: -0.1})
	b.Velocity = cp.Vector{X: 0, Y: -10}

	tr := pr.Evaluate(b)
	assert.Equal(t, Transition{Outcome: Teleported, Portal: First, Bounce: None}, tr)

	exit := pr.Portal(Second)
	assert.Less(t, b.Position.Distance(exit.Position()), 1.0)
	assert.GreaterOrEqual(t, b.Velocity.Dot(exit.Normal()), 5.0)
	assert.InDelta(t, math.Pi, b.Rotation, tol)

	assert.Equal(t, Second, b.Owner)
	assert.True(t, exit.Contains(b.ID))
	assert.False(t, pr.Portal(First).Contains(b.ID))
}

func TestCrossingHappensOnce(t *testing.T) {
	pr := facingPair(t)
	b := newBody(t, 1, cp.Vector{X: 0, Y: -0.1})
	b.Velocity = cp.Vector{X: 0, Y: -10}

	require.Equal(t, Teleported, pr.Evaluate(b).Outcome)
	landed := b.Position

	// the exit portal holds the body but does not send it back
	tr := pr.Evaluate(b)
	assert.Equal(t, Transition{Outcome: Claimed, Portal: Second, Bounce: None}, tr)
	assert.Equal(t, landed, b.Position)
}

func TestTeleportBoxFollowsBody(t *testing.T) {
	pr := facingPair(t)
	b := newBody(t, 1, cp.Vector{X: 0.5, Y: -0.2})
	b.Velocity = cp.Vector{X: 0, Y: -10}

	pr.Teleport(b, Second, true)

	assert.InDelta(t, b.Position.X, b.Box.Center().X, tol)
	assert.InDelta(t, b.Position.Y, b.Box.Center().Y, tol)
	assert.InDelta(t, 0, b.Box.Normal().X, tol)
	assert.InDelta(t, -1, b.Box.Normal().Y, tol)
	// B's parallel points along -x, so the lateral offset keeps its world sign
	assert.InDelta(t, 100.5, b.Position.X, tol)
	assert.InDelta(t, -0.2, b.Position.Y, tol)
}

func TestTeleportRoundTrip(t *testing.T) {
	cases := []struct {
		name         string
		aPos, aN     cp.Vector
		bPos, bN     cp.Vector
		start        cp.Vector
		wantRotation float64
	}{
		{"facing", cp.Vector{}, cp.Vector{X: 0, Y: 1}, cp.Vector{X: 100}, cp.Vector{X: 0, Y: -1}, cp.Vector{X: 1.5, Y: -0.3}, 0.3},
		{"same_facing", cp.Vector{X: -20}, cp.Vector{X: 0, Y: 1}, cp.Vector{X: 20}, cp.Vector{X: 0, Y: 1}, cp.Vector{X: -19, Y: 0.4}, 0.3},
		{"skewed", cp.Vector{X: 3, Y: 4}, cp.ForAngle(0.7), cp.Vector{X: -30, Y: 12}, cp.ForAngle(-2.1), cp.Vector{X: 3.5, Y: 3.2}, 0.3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pr := NewPair(
				New(First, c.aPos, c.aN, DefaultWidth, DefaultThickness),
				New(Second, c.bPos, c.bN, DefaultWidth, DefaultThickness),
				DefaultSettings())
			b := newBody(t, 7, c.start)
			b.SetRotation(0.3)

			pr.Teleport(b, Second, false)
			pr.Teleport(b, First, false)

			assert.InDelta(t, c.start.X, b.Position.X, 1e-9)
			assert.InDelta(t, c.start.Y, b.Position.Y, 1e-9)
			assert.InDelta(t, c.wantRotation, b.Rotation, 1e-9)
		})
	}
}

func TestTeleportDoesNotTouchVelocityWhenCosmetic(t *testing.T) {
	pr := facingPair(t)
	b := newBody(t, 1, cp.Vector{X: 0, Y: -0.1})
	b.Velocity = cp.Vector{X: 3, Y: -1}

	pr.Teleport(b, Second, false)
	assert.Equal(t, cp.Vector{X: 3, Y: -1}, b.Velocity)
}

func TestMinimumExitSpeed(t *testing.T) {
	cases := []struct {
		name     string
		settings Settings
		velocity cp.Vector
		want     cp.Vector
	}{
		{"slow_entry_clamped", DefaultSettings(), cp.Vector{X: 0, Y: -1}, cp.Vector{X: 0, Y: -5}},
		{"fast_entry_kept", DefaultSettings(), cp.Vector{X: 2, Y: -10}, cp.Vector{X: 2, Y: -10}},
		{"configured_minimum", Settings{MinExitSpeed: 8, Restitution: 0.8}, cp.Vector{X: 0, Y: -1}, cp.Vector{X: 0, Y: -8}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pr := facingPair(t)
			pr.SetSettings(c.settings)
			b := newBody(t, 1, cp.Vector{X: 0, Y: -0.1})
			b.Velocity = c.velocity

			pr.Teleport(b, Second, true)
			assert.InDelta(t, c.want.X, b.Velocity.X, tol)
			assert.InDelta(t, c.want.Y, b.Velocity.Y, tol)
		})
	}
}

func TestMovingPortalVelocity(t *testing.T) {
	t.Run("exit_inherits_portal_motion", func(t *testing.T) {
		pr := facingPair(t)
		pr.Portal(Second).Move(cp.Vector{X: 1})
		pr.Update(0.5)
		assert.Equal(t, cp.Vector{X: 2}, pr.Portal(Second).Velocity())

		b := newBody(t, 1, cp.Vector{X: 0, Y: -0.1})
		b.Velocity = cp.Vector{X: 0, Y: -10}
		pr.Teleport(b, Second, true)
		assert.InDelta(t, 2, b.Velocity.X, tol)
		assert.InDelta(t, -10, b.Velocity.Y, tol)
	})

	t.Run("portal_sweeps_over_resting_body", func(t *testing.T) {
		pr := facingPair(t)
		b := newBody(t, 1, cp.Vector{X: 0, Y: -0.1})

		pr.Portal(First).Move(cp.Vector{X: 0, Y: 1})
		pr.Update(0.05)

		assert.InDelta(t, -20, pr.Portal(First).RelativeNormalSpeed(b), tol)
		assert.Equal(t, Teleported, pr.Evaluate(b).Outcome)
		assert.InDelta(t, 20, b.Velocity.Dot(pr.Portal(Second).Normal()), tol)
	})

	t.Run("update_resets_history", func(t *testing.T) {
		pr := facingPair(t)
		pr.Portal(First).Move(cp.Vector{X: 3})
		pr.Update(1)
		pr.Update(1)
		assert.Equal(t, cp.Vector{}, pr.Portal(First).Velocity())

		pr.Portal(First).Move(cp.Vector{X: 3})
		pr.Update(0)
		assert.Equal(t, cp.Vector{}, pr.Portal(First).Velocity())
	})

	t.Run("set_pose_is_not_motion", func(t *testing.T) {
		pr := facingPair(t)
		pr.Portal(First).SetPose(cp.Vector{X: 40, Y: 10}, cp.Vector{X: 1, Y: 0})
		pr.Update(0.1)
		assert.Equal(t, cp.Vector{}, pr.Portal(First).Velocity())
	})
}

func TestThresholdBoundaryIsOutside(t *testing.T) {
	pr := facingPair(t)
	a := pr.Portal(First)

	at := newBody(t, 1, cp.Vector{X: 0, Y: 14})
	require.InDelta(t, 14.0, a.Threshold(at), tol)
	assert.False(t, a.Near(at))
	assert.True(t, a.InVicinity(at))
	assert.Equal(t, Outside, a.Classify(at))
	assert.Equal(t, Untracked, pr.Evaluate(at).Outcome)
	assert.False(t, a.Contains(at.ID))

	inside := newBody(t, 2, cp.Vector{X: 0, Y: 13.99})
	assert.Equal(t, InVicinity, a.Classify(inside))
	assert.Equal(t, Transition{Outcome: Claimed, Portal: First, Bounce: None}, pr.Evaluate(inside))
	assert.True(t, a.Contains(inside.ID))
}

func TestInVicinityNeedsAllCorners(t *testing.T) {
	pr := facingPair(t)
	a := pr.Portal(First)

	cases := []struct {
		name string
		x    float64
		want bool
	}{
		{"centered", 0, true},
		{"touching_left_edge", -5, true},
		{"past_left_edge", -5.5, false},
		{"past_right_edge", 5.01, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := newBody(t, 1, cp.Vector{X: c.x, Y: 1})
			assert.Equal(t, c.want, a.InVicinity(b))
		})
	}
}

func TestCrossingWaitsForPlane(t *testing.T) {
	a := facingPair(t).Portal(First)

	cases := []struct {
		name string
		y    float64
		want State
	}{
		{"in_front", 0.5, InVicinity},
		{"on_plane", 0, Owned},
		{"behind", -0.1, Owned},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := newBody(t, 1, cp.Vector{Y: c.y})
			b.Velocity = cp.Vector{Y: -10}
			assert.Equal(t, c.want, a.Classify(b))
		})
	}
}

func TestBounceOffPortalEdge(t *testing.T) {
	pr := facingPair(t)
	a := pr.Portal(First)

	b := newBody(t, 1, cp.Vector{X: 6.5, Y: 1.2})
	b.Velocity = cp.Vector{X: 3, Y: 4}
	require.False(t, a.InVicinity(b))
	require.True(t, a.ShouldBounce(b))

	tr := pr.Evaluate(b)
	assert.Equal(t, Transition{Outcome: Bounced, Portal: First, Bounce: First}, tr)
	assert.InDelta(t, 2.4, b.Velocity.X, tol)
	assert.InDelta(t, -3.2, b.Velocity.Y, tol)
	assert.Equal(t, None, b.Owner)
}

func TestBounceUsesBouncingPortalNormal(t *testing.T) {
	a := New(First, cp.Vector{}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness)
	side := New(Second, cp.Vector{X: 50}, cp.Vector{X: 1, Y: 0}, DefaultWidth, DefaultThickness)
	pr := NewPair(a, side, DefaultSettings())

	// straddles the top end of the sideways portal
	b := newBody(t, 1, cp.Vector{X: 51.2, Y: 6.5})
	b.Velocity = cp.Vector{X: 4, Y: 3}

	tr := pr.Evaluate(b)
	assert.Equal(t, Transition{Outcome: Bounced, Portal: Second, Bounce: Second}, tr)
	assert.InDelta(t, -3.2, b.Velocity.X, tol)
	assert.InDelta(t, 2.4, b.Velocity.Y, tol)
}

func TestBounceReportedWhenSecondClaims(t *testing.T) {
	a := New(First, cp.Vector{}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness)
	// B hangs just above A's right end, facing down
	above := New(Second, cp.Vector{X: 6.5, Y: 3}, cp.Vector{X: 0, Y: -1}, DefaultWidth, DefaultThickness)
	pr := NewPair(a, above, DefaultSettings())

	b := newBody(t, 1, cp.Vector{X: 6.5, Y: 1.2})
	b.Velocity = cp.Vector{X: 3, Y: 4}
	require.True(t, a.ShouldBounce(b))
	require.True(t, above.InVicinity(b))

	tr := pr.Evaluate(b)
	assert.Equal(t, Transition{Outcome: Claimed, Portal: Second, Bounce: First}, tr)
	assert.InDelta(t, 2.4, b.Velocity.X, tol)
	assert.InDelta(t, -3.2, b.Velocity.Y, tol)
	assert.Equal(t, Second, b.Owner)
}

func TestTieBreak(t *testing.T) {
	// both portals sit on top of each other; B faces down
	newStacked := func() *Pair {
		return NewPair(
			New(First, cp.Vector{}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness),
			New(Second, cp.Vector{X: 0, Y: 0.5}, cp.Vector{X: 0, Y: -1}, DefaultWidth, DefaultThickness),
			DefaultSettings())
	}

	t.Run("first_keeps_resting_body", func(t *testing.T) {
		pr := newStacked()
		b := newBody(t, 1, cp.Vector{X: 0, Y: 0.25})
		assert.Equal(t, Transition{Outcome: Claimed, Portal: First, Bounce: None}, pr.Evaluate(b))
		assert.True(t, pr.Portal(First).Contains(1))
		assert.False(t, pr.Portal(Second).Contains(1))
	})

	t.Run("second_wins_when_crossing", func(t *testing.T) {
		pr := newStacked()
		// moving up: away from A's front, into B's front
		b := newBody(t, 1, cp.Vector{X: 0, Y: 0.6})
		b.Velocity = cp.Vector{X: 0, Y: 10}
		require.Equal(t, InVicinity, pr.Portal(First).Classify(b))
		require.True(t, pr.Portal(Second).ShouldTeleport(b))

		assert.Equal(t, Transition{Outcome: Teleported, Portal: Second, Bounce: None}, pr.Evaluate(b))
		assert.Equal(t, First, b.Owner)
		assert.True(t, pr.Portal(First).Contains(1))
		assert.False(t, pr.Portal(Second).Contains(1))
	})
}

func TestVicinityExclusive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := New(First, cp.Vector{}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness)
	b := New(Second, cp.Vector{X: 8}, cp.Vector{X: 0, Y: -1}, DefaultWidth, DefaultThickness)
	pr := NewPair(a, b, DefaultSettings())

	bodies := make([]*Body, 12)
	for i := range bodies {
		bodies[i] = newBody(t, ObjectID(i+1), cp.Vector{X: rng.Float64()*30 - 10, Y: rng.Float64()*20 - 10})
	}

	for tick := 0; tick < 2000; tick++ {
		if tick%7 == 0 {
			a.Move(cp.Vector{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5})
			b.Rotate(rng.Float64() - 0.5)
		}
		pr.Update(1.0 / 60)
		for _, body := range bodies {
			body.Velocity = cp.Vector{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
			body.Translate(body.Velocity.Mult(1.0 / 60))
			if body.Position.Length() > 30 {
				body.SetPosition(cp.Vector{X: rng.Float64()*10 - 5, Y: rng.Float64()*4 - 2})
			}
			pr.Evaluate(body)

			inA, inB := a.Contains(body.ID), b.Contains(body.ID)
			require.False(t, inA && inB, "tick %d: body %d held by both portals", tick, body.ID)
			switch body.Owner {
			case First:
				require.True(t, inA)
			case Second:
				require.True(t, inB)
			default:
				require.False(t, inA || inB)
			}
		}
	}
}

func TestRelocateRestoreLeavesNoTrace(t *testing.T) {
	pr := facingPair(t)
	held := newBody(t, 1, cp.Vector{X: 1, Y: 2})
	held.Velocity = cp.Vector{X: 0.5, Y: 0}
	held.SetRotation(0.4)
	far := newBody(t, 2, cp.Vector{X: -40, Y: 30})

	require.Equal(t, Claimed, pr.Evaluate(held).Outcome)
	pr.Evaluate(far)

	before := *held
	beforeFar := *far
	bodies := Bodies{held.ID: held, far.ID: far}

	pr.Relocate(Second, bodies)
	assert.Less(t, held.Position.Distance(pr.Portal(Second).Position()), 5.0)
	assert.Equal(t, before.Velocity, held.Velocity)
	assert.Equal(t, beforeFar, *far)

	pr.Restore()
	assert.Equal(t, before, *held)
	assert.Equal(t, beforeFar, *far)

	// a second restore is a no-op
	pr.Restore()
	assert.Equal(t, before, *held)
}

func TestRelocateSkipsUnknownBodies(t *testing.T) {
	pr := facingPair(t)
	b := newBody(t, 1, cp.Vector{X: 0, Y: 2})
	require.Equal(t, Claimed, pr.Evaluate(b).Outcome)

	pr.Relocate(Second, Bodies{})
	pr.Restore()
	assert.Equal(t, cp.Vector{X: 0, Y: 2}, b.Position)
}

func TestRelease(t *testing.T) {
	pr := facingPair(t)
	b := newBody(t, 1, cp.Vector{X: 0, Y: 2})
	require.Equal(t, Claimed, pr.Evaluate(b).Outcome)

	pr.Release(b)
	assert.Equal(t, None, b.Owner)
	assert.Zero(t, pr.Portal(First).Len())
	assert.Empty(t, pr.Portal(First).Vicinity())
}

func TestPortalRotateKeepsBoxCentered(t *testing.T) {
	p := New(First, cp.Vector{X: 10, Y: -4}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness)
	p.Rotate(math.Pi / 2)

	assert.InDelta(t, -1, p.Normal().X, tol)
	assert.InDelta(t, 0, p.Normal().Y, tol)
	assert.InDelta(t, 10, p.Box().Center().X, tol)
	assert.InDelta(t, -4, p.Box().Center().Y, tol)
	assert.InDelta(t, 0, p.Normal().Dot(p.Parallel()), tol)

	p.Move(cp.Vector{X: 1, Y: 1})
	assert.InDelta(t, 11, p.Box().Center().X, tol)
	assert.InDelta(t, -3, p.Box().Center().Y, tol)
}

func TestPortalVicinitySorted(t *testing.T) {
	p := New(First, cp.Vector{}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness)
	for _, id := range []ObjectID{9, 2, 5} {
		p.insert(id)
	}
	assert.Equal(t, []ObjectID{2, 5, 9}, p.Vicinity())
	assert.Equal(t, 3, p.Len())
}

func TestTeleportLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	pr := NewPair(
		New(First, cp.Vector{}, cp.Vector{X: 0, Y: 1}, DefaultWidth, DefaultThickness),
		New(Second, cp.Vector{X: 100}, cp.Vector{X: 0, Y: -1}, DefaultWidth, DefaultThickness),
		DefaultSettings(),
		WithPairLogger(zap.New(core)))
	b := newBody(t, 3, cp.Vector{X: 0, Y: -0.1})
	b.Velocity = cp.Vector{X: 0, Y: -10}

	pr.Evaluate(b)
	require.Equal(t, 1, logs.FilterMessage("portal: teleported").Len())
	fields := logs.All()[0].ContextMap()
	assert.EqualValues(t, 3, fields["object"])
	assert.EqualValues(t, 0, fields["from"])
	assert.EqualValues(t, 1, fields["to"])
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, normalizeAngle(c.in), 1e-12)
	}
}
