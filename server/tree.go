package main

import "math"

// Tree dynamics constants, per SPEC_FULL §4.5. The spring constant naming
// (K for the foliage spring) follows garbhj-motion-demo's Rope type, the
// only spring-constant precedent in the retrieval pack; the pendulum
// equation itself has no direct teacher analog and is a fresh numerical
// integration in that repo's plain Euler-step idiom.
const (
	TreeTrunkRadiusDivisor = 16.0 // trunk circle radius = size/16
	TreePendulumG          = 2.0
	TreePendulumC          = 0.3
	TreePendulumClamp      = 1.0
	TreeFoliageK           = 0.2
	TreeFoliageC           = 0.2
	TreeFoliageClamp       = 5.0
	TreeImpactRecentMs     = 5000.0
	TreeRestVelocityDecay  = 0.95
	TreeRestOffsetDecay    = 0.98
	TreeRestSnapEpsilon    = 0.001
	TreeImpactBoostFactor  = 1.8
	TreeImpactBoostMs      = 1200.0
)

// Tree is a cosmetic-but-replicated pendulum/foliage oscillator with a
// small trunk hitbox (SPEC_FULL §3).
type Tree struct {
	ID       string
	Position Vector2
	Size     float64
	TreeType string

	SwingAngle    float64
	SwingVelocity float64
	LastImpactAtMs float64

	FoliageOffset   Vector2
	FoliageVelocity Vector2

	FrequencyBoostUntilMs float64
	LeafRotation          float64
}

// TrunkCenter returns the small trunk circle's center, offset up from the
// tree's base position (SPEC_FULL §4.4: "(pos.x, pos.y - size/2)").
func (t *Tree) TrunkCenter() Vector2 {
	return Vector2{t.Position.X, t.Position.Y - t.Size/2}
}

func (t *Tree) TrunkRadius() float64 {
	return t.Size / TreeTrunkRadiusDivisor
}

// Bounds is the small trunk AABB used for broad-phase, not the canopy.
func (t *Tree) Bounds() Bounds {
	r := t.TrunkRadius()
	return NewBoundsCentered(t.TrunkCenter(), r*2, r*2)
}

// Impact deposits an impulse on the pendulum and foliage spring, and
// boosts swing frequency for a short window (SPEC_FULL §4.4, §4.5).
func (t *Tree) Impact(impactAngle float64, force float64, dir Vector2, gameTimeMs float64) {
	forceScale := math.Min(force/10, 5)
	t.SwingVelocity += -impactAngle * forceScale * 0.02
	t.FoliageVelocity = t.FoliageVelocity.Sub(dir.Scale(forceScale * 1.0))
	t.LastImpactAtMs = gameTimeMs
	t.FrequencyBoostUntilMs = gameTimeMs + TreeImpactBoostMs

	t.SwingVelocity = Clamp(t.SwingVelocity, -TreePendulumClamp, TreePendulumClamp)
	t.FoliageVelocity.X = Clamp(t.FoliageVelocity.X, -TreeFoliageClamp, TreeFoliageClamp)
	t.FoliageVelocity.Y = Clamp(t.FoliageVelocity.Y, -TreeFoliageClamp, TreeFoliageClamp)
}

// Update integrates the pendulum and foliage spring-damper one step
// (SPEC_FULL §4.5). Purely cosmetic — never consulted by collision.
func (t *Tree) Update(dtMs, gameTimeMs float64) {
	dt := dtMs / 1000
	recent := gameTimeMs-t.LastImpactAtMs < TreeImpactRecentMs

	if recent {
		boost := 1.0
		if gameTimeMs < t.FrequencyBoostUntilMs {
			boost = TreeImpactBoostFactor
		}
		angAccel := -TreePendulumG*boost*math.Sin(t.SwingAngle) - TreePendulumC*t.SwingVelocity
		t.SwingVelocity += angAccel * dt
		t.SwingAngle += t.SwingVelocity * dt
		t.SwingAngle = Clamp(t.SwingAngle, -TreePendulumClamp, TreePendulumClamp)

		springAccel := t.FoliageOffset.Scale(-TreeFoliageK).Sub(t.FoliageVelocity.Scale(TreeFoliageC))
		t.FoliageVelocity = t.FoliageVelocity.Add(springAccel.Scale(dt))
		t.FoliageOffset = t.FoliageOffset.Add(t.FoliageVelocity.Scale(dt))
		t.FoliageOffset.X = Clamp(t.FoliageOffset.X, -TreeFoliageClamp, TreeFoliageClamp)
		t.FoliageOffset.Y = Clamp(t.FoliageOffset.Y, -TreeFoliageClamp, TreeFoliageClamp)
	} else {
		t.SwingVelocity *= TreeRestVelocityDecay
		t.SwingAngle *= TreeRestOffsetDecay
		t.FoliageVelocity = t.FoliageVelocity.Scale(TreeRestVelocityDecay)
		t.FoliageOffset = t.FoliageOffset.Scale(TreeRestOffsetDecay)

		if math.Abs(t.SwingAngle) < TreeRestSnapEpsilon && math.Abs(t.SwingVelocity) < TreeRestSnapEpsilon {
			t.SwingAngle = 0
			t.SwingVelocity = 0
		}
		if t.FoliageOffset.Len() < TreeRestSnapEpsilon && t.FoliageVelocity.Len() < TreeRestSnapEpsilon {
			t.FoliageOffset = Vector2{}
			t.FoliageVelocity = Vector2{}
		}
	}
}
