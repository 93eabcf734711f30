package main

import "math"

// CheckCollision checks if two circles overlap. Kept from the teacher's
// collision.go unchanged — circle-circle overlap is the same test
// regardless of the domain.
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// fastShellSpeedThreshold and tunnelingDistance implement the
// anti-tunneling fallback in SPEC_FULL §4.4: a fast shell whose AABB
// test misses a tank this step, but whose center passed within
// tunnelingDistance, is still treated as a hit.
const (
	shellTankSearchRadius = 25.0
	shellTreeSearchRadius = 15.0
	fastShellSpeedThreshold = 10.0
	tunnelingDistance       = 20.0
	upgradeNarrowSlack      = 5.0
)

// DamageEvent records one shell->tank hit for the broadcast layer's
// damageFeedback event (SPEC_FULL §6).
type DamageEvent struct {
	TargetID  string
	ShooterID string
	Killed    bool
}

// resolveShellTankCollisions implements SPEC_FULL §4.4 "Shell -> Tank".
// Shells are processed in reverse so the caller can remove by index
// safely.
func resolveShellTankCollisions(gs *GameState, grid *SpatialGrid, settings *GameSettings) (hitShells []int, events []DamageEvent) {
	for i := len(gs.Shells) - 1; i >= 0; i-- {
		s := gs.Shells[i]
		if !s.Alive {
			continue
		}
		candidates := grid.QueryBuf(s.Position.X, s.Position.Y, shellTankSearchRadius, nil)
		for _, ref := range candidates {
			if ref.Kind != KindTank {
				continue
			}
			tank := gs.tanksSnapshot[ref.Idx]
			if !tank.IsAlive {
				continue
			}
			overlap := s.Bounds().Overlaps(tank.Bounds())
			if !overlap && s.Speed() > fastShellSpeedThreshold {
				if s.Position.DistanceTo(tank.Position) <= tunnelingDistance {
					overlap = true
				}
			}
			if !overlap {
				continue
			}
			if gs.GameTimeMs < tank.FiringImmunityUntil ||
				(s.ShooterID == tank.ID && gs.GameTimeMs < s.ShooterImmunityUntil) {
				// damage refused: the shell is not consumed and keeps flying
				continue
			}
			died := tank.TakeDamage(s.ShooterID, s.ShooterImmunityUntil, gs.GameTimeMs, settings)
			s.Alive = false
			hitShells = append(hitShells, i)
			events = append(events, DamageEvent{TargetID: tank.ID, ShooterID: s.ShooterID, Killed: died})
			break
		}
	}
	return
}

// resolveShellTreeCollisions implements SPEC_FULL §4.4 "Shell -> Tree".
// Only called for shells that did not already hit a tank.
func resolveShellTreeCollisions(gs *GameState, grid *SpatialGrid) (hitShells []int) {
	for i := len(gs.Shells) - 1; i >= 0; i-- {
		s := gs.Shells[i]
		if !s.Alive {
			continue
		}
		candidates := grid.QueryBuf(s.Position.X, s.Position.Y, shellTreeSearchRadius, nil)
		for _, ref := range candidates {
			if ref.Kind != KindTree {
				continue
			}
			tree := gs.Trees[ref.Idx]
			if !s.Bounds().Overlaps(tree.Bounds()) {
				continue
			}
			dir := s.Velocity.Normalized()
			force := s.Speed()
			impactAngle := math.Atan2(dir.Y, dir.X)
			tree.Impact(impactAngle, force, dir, gs.GameTimeMs)
			s.Alive = false
			hitShells = append(hitShells, i)
			break
		}
	}
	return
}

// resolveTankUpgradeCollisions implements SPEC_FULL §4.4 "Tank <-> Upgrade".
func resolveTankUpgradeCollisions(gs *GameState, settings *GameSettings) {
	for _, tank := range gs.Tanks {
		if !tank.IsAlive {
			continue
		}
		tb := tank.Bounds()
		narrowRadius := math.Max(tank.CollisionWidth, tank.CollisionHeight)/2 + UpgradeRadius + upgradeNarrowSlack
		for _, up := range gs.Upgrades {
			if up.Collected {
				continue
			}
			if !tb.Overlaps(up.Bounds()) {
				continue
			}
			if tank.Position.DistanceTo(up.Position) > narrowRadius {
				continue
			}
			def := settings.UpgradeTypes[up.Type]
			tank.ApplyUpgrade(up.Type, def.Value, settings.AttributeLimits)
			up.Collected = true
		}
	}
}

// Tank <-> Tree continuous collision constants (SPEC_FULL §4.4).
const (
	TreeRestitution = 0.8
	TreeFriction    = 0.05
)

// resolveTankTreeCollision implements SPEC_FULL §4.4 "Tank <-> Tree".
// Called once per tank, right after its kinematic update, so the bounce
// observes the position that step's motion produced.
func resolveTankTreeCollision(tank *Tank, trees []*Tree, gameTimeMs float64) {
	if !tank.IsAlive {
		return
	}
	for _, tree := range trees {
		trunk := tree.TrunkCenter()
		trunkR := tree.TrunkRadius()
		combined := TankTreeCircleRadius + trunkR
		delta := tank.Position.Sub(trunk)
		distSq := delta.LenSq()
		if distSq >= combined*combined {
			continue
		}
		dist := math.Sqrt(distSq)
		var normal Vector2
		if dist < 1e-6 {
			normal = Vector2{1, 0}
			dist = 0
		} else {
			normal = delta.Scale(1 / dist)
		}

		// separate along the normal so the tank no longer overlaps
		penetration := combined - dist
		tank.Position = tank.Position.Add(normal.Scale(penetration))

		inward := tank.Velocity.Dot(normal)
		if inward < 0 {
			reflected := normal.Scale(-inward * (1 + TreeRestitution))
			tank.Velocity = tank.Velocity.Add(reflected)
		}
		tank.Velocity = tank.Velocity.Scale(1 - TreeFriction)

		force := math.Abs(inward)
		impactAngle := math.Atan2(normal.Y, normal.X)
		tree.Impact(impactAngle, force, normal, gameTimeMs)
	}
}
