package main

import (
	"math"
	"math/rand"
)

// Terrain generation constants (SPEC_FULL §4.9). The reject-and-retry
// placement idiom (try a random point, resample if it violates a
// minimum-separation constraint, give up after a bounded number of
// attempts) is carried over from the teacher's now-retired asteroid.go
// and pickup.go spawners, which used the same pattern for belt placement
// and pickup scattering.
const (
	terrainMaxPlacementAttempts = 30
	treeMinSeparation           = 18.0
	upgradeMinSeparationToTree  = 40.0
	upgradeMinSeparationToOther = 30.0
	tankSpawnMinSeparationTree  = 60.0
	tankSpawnMinSeparationTank  = 120.0
)

// GenerateTrees scatters trees into clustered groups across the arena.
// Clustering (0..100) controls how tightly each group's members sample
// around its center: 0 spreads them over the whole arena, 100 packs them
// close to the cluster center.
func GenerateTrees(p TreeParams, arena Bounds) []*Tree {
	count := p.MinTrees
	if p.MaxTrees > p.MinTrees {
		count += rand.Intn(p.MaxTrees - p.MinTrees + 1)
	}
	groups := p.ClusterGroups
	if groups < 1 {
		groups = 1
	}

	centers := make([]Vector2, groups)
	for i := range centers {
		centers[i] = randomPointIn(arena)
	}

	spread := arena.W * (1 - p.Clustering/100)
	if spread < 60 {
		spread = 60
	}

	trees := make([]*Tree, 0, count)
	for i := 0; i < count; i++ {
		center := centers[i%groups]
		var pos Vector2
		for attempt := 0; attempt < terrainMaxPlacementAttempts; attempt++ {
			offset := Vector2{
				X: (rand.Float64()*2 - 1) * spread / 2,
				Y: (rand.Float64()*2 - 1) * spread / 2,
			}
			candidate := center.Add(offset)
			candidate.X = Clamp(candidate.X, arena.X, arena.X+arena.W)
			candidate.Y = Clamp(candidate.Y, arena.Y, arena.Y+arena.H)
			if farFromAll(candidate, trees, treeMinSeparation) {
				pos = candidate
				break
			}
			pos = candidate // last attempt wins even if crowded
		}

		size := p.TreeSize + (rand.Float64()*2-1)*p.TreeSizeVariance/2
		if size < 8 {
			size = 8
		}
		trees = append(trees, &Tree{
			ID:       "tree-" + GenerateID(4),
			Position: pos,
			Size:     size,
			TreeType: p.TreeType,
		})
	}
	return trees
}

func farFromAll(p Vector2, trees []*Tree, minDist float64) bool {
	for _, t := range trees {
		if p.DistanceTo(t.Position) < minDist {
			return false
		}
	}
	return true
}

// GeneratePatches scatters cosmetic ground decals per enabled patch type.
func GeneratePatches(p PatchParams, arena Bounds) []*Patch {
	var patches []*Patch
	for typeName, def := range p.PatchTypes {
		if !def.Enabled {
			continue
		}
		for i := 0; i < def.Quantity; i++ {
			size := def.Size + (rand.Float64()*2-1)*def.SizeVariance
			if size < 4 {
				size = 4
			}
			patches = append(patches, &Patch{
				ID:       "patch-" + GenerateID(4),
				Position: randomPointIn(arena),
				Size:     size,
				Type:     typeName,
				Rotation: rand.Float64() * 2 * math.Pi,
			})
		}
	}
	return patches
}

func randomPointIn(arena Bounds) Vector2 {
	return Vector2{
		X: arena.X + rand.Float64()*arena.W,
		Y: arena.Y + rand.Float64()*arena.H,
	}
}

// MaintainUpgrades implements the respawn policy of SPEC_FULL §4.7: the
// live count of each upgrade type is kept equal to its configured
// target. Collected upgrades are compacted out of GameState.Upgrades and
// replacements are placed clear of trees and other upgrades.
func MaintainUpgrades(gs *GameState, settings *GameSettings, arena Bounds) {
	live := gs.Upgrades[:0]
	counts := make(map[UpgradeType]int)
	for _, u := range gs.Upgrades {
		if u.Collected {
			continue
		}
		live = append(live, u)
		counts[u.Type]++
	}
	gs.Upgrades = live

	for kind, def := range settings.UpgradeTypes {
		deficit := def.Count - counts[kind]
		for i := 0; i < deficit; i++ {
			gs.Upgrades = append(gs.Upgrades, &Upgrade{
				ID:       "upgrade-" + GenerateID(4),
				Type:     kind,
				Position: placeUpgrade(gs, arena),
				Rotation: rand.Float64() * 2 * math.Pi,
			})
		}
	}
}

func placeUpgrade(gs *GameState, arena Bounds) Vector2 {
	var best Vector2
	for attempt := 0; attempt < terrainMaxPlacementAttempts; attempt++ {
		candidate := randomPointIn(arena)
		best = candidate
		if upgradePlacementValid(candidate, gs) {
			return candidate
		}
	}
	return best
}

func upgradePlacementValid(p Vector2, gs *GameState) bool {
	for _, tree := range gs.Trees {
		if p.DistanceTo(tree.Position) < upgradeMinSeparationToTree {
			return false
		}
	}
	for _, u := range gs.Upgrades {
		if u.Collected {
			continue
		}
		if p.DistanceTo(u.Position) < upgradeMinSeparationToOther {
			return false
		}
	}
	return true
}

// FindSpawnPoint picks a tank spawn location clear of trees and other
// tanks, used both for initial join and for post-death respawn
// (SPEC_FULL §3 tank lifecycle; tank.go's Update defers the actual
// respawn placement to the caller for exactly this reason).
func FindSpawnPoint(gs *GameState, arena Bounds) Vector2 {
	var best Vector2
	for attempt := 0; attempt < terrainMaxPlacementAttempts; attempt++ {
		candidate := Vector2{
			X: arena.X + TankMargin*2 + rand.Float64()*(arena.W-TankMargin*4),
			Y: arena.Y + TankMargin*2 + rand.Float64()*(arena.H-TankMargin*4),
		}
		best = candidate
		if spawnPlacementValid(candidate, gs) {
			return candidate
		}
	}
	return best
}

func spawnPlacementValid(p Vector2, gs *GameState) bool {
	for _, tree := range gs.Trees {
		if p.DistanceTo(tree.Position) < tankSpawnMinSeparationTree {
			return false
		}
	}
	for _, tank := range gs.Tanks {
		if !tank.IsAlive {
			continue
		}
		if p.DistanceTo(tank.Position) < tankSpawnMinSeparationTank {
			return false
		}
	}
	return true
}
