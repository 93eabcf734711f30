package main

import "testing"

func TestCheckCollision(t *testing.T) {
	if !CheckCollision(0, 0, 10, 15, 0, 10) {
		t.Error("circles should collide (overlapping)")
	}
	if !CheckCollision(0, 0, 10, 20, 0, 10) {
		t.Error("circles should collide (touching)")
	}
	if CheckCollision(0, 0, 10, 25, 0, 10) {
		t.Error("circles should not collide")
	}
	if !CheckCollision(5, 5, 1, 5, 5, 1) {
		t.Error("same position should collide")
	}
}

func settingsForCollisionTests() *GameSettings {
	s := DefaultGameSettings()
	return &s
}

func TestResolveShellTankCollisionsDirectHit(t *testing.T) {
	gs := NewGameState()
	settings := settingsForCollisionTests()

	victim := NewTank("victim", Vector2{100, 100}, settings.AttributeLimits)
	gs.Tanks["victim"] = victim
	gs.RebuildTanksSnapshot()

	grid := NewSpatialGrid(ArenaWidth, ArenaHeight)
	grid.Clear()
	for i, tank := range gs.tanksSnapshot {
		grid.InsertCircle(tank.Position.X, tank.Position.Y, TankTreeCircleRadius, EntityRef{Kind: KindTank, Idx: i})
	}

	gs.Shells = append(gs.Shells, &Shell{
		ShooterID: "attacker",
		Position:  Vector2{100, 100},
		Velocity:  Vector2{1, 0},
		Alive:     true,
	})

	hitShells, events := resolveShellTankCollisions(gs, grid, settings)

	if len(hitShells) != 1 {
		t.Fatalf("expected 1 shell hit, got %d", len(hitShells))
	}
	if len(events) != 1 || events[0].TargetID != "victim" {
		t.Errorf("expected victim in damage events, got %v", events)
	}
	if events[0].Killed {
		t.Errorf("single hit should not kill a full-health tank, got %v", events[0])
	}
	if gs.Shells[0].Alive {
		t.Error("shell should be marked dead after hitting a tank")
	}
	if victim.Attrs.Health >= settings.AttributeLimits.Health.Max {
		t.Error("victim health should have decreased")
	}
}

func TestResolveShellTankCollisionsSelfImmunity(t *testing.T) {
	gs := NewGameState()
	settings := settingsForCollisionTests()

	shooter := NewTank("shooter", Vector2{200, 200}, settings.AttributeLimits)
	shooter.FiringImmunityUntil = 500
	gs.Tanks["shooter"] = shooter
	gs.RebuildTanksSnapshot()

	grid := NewSpatialGrid(ArenaWidth, ArenaHeight)
	grid.Clear()
	grid.InsertCircle(shooter.Position.X, shooter.Position.Y, TankTreeCircleRadius, EntityRef{Kind: KindTank, Idx: 0})

	gs.GameTimeMs = 100 // still inside the firing-immunity window
	gs.Shells = append(gs.Shells, &Shell{
		ShooterID: "shooter",
		Position:  Vector2{200, 200},
		Velocity:  Vector2{1, 0},
		Alive:     true,
	})

	hitShells, _ := resolveShellTankCollisions(gs, grid, settings)
	if len(hitShells) != 0 {
		t.Error("a shell should not damage its own shooter during the firing immunity window")
	}
	if !gs.Shells[0].Alive {
		t.Error("shell should survive a refused self-hit")
	}
}

func TestResolveShellTankCollisionsSelfHitAfterShellImmunityExpires(t *testing.T) {
	gs := NewGameState()
	settings := settingsForCollisionTests()

	shooter := NewTank("shooter", Vector2{200, 200}, settings.AttributeLimits)
	shooter.FiringImmunityUntil = 0 // tank's own immunity window already elapsed
	gs.Tanks["shooter"] = shooter
	gs.RebuildTanksSnapshot()

	grid := NewSpatialGrid(ArenaWidth, ArenaHeight)
	grid.Clear()
	grid.InsertCircle(shooter.Position.X, shooter.Position.Y, TankTreeCircleRadius, EntityRef{Kind: KindTank, Idx: 0})

	gs.GameTimeMs = 1000 // past the shell's own ShooterImmunityUntil
	gs.Shells = append(gs.Shells, &Shell{
		ShooterID:            "shooter",
		Position:             Vector2{200, 200},
		Velocity:             Vector2{1, 0},
		ShooterImmunityUntil: 500,
		Alive:                true,
	})

	startHealth := shooter.Attrs.Health
	hitShells, events := resolveShellTankCollisions(gs, grid, settings)
	if len(hitShells) != 1 {
		t.Fatal("a shell should damage its own shooter once its shell immunity has expired")
	}
	if len(events) != 1 || events[0].TargetID != "shooter" {
		t.Error("expected a self-hit damage event")
	}
	if shooter.Attrs.Health >= startHealth {
		t.Error("shooter health should have decreased from its own expired-immunity shell")
	}
}

func TestResolveShellTankCollisionsAntiTunneling(t *testing.T) {
	gs := NewGameState()
	settings := settingsForCollisionTests()

	victim := NewTank("victim", Vector2{100, 100}, settings.AttributeLimits)
	gs.Tanks["victim"] = victim
	gs.RebuildTanksSnapshot()

	grid := NewSpatialGrid(ArenaWidth, ArenaHeight)
	grid.Clear()
	grid.InsertCircle(victim.Position.X, victim.Position.Y, TankTreeCircleRadius, EntityRef{Kind: KindTank, Idx: 0})

	// Shell that isn't overlapping the tank's AABB this step (shell y
	// 115..123, tank y 86..114), but whose center is 19px from the tank's,
	// within the tunneling distance, at high speed.
	gs.Shells = append(gs.Shells, &Shell{
		ShooterID: "attacker",
		Position:  Vector2{100, 119},
		Velocity:  Vector2{500, 0},
		Alive:     true,
	})

	hitShells, events := resolveShellTankCollisions(gs, grid, settings)
	if len(hitShells) != 1 || len(events) != 1 {
		t.Error("fast shell within tunneling distance should still register a hit")
	}
}

func TestResolveShellTreeCollisions(t *testing.T) {
	gs := NewGameState()
	tree := &Tree{ID: "t1", Position: Vector2{300, 300}, Size: 32}
	gs.Trees = append(gs.Trees, tree)

	grid := NewSpatialGrid(ArenaWidth, ArenaHeight)
	grid.Clear()
	grid.InsertCircle(tree.TrunkCenter().X, tree.TrunkCenter().Y, tree.TrunkRadius(), EntityRef{Kind: KindTree, Idx: 0})

	gs.Shells = append(gs.Shells, &Shell{
		Position: tree.TrunkCenter(),
		Velocity: Vector2{40, 0},
		Alive:    true,
	})

	hitShells := resolveShellTreeCollisions(gs, grid)
	if len(hitShells) != 1 {
		t.Fatalf("expected shell to hit tree, got %d hits", len(hitShells))
	}
	if gs.Shells[0].Alive {
		t.Error("shell should be destroyed on tree impact")
	}
	if tree.SwingVelocity == 0 && tree.FoliageVelocity.LenSq() == 0 {
		t.Error("tree should carry an impulse after being hit")
	}
}

func TestResolveTankUpgradeCollisions(t *testing.T) {
	gs := NewGameState()
	settings := settingsForCollisionTests()

	tank := NewTank("p1", Vector2{400, 400}, settings.AttributeLimits)
	tank.Attrs.Speed = settings.AttributeLimits.Speed.Min
	gs.Tanks["p1"] = tank

	up := &Upgrade{ID: "u1", Type: UpgradeSpeed, Position: Vector2{400, 400}}
	gs.Upgrades = append(gs.Upgrades, up)

	resolveTankUpgradeCollisions(gs, settings)

	if !up.Collected {
		t.Error("overlapping upgrade should be collected")
	}
	if tank.Attrs.Speed <= settings.AttributeLimits.Speed.Min {
		t.Error("tank speed attribute should have increased after collecting a speed upgrade")
	}
}

func TestResolveTankUpgradeCollisionsOutOfRange(t *testing.T) {
	gs := NewGameState()
	settings := settingsForCollisionTests()

	tank := NewTank("p1", Vector2{0, 0}, settings.AttributeLimits)
	gs.Tanks["p1"] = tank

	up := &Upgrade{ID: "u1", Type: UpgradeHealth, Position: Vector2{1000, 1000}}
	gs.Upgrades = append(gs.Upgrades, up)

	resolveTankUpgradeCollisions(gs, settings)

	if up.Collected {
		t.Error("distant upgrade should not be collected")
	}
}

func TestResolveTankTreeCollisionBounces(t *testing.T) {
	tree := &Tree{ID: "t1", Position: Vector2{500, 500}, Size: 32}
	trunk := tree.TrunkCenter()

	tank := NewTank("p1", Vector2{trunk.X, trunk.Y + 15}, DefaultAttributeLimits())
	tank.Velocity = Vector2{0, -30} // driving straight into the trunk

	resolveTankTreeCollision(tank, []*Tree{tree}, 1000)

	// the tank sits below the trunk (+y), so "away" is +y
	if tank.Velocity.Y <= 0 {
		t.Errorf("expected tank to be pushed back away from the tree, got velocity %v", tank.Velocity)
	}
	if tree.LastImpactAtMs != 1000 {
		t.Error("tree should record the impact timestamp")
	}
}

func TestResolveTankTreeCollisionNoOverlapIsNoop(t *testing.T) {
	tree := &Tree{ID: "t1", Position: Vector2{0, 0}, Size: 32}
	tank := NewTank("p1", Vector2{900, 900}, DefaultAttributeLimits())
	tank.Velocity = Vector2{5, 5}

	resolveTankTreeCollision(tank, []*Tree{tree}, 1000)

	if tank.Velocity != (Vector2{5, 5}) {
		t.Error("tank far from any tree should be unaffected")
	}
	if tree.LastImpactAtMs != 0 {
		t.Error("tree far from tank should not record an impact")
	}
}

func TestResolveTankTreeCollisionSkipsDeadTank(t *testing.T) {
	tree := &Tree{ID: "t1", Position: Vector2{500, 500}, Size: 32}
	trunk := tree.TrunkCenter()

	tank := NewTank("p1", Vector2{trunk.X, trunk.Y + 5}, DefaultAttributeLimits())
	tank.IsAlive = false
	tank.Velocity = Vector2{0, -30}

	resolveTankTreeCollision(tank, []*Tree{tree}, 1000)

	if tank.Velocity != (Vector2{0, -30}) {
		t.Error("a dead tank should not be bounced off trees")
	}
}
