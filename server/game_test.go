package main

import (
	"sync"
	"testing"
)

// mockBroadcaster captures sent envelopes for assertions, keyed by
// recipient: "" for Broadcast, a player id for SendTo.
type mockBroadcaster struct {
	mu   sync.Mutex
	all  []Envelope
	to   map[string][]Envelope
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{to: make(map[string][]Envelope)}
}

func (m *mockBroadcaster) Broadcast(env Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all = append(m.all, env)
}

func (m *mockBroadcaster) SendTo(playerID string, env Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to[playerID] = append(m.to[playerID], env)
}

func (m *mockBroadcaster) last(eventType string) (Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.all) - 1; i >= 0; i-- {
		if m.all[i].Type == eventType {
			return m.all[i], true
		}
	}
	return Envelope{}, false
}

func TestGameAddRemovePlayer(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	reconnect := g.AddPlayer("p1", JoinMsg{Callname: "TestPilot", TeamName: "NATO"})
	if reconnect {
		t.Error("first join should not be a reconnect")
	}
	if _, ok := g.state.Tanks["p1"]; !ok {
		t.Fatal("expected a tank to be created for the new player")
	}

	g.RemovePlayer("p1")
	if _, ok := g.state.Tanks["p1"]; ok {
		t.Error("tank should be removed alongside the player")
	}
}

func TestGameAddPlayerReconnect(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	g.AddPlayer("p1", JoinMsg{Callname: "A", TeamName: "NATO"})
	reconnect := g.AddPlayer("p1", JoinMsg{Callname: "A", TeamName: "NATO"})
	if !reconnect {
		t.Error("joining an id that already has a player should report reconnect")
	}
	if len(g.state.Tanks) != 1 {
		t.Errorf("reconnect should not spawn a second tank, got %d", len(g.state.Tanks))
	}
}

func TestGameHandleInputSetsTargetVelocityAndFires(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	g.AddPlayer("p1", JoinMsg{Callname: "Test", TeamName: "NATO"})
	tank := g.state.Tanks["p1"]
	tank.Attrs.Ammunition = 5

	g.HandleInput("p1", PlayerInputMsg{Movement: Vector2{1, 0}, Shoot: true})

	if tank.TargetVelocity.X <= 0 {
		t.Error("target velocity should point along the requested movement direction")
	}
	if len(g.state.Shells) != 1 {
		t.Errorf("expected 1 shell fired, got %d", len(g.state.Shells))
	}
}

func TestGameStepAdvancesGameTime(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	before := g.state.GameTimeMs
	g.step(TickDurationMs)
	if g.state.GameTimeMs != before+TickDurationMs {
		t.Errorf("expected gameTime to advance by one tick duration, got delta %v", g.state.GameTimeMs-before)
	}
}

// TestSingleShotHitAppliesDamageAndFeedback covers the "single-shot hit"
// scenario: a shell fired by one tank that overlaps another tank applies
// damage and emits a damageFeedback event to the victim.
func TestSingleShotHitAppliesDamageAndFeedback(t *testing.T) {
	mb := newMockBroadcaster()
	g := NewGame(mb)
	g.state.Trees = nil
	g.AddPlayer("shooter", JoinMsg{Callname: "A", TeamName: "NATO"})
	g.AddPlayer("victim", JoinMsg{Callname: "B", TeamName: "CSTO"})

	shooter := g.state.Tanks["shooter"]
	victim := g.state.Tanks["victim"]
	victim.Position = shooter.Position.Add(Vector2{10, 0})
	victim.Velocity = Vector2{}
	startHealth := victim.Attrs.Health

	g.state.Shells = append(g.state.Shells, &Shell{
		ShooterID:            "shooter",
		Position:             victim.Position,
		Velocity:             Vector2{1, 0},
		ShooterImmunityUntil: g.state.GameTimeMs + FiringImmunityMs,
		Alive:                true,
	})

	g.step(TickDurationMs)

	if victim.Attrs.Health >= startHealth {
		t.Error("victim should have taken damage from the shell hit")
	}
	if _, ok := mb.to["victim"]; !ok {
		t.Error("victim should receive a damageFeedback push")
	}
}

// TestUpgradePickupAppliesEffectAndMarksCollected covers the "upgrade
// pickup" scenario.
func TestUpgradePickupAppliesEffectAndMarksCollected(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	g.state.Trees = nil
	g.AddPlayer("p1", JoinMsg{Callname: "A", TeamName: "NATO"})
	tank := g.state.Tanks["p1"]
	tank.Attrs.Speed = g.settings.AttributeLimits.Speed.Min

	up := &Upgrade{ID: "u1", Type: UpgradeSpeed, Position: tank.Position}
	g.state.Upgrades = []*Upgrade{up}

	resolveTankUpgradeCollisions(g.state, &g.settings)

	if !up.Collected {
		t.Error("expected upgrade to be marked collected")
	}
	if tank.Attrs.Speed <= g.settings.AttributeLimits.Speed.Min {
		t.Error("expected tank speed to increase from the collected upgrade")
	}
}

// TestAIOutOfAmmoSeeksAmmunitionUpgrade covers the "AI out of ammo"
// scenario: decision priority puts an ammunition upgrade above combat.
func TestAIOutOfAmmoSeeksAmmunitionUpgrade(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	g.AddAI(AIEasy)
	var aiID string
	for id := range g.ai {
		aiID = id
	}
	tank := g.state.Tanks[aiID]
	tank.Attrs.Ammunition = 0

	ammo := &Upgrade{ID: "ammo1", Type: UpgradeAmmunition, Position: tank.Position.Add(Vector2{40, 0})}
	g.state.Upgrades = append(g.state.Upgrades, ammo)

	ctrl := g.ai[aiID]
	ctrl.decide(tank, g.state, &g.settings)

	if ctrl.targetKind != aiTargetUpgrade || ctrl.targetUpgrade != "ammo1" {
		t.Errorf("expected AI to target the ammunition upgrade, got kind=%v upgrade=%q", ctrl.targetKind, ctrl.targetUpgrade)
	}
}

// TestFlushBroadcastSendsFullThenDelta covers the "delta emission" rule:
// the first broadcast is a full snapshot; a later broadcast with no
// changes carries nothing.
func TestFlushBroadcastSendsFullThenDelta(t *testing.T) {
	mb := newMockBroadcaster()
	g := NewGame(mb)
	g.AddPlayer("p1", JoinMsg{Callname: "A", TeamName: "NATO"})

	g.flushBroadcast(false)
	env, ok := mb.last(EventGameState)
	if !ok {
		t.Fatal("expected a gameState broadcast")
	}
	first := env.Data.(GameStateMsg)
	if !first.Full {
		t.Error("first broadcast should be a full snapshot")
	}

	mb.mu.Lock()
	mb.all = nil
	mb.mu.Unlock()

	g.flushBroadcast(false)
	if _, ok := mb.last(EventGameState); ok {
		t.Error("a no-change delta broadcast should not be emitted")
	}
}

// TestBuildCriticalSnapshotDeltaTracksTankKinematics covers the 60Hz
// critical tier: unchanged tanks produce no entry, moved tanks do, and
// live shells are always included.
func TestBuildCriticalSnapshotDeltaTracksTankKinematics(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	g.AddPlayer("p1", JoinMsg{Callname: "A", TeamName: "NATO"})

	first := g.buildCriticalSnapshot()
	if first.Tier != "critical" {
		t.Errorf("expected tier=critical, got %q", first.Tier)
	}
	if len(first.Tanks) != 1 {
		t.Fatalf("expected the new tank on the first critical snapshot, got %d", len(first.Tanks))
	}

	second := g.buildCriticalSnapshot()
	if len(second.Tanks) != 0 {
		t.Error("an unchanged tank should not reappear in the next critical snapshot")
	}

	g.state.Tanks["p1"].Position.X += 5
	third := g.buildCriticalSnapshot()
	if len(third.Tanks) != 1 {
		t.Error("a moved tank should reappear in the critical snapshot")
	}
}

// TestBuildStandardSnapshotDeltaTracksUpgradeCollection covers the 30Hz
// standard tier: an upgrade's collected-state flip produces an entry,
// repeating the read does not.
func TestBuildStandardSnapshotDeltaTracksUpgradeCollection(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	u := &Upgrade{ID: "u1", Type: UpgradeHealth, Position: Vector2{100, 100}}
	g.state.Upgrades = []*Upgrade{u}

	first := g.buildStandardSnapshot()
	if first.Tier != "standard" {
		t.Errorf("expected tier=standard, got %q", first.Tier)
	}
	if len(first.Upgrades) != 1 {
		t.Fatalf("expected the upgrade's initial state on the first standard snapshot, got %d", len(first.Upgrades))
	}

	second := g.buildStandardSnapshot()
	if len(second.Upgrades) != 0 {
		t.Error("an unchanged upgrade should not reappear in the next standard snapshot")
	}

	u.Collected = true
	third := g.buildStandardSnapshot()
	if len(third.Upgrades) != 1 {
		t.Error("a collected upgrade should reappear in the standard snapshot")
	}
}

func TestResetGameClearsPlayersAndRegeneratesTerrain(t *testing.T) {
	mb := newMockBroadcaster()
	g := NewGame(mb)
	g.AddPlayer("p1", JoinMsg{Callname: "A", TeamName: "NATO"})
	g.AddAI(AIEasy)

	g.ResetGame()

	if len(g.state.Tanks) != 0 || len(g.state.Players) != 0 {
		t.Error("reset should clear all players and tanks")
	}
	if len(g.ai) != 0 {
		t.Error("reset should clear all AI controllers")
	}
	if _, ok := mb.last(EventGameReset); !ok {
		t.Error("expected a gameReset broadcast")
	}
}

func TestSetAttributeLimitClampsExistingTanks(t *testing.T) {
	g := NewGame(newMockBroadcaster())
	g.AddPlayer("p1", JoinMsg{Callname: "A", TeamName: "NATO"})
	tank := g.state.Tanks["p1"]

	ok := g.SetAttributeLimit("health", "max", 50)
	if !ok {
		t.Fatal("expected setting a known attribute limit to succeed")
	}
	if tank.Attrs.Health > 50 {
		t.Errorf("expected tank health clamped to new max, got %v", tank.Attrs.Health)
	}

	if g.SetAttributeLimit("nonsense", "max", 1) {
		t.Error("unknown attribute name should fail")
	}
}
