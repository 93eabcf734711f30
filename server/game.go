package main

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// Tick loop constants (SPEC_FULL §4.1).
const (
	TickRate        = 60
	TickDurationMs  = 1000.0 / TickRate
	MaxCatchUpSteps = 5
	AIStepInterval  = 3 // AI controllers run every Nth simulation step

	BroadcastCriticalIntervalMs = TickDurationMs  // 60Hz: one per simulated tick
	BroadcastStandardIntervalMs = 1000.0 / 30     // 30Hz
	BroadcastLowIntervalMs      = 100.0           // 10Hz delta/full gameState cadence
	BroadcastStaticIntervalMs   = 1000.0          // 1Hz terrain-config continuity resend
)

// Not a const: TickDurationMs/4 is not an exact integer number of
// nanoseconds once converted to time.Duration, so it must be evaluated
// at runtime (ordinary float->int truncation) rather than as a
// constant expression.
var pollIntervalMs = TickDurationMs / 4.0

// Broadcaster decouples Game from the transport layer: Game only knows
// "send this to everyone" / "send this to one socket", never connection
// bookkeeping or encoding.
type Broadcaster interface {
	Broadcast(env Envelope)
	SendTo(playerID string, env Envelope)
}

// Game owns the single process-wide arena. There is exactly one Game per
// process — no per-match sharding (SPEC_FULL §5, §9 "global mutable
// state passed explicitly").
type Game struct {
	mu       sync.Mutex
	state    *GameState
	settings GameSettings

	grid *SpatialGrid
	ai   map[string]*AIController

	stepCounter    int64
	terrainMapName string

	standardAccumulatorMs float64
	lowAccumulatorMs      float64
	staticAccumulatorMs   float64
	hasSentSnapshot       bool

	prevTankDTO                  map[string]TankStateDTO
	prevUpgradeCollected         map[string]bool
	prevPlayers                  map[string]PlayerDTO
	prevCriticalTankDTO          map[string]TankStateDTO
	prevStandardUpgradeCollected map[string]bool

	broadcaster Broadcaster
}

func NewGame(broadcaster Broadcaster) *Game {
	settings := DefaultGameSettings()
	gs := NewGameState()
	arena := gs.Arena()
	gs.Trees = GenerateTrees(settings.Tree, arena)
	gs.Patches = GeneratePatches(settings.Patch, arena)

	g := &Game{
		state:                        gs,
		settings:                     settings,
		grid:                         NewSpatialGrid(ArenaWidth, ArenaHeight),
		ai:                           make(map[string]*AIController),
		terrainMapName:               "default",
		prevTankDTO:                  make(map[string]TankStateDTO),
		prevUpgradeCollected:         make(map[string]bool),
		prevPlayers:                  make(map[string]PlayerDTO),
		prevCriticalTankDTO:          make(map[string]TankStateDTO),
		prevStandardUpgradeCollected: make(map[string]bool),
		broadcaster:                  broadcaster,
	}
	MaintainUpgrades(gs, &g.settings, arena)
	return g
}

// Run drives the fixed-timestep accumulator loop (SPEC_FULL §4.1) until
// ctx is canceled, then performs one final step and broadcast (§5
// cancellation semantics).
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(pollIntervalMs * float64(time.Millisecond)))
	defer ticker.Stop()

	last := time.Now()
	var accumulator float64

	for {
		select {
		case <-ctx.Done():
			g.mu.Lock()
			g.tickOnce()
			g.mu.Unlock()
			g.flushBroadcast(true)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds() * 1000
			last = now
			accumulator += elapsed

			g.mu.Lock()
			steps := 0
			var criticalMsgs []GameStateMsg
			for accumulator >= TickDurationMs && steps < MaxCatchUpSteps {
				g.tickOnce()
				accumulator -= TickDurationMs
				steps++
				// Critical tier runs once per simulated tick: it IS the
				// 60Hz cadence, no separate accumulator needed.
				criticalMsgs = append(criticalMsgs, g.buildCriticalSnapshot())
			}
			if accumulator >= TickDurationMs {
				accumulator = 0
				RecordSkippedFrame()
			}
			g.standardAccumulatorMs += float64(steps) * TickDurationMs
			g.lowAccumulatorMs += float64(steps) * TickDurationMs
			g.staticAccumulatorMs += float64(steps) * TickDurationMs

			standardDue := g.standardAccumulatorMs >= BroadcastStandardIntervalMs
			var standardMsg GameStateMsg
			if standardDue {
				g.standardAccumulatorMs -= BroadcastStandardIntervalMs
				standardMsg = g.buildStandardSnapshot()
			}
			g.mu.Unlock()

			for _, msg := range criticalMsgs {
				if len(msg.Tanks) > 0 || len(msg.Shells) > 0 {
					g.broadcaster.Broadcast(Envelope{Type: EventGameState, Data: msg})
				}
			}
			if standardDue && len(standardMsg.Upgrades) > 0 {
				g.broadcaster.Broadcast(Envelope{Type: EventGameState, Data: standardMsg})
			}

			g.maybeBroadcast()
		}
	}
}

// tickOnce executes one fixed-delta step. A panic from any component is
// caught here and logged; the step is dropped, not the process (§4.1
// failure semantics). Caller must hold g.mu.
func (g *Game) tickOnce() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during tick, step dropped", nil, map[string]interface{}{
				"recover": r,
				"tick":    g.stepCounter,
			})
		}
	}()

	start := time.Now()
	g.step(TickDurationMs)
	RecordTick(time.Since(start))
	g.stepCounter++

	UpdateEntityCounts(len(g.state.Tanks), len(g.state.Shells))
}

// step performs the per-tick simulation order of SPEC_FULL §4.1.
func (g *Game) step(dtMs float64) {
	gs := g.state
	gs.GameTimeMs += dtMs
	arena := gs.Arena()

	// 2. tanks: movement + gasoline burn + recoil, then tree bounce right
	//    after each tank's own kinematic update so the bounce observes the
	//    position that step's motion produced; respawns are handled here
	//    too since FindSpawnPoint needs live GameState to pick a clear spot.
	for _, tank := range gs.Tanks {
		tank.Update(dtMs, gs.GameTimeMs, &g.settings, arena)
		resolveTankTreeCollision(tank, gs.Trees, gs.GameTimeMs)
	}
	for _, tank := range gs.Tanks {
		if !tank.IsAlive && tank.RespawnMs <= 0 {
			spawn := FindSpawnPoint(gs, arena)
			tank.Respawn(spawn, g.settings.AttributeLimits)
		}
	}

	// 3. AI, every Nth step.
	if g.stepCounter%AIStepInterval == 0 {
		aiDt := dtMs * AIStepInterval
		for _, ctrl := range g.ai {
			ctrl.Update(aiDt, gs.GameTimeMs, gs, &g.settings)
		}
	}
	if len(g.ai) > 0 {
		UpdateAIFrameSkipRatio(float64(AIStepInterval-1) / float64(AIStepInterval))
	}

	// 4. shells: integrate, mark the ones that left the arena dead.
	for _, s := range gs.Shells {
		if s.Alive && !s.Update(dtMs, arena) {
			s.Alive = false
		}
	}

	// 5. trees: pendulum + foliage spring-damper.
	for _, t := range gs.Trees {
		t.Update(dtMs, gs.GameTimeMs)
	}

	// 6. collision pass: rebuild the spatial index, then resolve.
	tanks := gs.RebuildTanksSnapshot()
	g.grid.Clear()
	for i, tank := range tanks {
		if !tank.IsAlive {
			continue
		}
		g.grid.InsertCircle(tank.Position.X, tank.Position.Y, TankTreeCircleRadius, EntityRef{Kind: KindTank, Idx: i})
	}
	for i, tree := range gs.Trees {
		g.grid.InsertCircle(tree.TrunkCenter().X, tree.TrunkCenter().Y, tree.TrunkRadius(), EntityRef{Kind: KindTree, Idx: i})
	}

	_, damageEvents := resolveShellTankCollisions(gs, g.grid, &g.settings)
	resolveShellTreeCollisions(gs, g.grid)
	resolveTankUpgradeCollisions(gs, &g.settings)

	for _, ev := range damageEvents {
		target, ok := gs.Tanks[ev.TargetID]
		if !ok {
			continue
		}
		g.broadcaster.SendTo(ev.TargetID, Envelope{Type: EventDamageFeedback, Data: DamageFeedbackMsg{
			TargetID:  ev.TargetID,
			ShooterID: ev.ShooterID,
			Health:    int(target.Attrs.Health),
			Killed:    ev.Killed,
		}})
	}

	// 7. upgrade respawn pass.
	MaintainUpgrades(gs, &g.settings, arena)

	// 8. cull dead/off-arena shells.
	live := gs.Shells[:0]
	for _, s := range gs.Shells {
		if s.Alive {
			live = append(live, s)
		}
	}
	gs.Shells = live
}

// buildCriticalSnapshot returns the 60Hz tier (SPEC_FULL §4.1 "critical
// 60/s"): tank kinematics and shells, the fastest-moving entities, delta
// tracked against their own cache so this tier never repeats unchanged
// positions. Must be called with g.mu held.
func (g *Game) buildCriticalSnapshot() GameStateMsg {
	gs := g.state
	msg := GameStateMsg{Tick: g.stepCounter, Tier: "critical"}

	for id, t := range gs.Tanks {
		dto := NewTankStateDTO(t)
		if prev, ok := g.prevCriticalTankDTO[id]; !ok || prev != dto {
			msg.Tanks = append(msg.Tanks, dto)
			g.prevCriticalTankDTO[id] = dto
		}
	}
	for id := range g.prevCriticalTankDTO {
		if _, ok := gs.Tanks[id]; !ok {
			delete(g.prevCriticalTankDTO, id)
		}
	}
	for _, s := range gs.Shells {
		msg.Shells = append(msg.Shells, NewShellStateDTO(s))
	}
	return msg
}

// buildStandardSnapshot returns the 30Hz tier (SPEC_FULL §4.1 "standard
// 30/s"): upgrade pickup/respawn state, which changes less often than tank
// and shell kinematics but more often than the player roster. Must be
// called with g.mu held.
func (g *Game) buildStandardSnapshot() GameStateMsg {
	gs := g.state
	msg := GameStateMsg{Tick: g.stepCounter, Tier: "standard"}

	for _, u := range gs.Upgrades {
		if prev, ok := g.prevStandardUpgradeCollected[u.ID]; !ok || prev != u.Collected {
			msg.Upgrades = append(msg.Upgrades, NewUpgradeStateDTO(u))
			g.prevStandardUpgradeCollected[u.ID] = u.Collected
		}
	}
	return msg
}

// maybeBroadcast fires the 10Hz gameState delta/full snapshot and the
// per-socket playerState push once enough simulated time has accumulated
// (SPEC_FULL §4.8).
func (g *Game) maybeBroadcast() {
	g.mu.Lock()
	due := g.lowAccumulatorMs >= BroadcastLowIntervalMs
	if due {
		g.lowAccumulatorMs -= BroadcastLowIntervalMs
	}
	g.mu.Unlock()

	if due {
		g.flushBroadcast(false)
	}
}

// flushBroadcast builds and sends the gameState snapshot plus per-player
// derived state. force is only set for the final broadcast on shutdown.
func (g *Game) flushBroadcast(force bool) {
	g.mu.Lock()
	full := !g.hasSentSnapshot
	msg := g.buildSnapshot(full)
	g.hasSentSnapshot = true

	var playerPushes []PlayerStateMsg
	for id, player := range g.state.Players {
		if player.AI != nil {
			continue
		}
		if tank, ok := g.state.Tanks[id]; ok {
			playerPushes = append(playerPushes, PlayerStateMsg{PlayerID: id, Attrs: NewTankStateDTO(tank)})
		}
	}
	g.mu.Unlock()

	if force || full || !msg.IsEmpty() {
		g.broadcaster.Broadcast(Envelope{Type: EventGameState, Data: msg})
	}
	for _, push := range playerPushes {
		g.broadcaster.SendTo(push.PlayerID, Envelope{Type: EventPlayerState, Data: push})
	}
}

// buildSnapshot must be called with g.mu held.
func (g *Game) buildSnapshot(full bool) GameStateMsg {
	gs := g.state
	msg := GameStateMsg{Tick: g.stepCounter, Full: full}

	if full {
		for _, t := range gs.Tanks {
			dto := NewTankStateDTO(t)
			msg.Tanks = append(msg.Tanks, dto)
			g.prevTankDTO[t.ID] = dto
		}
		for _, u := range gs.Upgrades {
			msg.Upgrades = append(msg.Upgrades, NewUpgradeStateDTO(u))
			g.prevUpgradeCollected[u.ID] = u.Collected
		}
		for id, p := range gs.Players {
			dto := playerToDTO(p)
			msg.Players = append(msg.Players, dto)
			g.prevPlayers[id] = dto
		}
	} else {
		for id, t := range gs.Tanks {
			dto := NewTankStateDTO(t)
			if prev, ok := g.prevTankDTO[id]; !ok || prev != dto {
				msg.Tanks = append(msg.Tanks, dto)
				g.prevTankDTO[id] = dto
			}
		}
		for id := range g.prevTankDTO {
			if _, ok := gs.Tanks[id]; !ok {
				msg.RemovedTanks = append(msg.RemovedTanks, id)
				delete(g.prevTankDTO, id)
			}
		}
		for _, u := range gs.Upgrades {
			if prev, ok := g.prevUpgradeCollected[u.ID]; !ok || prev != u.Collected {
				msg.Upgrades = append(msg.Upgrades, NewUpgradeStateDTO(u))
				g.prevUpgradeCollected[u.ID] = u.Collected
			}
		}
		for id, p := range gs.Players {
			dto := playerToDTO(p)
			if prev, ok := g.prevPlayers[id]; !ok || prev != dto {
				msg.Players = append(msg.Players, dto)
				g.prevPlayers[id] = dto
			}
		}
	}

	// Shells always move, so every broadcast (full or delta) carries the
	// complete live list (§4.8).
	for _, s := range gs.Shells {
		msg.Shells = append(msg.Shells, NewShellStateDTO(s))
	}

	if full || g.staticAccumulatorMs >= BroadcastStaticIntervalMs {
		g.staticAccumulatorMs = 0
		treeParams := g.settings.Tree
		patchParams := g.settings.Patch
		msg.TreeParams = &treeParams
		msg.PatchParams = &patchParams
	}

	return msg
}

func playerToDTO(p *Player) PlayerDTO {
	return PlayerDTO{
		ID:        p.ID,
		Callname:  p.Callname,
		TankColor: p.TankColor,
		TankCamo:  p.TankCamo,
		Team:      TeamDTO{Name: p.TeamTag.Name, Color: p.TeamTag.Color},
		IsAI:      p.AI != nil,
	}
}

// --- Player/admin commands. Each takes and releases g.mu for the
// duration of one state mutation (SPEC_FULL §5: all mutation happens on
// state the tick loop owns; callers never touch GameState directly).

// AddPlayer attaches a socket id to a player+tank pair (SPEC_FULL §4.8
// "Client connect"). Returns true if id already had a player (reconnect)
// rather than this being a fresh join.
func (g *Game) AddPlayer(id string, join JoinMsg) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, reconnect := g.state.Players[id]
	team := lookupTeam(join.TeamName)
	g.state.Players[id] = &Player{
		ID:        id,
		Callname:  join.Callname,
		TankColor: join.TankColor,
		TankCamo:  join.TankCamo,
		TeamTag:   team,
	}
	if _, ok := g.state.Tanks[id]; !ok {
		spawn := FindSpawnPoint(g.state, g.state.Arena())
		g.state.Tanks[id] = NewTank(id, spawn, g.settings.AttributeLimits)
	}
	return reconnect
}

// RemovePlayer detaches a socket's player and tank (SPEC_FULL §5
// cancellation semantics: disconnect removes the player and tank).
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	delete(g.state.Players, id)
	delete(g.state.Tanks, id)
	delete(g.ai, id)
	g.mu.Unlock()

	g.broadcaster.Broadcast(Envelope{Type: EventPlayerLeft, Data: PlayerLeftMsg{PlayerID: id}})
}

// HandleInput implements SPEC_FULL §4.8 "Input ingest": movement sets
// targetVelocity, shoot attempts a fire. The client never sends rotation
// directly.
func (g *Game) HandleInput(id string, in PlayerInputMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tank, ok := g.state.Tanks[id]
	if !ok || !tank.IsAlive {
		return
	}
	tank.TargetVelocity = in.Movement.Scale(tank.Attrs.Speed)
	if in.Shoot {
		if shell, fired := tank.Fire(g.state.GameTimeMs, &g.settings); fired {
			g.state.Shells = append(g.state.Shells, shell)
		}
	}
}

var aiCallnamePool = []string{"Viper", "Jackal", "Hammer", "Falcon", "Ghost", "Reaper", "Wolf", "Talon", "Raptor", "Cobra"}

func randomAICallname() string {
	return aiCallnamePool[rand.Intn(len(aiCallnamePool))] + "-" + strconv.Itoa(rand.Intn(100))
}

func aiLevelName(level AILevel) string {
	switch level {
	case AIEasy:
		return "easy"
	case AIHard:
		return "hard"
	case AIInsane:
		return "insane"
	default:
		return "intermediate"
	}
}

func parseAILevel(s string) AILevel {
	switch s {
	case "easy":
		return AIEasy
	case "hard":
		return AIHard
	case "insane":
		return AIInsane
	default:
		return AIIntermediate
	}
}

// AddAI spawns one AI-controlled tank at the given difficulty.
func (g *Game) AddAI(level AILevel) string {
	g.mu.Lock()
	id := "ai-" + GenerateID(4)
	spawn := FindSpawnPoint(g.state, g.state.Arena())
	tank := NewTank(id, spawn, g.settings.AttributeLimits)
	tank.IsAI = true
	g.state.Tanks[id] = tank
	g.state.Players[id] = &Player{ID: id, Callname: randomAICallname(), TeamTag: aiTeam, AI: &AIMeta{Level: level}}
	g.ai[id] = NewAIController(id, level)
	g.mu.Unlock()

	g.broadcaster.Broadcast(Envelope{Type: EventAIAdded, Data: AIAddedMsg{PlayerID: id, Level: aiLevelName(level)}})
	return id
}

// RemoveAI removes one AI-controlled tank, if any exist.
func (g *Game) RemoveAI() bool {
	g.mu.Lock()
	var removedID string
	for id := range g.ai {
		removedID = id
		delete(g.ai, id)
		delete(g.state.Tanks, id)
		delete(g.state.Players, id)
		break
	}
	g.mu.Unlock()

	if removedID == "" {
		return false
	}
	g.broadcaster.Broadcast(Envelope{Type: EventAIRemoved, Data: AIRemovedMsg{PlayerID: removedID}})
	return true
}

// ApplyAISettings purges all existing AI tanks and spawns count new ones
// at the given level (SPEC_FULL §6 `applyAISettings`).
func (g *Game) ApplyAISettings(count int, level AILevel) {
	g.mu.Lock()
	for id := range g.ai {
		delete(g.ai, id)
		delete(g.state.Tanks, id)
		delete(g.state.Players, id)
	}
	g.mu.Unlock()

	for i := 0; i < count; i++ {
		g.AddAI(level)
	}
}

// ResetGame reinitializes the whole arena: fresh terrain, no players, no
// AI (SPEC_FULL §6 `resetGame`).
func (g *Game) ResetGame() {
	g.mu.Lock()
	arena := Bounds{X: 0, Y: 0, W: ArenaWidth, H: ArenaHeight}
	g.state = NewGameState()
	g.ai = make(map[string]*AIController)
	g.state.Trees = GenerateTrees(g.settings.Tree, arena)
	g.state.Patches = GeneratePatches(g.settings.Patch, arena)
	MaintainUpgrades(g.state, &g.settings, arena)
	g.prevTankDTO = make(map[string]TankStateDTO)
	g.prevUpgradeCollected = make(map[string]bool)
	g.prevPlayers = make(map[string]PlayerDTO)
	g.prevCriticalTankDTO = make(map[string]TankStateDTO)
	g.prevStandardUpgradeCollected = make(map[string]bool)
	g.hasSentSnapshot = false
	g.mu.Unlock()

	g.broadcaster.Broadcast(Envelope{Type: EventGameReset, Data: GameResetMsg{}})
}

// ChangeTerrainMap swaps the active terrain config and regenerates trees
// and patches (SPEC_FULL §6 `changeTerrainMap`, §4.9).
func (g *Game) ChangeTerrainMap(name string, tree TreeParams, patch PatchParams) {
	g.mu.Lock()
	g.settings.Tree = tree
	g.settings.Patch = patch
	g.terrainMapName = name
	arena := g.state.Arena()
	g.state.Trees = GenerateTrees(tree, arena)
	g.state.Patches = GeneratePatches(patch, arena)
	g.mu.Unlock()

	g.broadcaster.Broadcast(Envelope{Type: EventTerrainMapChanged, Data: TerrainMapChangedMsg{MapName: name, Tree: tree, Patch: patch}})
}

// ApplySettings merges a partial settings block into the live
// GameSettings (SPEC_FULL §6 `updateSettings`/`applySettings`).
func (g *Game) ApplySettings(patch SettingsPatch) BalanceSettingsMsg {
	g.mu.Lock()
	patch.ApplyTo(&g.settings)
	msg := BalanceSettingsMsg{
		Success: true,
		Game:    g.settings.Game,
		Damage:  g.settings.Damage,
		Tree:    g.settings.Tree,
		Patch:   g.settings.Patch,
		Limits:  g.settings.AttributeLimits,
	}
	g.mu.Unlock()

	g.broadcaster.Broadcast(Envelope{Type: EventBalanceSettings, Data: msg})
	return msg
}

// SetPlayerAttributes overwrites the given attributes on every non-AI
// tank (SPEC_FULL §6 `setPlayerAttributes`).
func (g *Game) SetPlayerAttributes(patch AttributesPatch) {
	g.mu.Lock()
	for _, tank := range g.state.Tanks {
		if tank.IsAI {
			continue
		}
		patch.ApplyTo(&tank.Attrs)
		tank.Attrs.clampTo(g.settings.AttributeLimits)
	}
	g.mu.Unlock()

	g.broadcaster.Broadcast(Envelope{Type: EventSettingsApplied, Data: SettingsAppliedMsg{Success: true}})
}

func attributeLimitFor(l *AttributeLimits, name string) (*AttributeLimit, bool) {
	switch name {
	case "health":
		return &l.Health, true
	case "speed":
		return &l.Speed, true
	case "gasoline":
		return &l.Gasoline, true
	case "rotation":
		return &l.Rotation, true
	case "ammunition":
		return &l.Ammunition, true
	case "kinetics":
		return &l.Kinetics, true
	default:
		return nil, false
	}
}

// SetAttributeLimit updates one bound of one attribute and re-clamps
// every tank (SPEC_FULL §6 `setPlayerAttributeLimit`).
func (g *Game) SetAttributeLimit(attrName, bound string, value float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	limit, ok := attributeLimitFor(&g.settings.AttributeLimits, attrName)
	if !ok {
		return false
	}
	switch bound {
	case "min":
		limit.Min = value
	case "max":
		limit.Max = value
	default:
		return false
	}
	for _, tank := range g.state.Tanks {
		tank.Attrs.clampTo(g.settings.AttributeLimits)
	}
	return true
}

// Snapshot returns an ad-hoc full snapshot for requestGameState, without
// disturbing the periodic delta-tracking caches.
func (g *Game) Snapshot() GameStateMsg {
	g.mu.Lock()
	defer g.mu.Unlock()

	gs := g.state
	msg := GameStateMsg{Tick: g.stepCounter, Full: true}
	for _, t := range gs.Tanks {
		msg.Tanks = append(msg.Tanks, NewTankStateDTO(t))
	}
	for _, s := range gs.Shells {
		msg.Shells = append(msg.Shells, NewShellStateDTO(s))
	}
	for _, u := range gs.Upgrades {
		msg.Upgrades = append(msg.Upgrades, NewUpgradeStateDTO(u))
	}
	for _, p := range gs.Players {
		msg.Players = append(msg.Players, playerToDTO(p))
	}
	for _, tr := range gs.Trees {
		msg.Trees = append(msg.Trees, NewTreeStateDTO(tr))
	}
	for _, p := range gs.Patches {
		msg.Patches = append(msg.Patches, NewPatchStateDTO(p))
	}
	treeParams := g.settings.Tree
	patchParams := g.settings.Patch
	msg.TreeParams = &treeParams
	msg.PatchParams = &patchParams
	return msg
}

// PlayerState returns the derived per-socket state for requestPlayerState.
func (g *Game) PlayerState(id string) (PlayerStateMsg, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tank, ok := g.state.Tanks[id]
	if !ok {
		return PlayerStateMsg{}, false
	}
	return PlayerStateMsg{PlayerID: id, Attrs: NewTankStateDTO(tank)}, true
}

// HealthStats reports the counters SPEC_FULL §6's `/health` endpoint
// publishes.
func (g *Game) HealthStats() (players, tanks, shells, upgrades, trees int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.state.Players), len(g.state.Tanks), len(g.state.Shells), len(g.state.Upgrades), len(g.state.Trees)
}
