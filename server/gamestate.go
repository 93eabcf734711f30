package main

// Team is a fixed tag with an associated color (SPEC_FULL §6 "Teams").
type Team struct {
	Name  string
	Color string
}

var teamTable = map[string]Team{
	"NATO": {Name: "NATO", Color: "#3a7bd5"},
	"CSTO": {Name: "CSTO", Color: "#c0392b"},
	"PLA":  {Name: "PLA", Color: "#d4af37"},
}

// aiTeam is the pseudo-team assigned to spawned AI tanks.
var aiTeam = Team{Name: "AI", Color: "#7f8c8d"}

func lookupTeam(name string) Team {
	if t, ok := teamTable[name]; ok {
		return t
	}
	// unknown team name: a configuration-kind error per SPEC_FULL §7;
	// log a warning and fall back to the first fixed team so join never
	// fails outright over a cosmetic mismatch.
	log.Warn("unknown team name, falling back to NATO", map[string]interface{}{"teamName": name})
	return teamTable["NATO"]
}

// AIMeta is the optional AI-specific metadata a Player carries
// (SPEC_FULL §3 "optional AI metadata (level, strategy)").
type AIMeta struct {
	Level    AILevel
	Strategy string
}

// Player is the social/cosmetic identity one-to-one with a Tank by id
// (SPEC_FULL §3).
type Player struct {
	ID          string
	Callname    string
	TankColor   string
	TankCamo    string
	TeamTag     Team
	LastUpdateMs float64
	AI          *AIMeta // nil for human players
}

// GameState is the process-wide singleton owned by the tick loop
// (SPEC_FULL §3, §9 "pass it as an explicit parameter to components").
// The cyclic Tank<->Player reference is implemented as two id-keyed
// tables, never a mutable back-pointer (SPEC_FULL §9).
type GameState struct {
	Players map[string]*Player
	Tanks   map[string]*Tank

	Shells   []*Shell
	Upgrades []*Upgrade
	Trees    []*Tree
	Patches  []*Patch

	GameTimeMs float64

	// tanksSnapshot is a stable-ordered slice view of Tanks, rebuilt once
	// per tick before the spatial grid is populated. EntityRef.Idx values
	// produced for KindTank index into this slice, not into the map
	// (SPEC_FULL §9's tagged-variant guidance assumes index-addressable
	// storage; the authoritative table stays a map for id lookups).
	tanksSnapshot []*Tank
}

func NewGameState() *GameState {
	return &GameState{
		Players: make(map[string]*Player),
		Tanks:   make(map[string]*Tank),
	}
}

func (gs *GameState) Arena() Bounds {
	return Bounds{X: 0, Y: 0, W: ArenaWidth, H: ArenaHeight}
}

// RebuildTanksSnapshot refreshes the index-addressable tank slice used by
// the spatial grid's tagged EntityRef. Must run before the grid is
// populated each tick.
func (gs *GameState) RebuildTanksSnapshot() []*Tank {
	gs.tanksSnapshot = gs.tanksSnapshot[:0]
	for _, t := range gs.Tanks {
		gs.tanksSnapshot = append(gs.tanksSnapshot, t)
	}
	return gs.tanksSnapshot
}
