package main

import (
	"encoding/json"
	"math"
)

// Inbound event names (client -> server), SPEC_FULL §6.
const (
	EventJoin                   = "join"
	EventPlayerInput            = "playerInput"
	EventToggleAI               = "toggleAI"
	EventApplyAISettings        = "applyAISettings"
	EventResetGame              = "resetGame"
	EventChangeTerrainMap       = "changeTerrainMap"
	EventUpdateSettings         = "updateSettings"
	EventApplySettings          = "applySettings"
	EventSetPlayerAttributes    = "setPlayerAttributes"
	EventSetPlayerAttributeLimit = "setPlayerAttributeLimit"
	EventRequestGameState       = "requestGameState"
	EventRequestPlayerState     = "requestPlayerState"
)

// Outbound event names (server -> client), SPEC_FULL §6.
const (
	EventJoined            = "joined"
	EventReconnected       = "reconnected"
	EventGameState         = "gameState"
	EventPlayerState       = "playerState"
	EventAIAdded           = "aiAdded"
	EventAIRemoved         = "aiRemoved"
	EventGameReset         = "gameReset"
	EventTerrainMapChanged = "terrainMapChanged"
	EventBalanceSettings   = "balanceSettings"
	EventPlayerLeft        = "playerLeft"
	EventDamageFeedback    = "damageFeedback"
	EventSettingsApplied   = "settingsApplied"
)

// Envelope wraps every outgoing message with its event name. Kept from
// the teacher's single-field wrapper shape, renamed to match this
// protocol's event-name vocabulary.
type Envelope struct {
	Type string      `json:"type" msgpack:"type"`
	Data interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
}

// InEnvelope decodes the event name first, deferring payload decoding to
// a second pass via json.RawMessage — same one-pass-then-dispatch shape
// the teacher's client.go uses for inbound messages.
type InEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// --- Inbound payloads --------------------------------------------------

type JoinMsg struct {
	Callname  string `json:"callname"`
	TankColor string `json:"tankColor"`
	TankCamo  string `json:"tankCamo"`
	TeamName  string `json:"teamName"`
}

type PlayerInputMsg struct {
	Movement Vector2 `json:"movement"`
	Shoot    bool    `json:"shoot"`
}

type ToggleAIMsg struct {
	Enabled bool `json:"enabled"`
}

type ApplyAISettingsMsg struct {
	AICount int    `json:"aiCount"`
	AILevel string `json:"aiLevel"`
}

type ChangeTerrainMapMsg struct {
	MapName string `json:"mapName"`
}

// SettingsPatch is the partial settings block accepted by
// updateSettings/applySettings (SPEC_FULL §6). Every field is optional;
// present fields replace their corresponding GameSettings sub-struct
// wholesale rather than being merged key-by-key, matching the teacher's
// own "replace the named sub-object" config update style.
type SettingsPatch struct {
	Game            *GameParams      `json:"gameParams,omitempty"`
	Damage          *DamageParams    `json:"damageParams,omitempty"`
	UpgradeTypes    *UpgradeTypes    `json:"upgradeTypes,omitempty"`
	Tree            *TreeParams      `json:"treeParams,omitempty"`
	Patch           *PatchParams     `json:"patchParams,omitempty"`
	AttributeLimits *AttributeLimits `json:"attributeLimits,omitempty"`
}

func (p SettingsPatch) ApplyTo(s *GameSettings) {
	if p.Game != nil {
		s.Game = *p.Game
	}
	if p.Damage != nil {
		s.Damage = *p.Damage
	}
	if p.UpgradeTypes != nil {
		s.UpgradeTypes = *p.UpgradeTypes
	}
	if p.Tree != nil {
		s.Tree = *p.Tree
	}
	if p.Patch != nil {
		s.Patch = *p.Patch
	}
	if p.AttributeLimits != nil {
		s.AttributeLimits = *p.AttributeLimits
	}
}

// AttributesPatch carries only the attributes the caller wants to
// overwrite (SPEC_FULL §6 "partial attributes").
type AttributesPatch struct {
	Health     *float64 `json:"health,omitempty"`
	Speed      *float64 `json:"speed,omitempty"`
	Gasoline   *float64 `json:"gasoline,omitempty"`
	Rotation   *float64 `json:"rotation,omitempty"`
	Ammunition *float64 `json:"ammunition,omitempty"`
	Kinetics   *float64 `json:"kinetics,omitempty"`
}

func (p AttributesPatch) ApplyTo(a *TankAttributes) {
	if p.Health != nil {
		a.Health = *p.Health
	}
	if p.Speed != nil {
		a.Speed = *p.Speed
	}
	if p.Gasoline != nil {
		a.Gasoline = *p.Gasoline
	}
	if p.Rotation != nil {
		a.Rotation = *p.Rotation
	}
	if p.Ammunition != nil {
		a.Ammunition = *p.Ammunition
	}
	if p.Kinetics != nil {
		a.Kinetics = *p.Kinetics
	}
}

type SetPlayerAttributesMsg struct {
	Attributes AttributesPatch `json:"attributes"`
}

type SetPlayerAttributeLimitMsg struct {
	AttributeName string  `json:"attributeName"`
	Bound         string  `json:"bound"` // "min" or "max"
	Value         float64 `json:"value"`
}

// --- Wire DTOs for the simulation state --------------------------------

type TeamDTO struct {
	Name  string `json:"name" msgpack:"name"`
	Color string `json:"color" msgpack:"color"`
}

type PlayerDTO struct {
	ID        string  `json:"id" msgpack:"id"`
	Callname  string  `json:"callname" msgpack:"callname"`
	TankColor string  `json:"tankColor" msgpack:"tankColor"`
	TankCamo  string  `json:"tankCamo" msgpack:"tankCamo"`
	Team      TeamDTO `json:"team" msgpack:"team"`
	IsAI      bool    `json:"isAI" msgpack:"isAI"`
}

type TankStateDTO struct {
	ID         string  `json:"id" msgpack:"id"`
	X          float64 `json:"x" msgpack:"x"`
	Y          float64 `json:"y" msgpack:"y"`
	Angle      float64 `json:"angle" msgpack:"angle"`
	Health     int     `json:"health" msgpack:"health"`
	Speed      int     `json:"speed" msgpack:"speed"`
	Gasoline   int     `json:"gasoline" msgpack:"gasoline"`
	Rotation   int     `json:"rotation" msgpack:"rotation"`
	Ammunition int     `json:"ammunition" msgpack:"ammunition"`
	Kinetics   int     `json:"kinetics" msgpack:"kinetics"`
	Alive      bool    `json:"alive" msgpack:"alive"`
	RespawnMs  int     `json:"respawnMs,omitempty" msgpack:"respawnMs,omitempty"`
}

func quantize(v, step float64) float64 {
	return math.Round(v/step) * step
}

// NewTankStateDTO quantizes a tank's replicated fields per SPEC_FULL
// §4.8 (positions 0.1px, angles 0.01rad, attributes to integer).
func NewTankStateDTO(t *Tank) TankStateDTO {
	return TankStateDTO{
		ID:         t.ID,
		X:          quantize(t.Position.X, 0.1),
		Y:          quantize(t.Position.Y, 0.1),
		Angle:      quantize(t.Angle, 0.01),
		Health:     int(math.Round(t.Attrs.Health)),
		Speed:      int(math.Round(t.Attrs.Speed)),
		Gasoline:   int(math.Round(t.Attrs.Gasoline)),
		Rotation:   int(math.Round(t.Attrs.Rotation)),
		Ammunition: int(math.Round(t.Attrs.Ammunition)),
		Kinetics:   int(math.Round(t.Attrs.Kinetics)),
		Alive:      t.IsAlive,
		RespawnMs:  int(math.Round(t.RespawnMs)),
	}
}

type ShellStateDTO struct {
	ID        string  `json:"id" msgpack:"id"`
	ShooterID string  `json:"shooterId" msgpack:"shooterId"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	VX        float64 `json:"vx" msgpack:"vx"`
	VY        float64 `json:"vy" msgpack:"vy"`
}

func NewShellStateDTO(s *Shell) ShellStateDTO {
	return ShellStateDTO{
		ID:        s.ID,
		ShooterID: s.ShooterID,
		X:         quantize(s.Position.X, 0.1),
		Y:         quantize(s.Position.Y, 0.1),
		VX:        quantize(s.Velocity.X, 0.1),
		VY:        quantize(s.Velocity.Y, 0.1),
	}
}

type UpgradeStateDTO struct {
	ID        string  `json:"id" msgpack:"id"`
	Type      string  `json:"type" msgpack:"type"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Rotation  float64 `json:"rotation" msgpack:"rotation"`
	Collected bool    `json:"collected" msgpack:"collected"`
}

func NewUpgradeStateDTO(u *Upgrade) UpgradeStateDTO {
	return UpgradeStateDTO{
		ID:        u.ID,
		Type:      u.Type.String(),
		X:         quantize(u.Position.X, 0.1),
		Y:         quantize(u.Position.Y, 0.1),
		Rotation:  quantize(u.Rotation, 0.01),
		Collected: u.Collected,
	}
}

type TreeStateDTO struct {
	ID           string  `json:"id" msgpack:"id"`
	X            float64 `json:"x" msgpack:"x"`
	Y            float64 `json:"y" msgpack:"y"`
	Size         float64 `json:"size" msgpack:"size"`
	SwingAngle   float64 `json:"swingAngle" msgpack:"swingAngle"`
	FoliageX     float64 `json:"foliageX" msgpack:"foliageX"`
	FoliageY     float64 `json:"foliageY" msgpack:"foliageY"`
	LeafRotation float64 `json:"leafRotation" msgpack:"leafRotation"`
}

func NewTreeStateDTO(tr *Tree) TreeStateDTO {
	return TreeStateDTO{
		ID:           tr.ID,
		X:            quantize(tr.Position.X, 0.1),
		Y:            quantize(tr.Position.Y, 0.1),
		Size:         tr.Size,
		SwingAngle:   quantize(tr.SwingAngle, 0.01),
		FoliageX:     quantize(tr.FoliageOffset.X, 0.1),
		FoliageY:     quantize(tr.FoliageOffset.Y, 0.1),
		LeafRotation: quantize(tr.LeafRotation, 0.01),
	}
}

type PatchStateDTO struct {
	ID       string  `json:"id" msgpack:"id"`
	Type     string  `json:"type" msgpack:"type"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Size     float64 `json:"size" msgpack:"size"`
	Rotation float64 `json:"rotation" msgpack:"rotation"`
}

func NewPatchStateDTO(p *Patch) PatchStateDTO {
	return PatchStateDTO{
		ID:       p.ID,
		Type:     p.Type,
		X:        quantize(p.Position.X, 0.1),
		Y:        quantize(p.Position.Y, 0.1),
		Size:     p.Size,
		Rotation: quantize(p.Rotation, 0.01),
	}
}

// GameStateMsg is the outbound `gameState` payload, full or delta
// (SPEC_FULL §4.8). Named distinctly from the simulation-owning
// GameState type in gamestate.go to keep "authoritative state" and
// "wire snapshot" unambiguous.
type GameStateMsg struct {
	Tick int64  `json:"tick" msgpack:"tick"`
	Full bool   `json:"full" msgpack:"full"`
	// Tier marks which broadcast cadence produced this message (SPEC_FULL
	// §4.1: "critical"/"standard" for the high-frequency tiers added on top
	// of the 10Hz reconciliation broadcast, which leaves Tier empty).
	Tier string `json:"tier,omitempty" msgpack:"tier,omitempty"`

	Tanks        []TankStateDTO `json:"tanks,omitempty" msgpack:"tanks,omitempty"`
	RemovedTanks []string       `json:"removedTanks,omitempty" msgpack:"removedTanks,omitempty"`

	Shells []ShellStateDTO `json:"shells,omitempty" msgpack:"shells,omitempty"`

	Upgrades []UpgradeStateDTO `json:"upgrades,omitempty" msgpack:"upgrades,omitempty"`

	Players []PlayerDTO `json:"players,omitempty" msgpack:"players,omitempty"`

	Trees   []TreeStateDTO  `json:"trees,omitempty" msgpack:"trees,omitempty"`
	Patches []PatchStateDTO `json:"patches,omitempty" msgpack:"patches,omitempty"`

	TreeParams  *TreeParams  `json:"treeParams,omitempty" msgpack:"treeParams,omitempty"`
	PatchParams *PatchParams `json:"patchParams,omitempty" msgpack:"patchParams,omitempty"`
}

// IsEmpty reports whether this message carries nothing worth sending —
// SPEC_FULL §4.8's "emit only if any list is non-empty" rule for deltas.
func (m *GameStateMsg) IsEmpty() bool {
	return len(m.Tanks) == 0 && len(m.RemovedTanks) == 0 &&
		len(m.Shells) == 0 && len(m.Upgrades) == 0 &&
		len(m.Players) == 0 && len(m.Trees) == 0 && len(m.Patches) == 0
}

// PlayerStateMsg is the per-socket derived-state push (SPEC_FULL §4.8
// "own attributes, alive, respawn timer").
type PlayerStateMsg struct {
	PlayerID  string       `json:"playerId"`
	Attrs     TankStateDTO `json:"attrs"`
}

// --- Admin / lifecycle outbound payloads -------------------------------

type JoinedMsg struct {
	PlayerID string  `json:"playerId"`
	Team     TeamDTO `json:"team"`
}

type ReconnectedMsg struct {
	PlayerID string `json:"playerId"`
}

type AIAddedMsg struct {
	PlayerID string `json:"playerId"`
	Level    string `json:"level"`
}

type AIRemovedMsg struct {
	PlayerID string `json:"playerId"`
}

type GameResetMsg struct{}

type TerrainMapChangedMsg struct {
	MapName string     `json:"mapName"`
	Tree    TreeParams `json:"treeParams"`
	Patch   PatchParams `json:"patchParams"`
}

type BalanceSettingsMsg struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Game    GameParams    `json:"gameParams"`
	Damage  DamageParams  `json:"damageParams"`
	Tree    TreeParams    `json:"treeParams"`
	Patch   PatchParams   `json:"patchParams"`
	Limits  AttributeLimits `json:"attributeLimits"`
}

type PlayerLeftMsg struct {
	PlayerID string `json:"playerId"`
}

type DamageFeedbackMsg struct {
	TargetID  string `json:"targetId"`
	ShooterID string `json:"shooterId"`
	Health    int    `json:"health"`
	Killed    bool   `json:"killed"`
}

type SettingsAppliedMsg struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
