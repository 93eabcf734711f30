package main

import "math"

// TankAttributes holds the six numeric attributes named in SPEC_FULL §3.
// Ammunition is conceptually an integer count but kept as float64 here so
// it shares the same clamp/upgrade-apply code path as the other five;
// callers treat it as whole shots.
type TankAttributes struct {
	Health     float64
	Speed      float64
	Gasoline   float64
	Rotation   float64
	Ammunition float64
	Kinetics   float64
}

func (a *TankAttributes) clampTo(limits AttributeLimits) {
	a.Health = Clamp(a.Health, limits.Health.Min, limits.Health.Max)
	a.Speed = Clamp(a.Speed, limits.Speed.Min, limits.Speed.Max)
	a.Gasoline = Clamp(a.Gasoline, limits.Gasoline.Min, limits.Gasoline.Max)
	a.Rotation = Clamp(a.Rotation, limits.Rotation.Min, limits.Rotation.Max)
	a.Ammunition = Clamp(a.Ammunition, limits.Ammunition.Min, limits.Ammunition.Max)
	a.Kinetics = Clamp(a.Kinetics, limits.Kinetics.Min, limits.Kinetics.Max)
}

func maxAttributes(limits AttributeLimits) TankAttributes {
	return TankAttributes{
		Health:     limits.Health.Max,
		Speed:      limits.Speed.Max,
		Gasoline:   limits.Gasoline.Max,
		Rotation:   limits.Rotation.Max,
		Ammunition: limits.Ammunition.Max,
		Kinetics:   limits.Kinetics.Max,
	}
}

// Tank collision/geometry constants (SPEC_FULL §3, §4.2, §4.4).
const (
	TankCollisionWidth  = 36.0
	TankCollisionHeight = 28.0
	TankTreeCircleRadius = 20.0
	ShellOffset          = 20.0
	TurnRateScale        = 0.06  // rotation attribute * this = rad/s
	TurnDeadzone         = 0.005 // rad
	VelocityLerpFactor   = 0.12
	IdleFriction         = 0.7
	IdleSnapSpeed        = 0.1
	FiringImmunityMs     = 200.0
	RecoilDurationMs     = 1000.0
)

// Tank is the authoritative, server-owned state of one combat vehicle.
// Exactly one Tank exists per Player id (SPEC_FULL §3 invariant).
type Tank struct {
	ID       string
	Position Vector2
	Angle    float64

	Velocity       Vector2
	TargetVelocity Vector2

	Attrs TankAttributes

	IsAlive bool
	IsAI    bool

	RespawnMs           float64
	ReloadMs            float64
	FiringImmunityUntil float64 // gameTimeMs
	LastShotMs          float64

	// Recoil/animation state — advisory, replicated but never gameplay
	// authoritative (SPEC_FULL §3).
	RecoilBodyOffset   float64
	RecoilTurretOffset float64

	CollisionWidth  float64
	CollisionHeight float64
}

// NewTank creates a tank at the given spawn position with attributes at
// their configured maxima (SPEC_FULL §4.6: "AI and player tanks start
// with identical attributes equal to configured maxima").
func NewTank(id string, pos Vector2, limits AttributeLimits) *Tank {
	return &Tank{
		ID:              id,
		Position:        pos,
		Angle:           0,
		Attrs:           maxAttributes(limits),
		IsAlive:         true,
		CollisionWidth:  TankCollisionWidth,
		CollisionHeight: TankCollisionHeight,
	}
}

// Bounds returns the tank's broad-phase AABB, centered on its position.
func (t *Tank) Bounds() Bounds {
	return NewBoundsCentered(t.Position, t.CollisionWidth, t.CollisionHeight)
}

// Facing returns the unit vector of the tank's current heading.
func (t *Tank) Facing() Vector2 {
	return Vector2{math.Cos(t.Angle), math.Sin(t.Angle)}
}

// CanShoot reports whether the tank may fire this instant (SPEC_FULL §4.2).
func (t *Tank) CanShoot() bool {
	return t.IsAlive && t.Attrs.Ammunition > 0 && t.ReloadMs <= 0
}

// Respawn resets the tank to a fresh spawn, per the Alive -> Dead -> Alive
// lifecycle state machine (SPEC_FULL §3).
func (t *Tank) Respawn(pos Vector2, limits AttributeLimits) {
	t.Position = pos
	t.Angle = 0
	t.Velocity = Vector2{}
	t.TargetVelocity = Vector2{}
	t.Attrs = maxAttributes(limits)
	t.IsAlive = true
	t.RespawnMs = 0
	t.ReloadMs = 0
	t.FiringImmunityUntil = 0
}

// Update advances the tank one fixed step, per SPEC_FULL §4.2.
// gameTimeMs is the simulation clock after this step's advance. dtMs is
// the step size in milliseconds (always TickDurationMs in production;
// parameterized for tests). Shells are spawned by Fire, not here.
func (t *Tank) Update(dtMs, gameTimeMs float64, settings *GameSettings, arena Bounds) {
	if !t.IsAlive {
		t.RespawnMs -= dtMs
		if t.RespawnMs <= 0 {
			// caller (Game) performs the actual respawn so it can pick a
			// spawn point clear of obstacles; here we just stay inert.
		}
		t.Velocity = Vector2{}
		return
	}

	t.ReloadMs -= dtMs

	effectiveSpeed := t.Attrs.Speed
	if t.Attrs.Gasoline <= 0 {
		effectiveSpeed *= settings.Game.GasolineSpeedPenalty
	}

	const epsilon = 1e-6
	if t.TargetVelocity.LenSq() > epsilon*epsilon {
		targetAngle := t.TargetVelocity.Angle()
		maxTurn := t.Attrs.Rotation * TurnRateScale * (dtMs / 1000)
		diff := NormalizeAngle(targetAngle - t.Angle)
		if math.Abs(diff) > TurnDeadzone {
			t.Angle = RotateToward(t.Angle, targetAngle, maxTurn)
		}

		dir := t.TargetVelocity.Normalized()
		facing := t.Facing()
		dot := facing.X*dir.X + facing.Y*dir.Y

		forward := math.Abs(dot) * effectiveSpeed
		sign := 1.0
		if dot < 0 {
			sign = -1.0
		}
		targetVel := facing.Scale(forward * sign)
		t.Velocity = t.Velocity.Lerp(targetVel, VelocityLerpFactor)
	} else {
		t.Velocity = t.Velocity.Scale(IdleFriction)
		if t.Velocity.Len() < IdleSnapSpeed {
			t.Velocity = Vector2{}
		}
	}

	prevPos := t.Position
	t.Position = t.Position.Add(t.Velocity.Scale(dtMs / 1000))

	moved := t.Position.DistanceTo(prevPos)
	t.Attrs.Gasoline = math.Max(0, t.Attrs.Gasoline-moved*settings.Game.GasolinePerUnit)

	t.Position.X = Clamp(t.Position.X, arena.X+TankMargin, arena.X+arena.W-TankMargin)
	t.Position.Y = Clamp(t.Position.Y, arena.Y+TankMargin, arena.Y+arena.H-TankMargin)

	t.updateRecoilAnimation(gameTimeMs)
}

// updateRecoilAnimation advances the 1s easeOutCubic recoil decay plus a
// sinusoidal turret pendulum (SPEC_FULL §4.2 step 10). Purely cosmetic.
func (t *Tank) updateRecoilAnimation(gameTimeMs float64) {
	elapsed := gameTimeMs - t.LastShotMs
	if elapsed < 0 || elapsed > RecoilDurationMs {
		t.RecoilBodyOffset = 0
		t.RecoilTurretOffset = 0
		return
	}
	u := elapsed / RecoilDurationMs
	ease := 1 - math.Pow(1-u, 3)
	t.RecoilBodyOffset = (1 - ease) * 4
	t.RecoilTurretOffset = math.Sin(u*math.Pi*4) * (1 - u) * 3
}

// Fire attempts to shoot, returning the new shell and true on success.
func (t *Tank) Fire(gameTimeMs float64, settings *GameSettings) (*Shell, bool) {
	if !t.CanShoot() {
		return nil, false
	}
	t.Attrs.Ammunition--
	t.ReloadMs = settings.Game.ReloadTimeMs
	t.LastShotMs = gameTimeMs
	t.FiringImmunityUntil = gameTimeMs + FiringImmunityMs

	facing := t.Facing()
	shell := &Shell{
		ID:                   "shell-" + GenerateID(4),
		ShooterID:            t.ID,
		Position:             t.Position.Add(facing.Scale(ShellOffset)),
		Velocity:             facing.Scale(t.Attrs.Kinetics),
		CreatedAtMs:          gameTimeMs,
		ShooterImmunityUntil: t.FiringImmunityUntil,
		Alive:                true,
	}
	return shell, true
}

// TakeDamage applies the configured damage vector, clamped to each
// attribute's minimum, and returns true if the tank died from this hit.
// All damage is refused while gameTimeMs < the tank's FiringImmunityUntil.
// shellImmunityUntil is the shell's own ShooterImmunityUntil: damage from
// the tank's own shell is also refused while gameTimeMs < that deadline,
// and applies once both deadlines have passed (SPEC_FULL §4.2).
func (t *Tank) TakeDamage(shooterID string, shellImmunityUntil, gameTimeMs float64, settings *GameSettings) bool {
	if !t.IsAlive {
		return false
	}
	if gameTimeMs < t.FiringImmunityUntil {
		return false
	}
	if shooterID == t.ID && gameTimeMs < shellImmunityUntil {
		return false
	}
	d := settings.Damage
	limits := settings.AttributeLimits
	t.Attrs.Health = math.Max(limits.Health.Min, t.Attrs.Health-d.Health)
	t.Attrs.Speed = math.Max(limits.Speed.Min, t.Attrs.Speed-d.Speed)
	t.Attrs.Rotation = math.Max(limits.Rotation.Min, t.Attrs.Rotation-d.Rotation)
	t.Attrs.Kinetics = math.Max(limits.Kinetics.Min, t.Attrs.Kinetics-d.Kinetics)
	t.Attrs.Gasoline = math.Max(limits.Gasoline.Min, t.Attrs.Gasoline-d.Gasoline)

	if t.Attrs.Health <= 0 {
		t.IsAlive = false
		t.Velocity = Vector2{}
		t.RespawnMs = settings.Game.RespawnTimeMs
		return true
	}
	return false
}

// ApplyUpgrade adds the upgrade's value to the matching attribute, clamped
// to its configured maximum (SPEC_FULL §4.4 tank<->upgrade, §4.7).
func (t *Tank) ApplyUpgrade(kind UpgradeType, value float64, limits AttributeLimits) {
	switch kind {
	case UpgradeSpeed:
		t.Attrs.Speed = math.Min(limits.Speed.Max, t.Attrs.Speed+value)
	case UpgradeGasoline:
		t.Attrs.Gasoline = math.Min(limits.Gasoline.Max, t.Attrs.Gasoline+value)
	case UpgradeRotation:
		t.Attrs.Rotation = math.Min(limits.Rotation.Max, t.Attrs.Rotation+value)
	case UpgradeAmmunition:
		t.Attrs.Ammunition = math.Min(limits.Ammunition.Max, t.Attrs.Ammunition+value)
	case UpgradeKinetics:
		t.Attrs.Kinetics = math.Min(limits.Kinetics.Max, t.Attrs.Kinetics+value)
	case UpgradeHealth:
		t.Attrs.Health = math.Min(limits.Health.Max, t.Attrs.Health+value)
	}
}
