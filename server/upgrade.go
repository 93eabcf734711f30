package main

// UpgradeType enumerates the six pickup kinds named in SPEC_FULL §3.
type UpgradeType int

const (
	UpgradeSpeed UpgradeType = iota
	UpgradeGasoline
	UpgradeRotation
	UpgradeAmmunition
	UpgradeKinetics
	UpgradeHealth
)

func (u UpgradeType) String() string {
	switch u {
	case UpgradeSpeed:
		return "SPEED"
	case UpgradeGasoline:
		return "GASOLINE"
	case UpgradeRotation:
		return "ROTATION"
	case UpgradeAmmunition:
		return "AMMUNITION"
	case UpgradeKinetics:
		return "KINETICS"
	case UpgradeHealth:
		return "HEALTH"
	default:
		return "UNKNOWN"
	}
}

const UpgradeRadius = 15.0

// Upgrade is a pickup on the arena floor. The spawner guarantees live
// count per type equals the configured target (SPEC_FULL §3, §4.7).
type Upgrade struct {
	ID        string
	Type      UpgradeType
	Position  Vector2
	Rotation  float64 // cosmetic only
	Collected bool
}

func (u *Upgrade) Bounds() Bounds {
	return NewBoundsCentered(u.Position, UpgradeRadius*2, UpgradeRadius*2)
}
