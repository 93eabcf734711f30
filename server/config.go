package main

import (
	"os"
	"strconv"
)

// Arena dimensions, fixed by the wire contract (§6 Arena).
const (
	ArenaWidth  = 1500.0
	ArenaHeight = 900.0
	// tanks are additionally clamped inside a margin so the hull never
	// straddles the outer edge of the arena rectangle.
	TankMargin = 10.0
)

// AttributeLimit is the {min,max} pair configured per tank attribute.
type AttributeLimit struct {
	Min, Max float64
}

// AttributeLimits holds the configured bound for each of the six attributes.
type AttributeLimits struct {
	Health     AttributeLimit
	Speed      AttributeLimit
	Gasoline   AttributeLimit
	Rotation   AttributeLimit
	Ammunition AttributeLimit
	Kinetics   AttributeLimit
}

func DefaultAttributeLimits() AttributeLimits {
	return AttributeLimits{
		Health:     AttributeLimit{Min: 0, Max: 100},
		Speed:      AttributeLimit{Min: 10, Max: 50},
		Gasoline:   AttributeLimit{Min: 0, Max: 100},
		Rotation:   AttributeLimit{Min: 0.3, Max: 3.0},
		Ammunition: AttributeLimit{Min: 0, Max: 30},
		Kinetics:   AttributeLimit{Min: 50, Max: 150},
	}
}

// GameParams are the top-level tunables named in §6.
type GameParams struct {
	RespawnTimeMs        float64
	ReloadTimeMs         float64
	ShellLifetimeMs       float64 // advisory only — see SPEC_FULL §9 open question; shells expire on arena exit, not this timer
	GasolinePerUnit       float64
	GasolineSpeedPenalty float64
}

func DefaultGameParams() GameParams {
	return GameParams{
		RespawnTimeMs:        5000,
		ReloadTimeMs:         1000,
		ShellLifetimeMs:      3000,
		GasolinePerUnit:      0.02,
		GasolineSpeedPenalty: 0.4,
	}
}

// DamageParams is the per-attribute decrement a shell hit applies.
type DamageParams struct {
	Health   float64
	Speed    float64
	Rotation float64
	Kinetics float64
	Gasoline float64
}

func DefaultDamageParams() DamageParams {
	return DamageParams{Health: 1, Speed: 2, Rotation: 4, Kinetics: 15, Gasoline: 5}
}

// UpgradeDef is the per-type {value, count} configuration.
type UpgradeDef struct {
	Value float64
	Count int
}

type UpgradeTypes map[UpgradeType]UpgradeDef

func DefaultUpgradeTypes() UpgradeTypes {
	return UpgradeTypes{
		UpgradeSpeed:      {Value: 20, Count: 4},
		UpgradeGasoline:   {Value: 40, Count: 4},
		UpgradeRotation:   {Value: 0.5, Count: 3},
		UpgradeAmmunition: {Value: 10, Count: 4},
		UpgradeKinetics:   {Value: 25, Count: 3},
		UpgradeHealth:     {Value: 30, Count: 4},
	}
}

// TreeParams controls terrain generation (§4.9).
type TreeParams struct {
	MinTrees         int
	MaxTrees         int
	TreeSize         float64
	TreeSizeVariance float64
	ClusterGroups    int
	Clustering       float64 // 0..100
	TreeType         string
}

func DefaultTreeParams() TreeParams {
	return TreeParams{
		MinTrees:         20,
		MaxTrees:         40,
		TreeSize:         32,
		TreeSizeVariance: 10,
		ClusterGroups:    4,
		Clustering:       40,
		TreeType:         "pine",
	}
}

// PatchTypeParams describes one kind of decorative ground patch.
type PatchTypeParams struct {
	Enabled      bool
	Quantity     int
	Size         float64
	SizeVariance float64
	Opacity      float64
	Blend        string
}

type PatchParams struct {
	PatchTypes map[string]PatchTypeParams
}

func DefaultPatchParams() PatchParams {
	return PatchParams{
		PatchTypes: map[string]PatchTypeParams{
			"mud":   {Enabled: true, Quantity: 10, Size: 60, SizeVariance: 20, Opacity: 0.5, Blend: "multiply"},
			"grass": {Enabled: true, Quantity: 16, Size: 80, SizeVariance: 30, Opacity: 0.35, Blend: "overlay"},
		},
	}
}

// AISettings sets the difficulty-dependent tuning named in §4.6.
type AISettings struct {
	DecisionIntervalMs float64
	MinShotIntervalMs  float64
	Accuracy           float64
	RetreatHealthRatio float64
	EngagementRange    float64
}

// AILevel is the difficulty enum.
type AILevel int

const (
	AIEasy AILevel = iota
	AIIntermediate
	AIHard
	AIInsane
)

func AISettingsFor(level AILevel) AISettings {
	switch level {
	case AIEasy:
		return AISettings{DecisionIntervalMs: 1200, MinShotIntervalMs: 1400, Accuracy: 0.35, RetreatHealthRatio: 0.35, EngagementRange: 220}
	case AIHard:
		return AISettings{DecisionIntervalMs: 500, MinShotIntervalMs: 600, Accuracy: 0.75, RetreatHealthRatio: 0.2, EngagementRange: 320}
	case AIInsane:
		return AISettings{DecisionIntervalMs: 300, MinShotIntervalMs: 400, Accuracy: 0.9, RetreatHealthRatio: 0.15, EngagementRange: 350}
	default: // AIIntermediate
		return AISettings{DecisionIntervalMs: 800, MinShotIntervalMs: 900, Accuracy: 0.55, RetreatHealthRatio: 0.3, EngagementRange: 260}
	}
}

// GameSettings aggregates the whole configurable surface, merged at
// runtime by the updateSettings/applySettings inbound events (§6).
type GameSettings struct {
	Game            GameParams
	Damage          DamageParams
	UpgradeTypes    UpgradeTypes
	Tree            TreeParams
	Patch           PatchParams
	AttributeLimits AttributeLimits
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		Game:            DefaultGameParams(),
		Damage:          DefaultDamageParams(),
		UpgradeTypes:    DefaultUpgradeTypes(),
		Tree:            DefaultTreeParams(),
		Patch:           DefaultPatchParams(),
		AttributeLimits: DefaultAttributeLimits(),
	}
}

// ServerConfig holds process-level settings overridable from the
// environment.
type ServerConfig struct {
	Addr              string
	ClientDir         string
	DBPath            string
	ObservabilityOn   bool
	ObservabilityAddr string
	MaxTotalConns     int
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:              ":8080",
		ClientDir:         "../client",
		DBPath:            "terrain.db",
		ObservabilityOn:   true,
		ObservabilityAddr: "127.0.0.1:6060",
		MaxTotalConns:     1000,
	}
}

// ServerConfigFromEnv overlays environment variables onto the defaults.
func ServerConfigFromEnv() ServerConfig {
	cfg := DefaultServerConfig()
	if v := os.Getenv("TANKSERVER_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TANKSERVER_CLIENT_DIR"); v != "" {
		cfg.ClientDir = v
	}
	if v := os.Getenv("TANKSERVER_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TANKSERVER_OBSERVABILITY_ADDR"); v != "" {
		cfg.ObservabilityAddr = v
	}
	if v := os.Getenv("TANKSERVER_OBSERVABILITY"); v == "false" {
		cfg.ObservabilityOn = false
	}
	cfg.MaxTotalConns = getEnvInt("TANKSERVER_MAX_CONNS", cfg.MaxTotalConns)
	return cfg
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
