package main

// Patch is a purely cosmetic decorative ground decal — no collision, no
// gameplay effect, only replicated for renderer continuity (SPEC_FULL §3,
// §4.9). It has no teacher equivalent; modeled after the same
// "cosmetic, replicated, not authoritative" role the teacher gives tank
// recoil animation state.
type Patch struct {
	ID       string
	Position Vector2
	Size     float64
	Type     string
	Rotation float64
}
