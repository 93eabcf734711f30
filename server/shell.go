package main

// Shell is a fired projectile. Destroyed on any collision or when it
// leaves the arena (SPEC_FULL §3; shellLifetime is declared configuration
// but intentionally unused — see DESIGN.md open-question decisions).
type Shell struct {
	ID                   string
	ShooterID            string
	Position             Vector2
	Velocity             Vector2
	CreatedAtMs          float64
	ShooterImmunityUntil float64
	Alive                bool
}

const ShellRadius = 4.0

func (s *Shell) Bounds() Bounds {
	return NewBoundsCentered(s.Position, ShellRadius*2, ShellRadius*2)
}

// Update integrates the shell one step. Returns false once it has left
// the arena, signaling the caller to cull it (SPEC_FULL §4.1 step 8).
func (s *Shell) Update(dtMs float64, arena Bounds) bool {
	s.Position = s.Position.Add(s.Velocity.Scale(dtMs / 1000))
	return s.Position.X >= arena.X && s.Position.X <= arena.X+arena.W &&
		s.Position.Y >= arena.Y && s.Position.Y <= arena.Y+arena.H
}

// Speed returns the scalar velocity magnitude, used by the collision pass
// to decide whether the anti-tunneling fallback applies (SPEC_FULL §4.4).
func (s *Shell) Speed() float64 {
	return s.Velocity.Len()
}
