package main

import "math"

// Vector2 is a 2D point or displacement. All methods take a value
// receiver and return a new value; none modifies the receiver in place.
type Vector2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{v.X + o.X, v.Y + o.Y}
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{v.X - o.X, v.Y - o.Y}
}

func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{v.X * s, v.Y * s}
}

func (v Vector2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2) LenSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalized returns the unit vector, or the zero vector if v is ~zero.
func (v Vector2) Normalized() Vector2 {
	l := v.Len()
	if l < 1e-9 {
		return Vector2{}
	}
	return Vector2{v.X / l, v.Y / l}
}

func (v Vector2) Rotate(rad float64) Vector2 {
	c, s := math.Cos(rad), math.Sin(rad)
	return Vector2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

func (v Vector2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

func (v Vector2) Dot(o Vector2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross is the 2D scalar cross product (z-component of the 3D cross).
func (v Vector2) Cross(o Vector2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vector2) Lerp(to Vector2, t float64) Vector2 {
	return Vector2{
		X: v.X + (to.X-v.X)*t,
		Y: v.Y + (to.Y-v.Y)*t,
	}
}

func (v Vector2) DistanceTo(o Vector2) float64 {
	return v.Sub(o).Len()
}

func (v Vector2) DistanceSqTo(o Vector2) float64 {
	return v.Sub(o).LenSq()
}

// Bounds is an axis-aligned bounding box, {x, y} being the top-left corner.
type Bounds struct {
	X, Y, W, H float64
}

func NewBoundsCentered(center Vector2, w, h float64) Bounds {
	return Bounds{X: center.X - w/2, Y: center.Y - h/2, W: w, H: h}
}

func (b Bounds) Overlaps(o Bounds) bool {
	return b.X < o.X+o.W && b.X+b.W > o.X && b.Y < o.Y+o.H && b.Y+b.H > o.Y
}

func (b Bounds) Center() Vector2 {
	return Vector2{b.X + b.W/2, b.Y + b.H/2}
}

// ClosestPoint returns the point on the bounds closest to p, used for
// circle-vs-AABB tests.
func (b Bounds) ClosestPoint(p Vector2) Vector2 {
	return Vector2{
		X: Clamp(p.X, b.X, b.X+b.W),
		Y: Clamp(p.Y, b.Y, b.Y+b.H),
	}
}

// CircleOverlapsBounds is the closest-point-on-AABB-to-circle-center test.
func CircleOverlapsBounds(center Vector2, radius float64, b Bounds) bool {
	cp := b.ClosestPoint(center)
	return center.DistanceSqTo(cp) <= radius*radius
}
