// Package math provides the vector and matrix types used by the export pipeline.
package math

import "math"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// ApproxEqual reports whether every component of v is within eps of other.
func (v Vec2) ApproxEqual(other Vec2, eps float32) bool {
	return absf(v.X-other.X) <= eps && absf(v.Y-other.Y) <= eps
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
