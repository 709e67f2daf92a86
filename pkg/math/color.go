package math

// Color4 is a floating-point RGBA color, used for per-corner vertex colors.
type Color4 struct {
	R, G, B, A float32
}

// ApproxEqual reports whether every channel of c is within eps of other.
func (c Color4) ApproxEqual(other Color4, eps float32) bool {
	return absf(c.R-other.R) <= eps && absf(c.G-other.G) <= eps &&
		absf(c.B-other.B) <= eps && absf(c.A-other.A) <= eps
}
