package math

import "math"

// Mat4 is a 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation matrix around the X axis.
// angle is in radians.
func RotateX(angle float32) Mat4 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation matrix around the Y axis.
// angle is in radians.
func RotateY(angle float32) Mat4 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation matrix around the Z axis.
// angle is in radians.
func RotateZ(angle float32) Mat4 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// ApproxEqual reports whether every element of m is within eps of other.
func (m Mat4) ApproxEqual(other Mat4, eps float32) bool {
	for i := range m {
		if absf(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}

// Det returns the determinant, accumulated in float64.
func (m Mat4) Det() float32 {
	c := m.cofactorRow0()
	d := float64(m[0])*c[0] + float64(m[4])*c[1] + float64(m[8])*c[2] + float64(m[12])*c[3]
	return float32(d)
}

// Inverse returns the inverse of the matrix.
// Cofactors and the determinant are accumulated in float64 to keep the
// result stable for near-degenerate bind transforms.
// Returns identity if the matrix is singular.
func (m Mat4) Inverse() Mat4 {
	e := func(i int) float64 { return float64(m[i]) }

	c00 := e(5)*e(10)*e(15) - e(5)*e(11)*e(14) - e(9)*e(6)*e(15) + e(9)*e(7)*e(14) + e(13)*e(6)*e(11) - e(13)*e(7)*e(10)
	c01 := -e(1)*e(10)*e(15) + e(1)*e(11)*e(14) + e(9)*e(2)*e(15) - e(9)*e(3)*e(14) - e(13)*e(2)*e(11) + e(13)*e(3)*e(10)
	c02 := e(1)*e(6)*e(15) - e(1)*e(7)*e(14) - e(5)*e(2)*e(15) + e(5)*e(3)*e(14) + e(13)*e(2)*e(7) - e(13)*e(3)*e(6)
	c03 := -e(1)*e(6)*e(11) + e(1)*e(7)*e(10) + e(5)*e(2)*e(11) - e(5)*e(3)*e(10) - e(9)*e(2)*e(7) + e(9)*e(3)*e(6)

	c10 := -e(4)*e(10)*e(15) + e(4)*e(11)*e(14) + e(8)*e(6)*e(15) - e(8)*e(7)*e(14) - e(12)*e(6)*e(11) + e(12)*e(7)*e(10)
	c11 := e(0)*e(10)*e(15) - e(0)*e(11)*e(14) - e(8)*e(2)*e(15) + e(8)*e(3)*e(14) + e(12)*e(2)*e(11) - e(12)*e(3)*e(10)
	c12 := -e(0)*e(6)*e(15) + e(0)*e(7)*e(14) + e(4)*e(2)*e(15) - e(4)*e(3)*e(14) - e(12)*e(2)*e(7) + e(12)*e(3)*e(6)
	c13 := e(0)*e(6)*e(11) - e(0)*e(7)*e(10) - e(4)*e(2)*e(11) + e(4)*e(3)*e(10) + e(8)*e(2)*e(7) - e(8)*e(3)*e(6)

	c20 := e(4)*e(9)*e(15) - e(4)*e(11)*e(13) - e(8)*e(5)*e(15) + e(8)*e(7)*e(13) + e(12)*e(5)*e(11) - e(12)*e(7)*e(9)
	c21 := -e(0)*e(9)*e(15) + e(0)*e(11)*e(13) + e(8)*e(1)*e(15) - e(8)*e(3)*e(13) - e(12)*e(1)*e(11) + e(12)*e(3)*e(9)
	c22 := e(0)*e(5)*e(15) - e(0)*e(7)*e(13) - e(4)*e(1)*e(15) + e(4)*e(3)*e(13) + e(12)*e(1)*e(7) - e(12)*e(3)*e(5)
	c23 := -e(0)*e(5)*e(11) + e(0)*e(7)*e(9) + e(4)*e(1)*e(11) - e(4)*e(3)*e(9) - e(8)*e(1)*e(7) + e(8)*e(3)*e(5)

	c30 := -e(4)*e(9)*e(14) + e(4)*e(10)*e(13) + e(8)*e(5)*e(14) - e(8)*e(6)*e(13) - e(12)*e(5)*e(10) + e(12)*e(6)*e(9)
	c31 := e(0)*e(9)*e(14) - e(0)*e(10)*e(13) - e(8)*e(1)*e(14) + e(8)*e(2)*e(13) + e(12)*e(1)*e(10) - e(12)*e(2)*e(9)
	c32 := -e(0)*e(5)*e(14) + e(0)*e(6)*e(13) + e(4)*e(1)*e(14) - e(4)*e(2)*e(13) - e(12)*e(1)*e(6) + e(12)*e(2)*e(5)
	c33 := e(0)*e(5)*e(10) - e(0)*e(6)*e(9) - e(4)*e(1)*e(10) + e(4)*e(2)*e(9) + e(8)*e(1)*e(6) - e(8)*e(2)*e(5)

	det := e(0)*c00 + e(4)*c01 + e(8)*c02 + e(12)*c03
	if det == 0 {
		return Identity()
	}
	invDet := 1.0 / det

	return Mat4{
		float32(c00 * invDet), float32(c01 * invDet), float32(c02 * invDet), float32(c03 * invDet),
		float32(c10 * invDet), float32(c11 * invDet), float32(c12 * invDet), float32(c13 * invDet),
		float32(c20 * invDet), float32(c21 * invDet), float32(c22 * invDet), float32(c23 * invDet),
		float32(c30 * invDet), float32(c31 * invDet), float32(c32 * invDet), float32(c33 * invDet),
	}
}

func (m Mat4) cofactorRow0() [4]float64 {
	e := func(i int) float64 { return float64(m[i]) }
	return [4]float64{
		e(5)*e(10)*e(15) - e(5)*e(11)*e(14) - e(9)*e(6)*e(15) + e(9)*e(7)*e(14) + e(13)*e(6)*e(11) - e(13)*e(7)*e(10),
		-e(1)*e(10)*e(15) + e(1)*e(11)*e(14) + e(9)*e(2)*e(15) - e(9)*e(3)*e(14) - e(13)*e(2)*e(11) + e(13)*e(3)*e(10),
		e(1)*e(6)*e(15) - e(1)*e(7)*e(14) - e(5)*e(2)*e(15) + e(5)*e(3)*e(14) + e(13)*e(2)*e(7) - e(13)*e(3)*e(6),
		-e(1)*e(6)*e(11) + e(1)*e(7)*e(10) + e(5)*e(2)*e(11) - e(5)*e(3)*e(10) - e(9)*e(2)*e(7) + e(9)*e(3)*e(6),
	}
}
