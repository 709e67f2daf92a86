package math

import (
	gomath "math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	p := Vec3{1, 2, 3}
	if got := m.TransformPoint(p); got != p {
		t.Errorf("identity transform changed point: got %v, want %v", got, p)
	}
}

func TestMulOrder(t *testing.T) {
	// Translate then scale: scale applies to the translated point when
	// the translation is the right-hand operand.
	m := Scale(2, 2, 2).Mul(Translate(1, 0, 0))
	got := m.TransformPoint(Vec3{0, 0, 0})
	want := Vec3{2, 0, 0}
	if !got.ApproxEqual(want, 1e-6) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translation", Translate(3, -5, 7)},
		{"scale", Scale(2, 4, 0.5)},
		{"rotation", RotateZ(gomath.Pi / 3)},
		{"composed", Translate(1, 2, 3).Mul(RotateY(0.7)).Mul(Scale(2, 2, 2))},
		{"mirrored", Scale(-1, 1, 1).Mul(RotateX(1.1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.m.Inverse()
			if got := tt.m.Mul(inv); !got.ApproxEqual(Identity(), 1e-5) {
				t.Errorf("m * inverse(m) = %v, want identity", got)
			}
			if got := inv.Mul(tt.m); !got.ApproxEqual(Identity(), 1e-5) {
				t.Errorf("inverse(m) * m = %v, want identity", got)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	m := Scale(0, 1, 1)
	if got := m.Inverse(); !got.ApproxEqual(Identity(), 0) {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestDet(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want float32
	}{
		{"identity", Identity(), 1},
		{"scale", Scale(2, 3, 4), 24},
		{"mirror", Scale(-1, 1, 1), -1},
		{"singular", Scale(0, 1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Det(); absf(got-tt.want) > 1e-5 {
				t.Errorf("det = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformDirection(t *testing.T) {
	m := Translate(10, 20, 30)
	d := Vec3{0, 0, 1}
	if got := m.TransformDirection(d); got != d {
		t.Errorf("translation moved a direction: got %v, want %v", got, d)
	}
}
