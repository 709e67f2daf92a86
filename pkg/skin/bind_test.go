package skin

import (
	"errors"
	"testing"

	"github.com/Faultbox/trishape/pkg/math"
	"github.com/Faultbox/trishape/pkg/mesh"
)

func testArmature() *mesh.Armature {
	return mesh.NewArmature("Skeleton", math.Identity(), []mesh.Bone{
		{Name: "Root", Rest: math.Identity(), Pose: math.RotateZ(1.0)},
		{Name: "Limb", Rest: math.Translate(0, 2, 0), Pose: math.Translate(0, 3, 0)},
	})
}

func TestSolveBindPoseIdentity(t *testing.T) {
	arm := testArmature()

	data, err := SolveBindPose(math.Identity(), arm, []string{"Root", "Limb"})
	if err != nil {
		t.Fatal(err)
	}

	if !data.Transform.ApproxEqual(math.Identity(), 1e-5) {
		t.Errorf("overall transform = %v, want identity", data.Transform)
	}
	if len(data.Bones) != 2 {
		t.Fatalf("bone count = %d, want 2", len(data.Bones))
	}
	// Rest matrices must be sampled, not pose matrices: Root's rest is
	// identity, so its inverse bind is identity too.
	if !data.Bones[0].InverseBind.ApproxEqual(math.Identity(), 1e-5) {
		t.Errorf("Root inverse bind = %v, want identity", data.Bones[0].InverseBind)
	}
	// Limb rests at +2 on Y; the inverse bind moves points back by -2.
	if !data.Bones[1].InverseBind.ApproxEqual(math.Translate(0, -2, 0), 1e-5) {
		t.Errorf("Limb inverse bind = %v, want translate(0,-2,0)", data.Bones[1].InverseBind)
	}
}

func TestSolveBindPoseMeshTransform(t *testing.T) {
	arm := testArmature()
	meshTransform := math.Translate(5, 0, 0)

	data, err := SolveBindPose(meshTransform, arm, []string{"Root"})
	if err != nil {
		t.Fatal(err)
	}
	if !data.Transform.ApproxEqual(math.Translate(-5, 0, 0), 1e-5) {
		t.Errorf("overall transform = %v, want translate(-5,0,0)", data.Transform)
	}
	// inverse(bind ∘ overall): a mesh-space point at the origin sits at
	// world +5, which in Root's rest space is also +5.
	got := data.Bones[0].InverseBind.TransformPoint(math.Vec3{})
	want := math.Vec3{X: 5}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("origin through inverse bind = %v, want %v", got, want)
	}
}

func TestSolveBindPoseMissingRoot(t *testing.T) {
	_, err := SolveBindPose(math.Identity(), nil, []string{"Root"})
	if !errors.Is(err, ErrMissingSkeletonRoot) {
		t.Errorf("expected ErrMissingSkeletonRoot, got %v", err)
	}
}

func TestSolveBindPoseUnknownBone(t *testing.T) {
	arm := testArmature()
	_, err := SolveBindPose(math.Identity(), arm, []string{"NoSuchBone"})
	if !errors.Is(err, ErrUnknownBone) {
		t.Errorf("expected ErrUnknownBone, got %v", err)
	}
	// The error path must still restore the pose position: pose matrices
	// are visible again outside WithRestPose.
	m, _ := arm.BoneMatrix("Root")
	if !m.ApproxEqual(math.RotateZ(1.0), 1e-6) {
		t.Error("pose position not restored after failed solve")
	}
}

func TestBoundingSphere(t *testing.T) {
	tests := []struct {
		name       string
		points     []math.Vec3
		wantCenter math.Vec3
		wantRadius float32
	}{
		{"empty", nil, math.Vec3{}, 0},
		{"single", []math.Vec3{{X: 1}}, math.Vec3{X: 1}, 0},
		{
			"pair",
			[]math.Vec3{{X: -1}, {X: 3}},
			math.Vec3{X: 1},
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			center, radius := BoundingSphere(tt.points)
			if !center.ApproxEqual(tt.wantCenter, 1e-6) {
				t.Errorf("center = %v, want %v", center, tt.wantCenter)
			}
			if absDiff(radius, tt.wantRadius) > 1e-6 {
				t.Errorf("radius = %v, want %v", radius, tt.wantRadius)
			}
		})
	}
}

func TestUpdateBoneSpheres(t *testing.T) {
	s := &Skin{
		Bones: []string{"Arm"},
		Weights: map[string]map[int]float32{
			"Arm": {0: 0.5, 1: 0.5},
		},
	}
	data := &BindData{Bones: []BoneBind{{Name: "Arm"}}}
	positions := []math.Vec3{{X: -2}, {X: 2}}

	UpdateBoneSpheres(data, s, positions)
	if !data.Bones[0].Center.ApproxEqual(math.Vec3{}, 1e-6) {
		t.Errorf("center = %v, want origin", data.Bones[0].Center)
	}
	if absDiff(data.Bones[0].Radius, 2) > 1e-6 {
		t.Errorf("radius = %v, want 2", data.Bones[0].Radius)
	}
}
