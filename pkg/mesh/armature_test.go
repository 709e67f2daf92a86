package mesh

import (
	"errors"
	"testing"

	"github.com/Faultbox/trishape/pkg/math"
)

func TestBoneMatrixFollowsPosePosition(t *testing.T) {
	rest := math.Translate(0, 1, 0)
	pose := math.Translate(0, 2, 0)
	arm := NewArmature("Skeleton", math.Identity(), []Bone{
		{Name: "Spine", Rest: rest, Pose: pose},
	})

	got, ok := arm.BoneMatrix("Spine")
	if !ok {
		t.Fatal("bone not found")
	}
	if !got.ApproxEqual(pose, 1e-6) {
		t.Error("default pose position did not return the pose matrix")
	}

	err := arm.WithRestPose(func() error {
		got, _ := arm.BoneMatrix("Spine")
		if !got.ApproxEqual(rest, 1e-6) {
			t.Error("rest pose scope did not return the rest matrix")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ = arm.BoneMatrix("Spine")
	if !got.ApproxEqual(pose, 1e-6) {
		t.Error("pose position not restored after rest pose scope")
	}
}

func TestWithRestPoseRestoresOnError(t *testing.T) {
	arm := NewArmature("Skeleton", math.Identity(), []Bone{
		{Name: "Spine", Rest: math.Translate(0, 1, 0), Pose: math.Translate(0, 2, 0)},
	})

	sentinel := errors.New("boom")
	if err := arm.WithRestPose(func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want sentinel", err)
	}

	got, _ := arm.BoneMatrix("Spine")
	if !got.ApproxEqual(math.Translate(0, 2, 0), 1e-6) {
		t.Error("pose position not restored after error")
	}
}

func TestBoneMatrixUnknown(t *testing.T) {
	arm := NewArmature("Skeleton", math.Identity(), nil)
	if _, ok := arm.BoneMatrix("Missing"); ok {
		t.Error("unknown bone reported as found")
	}
	if arm.HasBone("Missing") {
		t.Error("HasBone true for unknown bone")
	}
}
