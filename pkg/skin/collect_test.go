package skin

import (
	"testing"

	"github.com/Faultbox/trishape/pkg/math"
	"github.com/Faultbox/trishape/pkg/mesh"
)

func TestCollectInfluences(t *testing.T) {
	m := &mesh.Mesh{
		Positions:  []math.Vec3{{}, {}, {}},
		GroupNames: []string{"Spine", "Pinned", "Neck"},
		VertexWeights: [][]mesh.GroupWeight{
			{{Group: 0, Weight: 0.8}, {Group: 1, Weight: 0.1}},
			{{Group: 2, Weight: 1.0}},
			nil,
		},
	}
	// "Pinned" has no matching bone: it is a plain vertex group, not an
	// influence, and must be ignored.
	arm := mesh.NewArmature("Skeleton", math.Identity(), []mesh.Bone{
		{Name: "Spine", Rest: math.Identity(), Pose: math.Identity()},
		{Name: "Neck", Rest: math.Identity(), Pose: math.Identity()},
	})

	influences := CollectInfluences(m, arm)
	if len(influences) != 2 {
		t.Fatalf("influence count = %d, want 2", len(influences))
	}
	if influences[0].Bone != "Spine" || influences[1].Bone != "Neck" {
		t.Errorf("bone order = %v %v, want Spine Neck", influences[0].Bone, influences[1].Bone)
	}
	if len(influences[0].Weights) != 1 || influences[0].Weights[0].Vertex != 0 {
		t.Errorf("Spine weights = %v, want one entry for vertex 0", influences[0].Weights)
	}
	if len(influences[1].Weights) != 1 || influences[1].Weights[0].Vertex != 1 {
		t.Errorf("Neck weights = %v, want one entry for vertex 1", influences[1].Weights)
	}
}
