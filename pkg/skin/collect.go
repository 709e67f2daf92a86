package skin

import (
	"github.com/Faultbox/trishape/pkg/mesh"
)

// CollectInfluences gathers raw per-vertex weights for every vertex group
// whose name matches an armature bone. Groups without a matching bone are
// not influences and are ignored. The result follows armature bone order so
// downstream bone tables are deterministic.
func CollectInfluences(m *mesh.Mesh, arm *mesh.Armature) []BoneInfluence {
	var influences []BoneInfluence
	for _, name := range arm.BoneNames() {
		group := m.GroupIndex(name)
		if group < 0 {
			continue
		}

		var weights []Influence
		for v, assignments := range m.VertexWeights {
			for _, gw := range assignments {
				if gw.Group == group {
					weights = append(weights, Influence{Vertex: v, Weight: gw.Weight})
					break
				}
			}
		}
		influences = append(influences, BoneInfluence{Bone: name, Weights: weights})
	}
	return influences
}
