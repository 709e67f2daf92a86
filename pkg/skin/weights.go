// Package skin turns raw vertex-group assignments into normalized per-bone
// weights on the welded vertex buffer, and computes the bind-pose transforms
// a runtime needs to deform it.
package skin

import (
	"fmt"
)

// Influence is one raw (unnormalized) weight of a bone on a source vertex.
type Influence struct {
	Vertex int
	Weight float32
}

// BoneInfluence is the raw weight list of one bone, in armature bone order.
type BoneInfluence struct {
	Bone    string
	Weights []Influence
}

// UnweightedVertexError reports every source vertex that ended up with no
// usable bone weight. The whole set is enumerated before failing so the
// caller can highlight all offending vertices at once.
type UnweightedVertexError struct {
	Vertices []int
}

func (e *UnweightedVertexError) Error() string {
	return fmt.Sprintf("cannot export skin: %d vertices carry no bone weight: %v", len(e.Vertices), e.Vertices)
}

// Skin is the normalized weight set of one material group, keyed by welded
// vertex index. Bones holds the bones that retained at least one weight, in
// the order their influences were supplied.
type Skin struct {
	Bones   []string
	Weights map[string]map[int]float32
}

// Normalize divides each source vertex's raw weights by their sum and
// replicates the result onto every welded copy of that vertex, so all copies
// of one source vertex always carry identical weight sets. Bones left with
// no weights are dropped. Source vertices that are present in the welded
// output but have a zero weight sum are collected in full and returned as an
// UnweightedVertexError.
func Normalize(influences []BoneInfluence, sourceMap [][]int) (*Skin, error) {
	// Per-source-vertex normalization factor.
	norm := make(map[int]float32)
	for _, bi := range influences {
		for _, inf := range bi.Weights {
			norm[inf.Vertex] += inf.Weight
		}
	}

	// A vertex that reached the welded output with no weight mass cannot be
	// deformed; collect the complete set before failing.
	var unweighted []int
	for v, welded := range sourceMap {
		if len(welded) == 0 {
			continue
		}
		if norm[v] == 0 {
			unweighted = append(unweighted, v)
		}
	}
	if len(unweighted) > 0 {
		return nil, &UnweightedVertexError{Vertices: unweighted}
	}

	s := &Skin{Weights: make(map[string]map[int]float32)}
	for _, bi := range influences {
		weights := make(map[int]float32)
		for _, inf := range bi.Weights {
			if inf.Vertex >= len(sourceMap) || norm[inf.Vertex] == 0 {
				continue
			}
			w := inf.Weight / norm[inf.Vertex]
			for _, welded := range sourceMap[inf.Vertex] {
				weights[welded] = w
			}
		}
		// A bone whose vertices were all welded away contributes nothing.
		if len(weights) == 0 {
			continue
		}
		s.Bones = append(s.Bones, bi.Bone)
		s.Weights[bi.Bone] = weights
	}
	return s, nil
}
