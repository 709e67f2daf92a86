// Package partition splits a skinned triangle list into groups that each
// reference a bounded number of distinct bones, as required by fixed-function
// and limited-register GPU skinning.
package partition

import (
	"fmt"
	"sort"

	"github.com/Faultbox/trishape/pkg/weld"
)

// WeightPolicy decides what happens to the weight mass a vertex sheds when
// it carries more than the per-vertex bone limit.
type WeightPolicy int

const (
	// Redistribute spreads the discarded mass proportionally over the
	// retained weights, keeping each vertex's weights summing to one.
	Redistribute WeightPolicy = iota
	// Truncate drops the discarded mass outright.
	Truncate
)

// VertexBone is one bone weight on a welded vertex. Bone indexes the skin's
// bone table.
type VertexBone struct {
	Bone   int
	Weight float32
}

// Options configures the partitioner.
type Options struct {
	// MaxBonesPerPartition is the distinct-bone budget per partition (K).
	MaxBonesPerPartition int
	// MaxBonesPerVertex is the weight slot budget per vertex (M).
	MaxBonesPerVertex int
	// Policy selects what happens to weight mass shed to fit M.
	Policy WeightPolicy
	// PadBones pads every vertex to exactly M weight slots and the bone
	// table toward K, for fixed-layout consumers.
	PadBones bool
	// MaximizeBoneSharing makes partitions reuse a common bone table where
	// the budget allows, trading partition count for fewer per-draw state
	// changes.
	MaximizeBoneSharing bool
	// PartOrder ranks body part tags; tags listed earlier are emitted
	// first. Unlisted tags follow in ascending tag order.
	PartOrder []int
}

// TooManyBonesError reports a single triangle whose own bone set exceeds the
// per-partition budget; no split can fix that.
type TooManyBonesError struct {
	Triangle int
	Bones    int
	Limit    int
}

func (e *TooManyBonesError) Error() string {
	return fmt.Sprintf("triangle %d references %d bones, over the per-partition limit of %d", e.Triangle, e.Bones, e.Limit)
}

// Partition is one bounded triangle group. Triangles index into VertexMap,
// which maps back to welded vertex indices. Weights and BoneIndices run per
// local vertex with one entry per weight slot.
type Partition struct {
	BodyPart    int
	Bones       []int
	VertexMap   []uint16
	Triangles   [][3]uint16
	Weights     [][]float32
	BoneIndices [][]uint8
}

// Result is the full partitioning of one material group.
type Result struct {
	Partitions []Partition
	// LostWeight is the total weight mass discarded across the mesh while
	// fitting vertices into M slots. The caller decides whether it is
	// worth a warning.
	LostWeight float32
}

// Build partitions the triangles so that every triangle lands in exactly one
// partition, no partition references more than K distinct bones, and no
// vertex keeps more than M nonzero weights.
func Build(tris []weld.Triangle, vertexWeights [][]VertexBone, opts Options) (*Result, error) {
	if opts.MaxBonesPerPartition < 1 {
		return nil, fmt.Errorf("max bones per partition must be positive, got %d", opts.MaxBonesPerPartition)
	}
	if opts.MaxBonesPerVertex < 1 {
		return nil, fmt.Errorf("max bones per vertex must be positive, got %d", opts.MaxBonesPerVertex)
	}
	// Per-vertex bone indices are bytes into the partition's bone table.
	if opts.MaxBonesPerPartition > 255 {
		return nil, fmt.Errorf("max bones per partition must fit a byte bone index, got %d", opts.MaxBonesPerPartition)
	}

	reduced, lost := reduceWeights(vertexWeights, opts.MaxBonesPerVertex, opts.Policy)

	groups := orderTriangles(tris, opts.PartOrder)

	var open []*builder
	for _, g := range groups {
		for _, t := range g.tris {
			bones := triangleBones(tris[t], reduced)
			if len(bones) > opts.MaxBonesPerPartition {
				return nil, &TooManyBonesError{Triangle: t, Bones: len(bones), Limit: opts.MaxBonesPerPartition}
			}

			// First open partition of this body part with room for the
			// triangle's bones wins.
			var target *builder
			for _, b := range open {
				if b.bodyPart != g.part {
					continue
				}
				if b.roomFor(bones, opts.MaxBonesPerPartition) {
					target = b
					break
				}
			}
			if target == nil {
				target = &builder{bodyPart: g.part, boneSet: map[int]bool{}}
				open = append(open, target)
			}
			target.add(tris[t], bones)
		}
	}

	if opts.MaximizeBoneSharing {
		shareBoneTables(open, opts.MaxBonesPerPartition)
	}

	res := &Result{LostWeight: lost}
	for _, b := range open {
		res.Partitions = append(res.Partitions, b.finish(reduced, opts))
	}
	return res, nil
}

// reduceWeights caps each vertex at limit weight slots, keeping the heaviest
// weights. Returns the reduced lists and the total discarded mass.
func reduceWeights(vertexWeights [][]VertexBone, limit int, policy WeightPolicy) ([][]VertexBone, float32) {
	reduced := make([][]VertexBone, len(vertexWeights))
	var lost float32

	for v, weights := range vertexWeights {
		kept := make([]VertexBone, len(weights))
		copy(kept, weights)
		sort.SliceStable(kept, func(i, j int) bool {
			if kept[i].Weight != kept[j].Weight {
				return kept[i].Weight > kept[j].Weight
			}
			return kept[i].Bone < kept[j].Bone
		})

		if len(kept) > limit {
			var dropped, retained float32
			for _, w := range kept[limit:] {
				dropped += w.Weight
			}
			kept = kept[:limit]
			lost += dropped

			if policy == Redistribute && dropped > 0 {
				for _, w := range kept {
					retained += w.Weight
				}
				if retained > 0 {
					scale := (retained + dropped) / retained
					for i := range kept {
						kept[i].Weight *= scale
					}
				}
			}
		}
		reduced[v] = kept
	}
	return reduced, lost
}

type triGroup struct {
	part int
	tris []int
}

// orderTriangles buckets triangle indices by body part and orders the
// buckets by the caller's priority list, unlisted tags after listed ones.
func orderTriangles(tris []weld.Triangle, partOrder []int) []triGroup {
	byPart := map[int][]int{}
	var parts []int
	for i, t := range tris {
		if _, seen := byPart[t.BodyPart]; !seen {
			parts = append(parts, t.BodyPart)
		}
		byPart[t.BodyPart] = append(byPart[t.BodyPart], i)
	}

	rank := func(part int) int {
		for i, p := range partOrder {
			if p == part {
				return i
			}
		}
		return len(partOrder)
	}
	sort.SliceStable(parts, func(i, j int) bool {
		ri, rj := rank(parts[i]), rank(parts[j])
		if ri != rj {
			return ri < rj
		}
		return parts[i] < parts[j]
	})

	groups := make([]triGroup, len(parts))
	for i, p := range parts {
		groups[i] = triGroup{part: p, tris: byPart[p]}
	}
	return groups
}

func triangleBones(t weld.Triangle, reduced [][]VertexBone) []int {
	set := map[int]bool{}
	for _, idx := range t.Index {
		for _, w := range reduced[idx] {
			if w.Weight != 0 {
				set[w.Bone] = true
			}
		}
	}
	bones := make([]int, 0, len(set))
	for b := range set {
		bones = append(bones, b)
	}
	sort.Ints(bones)
	return bones
}

type builder struct {
	bodyPart int
	boneSet  map[int]bool
	bones    []int // insertion order
	tris     []weld.Triangle
}

func (b *builder) roomFor(bones []int, limit int) bool {
	extra := 0
	for _, bone := range bones {
		if !b.boneSet[bone] {
			extra++
		}
	}
	return len(b.boneSet)+extra <= limit
}

func (b *builder) add(t weld.Triangle, bones []int) {
	for _, bone := range bones {
		if !b.boneSet[bone] {
			b.boneSet[bone] = true
			b.bones = append(b.bones, bone)
		}
	}
	b.tris = append(b.tris, t)
}

// shareBoneTables greedily clusters partitions so that as many as possible
// carry an identical bone table within the budget. Ties between clusters of
// equal fit are broken by insertion order.
func shareBoneTables(open []*builder, limit int) {
	type cluster struct {
		boneSet map[int]bool
		bones   []int
		members []*builder
	}
	var clusters []*cluster

	for _, b := range open {
		var target *cluster
		for _, c := range clusters {
			extra := 0
			for _, bone := range b.bones {
				if !c.boneSet[bone] {
					extra++
				}
			}
			if len(c.boneSet)+extra <= limit {
				target = c
				break
			}
		}
		if target == nil {
			target = &cluster{boneSet: map[int]bool{}}
			clusters = append(clusters, target)
		}
		for _, bone := range b.bones {
			if !target.boneSet[bone] {
				target.boneSet[bone] = true
				target.bones = append(target.bones, bone)
			}
		}
		target.members = append(target.members, b)
	}

	for _, c := range clusters {
		shared := make([]int, len(c.bones))
		copy(shared, c.bones)
		sort.Ints(shared)
		for _, b := range c.members {
			b.bones = shared
		}
	}
}

// finish freezes a builder into a Partition: local vertex numbering in
// first-use order, remapped triangles, and per-vertex weight slots.
func (b *builder) finish(reduced [][]VertexBone, opts Options) Partition {
	p := Partition{BodyPart: b.bodyPart, Bones: b.bones}

	bonePos := make(map[int]int, len(b.bones))
	for i, bone := range b.bones {
		bonePos[bone] = i
	}

	local := map[uint16]uint16{}
	for _, t := range b.tris {
		var lt [3]uint16
		for i, welded := range t.Index {
			li, ok := local[welded]
			if !ok {
				li = uint16(len(p.VertexMap))
				local[welded] = li
				p.VertexMap = append(p.VertexMap, welded)
			}
			lt[i] = li
		}
		p.Triangles = append(p.Triangles, lt)
	}

	slots := 0
	for _, welded := range p.VertexMap {
		if n := len(reduced[welded]); n > slots {
			slots = n
		}
	}
	if opts.PadBones {
		slots = opts.MaxBonesPerVertex
		for len(p.Bones) < opts.MaxBonesPerPartition && len(p.Bones) > 0 {
			p.Bones = append(p.Bones, p.Bones[0])
		}
	}

	for _, welded := range p.VertexMap {
		weights := make([]float32, slots)
		boneIdx := make([]uint8, slots)
		for i, w := range reduced[welded] {
			if i >= slots {
				break
			}
			weights[i] = w.Weight
			boneIdx[i] = uint8(bonePos[w.Bone])
		}
		p.Weights = append(p.Weights, weights)
		p.BoneIndices = append(p.BoneIndices, boneIdx)
	}
	return p
}
