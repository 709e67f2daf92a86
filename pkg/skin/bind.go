package skin

import (
	"errors"
	"fmt"

	"github.com/Faultbox/trishape/pkg/math"
	"github.com/Faultbox/trishape/pkg/mesh"
)

// Bind pose errors.
var (
	ErrMissingSkeletonRoot = errors.New("skeleton root not found")
	ErrUnknownBone         = errors.New("bone not found in armature")
)

// BoneBind is one bone's contribution to the skin binding: the inverse bind
// transform plus the bounding sphere of the vertices weighted to it.
type BoneBind struct {
	Name        string
	InverseBind math.Mat4
	Center      math.Vec3
	Radius      float32
}

// BindData is the skin binding of one shape: the overall skin transform and
// one entry per influencing bone. Computed once per skinned mesh and
// immutable afterwards.
type BindData struct {
	Transform math.Mat4
	Bones     []BoneBind
}

// SolveBindPose computes the overall skin transform and each bone's inverse
// bind transform relative to the skeleton root.
//
// The overall transform is the robust inverse of the geometry's transform
// carried through the skeleton root chain. Bone matrices are sampled with
// the armature forced into its rest pose; the pose position is restored on
// every exit path and concurrent solves against one armature serialize on it.
func SolveBindPose(meshTransform math.Mat4, arm *mesh.Armature, bones []string) (*BindData, error) {
	if arm == nil {
		return nil, ErrMissingSkeletonRoot
	}

	// Geometry transform relative to the root, then back through the root:
	// keeping the root in the chain means any accumulated root offset
	// cancels consistently even when the two transforms disagree.
	relative := arm.Transform.Inverse().Mul(meshTransform)
	overall := arm.Transform.Mul(relative).Inverse()

	data := &BindData{Transform: overall}
	err := arm.WithRestPose(func() error {
		for _, name := range bones {
			boneMat, ok := arm.BoneMatrix(name)
			if !ok {
				return fmt.Errorf("bone %q: %w", name, ErrUnknownBone)
			}
			world := arm.Transform.Mul(boneMat)
			data.Bones = append(data.Bones, BoneBind{
				Name:        name,
				InverseBind: overall.Mul(world).Inverse(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// BoundingSphere returns the centroid of the points and the maximum distance
// from it. Recomputed whenever a partition's vertex set changes.
func BoundingSphere(points []math.Vec3) (math.Vec3, float32) {
	if len(points) == 0 {
		return math.Vec3{}, 0
	}

	var center math.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Scale(1 / float32(len(points)))

	var radius float32
	for _, p := range points {
		if d := center.Distance(p); d > radius {
			radius = d
		}
	}
	return center, radius
}

// UpdateBoneSpheres fills each bone's bounding sphere from the welded vertex
// positions weighted to it.
func UpdateBoneSpheres(data *BindData, s *Skin, positions []math.Vec3) {
	for i := range data.Bones {
		weights := s.Weights[data.Bones[i].Name]
		pts := make([]math.Vec3, 0, len(weights))
		for v := range weights {
			if v < len(positions) {
				pts = append(pts, positions[v])
			}
		}
		data.Bones[i].Center, data.Bones[i].Radius = BoundingSphere(pts)
	}
}
