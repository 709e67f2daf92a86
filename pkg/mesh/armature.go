package mesh

import (
	"sync"

	"github.com/Faultbox/trishape/pkg/math"
)

// PoseMode selects which set of bone matrices an armature currently exposes.
type PoseMode int

const (
	// PosePose exposes the animated pose matrices.
	PosePose PoseMode = iota
	// PoseRest exposes the bind (rest) matrices.
	PoseRest
)

// Bone holds a bone's armature-space matrices for both pose positions.
type Bone struct {
	Name string
	Rest math.Mat4
	Pose math.Mat4
}

// Armature is the skeleton collaborator. Its pose position is process-wide
// mutable state shared by every mesh skinned to it, so sampling under a
// forced rest pose goes through WithRestPose, which serializes access and
// restores the previous position on every exit path.
type Armature struct {
	Name string
	// Transform is the armature object's world transform (the skeleton root).
	Transform math.Mat4

	mu     sync.Mutex
	pose   PoseMode
	bones  []Bone
	byName map[string]int
}

// NewArmature builds an armature in pose position PosePose.
func NewArmature(name string, transform math.Mat4, bones []Bone) *Armature {
	byName := make(map[string]int, len(bones))
	for i, b := range bones {
		byName[b.Name] = i
	}
	return &Armature{
		Name:      name,
		Transform: transform,
		bones:     bones,
		byName:    byName,
	}
}

// HasBone reports whether a bone with the given name exists.
func (a *Armature) HasBone(name string) bool {
	_, ok := a.byName[name]
	return ok
}

// BoneNames returns the bone names in definition order.
func (a *Armature) BoneNames() []string {
	names := make([]string, len(a.bones))
	for i, b := range a.bones {
		names[i] = b.Name
	}
	return names
}

// BoneMatrix samples the named bone's armature-space matrix for the current
// pose position. The second return value is false for unknown bones.
func (a *Armature) BoneMatrix(name string) (math.Mat4, bool) {
	i, ok := a.byName[name]
	if !ok {
		return math.Identity(), false
	}
	if a.pose == PoseRest {
		return a.bones[i].Rest, true
	}
	return a.bones[i].Pose, true
}

// WithRestPose runs fn with the armature forced into its rest pose.
// The previous pose position is restored unconditionally, including when fn
// returns an error, and concurrent callers are serialized.
func (a *Armature) WithRestPose(fn func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.pose
	a.pose = PoseRest
	defer func() { a.pose = prev }()

	return fn()
}
