// Package mesh defines the evaluated mesh and armature data consumed by the
// export pipeline. A Mesh mirrors what a host application hands over after
// modifier evaluation: shared vertex positions, polygons holding per-corner
// loop indices, per-loop attribute layers, and per-vertex group weights.
package mesh

import (
	"github.com/Faultbox/trishape/pkg/math"
)

// BodyPartNone marks a polygon that carries no body part tag.
const BodyPartNone = -1

// Polygon is a single face. Vertices index into Mesh.Positions and Loops
// index into the per-loop attribute arrays; both run in corner order.
type Polygon struct {
	Vertices []int
	Loops    []int
	Material int
	BodyPart int
	Smooth   bool
	// Normal is the face normal, used for every corner of flat-shaded polygons.
	Normal math.Vec3
}

// UVLayer is one named UV channel with one coordinate per loop.
type UVLayer struct {
	Name string
	UV   []math.Vec2
}

// ColorLayer is one named vertex color channel with one color per loop.
type ColorLayer struct {
	Name   string
	Colors []math.Color4
}

// GroupWeight is a raw (unnormalized) vertex group assignment.
type GroupWeight struct {
	Group  int
	Weight float32
}

// Mesh is an evaluated, triangulation-ready polygon mesh snapshot.
// It is read-only once handed to the exporter; material groups of the same
// mesh may be processed concurrently against the same snapshot.
type Mesh struct {
	Name string

	// Transform is the mesh object's world transform.
	Transform math.Mat4
	// Scale is the object scale; a negative component sum flips winding.
	Scale math.Vec3

	Positions []math.Vec3
	Polygons  []Polygon

	// Per-loop attributes. LoopNormals is empty when the mesh carries no
	// normals. LoopTangents/BitangentSigns are supplied by the host's
	// tangent derivation and are empty when tangents were not requested.
	LoopNormals    []math.Vec3
	LoopTangents   []math.Vec3
	BitangentSigns []float32

	UVLayers    []UVLayer
	ColorLayers []ColorLayer

	// GroupNames names the vertex groups; VertexWeights holds one raw
	// assignment list per vertex, indexing into GroupNames.
	GroupNames    []string
	VertexWeights [][]GroupWeight
}

// HasNormals reports whether per-loop normals are present.
func (m *Mesh) HasNormals() bool {
	return len(m.LoopNormals) > 0
}

// HasColors reports whether at least one vertex color layer is present.
func (m *Mesh) HasColors() bool {
	return len(m.ColorLayers) > 0
}

// HasTangents reports whether host-supplied tangent data is present.
func (m *Mesh) HasTangents() bool {
	return len(m.LoopTangents) > 0
}

// LoopCount returns the total number of face corners.
func (m *Mesh) LoopCount() int {
	n := 0
	for i := range m.Polygons {
		n += len(m.Polygons[i].Vertices)
	}
	return n
}

// MaterialCount returns the number of material slots referenced by the
// polygons. A mesh whose polygons all use slot 0 has one material group.
func (m *Mesh) MaterialCount() int {
	max := 0
	for i := range m.Polygons {
		if m.Polygons[i].Material > max {
			max = m.Polygons[i].Material
		}
	}
	return max + 1
}

// ScaleSign returns -1 when the object scale mirrors the geometry
// (component sum below zero), +1 otherwise.
func (m *Mesh) ScaleSign() float32 {
	if m.Scale.X+m.Scale.Y+m.Scale.Z < 0 {
		return -1
	}
	return 1
}

// GroupIndex returns the index of the named vertex group, or -1.
func (m *Mesh) GroupIndex(name string) int {
	for i, n := range m.GroupNames {
		if n == name {
			return i
		}
	}
	return -1
}
