// Package weld deduplicates per-face-corner attribute data into a minimal
// indexed vertex buffer under the 16-bit index ceiling of the target format.
//
// Corners that share a source vertex and agree on every present attribute
// within tolerance collapse to one welded vertex. The match is greedy and
// first-wins in insertion order, so near-tolerance attribute differences can
// produce slightly larger buffers than a globally optimal weld would; within
// tolerance the duplicates are interchangeable, so this is accepted.
package weld

import (
	"fmt"

	"github.com/Faultbox/trishape/pkg/math"
)

// Hard format limits: indices must fit in 16 bits.
const (
	MaxVertices  = 65535
	MaxTriangles = 65535
)

// CapacityError reports that a mesh overran a 16-bit format limit.
type CapacityError struct {
	What  string // "vertices" or "triangles"
	Count int    // the attempted count
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("too many %s: %d exceeds the format limit of %d, decimate the mesh", e.What, e.Count, MaxVertices)
}

// Epsilon holds the per-attribute comparison tolerances. Each attribute
// channel is compared independently.
type Epsilon struct {
	UV     float32
	Normal float32
	Color  float32
}

// DefaultEpsilon returns the tolerances used when none are configured.
func DefaultEpsilon() Epsilon {
	return Epsilon{UV: 0.005, Normal: 0.005, Color: 0.005}
}

// Uniform returns an Epsilon with every channel set to eps.
func Uniform(eps float32) Epsilon {
	return Epsilon{UV: eps, Normal: eps, Color: eps}
}

// Corner is one polygon corner during traversal: a source vertex index plus
// the attribute values the host supplies for that corner's loop.
type Corner struct {
	Vertex   int
	Position math.Vec3

	Normal    math.Vec3
	HasNormal bool

	UVs []math.Vec2

	Color    math.Color4
	HasColor bool

	Tangent       math.Vec3
	BitangentSign float32
	HasTangent    bool
}

// Triangle is three welded vertex indices plus the body part tag of the
// source polygon (mesh.BodyPartNone when untagged).
type Triangle struct {
	Index    [3]uint16
	BodyPart int
}

// Geometry is the welded output: flat per-vertex attribute arrays, the
// triangle index buffer, and the source-vertex fan-out map.
type Geometry struct {
	Positions      []math.Vec3
	Normals        []math.Vec3
	UVSets         [][]math.Vec2 // [layer][vertex]
	Colors         []math.Color4
	Tangents       []math.Vec3
	BitangentSigns []float32
	Triangles      []Triangle

	// SourceMap lists, per source vertex index, the welded vertices created
	// from it, in creation order. Used to replicate per-source-vertex data
	// (skin weights) onto every welded copy.
	SourceMap [][]int
}

// VertexCount returns the number of welded vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// Options configures a Builder for one material group.
type Options struct {
	// SourceVertices is the source mesh vertex count (sizes the fan-out map).
	SourceVertices int
	// UVLayers is the number of UV channels carried per corner.
	UVLayers int
	Normals  bool
	Colors   bool
	Tangents bool
	// FlipWinding reverses triangle winding, used for mirrored
	// (net-negative-scale) meshes.
	FlipWinding bool
	Epsilon     Epsilon
}

// Builder accumulates polygons for one material group and welds their
// corners as they arrive.
type Builder struct {
	opts Options
	geom Geometry
}

// NewBuilder returns a Builder for one material group.
func NewBuilder(opts Options) *Builder {
	b := &Builder{opts: opts}
	b.geom.SourceMap = make([][]int, opts.SourceVertices)
	b.geom.UVSets = make([][]math.Vec2, opts.UVLayers)
	return b
}

// AddPolygon welds the polygon's corners and fans it into triangles.
// Polygons with fewer than 3 corners are dropped silently. More than 4
// corners violates the pre-triangulated input contract and panics.
func (b *Builder) AddPolygon(corners []Corner, bodyPart int) error {
	n := len(corners)
	if n < 3 {
		return nil
	}

	indices := make([]int, n)
	for i := range corners {
		idx, err := b.weldCorner(&corners[i])
		if err != nil {
			return err
		}
		indices[i] = idx
	}

	for _, tri := range FanTriangles(indices, b.opts.FlipWinding) {
		if len(b.geom.Triangles) >= MaxTriangles {
			return &CapacityError{What: "triangles", Count: len(b.geom.Triangles) + 1}
		}
		b.geom.Triangles = append(b.geom.Triangles, Triangle{
			Index:    [3]uint16{uint16(tri[0]), uint16(tri[1]), uint16(tri[2])},
			BodyPart: bodyPart,
		})
	}
	return nil
}

// Geometry returns the welded output. The builder must not be reused after.
func (b *Builder) Geometry() *Geometry {
	return &b.geom
}

// weldCorner returns the index of an existing welded vertex whose attributes
// match the corner within tolerance, or appends a new one. Candidates are
// only ever other corners of the same source vertex, so positions are
// already identical and never compared.
func (b *Builder) weldCorner(c *Corner) (int, error) {
	for _, cand := range b.geom.SourceMap[c.Vertex] {
		if b.matches(c, cand) {
			return cand, nil
		}
	}

	idx := len(b.geom.Positions)
	if idx >= MaxVertices {
		return 0, &CapacityError{What: "vertices", Count: idx + 1}
	}

	b.geom.Positions = append(b.geom.Positions, c.Position)
	if b.opts.Normals {
		b.geom.Normals = append(b.geom.Normals, c.Normal)
	}
	for l := 0; l < b.opts.UVLayers; l++ {
		b.geom.UVSets[l] = append(b.geom.UVSets[l], c.UVs[l])
	}
	if b.opts.Colors {
		b.geom.Colors = append(b.geom.Colors, c.Color)
	}
	if b.opts.Tangents {
		b.geom.Tangents = append(b.geom.Tangents, c.Tangent)
		b.geom.BitangentSigns = append(b.geom.BitangentSigns, c.BitangentSign)
	}
	b.geom.SourceMap[c.Vertex] = append(b.geom.SourceMap[c.Vertex], idx)
	return idx, nil
}

// matches reports whether every present attribute of the corner agrees with
// welded vertex cand within the configured tolerances. Any channel exceeding
// its epsilon forces a new vertex.
func (b *Builder) matches(c *Corner, cand int) bool {
	for l := 0; l < b.opts.UVLayers; l++ {
		if !c.UVs[l].ApproxEqual(b.geom.UVSets[l][cand], b.opts.Epsilon.UV) {
			return false
		}
	}
	if b.opts.Normals && !c.Normal.ApproxEqual(b.geom.Normals[cand], b.opts.Epsilon.Normal) {
		return false
	}
	if b.opts.Colors && !c.Color.ApproxEqual(b.geom.Colors[cand], b.opts.Epsilon.Color) {
		return false
	}
	return true
}
