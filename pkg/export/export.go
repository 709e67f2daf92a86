// Package export drives the mesh export pipeline: one shape per material
// group, each welded, triangulated, skinned, bind-posed and partitioned, in
// the layout a rigid fixed-schema model format expects.
package export

import (
	"encoding/binary"
	"fmt"
	stdmath "math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/trishape/pkg/math"
	"github.com/Faultbox/trishape/pkg/mesh"
	"github.com/Faultbox/trishape/pkg/partition"
	"github.com/Faultbox/trishape/pkg/skin"
	"github.com/Faultbox/trishape/pkg/weld"
)

// TangentMode selects how tangent space data is emitted.
type TangentMode int

const (
	// TangentArrays emits tangents and bitangents as per-vertex arrays.
	TangentArrays TangentMode = iota
	// TangentBlob emits one interleaved little-endian binary blob tagged
	// with TangentBlobName.
	TangentBlob
)

// TangentBlobName is the fixed name consumers use to locate the tangent blob.
const TangentBlobName = "Tangent space (binormal & tangent vectors)"

// Options holds the export tunables for one run.
type Options struct {
	// Epsilon is the attribute comparison tolerance used by the weld.
	Epsilon float32
	// MaxUVLayers caps the UV channels the target profile supports.
	// Zero means unlimited.
	MaxUVLayers int

	MaxBonesPerPartition int
	MaxBonesPerVertex    int
	// RecommendedBones, when nonzero, is the profile's preferred
	// bones-per-partition figure; deviating only logs advice.
	RecommendedBones    int
	PadBones            bool
	MaximizeBoneSharing bool
	WeightPolicy        partition.WeightPolicy
	// WeightLossWarn is the lost-weight mass above which a warning is
	// logged. The export still proceeds.
	WeightLossWarn float32

	// BodyParts requires every polygon to carry a body part tag and keeps
	// tags apart across partitions.
	BodyParts bool
	// PartOrder ranks body part tags for partition emission.
	PartOrder []int

	TangentMode TangentMode

	// Parallel processes material groups concurrently. The mesh snapshot
	// is shared read-only; the armature rest-pose scope serializes itself.
	Parallel bool

	// Logger receives pipeline diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions mirrors the stock exporter settings.
func DefaultOptions() Options {
	return Options{
		Epsilon:              0.005,
		MaxBonesPerPartition: 18,
		MaxBonesPerVertex:    4,
		WeightLossWarn:       0.005,
	}
}

// SkinData is the serializer-facing skin binding of one shape.
type SkinData struct {
	Transform  math.Mat4
	Bones      []skin.BoneBind
	Partitions []partition.Partition
	// LostWeight is the weight mass discarded while bounding per-vertex
	// weights during partitioning.
	LostWeight float32
}

// Shape is one material group's export output: the welded vertex arrays,
// the triangle index buffer and the optional skin.
type Shape struct {
	Name     string
	Material int

	Positions []math.Vec3
	Normals   []math.Vec3
	// UVSets carry the V coordinate already flipped to the target
	// convention (v' = 1 - v).
	UVSets [][]math.Vec2
	Colors []math.Color4

	Tangents   []math.Vec3
	Bitangents []math.Vec3
	// TangentBlob replaces the two arrays in TangentBlob mode.
	TangentBlob []byte

	Triangles [][3]uint16
	Skin      *SkinData
}

// Result is a full mesh export: one shape per non-empty material group.
type Result struct {
	// Session identifies this export run in logs and output.
	Session  string
	MeshName string
	Shapes   []*Shape
}

// Export runs the pipeline over every material group of the mesh.
// arm may be nil for unskinned meshes. No partial result is returned on
// error: any fatal condition in any group fails the whole mesh.
func Export(m *mesh.Mesh, arm *mesh.Armature, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	session := uuid.NewString()
	log = log.With(zap.String("session", session), zap.String("mesh", m.Name))

	if opts.MaxUVLayers > 0 && len(m.UVLayers) > opts.MaxUVLayers {
		return nil, fmt.Errorf("%w: mesh has %d, profile allows %d",
			ErrTooManyUVLayers, len(m.UVLayers), opts.MaxUVLayers)
	}
	if opts.RecommendedBones > 0 && opts.MaxBonesPerPartition != opts.RecommendedBones {
		log.Warn("bones per partition differs from profile recommendation",
			zap.Int("configured", opts.MaxBonesPerPartition),
			zap.Int("recommended", opts.RecommendedBones))
	}

	log.Info("exporting mesh",
		zap.Int("vertices", len(m.Positions)),
		zap.Int("polygons", len(m.Polygons)),
		zap.Int("materials", m.MaterialCount()),
		zap.Bool("skinned", arm != nil))

	materials := m.MaterialCount()
	shapes := make([]*Shape, materials)
	errs := make([]error, materials)

	runGroup := func(mat int) {
		shapes[mat], errs[mat] = exportGroup(m, arm, mat, materials, opts, log)
	}

	if opts.Parallel && materials > 1 {
		var wg sync.WaitGroup
		for mat := 0; mat < materials; mat++ {
			wg.Add(1)
			go func(mat int) {
				defer wg.Done()
				runGroup(mat)
			}(mat)
		}
		wg.Wait()
	} else {
		for mat := 0; mat < materials; mat++ {
			runGroup(mat)
		}
	}

	res := &Result{Session: session, MeshName: m.Name}
	for mat := 0; mat < materials; mat++ {
		if errs[mat] != nil {
			return nil, fmt.Errorf("material %d: %w", mat, errs[mat])
		}
		if shapes[mat] != nil {
			res.Shapes = append(res.Shapes, shapes[mat])
		}
	}
	return res, nil
}

// exportGroup runs the dedup → triangulate → normalize → bind → partition
// sequence for one material group. Returns (nil, nil) for a group no
// polygon uses.
func exportGroup(m *mesh.Mesh, arm *mesh.Armature, mat, materials int, opts Options, log *zap.Logger) (*Shape, error) {
	log = log.With(zap.Int("material", mat))

	b := weld.NewBuilder(weld.Options{
		SourceVertices: len(m.Positions),
		UVLayers:       len(m.UVLayers),
		Normals:        m.HasNormals(),
		Colors:         m.HasColors(),
		Tangents:       m.HasTangents(),
		FlipWinding:    m.ScaleSign() < 0,
		Epsilon:        weld.Uniform(opts.Epsilon),
	})

	var unassigned []int
	corners := make([]weld.Corner, 0, 4)

	for pi := range m.Polygons {
		poly := &m.Polygons[pi]
		if poly.Material != mat {
			continue
		}
		if len(poly.Vertices) < 3 {
			continue
		}

		bodyPart := poly.BodyPart
		if opts.BodyParts {
			if bodyPart < 0 {
				// Collect the full set before failing so every offending
				// polygon can be reported at once.
				unassigned = append(unassigned, pi)
				continue
			}
		} else {
			bodyPart = mesh.BodyPartNone
		}

		corners = corners[:0]
		for ci, v := range poly.Vertices {
			loop := poly.Loops[ci]
			c := weld.Corner{
				Vertex:   v,
				Position: m.Positions[v],
			}
			if m.HasNormals() {
				c.HasNormal = true
				if poly.Smooth {
					c.Normal = m.LoopNormals[loop]
				} else {
					c.Normal = poly.Normal
				}
			}
			if len(m.UVLayers) > 0 {
				c.UVs = make([]math.Vec2, len(m.UVLayers))
				for l := range m.UVLayers {
					c.UVs[l] = m.UVLayers[l].UV[loop]
				}
			}
			if m.HasColors() {
				c.HasColor = true
				c.Color = m.ColorLayers[0].Colors[loop]
			}
			if m.HasTangents() {
				c.HasTangent = true
				c.Tangent = m.LoopTangents[loop]
				c.BitangentSign = m.BitangentSigns[loop]
			}
			corners = append(corners, c)
		}

		if err := b.AddPolygon(corners, bodyPart); err != nil {
			return nil, err
		}
	}

	if len(unassigned) > 0 {
		return nil, &UnassignedBodyPartError{Polygons: unassigned}
	}

	geom := b.Geometry()
	if geom.VertexCount() == 0 {
		// Unused material slot.
		return nil, nil
	}

	shape := &Shape{
		Name:      shapeName(m.Name, mat, materials),
		Material:  mat,
		Positions: geom.Positions,
		Normals:   geom.Normals,
		Colors:    geom.Colors,
		Triangles: make([][3]uint16, len(geom.Triangles)),
	}
	for i, t := range geom.Triangles {
		shape.Triangles[i] = t.Index
	}

	// The target format flips the texture V coordinate (OpenGL standard).
	shape.UVSets = make([][]math.Vec2, len(geom.UVSets))
	for l, set := range geom.UVSets {
		flipped := make([]math.Vec2, len(set))
		for i, uv := range set {
			flipped[i] = math.Vec2{X: uv.X, Y: 1 - uv.Y}
		}
		shape.UVSets[l] = flipped
	}

	if m.HasTangents() {
		if err := emitTangents(shape, geom, opts.TangentMode); err != nil {
			return nil, err
		}
	}

	if arm != nil {
		sd, err := exportSkin(m, arm, geom, opts, log)
		if err != nil {
			return nil, err
		}
		shape.Skin = sd
	}

	log.Info("shape ready",
		zap.String("shape", shape.Name),
		zap.Int("welded_vertices", geom.VertexCount()),
		zap.Int("triangles", len(shape.Triangles)),
		zap.Bool("skinned", shape.Skin != nil))
	return shape, nil
}

// exportSkin normalizes weights, solves the bind pose and partitions the
// triangles for one material group. Returns nil when no vertex group
// matches a bone (mesh parented without skinning).
func exportSkin(m *mesh.Mesh, arm *mesh.Armature, geom *weld.Geometry, opts Options, log *zap.Logger) (*SkinData, error) {
	influences := skin.CollectInfluences(m, arm)
	if len(influences) == 0 {
		return nil, nil
	}

	s, err := skin.Normalize(influences, geom.SourceMap)
	if err != nil {
		return nil, err
	}

	bind, err := skin.SolveBindPose(m.Transform, arm, s.Bones)
	if err != nil {
		return nil, err
	}
	skin.UpdateBoneSpheres(bind, s, geom.Positions)

	// Per welded vertex weight lists with bone indices into s.Bones.
	vertexWeights := make([][]partition.VertexBone, geom.VertexCount())
	for bi, bone := range s.Bones {
		for v, w := range s.Weights[bone] {
			vertexWeights[v] = append(vertexWeights[v], partition.VertexBone{Bone: bi, Weight: w})
		}
	}

	part, err := partition.Build(geom.Triangles, vertexWeights, partition.Options{
		MaxBonesPerPartition: opts.MaxBonesPerPartition,
		MaxBonesPerVertex:    opts.MaxBonesPerVertex,
		Policy:               opts.WeightPolicy,
		PadBones:             opts.PadBones,
		MaximizeBoneSharing:  opts.MaximizeBoneSharing,
		PartOrder:            opts.PartOrder,
	})
	if err != nil {
		return nil, err
	}

	if part.LostWeight > opts.WeightLossWarn {
		log.Warn("weights lost while bounding bones per vertex",
			zap.Float64("lost", float64(part.LostWeight)),
			zap.Int("max_bones_per_vertex", opts.MaxBonesPerVertex))
	}

	return &SkinData{
		Transform:  bind.Transform,
		Bones:      bind.Bones,
		Partitions: part.Partitions,
		LostWeight: part.LostWeight,
	}, nil
}

// emitTangents derives bitangents from the welded normals, tangents and
// bitangent signs, then emits them in the requested mode. The emitted
// tangent is the negated bitangent and vice versa: the target format flips
// V, which swaps the roles of the two vectors.
func emitTangents(shape *Shape, geom *weld.Geometry, mode TangentMode) error {
	if len(geom.Tangents) != geom.VertexCount() {
		return &TangentCountError{Tangents: len(geom.Tangents), Vertices: geom.VertexCount()}
	}

	tangents := make([]math.Vec3, geom.VertexCount())
	bitangents := make([]math.Vec3, geom.VertexCount())
	for i := range geom.Tangents {
		var normal math.Vec3
		if len(geom.Normals) > 0 {
			normal = geom.Normals[i]
		}
		bitan := normal.Cross(geom.Tangents[i]).Scale(geom.BitangentSigns[i])
		tangents[i] = bitan.Scale(-1)
		bitangents[i] = geom.Tangents[i]
	}

	if mode == TangentBlob {
		shape.TangentBlob = packTangentBlob(tangents, bitangents)
		return nil
	}
	shape.Tangents = tangents
	shape.Bitangents = bitangents
	return nil
}

// packTangentBlob serializes tangents followed by bitangents as
// little-endian float32 triples.
func packTangentBlob(tangents, bitangents []math.Vec3) []byte {
	buf := make([]byte, 0, (len(tangents)+len(bitangents))*12)
	put := func(v math.Vec3) {
		buf = binary.LittleEndian.AppendUint32(buf, floatBits(v.X))
		buf = binary.LittleEndian.AppendUint32(buf, floatBits(v.Y))
		buf = binary.LittleEndian.AppendUint32(buf, floatBits(v.Z))
	}
	for _, v := range tangents {
		put(v)
	}
	for _, v := range bitangents {
		put(v)
	}
	return buf
}

func floatBits(f float32) uint32 {
	return stdmath.Float32bits(f)
}

func shapeName(base string, mat, materials int) string {
	if materials > 1 {
		return fmt.Sprintf("%s: %d", base, mat)
	}
	return base
}
