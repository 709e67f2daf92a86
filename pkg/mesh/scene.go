package mesh

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/trishape/pkg/math"
)

// Scene loader errors.
var (
	ErrNoMesh            = errors.New("scene has no mesh")
	ErrBadVertexIndex    = errors.New("polygon references vertex out of range")
	ErrBadTransform      = errors.New("transform must have 16 elements")
	ErrLayerLengthWrong  = errors.New("per-loop layer length does not match loop count")
	ErrWeightCountWrong  = errors.New("vertex weight list length does not match vertex count")
	ErrTangentDataUneven = errors.New("tangent and bitangent sign counts differ")
	ErrBadVectorLength   = errors.New("vector has wrong number of components")
)

// Scene bundles a mesh with its optional armature, as loaded from a scene file.
type Scene struct {
	Mesh     *Mesh
	Armature *Armature
}

// Document types for the YAML scene format. Vectors are flat number
// sequences so scene files stay hand-editable.
type sceneDoc struct {
	Mesh     *meshDoc     `yaml:"mesh"`
	Armature *armatureDoc `yaml:"armature"`
}

type meshDoc struct {
	Name           string       `yaml:"name"`
	Transform      []float32    `yaml:"transform"`
	Scale          []float32    `yaml:"scale"`
	Positions      [][]float32  `yaml:"positions"`
	Polygons       []polygonDoc `yaml:"polygons"`
	Normals        [][]float32  `yaml:"normals"`
	Tangents       [][]float32  `yaml:"tangents"`
	BitangentSigns []float32    `yaml:"bitangent_signs"`
	UVLayers       []uvDoc      `yaml:"uv_layers"`
	ColorLayers    []colorDoc   `yaml:"color_layers"`
	Groups         []string     `yaml:"groups"`
	Weights        [][]weightDoc `yaml:"weights"`
}

type polygonDoc struct {
	Vertices []int  `yaml:"vertices"`
	Material int    `yaml:"material"`
	BodyPart *int   `yaml:"body_part"`
	Smooth   bool   `yaml:"smooth"`
	Normal   []float32 `yaml:"normal"`
}

type uvDoc struct {
	Name string      `yaml:"name"`
	UV   [][]float32 `yaml:"uv"`
}

type colorDoc struct {
	Name   string      `yaml:"name"`
	Colors [][]float32 `yaml:"colors"`
}

type weightDoc struct {
	Group  int     `yaml:"group"`
	Weight float32 `yaml:"weight"`
}

type armatureDoc struct {
	Name      string    `yaml:"name"`
	Transform []float32 `yaml:"transform"`
	Bones     []boneDoc `yaml:"bones"`
}

type boneDoc struct {
	Name string    `yaml:"name"`
	Rest []float32 `yaml:"rest"`
	Pose []float32 `yaml:"pose"`
}

// LoadScene reads a YAML scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	return ParseScene(data)
}

// ParseScene parses YAML scene data.
func ParseScene(data []byte) (*Scene, error) {
	var doc sceneDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if doc.Mesh == nil {
		return nil, ErrNoMesh
	}

	m, err := buildMesh(doc.Mesh)
	if err != nil {
		return nil, err
	}

	scene := &Scene{Mesh: m}
	if doc.Armature != nil {
		arm, err := buildArmature(doc.Armature)
		if err != nil {
			return nil, err
		}
		scene.Armature = arm
	}
	return scene, nil
}

func buildMesh(doc *meshDoc) (*Mesh, error) {
	m := &Mesh{
		Name:      doc.Name,
		Transform: math.Identity(),
		Scale:     math.Vec3{X: 1, Y: 1, Z: 1},
	}

	if doc.Transform != nil {
		t, err := toMat4(doc.Transform)
		if err != nil {
			return nil, fmt.Errorf("mesh %s: %w", doc.Name, err)
		}
		m.Transform = t
	}
	if len(doc.Scale) == 3 {
		m.Scale = toVec3(doc.Scale)
	}

	m.Positions = make([]math.Vec3, len(doc.Positions))
	for i, p := range doc.Positions {
		if len(p) != 3 {
			return nil, fmt.Errorf("position %d: %w", i, ErrBadVectorLength)
		}
		m.Positions[i] = toVec3(p)
	}

	// Loop indices are implicit in the file: corners are numbered in
	// polygon order.
	loop := 0
	m.Polygons = make([]Polygon, len(doc.Polygons))
	for i, p := range doc.Polygons {
		poly := Polygon{
			Vertices: p.Vertices,
			Loops:    make([]int, len(p.Vertices)),
			Material: p.Material,
			BodyPart: BodyPartNone,
			Smooth:   p.Smooth,
		}
		if p.BodyPart != nil {
			poly.BodyPart = *p.BodyPart
		}
		if len(p.Normal) == 3 {
			poly.Normal = toVec3(p.Normal)
		}
		for j, v := range p.Vertices {
			if v < 0 || v >= len(m.Positions) {
				return nil, fmt.Errorf("polygon %d corner %d: %w", i, j, ErrBadVertexIndex)
			}
			poly.Loops[j] = loop
			loop++
		}
		m.Polygons[i] = poly
	}

	loopCount := loop
	if doc.Normals != nil {
		if len(doc.Normals) != loopCount {
			return nil, fmt.Errorf("normals: %w", ErrLayerLengthWrong)
		}
		m.LoopNormals = make([]math.Vec3, loopCount)
		for i, n := range doc.Normals {
			if len(n) != 3 {
				return nil, fmt.Errorf("normal %d: %w", i, ErrBadVectorLength)
			}
			m.LoopNormals[i] = toVec3(n)
		}
	}
	if doc.Tangents != nil {
		if len(doc.Tangents) != loopCount {
			return nil, fmt.Errorf("tangents: %w", ErrLayerLengthWrong)
		}
		if len(doc.BitangentSigns) != len(doc.Tangents) {
			return nil, ErrTangentDataUneven
		}
		m.LoopTangents = make([]math.Vec3, loopCount)
		for i, tan := range doc.Tangents {
			if len(tan) != 3 {
				return nil, fmt.Errorf("tangent %d: %w", i, ErrBadVectorLength)
			}
			m.LoopTangents[i] = toVec3(tan)
		}
		m.BitangentSigns = doc.BitangentSigns
	}

	for _, l := range doc.UVLayers {
		if len(l.UV) != loopCount {
			return nil, fmt.Errorf("uv layer %s: %w", l.Name, ErrLayerLengthWrong)
		}
		layer := UVLayer{Name: l.Name, UV: make([]math.Vec2, loopCount)}
		for i, uv := range l.UV {
			if len(uv) != 2 {
				return nil, fmt.Errorf("uv layer %s coord %d: %w", l.Name, i, ErrBadVectorLength)
			}
			layer.UV[i] = math.Vec2{X: uv[0], Y: uv[1]}
		}
		m.UVLayers = append(m.UVLayers, layer)
	}

	for _, l := range doc.ColorLayers {
		if len(l.Colors) != loopCount {
			return nil, fmt.Errorf("color layer %s: %w", l.Name, ErrLayerLengthWrong)
		}
		layer := ColorLayer{Name: l.Name, Colors: make([]math.Color4, loopCount)}
		for i, c := range l.Colors {
			if len(c) != 4 {
				return nil, fmt.Errorf("color layer %s color %d: %w", l.Name, i, ErrBadVectorLength)
			}
			layer.Colors[i] = math.Color4{R: c[0], G: c[1], B: c[2], A: c[3]}
		}
		m.ColorLayers = append(m.ColorLayers, layer)
	}

	m.GroupNames = doc.Groups
	if doc.Weights != nil {
		if len(doc.Weights) != len(m.Positions) {
			return nil, ErrWeightCountWrong
		}
		m.VertexWeights = make([][]GroupWeight, len(doc.Weights))
		for i, ws := range doc.Weights {
			for _, w := range ws {
				m.VertexWeights[i] = append(m.VertexWeights[i], GroupWeight{Group: w.Group, Weight: w.Weight})
			}
		}
	}

	return m, nil
}

func buildArmature(doc *armatureDoc) (*Armature, error) {
	transform := math.Identity()
	if doc.Transform != nil {
		t, err := toMat4(doc.Transform)
		if err != nil {
			return nil, fmt.Errorf("armature %s: %w", doc.Name, err)
		}
		transform = t
	}

	bones := make([]Bone, len(doc.Bones))
	for i, b := range doc.Bones {
		rest, err := toMat4(b.Rest)
		if err != nil {
			return nil, fmt.Errorf("bone %s rest: %w", b.Name, err)
		}
		pose := rest
		if b.Pose != nil {
			pose, err = toMat4(b.Pose)
			if err != nil {
				return nil, fmt.Errorf("bone %s pose: %w", b.Name, err)
			}
		}
		bones[i] = Bone{Name: b.Name, Rest: rest, Pose: pose}
	}

	return NewArmature(doc.Name, transform, bones), nil
}

func toVec3(f []float32) math.Vec3 {
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}
}

func toMat4(f []float32) (math.Mat4, error) {
	if len(f) != 16 {
		return math.Identity(), ErrBadTransform
	}
	var m math.Mat4
	copy(m[:], f)
	return m, nil
}
