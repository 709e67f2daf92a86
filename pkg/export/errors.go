package export

import (
	"errors"
	"fmt"
)

// Export errors. Capacity and skin errors surface from pkg/weld and
// pkg/skin; the kinds below belong to the driver itself.
var (
	// ErrTooManyUVLayers is returned when the mesh carries more UV layers
	// than the target profile supports.
	ErrTooManyUVLayers = errors.New("too many UV layers for target profile")
)

// UnassignedBodyPartError lists every polygon that carries no body part tag
// on a mesh exported with body parts enabled. The whole set is enumerated
// before failing so the caller can highlight all offending polygons at once.
type UnassignedBodyPartError struct {
	Polygons []int
}

func (e *UnassignedBodyPartError) Error() string {
	return fmt.Sprintf("%d polygons not assigned to any body part: %v", len(e.Polygons), e.Polygons)
}

// TangentCountError reports tangent data whose length disagrees with the
// welded vertex count.
type TangentCountError struct {
	Tangents int
	Vertices int
}

func (e *TangentCountError) Error() string {
	return fmt.Sprintf("tangent count %d does not agree with vertex count %d", e.Tangents, e.Vertices)
}
