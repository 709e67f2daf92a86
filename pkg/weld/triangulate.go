package weld

import "fmt"

// FanTriangles fans a convex polygon's corner indices into len(f)-2
// triangles (f[0], f[1+i], f[2+i]). When flip is set, the last two indices
// of each triangle are swapped to reverse winding, which keeps mirrored
// (negative-scale) geometry facing outward.
//
// Input must be a triangle or a quad; the host applies triangulation before
// export, so anything larger is a contract violation and panics.
func FanTriangles(f []int, flip bool) [][3]int {
	n := len(f)
	if n < 3 {
		return nil
	}
	if n > 4 {
		panic(fmt.Sprintf("weld: %d-gon reached the triangulator; input must be pre-triangulated to tris or quads", n))
	}

	tris := make([][3]int, 0, n-2)
	for i := 0; i < n-2; i++ {
		if flip {
			tris = append(tris, [3]int{f[0], f[2+i], f[1+i]})
		} else {
			tris = append(tris, [3]int{f[0], f[1+i], f[2+i]})
		}
	}
	return tris
}
