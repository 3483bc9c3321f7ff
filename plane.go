package dtx

import "github.com/go-gl/mathgl/mgl64"

// SectionPlane is one world-space clipping plane. Fragments on the
// negative side of the plane (behind Dir relative to Pos) are discarded
// for clippable objects.
//
// Plane order is stable: plane i always maps to the shader uniform
// triple with index i.
type SectionPlane struct {
	// Active reports whether the plane clips anything this frame.
	// Inactive planes still exist in the shader; their "active" uniform
	// is uploaded as false so the fragment stage skips them.
	Active bool

	// Pos is a world-space point on the plane.
	Pos mgl64.Vec3

	// Dir is the plane normal. Geometry on the opposite side is clipped.
	Dir mgl64.Vec3
}
