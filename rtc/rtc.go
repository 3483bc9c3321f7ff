// Package rtc rebases world coordinates to a camera-relative origin.
//
// 32-bit floating transforms lose precision at large absolute
// coordinates, which shows up as vertex jitter on city-scale and
// infrastructure-scale models. Rebasing expresses all per-draw
// arithmetic relative to a layer's RTC (relative-to-center) origin so
// values stay near zero. All math here is float64; results are narrowed
// to float32 only at uniform-upload time.
package rtc

import "github.com/go-gl/mathgl/mgl64"

// center resolves the world-space rebase center for a layer: the RTC
// origin, rotated into the layer's local orientation when a rotation is
// present (oriented georeferenced layers), plus the model position
// offset.
func center(origin, position mgl64.Vec3, rotation *mgl64.Mat4) mgl64.Vec3 {
	o := origin
	if rotation != nil {
		o = rotation.Mul4x1(origin.Vec4(1)).Vec3()
	}
	return o.Add(position)
}

// isZero reports whether v is exactly the zero vector. Rebasing is
// skipped only on exact zero; near-zero origins still rebase.
func isZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// ViewMatrix returns the camera view matrix expressed relative to
// origin+position instead of absolute world space. When both origin and
// position are exactly zero the input matrix is returned unmodified,
// avoiding the matrix multiply for the common small-scene case.
//
// The result satisfies view' = view * translate(center): a point given
// in RTC space is shifted back to world space before the original view
// transform applies.
func ViewMatrix(origin, position mgl64.Vec3, rotation *mgl64.Mat4, view mgl64.Mat4) mgl64.Mat4 {
	if isZero(origin) && isZero(position) {
		return view
	}
	c := center(origin, position, rotation)
	return view.Mul4(mgl64.Translate3D(c[0], c[1], c[2]))
}

// Eye returns the camera eye position in the same relative space as the
// matrix produced by ViewMatrix. Recomputed every draw call: the eye
// changes every frame, so caching would be stale immediately.
func Eye(origin, position mgl64.Vec3, rotation *mgl64.Mat4, eye mgl64.Vec3) mgl64.Vec3 {
	if isZero(origin) && isZero(position) {
		return eye
	}
	return eye.Sub(center(origin, position, rotation))
}

// PlanePosition repositions a section plane's reference point into the
// layer's RTC space, using the same center as ViewMatrix so plane
// evaluation and vertex transforms agree.
func PlanePosition(origin, position mgl64.Vec3, rotation *mgl64.Mat4, planePos mgl64.Vec3) mgl64.Vec3 {
	if isZero(origin) && isZero(position) {
		return planePos
	}
	return planePos.Sub(center(origin, position, rotation))
}
