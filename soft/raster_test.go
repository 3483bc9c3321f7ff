package soft

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/datatex"
)

// quadObject returns a unit quad at depth z with the given color and
// clippable state.
func quadObject(z float32, col [4]uint8, clippable bool) datatex.Object {
	return datatex.Object{
		Positions: []float32{
			-1, -1, z,
			1, -1, z,
			1, 1, z,
			-1, 1, z,
		},
		Indices:   []uint32{0, 2, 1, 0, 3, 2},
		Color:     col,
		Pass:      dtx.PassColorOpaque,
		Clippable: clippable,
		Solid:     true,
	}
}

func orthoUniforms() *Uniforms {
	return &Uniforms{
		SceneModelMatrix: mgl32.Ident4(),
		ViewMatrix:       mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		ProjMatrix:       mgl32.Ortho(-2, 2, -2, 2, 0.1, 100),
		CameraEyeRTC:     mgl32.Vec3{0, 0, 5},
		RenderPass:       dtx.PassColorOpaque,
	}
}

func TestRasterizeCoverageAndColor(t *testing.T) {
	layer := buildLayer(t, quadObject(0, [4]uint8{255, 0, 0, 255}, false))
	u := orthoUniforms()

	fb := NewFramebuffer(64, 64)
	fb.Draw(DrawBucket(layer, datatex.Bucket8, u), u)

	// The quad spans half the ortho volume in each axis: a quarter of
	// the pixels, within rasterization tolerance.
	covered := fb.Covered()
	if covered < 900 || covered > 1150 {
		t.Fatalf("covered pixels = %d, want ~1024", covered)
	}
	c := fb.At(32, 32)
	if c.X() < 0.99 || c.Y() > 0.01 || c.W() < 0.99 {
		t.Errorf("center color = %v, want red", c)
	}
}

func TestRasterizeDepthTest(t *testing.T) {
	// Red quad in front of green: the red one must win where they
	// overlap, regardless of draw order within the bucket.
	layer := buildLayer(t,
		quadObject(1, [4]uint8{0, 255, 0, 255}, false),
		quadObject(2, [4]uint8{255, 0, 0, 255}, false),
	)
	u := orthoUniforms()

	fb := NewFramebuffer(64, 64)
	fb.Draw(DrawBucket(layer, datatex.Bucket8, u), u)

	c := fb.At(32, 32)
	if c.X() < 0.99 || c.Y() > 0.01 {
		t.Errorf("center color = %v, want the nearer red quad", c)
	}
}

func TestRasterizeSectionPlaneClipsClippableOnly(t *testing.T) {
	// A vertical plane at x=0 facing +x discards clippable fragments
	// with x < 0.
	plane := Plane{Active: true, Pos: mgl32.Vec3{}, Dir: mgl32.Vec3{1, 0, 0}}

	run := func(clippable bool) (left, right mgl32.Vec4) {
		layer := buildLayer(t, quadObject(0, [4]uint8{0, 0, 255, 255}, clippable))
		u := orthoUniforms()
		u.Planes = []Plane{plane}
		fb := NewFramebuffer(64, 64)
		fb.Draw(DrawBucket(layer, datatex.Bucket8, u), u)
		return fb.At(20, 32), fb.At(44, 32)
	}

	left, right := run(true)
	if left.W() != 0 {
		t.Errorf("clippable fragment at x<0 survived: %v", left)
	}
	if right.Z() < 0.99 {
		t.Errorf("clippable fragment at x>0 clipped: %v", right)
	}

	left, right = run(false)
	if left.Z() < 0.99 || right.Z() < 0.99 {
		t.Errorf("non-clippable object clipped: left %v right %v", left, right)
	}
}

func TestRasterizeInactivePlaneIgnored(t *testing.T) {
	layer := buildLayer(t, quadObject(0, [4]uint8{0, 0, 255, 255}, true))
	u := orthoUniforms()
	u.Planes = []Plane{{Active: false, Dir: mgl32.Vec3{1, 0, 0}}}

	fb := NewFramebuffer(64, 64)
	fb.Draw(DrawBucket(layer, datatex.Bucket8, u), u)
	if c := fb.At(20, 32); c.Z() < 0.99 {
		t.Errorf("inactive plane clipped a fragment: %v", c)
	}
}

// TestEndToEndTwoObjectPasses renders a two-object layer once per pass
// and checks each pass sees only its own object.
func TestEndToEndTwoObjectPasses(t *testing.T) {
	opaque := quadObject(0, [4]uint8{255, 0, 0, 255}, false)
	pick := quadObject(1, [4]uint8{0, 255, 0, 255}, false)
	pick.Pass = dtx.PassPick
	layer := buildLayer(t, opaque, pick)

	u := orthoUniforms()

	fb := NewFramebuffer(32, 32)
	fb.Draw(DrawBucket(layer, datatex.Bucket8, u), u)
	if c := fb.At(16, 16); c.X() < 0.99 || c.Y() > 0.01 {
		t.Errorf("opaque pass center = %v, want red", c)
	}

	u.RenderPass = dtx.PassPick
	fb.Clear()
	fb.Draw(DrawBucket(layer, datatex.Bucket8, u), u)
	if c := fb.At(16, 16); c.Y() < 0.99 || c.X() > 0.01 {
		t.Errorf("pick pass center = %v, want green", c)
	}
}
