package soft

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Framebuffer is a color+depth target for the software rasterizer.
type Framebuffer struct {
	W, H  int
	Color []mgl32.Vec4
	Depth []float32
}

// NewFramebuffer creates a framebuffer cleared to transparent black and
// maximum depth.
func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{
		W:     w,
		H:     h,
		Color: make([]mgl32.Vec4, w*h),
		Depth: make([]float32, w*h),
	}
	fb.Clear()
	return fb
}

// Clear resets color to transparent black and depth to the far plane.
func (fb *Framebuffer) Clear() {
	for i := range fb.Color {
		fb.Color[i] = mgl32.Vec4{}
		fb.Depth[i] = 1
	}
}

// At returns the color at a pixel.
func (fb *Framebuffer) At(x, y int) mgl32.Vec4 {
	return fb.Color[y*fb.W+x]
}

// Covered counts pixels with any color written, for coverage checks.
func (fb *Framebuffer) Covered() int {
	n := 0
	for i := range fb.Color {
		if fb.Color[i].W() > 0 {
			n++
		}
	}
	return n
}

// Image converts the framebuffer to an 8-bit RGBA image.
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.W, fb.H))
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			c := fb.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(math32.Round(mgl32.Clamp(c.X(), 0, 1) * 255)),
				G: uint8(math32.Round(mgl32.Clamp(c.Y(), 0, 1) * 255)),
				B: uint8(math32.Round(mgl32.Clamp(c.Z(), 0, 1) * 255)),
				A: uint8(math32.Round(mgl32.Clamp(c.W(), 0, 1) * 255)),
			})
		}
	}
	return img
}

// edge is the signed parallelogram area of (a,b,p), positive for p left
// of ab.
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// Rasterize fills one assembled triangle with depth testing and
// per-fragment section-plane clipping. Triangles with any vertex behind
// the camera are rejected whole; fine near-plane clipping is out of
// scope for a test oracle.
func (fb *Framebuffer) Rasterize(tri Triangle, u *Uniforms) {
	var ndc [3]mgl32.Vec3
	var world [3]mgl32.Vec3
	for i, v := range tri {
		if v.ClipPos.W() <= 0 {
			return
		}
		inv := 1 / v.ClipPos.W()
		ndc[i] = mgl32.Vec3{v.ClipPos.X() * inv, v.ClipPos.Y() * inv, v.ClipPos.Z() * inv}
		world[i] = v.WorldPos.Vec3()
	}

	// Viewport transform, y down.
	var sx, sy [3]float32
	for i := range ndc {
		sx[i] = (ndc[i].X() + 1) * 0.5 * float32(fb.W)
		sy[i] = (1 - ndc[i].Y()) * 0.5 * float32(fb.H)
	}

	area := edge(sx[0], sy[0], sx[1], sy[1], sx[2], sy[2])
	if area == 0 {
		return
	}

	minX := int(math32.Floor(math32.Min(sx[0], math32.Min(sx[1], sx[2]))))
	maxX := int(math32.Ceil(math32.Max(sx[0], math32.Max(sx[1], sx[2]))))
	minY := int(math32.Floor(math32.Min(sy[0], math32.Min(sy[1], sy[2]))))
	maxY := int(math32.Ceil(math32.Max(sy[0], math32.Max(sy[1], sy[2]))))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > fb.W-1 {
		maxX = fb.W - 1
	}
	if maxY > fb.H-1 {
		maxY = fb.H - 1
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			py := float32(y) + 0.5
			w0 := edge(sx[1], sy[1], sx[2], sy[2], px, py) / area
			w1 := edge(sx[2], sy[2], sx[0], sy[0], px, py) / area
			w2 := edge(sx[0], sy[0], sx[1], sy[1], px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			depth := (w0*ndc[0].Z() + w1*ndc[1].Z() + w2*ndc[2].Z() + 1) * 0.5
			i := y*fb.W + x
			if depth > fb.Depth[i] {
				continue
			}

			worldPos := world[0].Mul(w0).Add(world[1].Mul(w1)).Add(world[2].Mul(w2))
			if clipped(worldPos, tri[0].Flags2, u.Planes) {
				continue
			}

			fb.Depth[i] = depth
			fb.Color[i] = tri[0].Color.Mul(w0).Add(tri[1].Color.Mul(w1)).Add(tri[2].Color.Mul(w2))
		}
	}
}

// Draw runs every bucket of a layer through the vertex stage and
// rasterizes the survivors.
func (fb *Framebuffer) Draw(tris []Triangle, u *Uniforms) {
	for _, tri := range tris {
		fb.Rasterize(tri, u)
	}
}
