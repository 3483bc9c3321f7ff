// Command dtxdemo packs a small synthetic scene into a data-texture
// layer, prints the generated shader sources for the scene
// configuration, and renders the layer with the software pipeline.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	xdraw "golang.org/x/image/draw"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/datatex"
	"github.com/gpuviz/dtx/rtc"
	"github.com/gpuviz/dtx/shader"
	"github.com/gpuviz/dtx/soft"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		output = flag.String("output", "dtx.png", "output file")
	)
	flag.Parse()

	cfg := dtx.Config{
		SectionPlaneCount: 1,
		LogDepth:          true,
		LogDepthSupported: true,
		VertexOffsets:     true,
	}
	printSources(cfg)

	// A city-scale RTC origin: absolute coordinates this large would
	// jitter badly if transformed in float32 without rebasing.
	origin := mgl64.Vec3{4.2e6, 0, 3.1e6}

	layer, err := buildLayer(origin)
	if err != nil {
		log.Fatalf("build layer: %v", err)
	}
	log.Printf("layer: %d objects, %d vertices, %d triangles",
		layer.NumObjects, layer.Positions.Count,
		layer.Buckets[datatex.Bucket8].NumIndices/3)

	fb := render(layer, origin, cfg)

	// Render at quarter resolution and let x/image scale up; the
	// software rasterizer is a correctness oracle, not a speed demon.
	small := fb.Image()
	img := image.NewRGBA(image.Rect(0, 0, *width, *height))
	xdraw.ApproxBiLinear.Scale(img, img.Bounds(), small, small.Bounds(), xdraw.Over, nil)

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("encode: %v", err)
	}
	log.Printf("wrote %s (%dx%d)", *output, *width, *height)
}

// printSources generates both shader dialects for the configuration and
// reports their sizes.
func printSources(cfg dtx.Config) {
	cache := shader.NewSourceCache()
	glsl := cache.Get(cfg, shader.GLSL)
	wgsl := cache.Get(cfg, shader.WGSL)
	log.Printf("config %q", cfg.Hash())
	log.Printf("GLSL: %d vertex lines, %d fragment lines",
		len(glsl.Vertex), len(glsl.Fragment))
	log.Printf("WGSL: %d bytes, %d uniform fields, %d-byte uniform block",
		len(wgsl.Module), len(wgsl.Uniforms), wgsl.BlockSize)
}

// box returns the positions and triangle list of an axis-aligned box.
func box(cx, cy, cz, hx, hy, hz float32) ([]float32, []uint32) {
	positions := []float32{
		cx - hx, cy - hy, cz - hz,
		cx + hx, cy - hy, cz - hz,
		cx + hx, cy + hy, cz - hz,
		cx - hx, cy + hy, cz - hz,
		cx - hx, cy - hy, cz + hz,
		cx + hx, cy - hy, cz + hz,
		cx + hx, cy + hy, cz + hz,
		cx - hx, cy + hy, cz + hz,
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 4, 7, 0, 7, 3, // left
		1, 6, 5, 1, 2, 6, // right
		3, 7, 6, 3, 6, 2, // top
		0, 1, 5, 0, 5, 4, // bottom
	}
	return positions, indices
}

// buildLayer packs a handful of boxes around the RTC origin: a solid
// red one, a rotated green instance, a clippable blue slab, and an
// open-shell yellow box that exercises the dynamic backface flip.
func buildLayer(origin mgl64.Vec3) (*datatex.Layer, error) {
	b := datatex.NewBuilder(0)
	b.SetOrigin(origin)

	add := func(o datatex.Object) error {
		_, err := b.AddObject(o)
		return err
	}

	pos, idx := box(0, 0, 0, 0.6, 0.6, 0.6)
	if err := add(datatex.Object{
		Positions: pos, Indices: idx,
		Color: [4]uint8{230, 60, 60, 255},
		Pass:  dtx.PassColorOpaque,
		Solid: true,
	}); err != nil {
		return nil, err
	}

	rot := mgl32.HomogRotate3DY(0.7)
	pos, idx = box(1.8, 0, 0, 0.5, 0.9, 0.5)
	if err := add(datatex.Object{
		Positions: pos, Indices: idx,
		Color:          [4]uint8{70, 200, 90, 255},
		Pass:           dtx.PassColorOpaque,
		Solid:          true,
		InstanceMatrix: &rot,
	}); err != nil {
		return nil, err
	}

	pos, idx = box(-1.8, -0.2, 0, 0.5, 0.4, 1.2)
	if err := add(datatex.Object{
		Positions: pos, Indices: idx,
		Color:     [4]uint8{80, 110, 235, 255},
		Pass:      dtx.PassColorOpaque,
		Clippable: true,
		Solid:     true,
	}); err != nil {
		return nil, err
	}

	// Open shell: only five faces, so the inside is visible and the
	// vertex stage flips the winding per triangle.
	pos, idx = box(0, 1.6, 0, 0.4, 0.4, 0.4)
	if err := add(datatex.Object{
		Positions: pos, Indices: idx[6:],
		Color:  [4]uint8{235, 205, 70, 255},
		Pass:   dtx.PassColorOpaque,
		Solid:  false,
		Offset: [3]float32{0, 0.2, 0},
	}); err != nil {
		return nil, err
	}

	return b.Build()
}

// render runs the software pipeline over every bucket of the layer,
// rebasing the camera and section plane to the layer's RTC origin the
// way the GPU renderer rebases its uniforms.
func render(layer *datatex.Layer, origin mgl64.Vec3, cfg dtx.Config) *soft.Framebuffer {
	eye := origin.Add(mgl64.Vec3{3.5, 2.5, 5.5})
	view := mgl64.LookAtV(eye, origin, mgl64.Vec3{0, 1, 0})

	u := &soft.Uniforms{
		SceneModelMatrix: mgl32.Ident4(),
		ViewMatrix:       mat4f(rtc.ViewMatrix(layer.Origin, layer.Position, layer.Rotation, view)),
		ProjMatrix:       mgl32.Perspective(mgl32.DegToRad(45), 4.0/3.0, 0.1, 100),
		CameraEyeRTC:     vec3f(rtc.Eye(layer.Origin, layer.Position, layer.Rotation, eye)),
		RenderPass:       dtx.PassColorOpaque,
		VertexOffsets:    cfg.VertexOffsets,
	}

	// One vertical section plane through the blue slab.
	planePos := origin.Add(mgl64.Vec3{-1.8, 0, 0})
	u.Planes = []soft.Plane{{
		Active: true,
		Pos:    vec3f(rtc.PlanePosition(layer.Origin, layer.Position, layer.Rotation, planePos)),
		Dir:    mgl32.Vec3{0, 0, 1},
	}}

	fb := soft.NewFramebuffer(200, 150)
	for kind := datatex.Bucket8; kind < datatex.NumBuckets; kind++ {
		if layer.Buckets[kind].NumIndices == 0 {
			continue
		}
		fb.Draw(soft.DrawBucket(layer, kind, u), u)
	}
	return fb
}

func mat4f(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func vec3f(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
