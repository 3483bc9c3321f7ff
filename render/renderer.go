package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/datatex"
	"github.com/gpuviz/dtx/rtc"
	"github.com/gpuviz/dtx/shader"
)

// Texture units, stable across draws so consecutive layers sharing a
// program skip redundant sampler uniform writes on GL backends.
const (
	unitAttributes = iota
	unitDecodeMatrices
	unitInstanceMatrices
	unitPositions
	unitOffsets
	unitIndices
	unitPortionIDs
)

// Option configures a LayerRenderer.
type Option func(*LayerRenderer)

// WithSourceCache shares a source cache across renderers. Without this
// option each renderer owns a private cache.
func WithSourceCache(c *shader.SourceCache) Option {
	return func(r *LayerRenderer) { r.sources = c }
}

// WithLabel sets the debug label prefix used for device resources.
func WithLabel(label string) Option {
	return func(r *LayerRenderer) { r.label = label }
}

// LayerRenderer draws texture-encoded layers through a Device. It owns
// one program, allocated lazily on first draw and reallocated whenever
// the configuration hash changes or the GPU context is lost.
//
// A LayerRenderer is single-goroutine, like the Device beneath it.
type LayerRenderer struct {
	device  Device
	sources *shader.SourceCache
	label   string
	prog    program
}

// NewLayerRenderer creates a renderer over the device. No GPU work
// happens until the first DrawLayer.
func NewLayerRenderer(device Device, opts ...Option) *LayerRenderer {
	r := &LayerRenderer{
		device: device,
		label:  "dtx/layer-draw",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sources == nil {
		r.sources = shader.NewSourceCache()
	}
	return r
}

// Valid reports whether the renderer's program matches the configuration
// snapshot without allocating anything.
func (r *LayerRenderer) Valid(cfg dtx.Config) bool {
	return r.prog.valid(cfg)
}

// NotifyContextLost discards the program without touching the device;
// the underlying GPU objects died with the context. The next draw
// rebuilds.
func (r *LayerRenderer) NotifyContextLost() {
	r.prog.forget()
}

// Destroy releases the renderer's program.
func (r *LayerRenderer) Destroy() {
	r.prog.release(r.device)
}

// DrawLayer draws one layer for one render pass.
//
// The draw is a no-op returning ErrProgramFailed while the renderer
// holds a build failure for the current configuration hash; a hash
// change retries. Buckets with no triangles or with missing textures
// are skipped. fc.DrawCalls advances once per bucket drawn.
func (r *LayerRenderer) DrawLayer(fc *dtx.FrameContext, cfg dtx.Config, layer *Layer, pass dtx.RenderPass, flags *RenderFlags) error {
	if r.prog.failedFor(cfg) {
		return ErrProgramFailed
	}
	if !r.prog.valid(cfg) {
		if err := r.prog.allocate(r.device, r.sources, cfg, r.label); err != nil {
			return err
		}
		// A fresh program has no uniform state; force the bind below.
		fc.LastProgramID = 0
	}

	if fc.LastProgramID != uint64(r.prog.id) {
		r.device.UseProgram(r.prog.id)
		fc.LastProgramID = uint64(r.prog.id)
	}

	// RTC rebase, once per draw: the view matrix and eye move into the
	// layer's origin-relative space before narrowing to float32.
	viewRTC := rtc.ViewMatrix(layer.Origin, layer.Position, layer.Rotation, fc.ViewMatrix)
	eyeRTC := rtc.Eye(layer.Origin, layer.Position, layer.Rotation, fc.Eye)

	r.device.Uniform1i(shader.URenderPass, int32(pass))
	r.device.UniformMatrix4fv(shader.USceneModelMatrix, mat4f(layer.ModelMatrix))
	r.device.UniformMatrix4fv(shader.UViewMatrix, mat4f(viewRTC))
	r.device.UniformMatrix4fv(shader.UProjMatrix, mat4f(fc.ProjMatrix))
	r.device.Uniform3f(shader.UCameraEyeRTC, float32(eyeRTC[0]), float32(eyeRTC[1]), float32(eyeRTC[2]))
	if cfg.LogDepthEnabled() {
		r.device.Uniform1f(shader.ULogDepthBufFC, fc.LogDepthBufFC)
	}

	r.uploadSectionPlanes(fc, cfg, layer, flags)

	r.device.BindTexture(unitAttributes, shader.SamplerObjectAttributes, layer.Textures.Attributes)
	r.device.BindTexture(unitDecodeMatrices, shader.SamplerObjectDecodeMatrices, layer.Textures.DecodeMatrices)
	r.device.BindTexture(unitInstanceMatrices, shader.SamplerObjectInstanceMatrices, layer.Textures.InstanceMatrices)
	r.device.BindTexture(unitPositions, shader.SamplerVertexCoords, layer.Textures.Positions)
	if cfg.VertexOffsets {
		r.device.BindTexture(unitOffsets, shader.SamplerObjectOffsets, layer.Textures.Offsets)
	}

	for kind := datatex.BucketKind(0); kind < datatex.NumBuckets; kind++ {
		bucket := layer.Buckets[kind]
		if bucket.NumIndices == 0 {
			continue
		}
		if bucket.Indices == 0 || bucket.PortionIDs == 0 {
			dtx.Logger().Warn("bucket skipped: missing texture",
				"layer", layer.Index, "bucket", kind.String())
			continue
		}
		r.device.BindTexture(unitIndices, shader.SamplerPolygonIndices, bucket.Indices)
		r.device.BindTexture(unitPortionIDs, shader.SamplerPortionIDs, bucket.PortionIDs)
		r.device.DrawTriangles(0, bucket.NumIndices)
		fc.DrawCalls++
	}

	return nil
}

// uploadSectionPlanes writes the plane uniform triples. Every declared
// plane gets its active flag each draw; position and direction are
// uploaded only for active planes, with the position rebased into the
// layer's RTC space.
func (r *LayerRenderer) uploadSectionPlanes(fc *dtx.FrameContext, cfg dtx.Config, layer *Layer, flags *RenderFlags) {
	for i := 0; i < cfg.SectionPlaneCount; i++ {
		active := flags.PlaneActive(layer.Index, i) &&
			i < len(fc.SectionPlanes) && fc.SectionPlanes[i].Active
		r.device.UniformBool(shader.SectionPlaneActive(i), active)
		if !active {
			continue
		}
		plane := fc.SectionPlanes[i]
		pos := rtc.PlanePosition(layer.Origin, layer.Position, layer.Rotation, plane.Pos)
		r.device.Uniform3f(shader.SectionPlanePos(i), float32(pos[0]), float32(pos[1]), float32(pos[2]))
		r.device.Uniform3f(shader.SectionPlaneDir(i), float32(plane.Dir[0]), float32(plane.Dir[1]), float32(plane.Dir[2]))
	}
}

// mat4f narrows a float64 matrix to the float32 column-major array the
// uniform upload expects.
func mat4f(m mgl64.Mat4) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
