// Package dtx renders large texture-encoded 3D scenes.
//
// dtx targets BIM/CAD-scale models (millions of triangles) by packing
// object transforms, colors, flags, and geometry indices into GPU
// textures instead of per-vertex attribute buffers. A single draw call
// can then cover many objects with heterogeneous materials and
// visibility states: the vertex stage looks the object up by a computed
// index, reconstructs its matrices from texel rows, and decides
// per-triangle whether the object participates in the active render
// pass.
//
// The module is organized in dependency order:
//
//   - dtx (this package): scene-facing state shared by all layers — the
//     render pass enumeration, section planes, the scene configuration
//     snapshot that keys shader generation, and the per-frame context.
//   - rtc: relative-to-center coordinate rebasing. Keeps per-draw
//     arithmetic near the origin so 32-bit GPU transforms stay precise
//     at city-scale world extents.
//   - datatex: the texel scene encoding — binary layout of per-object
//     and per-polygon data in 2D textures, plus a layer builder.
//   - shader: deterministic shader source generation keyed by the
//     configuration hash (GLSL ES 3.00, with a WGSL dialect for the
//     WebGPU backend).
//   - render: the layer renderer — program cache and validity tracking,
//     per-draw uniform and texture binding, index-width bucket dispatch.
//   - soft: a CPU implementation of the vertex-stage decode pipeline,
//     used for picking fallback, previews, and as the executable ground
//     truth in tests.
//
// GPU access goes through the render.Device interface; backend/gl and
// backend/wgpu provide OpenGL and WebGPU implementations.
//
// By default dtx produces no log output. Call [SetLogger] to enable
// structured logging.
package dtx
