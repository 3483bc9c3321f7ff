// Package wgpu implements render.Device on WebGPU through gogpu's HAL.
//
// Generated WGSL is translated to SPIR-V with naga at program build
// time. Named uniforms are staged into a packed uniform block whose
// layout comes with the generated source; writes flush to the GPU once
// per draw. Build with -tags nogpu to exclude the backend.
package wgpu
