package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gpuviz/dtx/shader"
)

// DeviceHandle provides GPU device access from a host application built
// on the gpucontext ecosystem. backend/wgpu accepts one and wraps it in
// a Device.
//
// The renderer RECEIVES its device from the host, it does not create
// one; GPU resources stay shared with the rest of the application.
type DeviceHandle = gpucontext.DeviceProvider

// ProgramID identifies a compiled and linked program on a Device. The
// zero value is never a valid program.
type ProgramID uint64

// TextureID identifies an uploaded texture on a Device. The zero value
// is never a valid texture.
type TextureID uint64

// TextureDescriptor describes one layer data texture. Formats follow
// the WebGPU texture format enumeration; GL backends translate them to
// internal format/format/type triples.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width and Height are the texture dimensions in texels.
	Width  int
	Height int

	// Format is the texel format. Layer data textures are integer or
	// float formats sampled with texelFetch; filtering never applies.
	Format gputypes.TextureFormat

	// Data is the full texture content, tightly packed rows,
	// little-endian channel values.
	Data []byte
}

// Device is the GPU surface the layer renderer draws through.
// Implementations are not required to be safe for concurrent use; the
// renderer issues all calls from one goroutine.
//
// Uniform and texture-binding setters address the currently bound
// program's uniforms by shader name, in either dialect: GL backends
// resolve names to locations, WGPU backends to uniform-block offsets.
type Device interface {
	// SourceDialect reports which shading language the device consumes.
	// The renderer generates program source in this dialect.
	SourceDialect() shader.Dialect

	// CreateProgram compiles and links generated source. A failed
	// compile returns an error wrapping ErrProgramCompile.
	CreateProgram(label string, src *shader.ProgramSource) (ProgramID, error)

	// DeleteProgram releases a program. Deleting the zero ID is a no-op.
	DeleteProgram(ProgramID)

	// UseProgram binds a program for subsequent uniform uploads and
	// draws.
	UseProgram(ProgramID)

	// CreateTexture uploads one layer data texture.
	CreateTexture(desc *TextureDescriptor) (TextureID, error)

	// DeleteTexture releases a texture. Deleting the zero ID is a no-op.
	DeleteTexture(TextureID)

	// BindTexture binds a texture to a unit and points the named sampler
	// uniform at that unit.
	BindTexture(unit int, name string, tex TextureID)

	// Uniform1i sets a scalar int uniform.
	Uniform1i(name string, v int32)

	// Uniform1f sets a scalar float uniform.
	Uniform1f(name string, v float32)

	// Uniform3f sets a vec3 uniform.
	Uniform3f(name string, x, y, z float32)

	// UniformBool sets a bool uniform.
	UniformBool(name string, v bool)

	// UniformMatrix4fv sets a mat4 uniform, column-major.
	UniformMatrix4fv(name string, m [16]float32)

	// DrawTriangles draws count synthetic vertices starting at first.
	// No vertex attributes are bound; the vertex stage derives all data
	// from gl_VertexID and the bound textures.
	DrawTriangles(first, count int)
}
