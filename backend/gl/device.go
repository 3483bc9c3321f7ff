//go:build !nogl

package gl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/render"
	"github.com/gpuviz/dtx/shader"
)

// glProgram pairs a linked program with its uniform location cache.
// Locations are resolved once per name; generated shaders address many
// uniforms per draw, so uncached lookups would dominate draw time.
type glProgram struct {
	handle    uint32
	locations map[string]int32
}

func (p *glProgram) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.handle, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

// Device implements render.Device on a current OpenGL context. All
// methods must be called on the thread that owns the context.
type Device struct {
	nextProgram render.ProgramID
	nextTexture render.TextureID

	programs map[render.ProgramID]*glProgram
	textures map[render.TextureID]uint32

	current *glProgram
	vao     uint32
}

// NewDevice initializes go-gl against the calling thread's current
// context and allocates the shared vertex array object. Generated
// shaders read everything from textures, so the VAO stays empty; core
// profiles still require one bound for drawing.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: init: %w", err)
	}
	d := &Device{
		programs: make(map[render.ProgramID]*glProgram),
		textures: make(map[render.TextureID]uint32),
	}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	dtx.Logger().Info("gl device ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return d, nil
}

// Destroy releases every program and texture the device still tracks,
// plus the shared VAO.
func (d *Device) Destroy() {
	for id := range d.programs {
		d.DeleteProgram(id)
	}
	for id := range d.textures {
		d.DeleteTexture(id)
	}
	gl.DeleteVertexArrays(1, &d.vao)
}

// SourceDialect reports GLSL.
func (d *Device) SourceDialect() shader.Dialect { return shader.GLSL }

// CreateProgram compiles and links both stages of generated source.
func (d *Device) CreateProgram(label string, src *shader.ProgramSource) (render.ProgramID, error) {
	vert, err := compileShader(gl.VERTEX_SHADER, src.VertexText())
	if err != nil {
		return 0, fmt.Errorf("%w: %s vertex: %v", render.ErrProgramCompile, label, err)
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(gl.FRAGMENT_SHADER, src.FragmentText())
	if err != nil {
		return 0, fmt.Errorf("%w: %s fragment: %v", render.ErrProgramCompile, label, err)
	}
	defer gl.DeleteShader(frag)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vert)
	gl.AttachShader(handle, frag)
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(handle, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(handle)
		return 0, fmt.Errorf("%w: %s link: %s", render.ErrProgramCompile, label, msg)
	}

	d.nextProgram++
	d.programs[d.nextProgram] = &glProgram{
		handle:    handle,
		locations: make(map[string]int32),
	}
	return d.nextProgram, nil
}

// DeleteProgram releases a program; the zero ID is ignored.
func (d *Device) DeleteProgram(id render.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	if d.current == p {
		d.current = nil
	}
	gl.DeleteProgram(p.handle)
	delete(d.programs, id)
}

// UseProgram binds a program for subsequent uniform writes and draws.
func (d *Device) UseProgram(id render.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	gl.UseProgram(p.handle)
	d.current = p
}

// CreateTexture uploads one layer data texture with nearest filtering;
// integer textures are incompatible with anything else, and the
// generated shaders only ever texelFetch.
func (d *Device) CreateTexture(desc *render.TextureDescriptor) (render.TextureID, error) {
	internal, format, xtype, ok := glFormat(desc.Format)
	if !ok {
		return 0, fmt.Errorf("gl: unsupported texture format %v", desc.Format)
	}

	var handle uint32
	gl.GenTextures(1, &handle)
	gl.BindTexture(gl.TEXTURE_2D, handle)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal,
		int32(desc.Width), int32(desc.Height), 0, format, xtype, gl.Ptr(desc.Data))

	d.nextTexture++
	d.textures[d.nextTexture] = handle
	return d.nextTexture, nil
}

// DeleteTexture releases a texture; the zero ID is ignored.
func (d *Device) DeleteTexture(id render.TextureID) {
	handle, ok := d.textures[id]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &handle)
	delete(d.textures, id)
}

// BindTexture binds a texture to a unit and points the named sampler
// uniform at it.
func (d *Device) BindTexture(unit int, name string, tex render.TextureID) {
	handle, ok := d.textures[tex]
	if !ok {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, handle)
	d.Uniform1i(name, int32(unit))
}

func (d *Device) Uniform1i(name string, v int32) {
	if d.current == nil {
		return
	}
	gl.Uniform1i(d.current.location(name), v)
}

func (d *Device) Uniform1f(name string, v float32) {
	if d.current == nil {
		return
	}
	gl.Uniform1f(d.current.location(name), v)
}

func (d *Device) Uniform3f(name string, x, y, z float32) {
	if d.current == nil {
		return
	}
	gl.Uniform3f(d.current.location(name), x, y, z)
}

func (d *Device) UniformBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	d.Uniform1i(name, i)
}

func (d *Device) UniformMatrix4fv(name string, m [16]float32) {
	if d.current == nil {
		return
	}
	gl.UniformMatrix4fv(d.current.location(name), 1, false, &m[0])
}

// DrawTriangles issues a non-indexed draw; the vertex stage synthesizes
// everything from gl_VertexID.
func (d *Device) DrawTriangles(first, count int) {
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
}

// compileShader compiles one stage, returning the shader handle or the
// driver's info log as an error.
func compileShader(xtype uint32, source string) (uint32, error) {
	handle := gl.CreateShader(xtype)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		msg := infoLog(handle, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(handle)
		return 0, fmt.Errorf("%s", msg)
	}
	return handle, nil
}

// infoLog fetches a shader or program info log.
func infoLog(handle uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8),
) string {
	var length int32
	getiv(handle, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return "no info log"
	}
	log := strings.Repeat("\x00", int(length+1))
	getLog(handle, length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// glFormat maps a WebGPU-style format to GL internal format, pixel
// format, and channel type.
func glFormat(f gputypes.TextureFormat) (internal int32, format, xtype uint32, ok bool) {
	switch f {
	case gputypes.TextureFormatRGBA32Uint:
		return gl.RGBA32UI, gl.RGBA_INTEGER, gl.UNSIGNED_INT, true
	case gputypes.TextureFormatRGBA16Uint:
		return gl.RGBA16UI, gl.RGBA_INTEGER, gl.UNSIGNED_SHORT, true
	case gputypes.TextureFormatRGBA8Uint:
		return gl.RGBA8UI, gl.RGBA_INTEGER, gl.UNSIGNED_BYTE, true
	case gputypes.TextureFormatR16Uint:
		return gl.R16UI, gl.RED_INTEGER, gl.UNSIGNED_SHORT, true
	case gputypes.TextureFormatRGBA32Float:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT, true
	default:
		return 0, 0, 0, false
	}
}
