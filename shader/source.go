package shader

import (
	"strings"

	"github.com/gpuviz/dtx"
)

// Dialect selects the target shading language.
type Dialect uint8

const (
	// GLSL is GLSL ES 3.00, consumed by backend/gl.
	GLSL Dialect = iota

	// WGSL is WebGPU shading language, consumed by backend/wgpu after
	// SPIR-V translation.
	WGSL
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	default:
		return "unknown"
	}
}

// ProgramSource is the full generated source for one configuration
// snapshot. For GLSL, Vertex and Fragment carry the two stages and
// Module is empty. For WGSL, Module carries a single-module program
// with vs_main/fs_main entry points and Uniforms describes the packed
// uniform block the host must stage.
type ProgramSource struct {
	// Hash is the configuration hash the source was generated from.
	Hash string

	// Dialect is the shading language of the source.
	Dialect Dialect

	// Vertex and Fragment are the GLSL stages, one line per element.
	Vertex   []string
	Fragment []string

	// Module is the WGSL module text.
	Module string

	// Uniforms is the WGSL uniform block layout. Empty for GLSL, which
	// addresses uniforms by name.
	Uniforms []UniformField

	// BlockSize is the WGSL uniform block size in bytes.
	BlockSize int
}

// VertexText returns the vertex stage joined with newlines.
func (p *ProgramSource) VertexText() string { return strings.Join(p.Vertex, "\n") }

// FragmentText returns the fragment stage joined with newlines.
func (p *ProgramSource) FragmentText() string { return strings.Join(p.Fragment, "\n") }

// Build generates the program source for a configuration snapshot in
// the requested dialect. It is deterministic: equal (cfg.Hash(),
// dialect) pairs yield byte-identical output.
func Build(cfg dtx.Config, dialect Dialect) *ProgramSource {
	src := &ProgramSource{
		Hash:    cfg.Hash(),
		Dialect: dialect,
	}
	switch dialect {
	case WGSL:
		src.Module = WGSLSource(cfg)
		src.Uniforms = UniformBlockLayout(cfg)
		src.BlockSize = UniformBlockSize(cfg)
	default:
		src.Vertex = VertexSource(cfg)
		src.Fragment = FragmentSource(cfg)
	}
	return src
}
