package shader

import (
	"strings"
	"testing"

	"github.com/gpuviz/dtx"
)

func TestUniformBlockLayoutOffsets(t *testing.T) {
	cfg := dtx.Config{SectionPlaneCount: 2}
	fields := UniformBlockLayout(cfg)

	want := map[string]int{
		USceneModelMatrix:     0,
		UViewMatrix:           64,
		UProjMatrix:           128,
		UCameraEyeRTC:         192,
		URenderPass:           208,
		ULogDepthBufFC:        212,
		SectionPlanePos(0):    224,
		SectionPlaneActive(0): 236,
		SectionPlaneDir(0):    240,
		SectionPlanePos(1):    256,
		SectionPlaneActive(1): 268,
		SectionPlaneDir(1):    272,
	}
	got := make(map[string]int, len(fields))
	prev := -1
	for _, f := range fields {
		got[f.Name] = f.Offset
		if f.Offset <= prev {
			t.Errorf("field %s at %d not in ascending order", f.Name, f.Offset)
		}
		prev = f.Offset
		if f.Offset+f.Size > UniformBlockSize(cfg) {
			t.Errorf("field %s overruns block", f.Name)
		}
	}
	for name, off := range want {
		if got[name] != off {
			t.Errorf("%s offset = %d, want %d", name, got[name], off)
		}
	}
	if size := UniformBlockSize(cfg); size != 224+2*32 {
		t.Errorf("block size = %d, want %d", size, 224+2*32)
	}
}

func TestWGSLSourceDeterministic(t *testing.T) {
	cfg := dtx.Config{SectionPlaneCount: 6, LogDepth: true, LogDepthSupported: true, VertexOffsets: true}
	if WGSLSource(cfg) != WGSLSource(cfg) {
		t.Fatal("two generations for the same configuration differ")
	}
}

func TestWGSLSourceSemanticParity(t *testing.T) {
	cfg := dtx.Config{SectionPlaneCount: 1, LogDepth: true, LogDepthSupported: true, VertexOffsets: true}
	src := WGSLSource(cfg)

	for _, s := range []string{
		// Same cull sentinel, pass filter, and backface flip as GLSL.
		"vec4<f32>(3.0, 3.0, 3.0, 1.0)",
		"!= u.render_pass",
		"(object_index_high << 16u) | object_index_low",
		"object_instance_matrix * object_decode_matrix",
		"dot(position - camera_eye_rtc_in_quantized_space, normal) < 0.0",
		"view_normal.z < 0.0",
		"positions[2 - corner]",
		"clamp(dot(-plane.dir, in.world_position.xyz - plane.pos), 0.0, 1000.0)",
		"log2(in.frag_depth_w) * u.log_depth_buf_fc * 0.5",
		"@group(0) @binding(0) var<uniform>",
		"@group(1) @binding(6) var tex_object_offsets",
		"fn vs_main", "fn fs_main",
	} {
		if !strings.Contains(src, s) {
			t.Errorf("missing %q", s)
		}
	}
}

func TestWGSLSourceConditionals(t *testing.T) {
	src := WGSLSource(dtx.Config{})
	for _, s := range []string{"tex_object_offsets", "frag_depth", "SectionPlane", "discard"} {
		if strings.Contains(src, s) {
			t.Errorf("base configuration should not emit %q", s)
		}
	}
}

func TestBuildDialects(t *testing.T) {
	cfg := dtx.Config{SectionPlaneCount: 2, LogDepth: true, LogDepthSupported: true}

	glsl := Build(cfg, GLSL)
	if glsl.Hash != cfg.Hash() || glsl.Dialect != GLSL {
		t.Fatalf("glsl key = %q/%v", glsl.Hash, glsl.Dialect)
	}
	if len(glsl.Vertex) == 0 || len(glsl.Fragment) == 0 || glsl.Module != "" {
		t.Fatal("glsl program should carry staged source only")
	}
	if !strings.HasPrefix(glsl.VertexText(), "#version 300 es") {
		t.Error("vertex text missing version pragma")
	}

	wgsl := Build(cfg, WGSL)
	if wgsl.Module == "" || wgsl.Vertex != nil || wgsl.Fragment != nil {
		t.Fatal("wgsl program should carry a module only")
	}
	if len(wgsl.Uniforms) != 6+3*cfg.SectionPlaneCount {
		t.Errorf("uniform field count = %d", len(wgsl.Uniforms))
	}
	if wgsl.BlockSize != UniformBlockSize(cfg) {
		t.Errorf("block size = %d", wgsl.BlockSize)
	}
}

func TestSourceCache(t *testing.T) {
	c := NewSourceCache()
	a := dtx.Config{SectionPlaneCount: 2}
	b := dtx.Config{SectionPlaneCount: 2} // same hash
	d := dtx.Config{SectionPlaneCount: 3}

	first := c.Get(a, GLSL)
	if got := c.Get(b, GLSL); got != first {
		t.Error("equal hashes should share one entry")
	}
	if got := c.Get(a, WGSL); got == first {
		t.Error("dialects must not share entries")
	}
	c.Get(d, GLSL)
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("stats = %d hits, %d misses; want 1, 3", hits, misses)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after purge = %d", c.Len())
	}
}
