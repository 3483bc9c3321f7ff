package shader

import (
	"strconv"
	"strings"

	"github.com/gpuviz/dtx"
)

// UniformField names one host-visible field of the WGSL uniform block.
// Names match the GLSL uniform names so renderers upload by name in
// either dialect.
type UniformField struct {
	Name   string
	Offset int
	Size   int
}

// planeStride is the byte stride of one section plane in the uniform
// block: vec3 pos, f32 active, vec3 dir, f32 pad.
const planeStride = 32

// planesBase is the byte offset of the section plane array.
const planesBase = 224

// UniformBlockSize returns the byte size of the uniform block for a
// configuration snapshot.
func UniformBlockSize(cfg dtx.Config) int {
	return planesBase + cfg.SectionPlaneCount*planeStride
}

// UniformBlockLayout returns the name-to-offset table of the WGSL
// uniform block, in ascending offset order.
func UniformBlockLayout(cfg dtx.Config) []UniformField {
	fields := []UniformField{
		{Name: USceneModelMatrix, Offset: 0, Size: 64},
		{Name: UViewMatrix, Offset: 64, Size: 64},
		{Name: UProjMatrix, Offset: 128, Size: 64},
		{Name: UCameraEyeRTC, Offset: 192, Size: 12},
		{Name: URenderPass, Offset: 208, Size: 4},
		{Name: ULogDepthBufFC, Offset: 212, Size: 4},
	}
	for i := 0; i < cfg.SectionPlaneCount; i++ {
		base := planesBase + i*planeStride
		fields = append(fields,
			UniformField{Name: SectionPlanePos(i), Offset: base, Size: 12},
			UniformField{Name: SectionPlaneActive(i), Offset: base + 12, Size: 4},
			UniformField{Name: SectionPlaneDir(i), Offset: base + 16, Size: 12},
		)
	}
	return fields
}

// WGSLSource emits the WGSL module for a configuration snapshot. The
// module carries both entry points (vs_main, fs_main) and expects the
// uniform block described by UniformBlockLayout at group(0) binding(0)
// and the layer textures at group(1).
func WGSLSource(cfg dtx.Config) string {
	logDepth := cfg.LogDepthEnabled()
	planes := cfg.SectionPlaneCount

	var b strings.Builder
	w := func(line string) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	w("// dtx triangles layer drawing module")
	w("")
	if planes > 0 {
		w("struct SectionPlane {")
		w("    pos: vec3<f32>,")
		w("    active: f32,")
		w("    dir: vec3<f32>,")
		w("    _pad: f32,")
		w("}")
		w("")
	}
	w("struct SceneUniforms {")
	w("    scene_model_matrix: mat4x4<f32>,")
	w("    view_matrix: mat4x4<f32>,")
	w("    proj_matrix: mat4x4<f32>,")
	w("    camera_eye_rtc: vec3<f32>,")
	w("    _pad_eye: f32,")
	w("    render_pass: i32,")
	w("    log_depth_buf_fc: f32,")
	w("    _pad0: f32,")
	w("    _pad1: f32,")
	if planes > 0 {
		w("    planes: array<SectionPlane, " + strconv.Itoa(planes) + ">,")
	}
	w("}")
	w("")
	w("@group(0) @binding(0) var<uniform> u: SceneUniforms;")
	w("")
	w("@group(1) @binding(0) var tex_object_attributes: texture_2d<u32>;")
	w("@group(1) @binding(1) var tex_object_decode_matrices: texture_2d<f32>;")
	w("@group(1) @binding(2) var tex_object_instance_matrices: texture_2d<f32>;")
	w("@group(1) @binding(3) var tex_vertex_coords: texture_2d<u32>;")
	w("@group(1) @binding(4) var tex_polygon_indices: texture_2d<u32>;")
	w("@group(1) @binding(5) var tex_portion_ids: texture_2d<u32>;")
	if cfg.VertexOffsets {
		w("@group(1) @binding(6) var tex_object_offsets: texture_2d<f32>;")
	}
	w("")
	w("struct VertexOut {")
	w("    @builtin(position) position: vec4<f32>,")
	w("    @location(0) world_position: vec4<f32>,")
	w("    @location(1) color: vec4<f32>,")
	w("    @location(2) @interpolate(flat) flags2: u32,")
	if logDepth {
		w("    @location(3) frag_depth_w: f32,")
		w("    @location(4) is_perspective: f32,")
	}
	w("}")
	w("")
	w("fn is_perspective_matrix(m: mat4x4<f32>) -> bool {")
	w("    return m[2][3] == -1.0;")
	w("}")
	w("")
	w("// mat4 inverse by adjugate; WGSL has no inverse builtin.")
	w("fn inverse4(m: mat4x4<f32>) -> mat4x4<f32> {")
	w("    let a00 = m[0][0]; let a01 = m[0][1]; let a02 = m[0][2]; let a03 = m[0][3];")
	w("    let a10 = m[1][0]; let a11 = m[1][1]; let a12 = m[1][2]; let a13 = m[1][3];")
	w("    let a20 = m[2][0]; let a21 = m[2][1]; let a22 = m[2][2]; let a23 = m[2][3];")
	w("    let a30 = m[3][0]; let a31 = m[3][1]; let a32 = m[3][2]; let a33 = m[3][3];")
	w("")
	w("    let b00 = a00 * a11 - a01 * a10;")
	w("    let b01 = a00 * a12 - a02 * a10;")
	w("    let b02 = a00 * a13 - a03 * a10;")
	w("    let b03 = a01 * a12 - a02 * a11;")
	w("    let b04 = a01 * a13 - a03 * a11;")
	w("    let b05 = a02 * a13 - a03 * a12;")
	w("    let b06 = a20 * a31 - a21 * a30;")
	w("    let b07 = a20 * a32 - a22 * a30;")
	w("    let b08 = a20 * a33 - a23 * a30;")
	w("    let b09 = a21 * a32 - a22 * a31;")
	w("    let b10 = a21 * a33 - a23 * a31;")
	w("    let b11 = a22 * a33 - a23 * a32;")
	w("")
	w("    let det = b00 * b11 - b01 * b10 + b02 * b09 + b03 * b08 - b04 * b07 + b05 * b06;")
	w("    let inv_det = 1.0 / det;")
	w("")
	w("    return mat4x4<f32>(")
	w("        (a11 * b11 - a12 * b10 + a13 * b09) * inv_det,")
	w("        (a02 * b10 - a01 * b11 - a03 * b09) * inv_det,")
	w("        (a31 * b05 - a32 * b04 + a33 * b03) * inv_det,")
	w("        (a22 * b04 - a21 * b05 - a23 * b03) * inv_det,")
	w("        (a12 * b08 - a10 * b11 - a13 * b07) * inv_det,")
	w("        (a00 * b11 - a02 * b08 + a03 * b07) * inv_det,")
	w("        (a32 * b02 - a30 * b05 - a33 * b01) * inv_det,")
	w("        (a20 * b05 - a22 * b02 + a23 * b01) * inv_det,")
	w("        (a10 * b10 - a11 * b08 + a13 * b06) * inv_det,")
	w("        (a01 * b08 - a00 * b10 - a03 * b06) * inv_det,")
	w("        (a30 * b04 - a31 * b02 + a33 * b00) * inv_det,")
	w("        (a21 * b02 - a20 * b04 - a23 * b00) * inv_det,")
	w("        (a11 * b07 - a10 * b09 - a12 * b06) * inv_det,")
	w("        (a00 * b09 - a01 * b07 + a02 * b06) * inv_det,")
	w("        (a31 * b01 - a30 * b03 - a32 * b00) * inv_det,")
	w("        (a20 * b03 - a21 * b01 + a22 * b00) * inv_det);")
	w("}")
	w("")
	w("fn culled() -> VertexOut {")
	w("    var out: VertexOut;")
	w("    out.position = vec4<f32>(3.0, 3.0, 3.0, 1.0);")
	w("    return out;")
	w("}")
	w("")
	w("@vertex")
	w("fn vs_main(@builtin(vertex_index) vertex_index: u32) -> VertexOut {")
	w("    let polygon_index = i32(vertex_index) / 3;")
	w("")
	w("    // object index: two 16-bit words per polygon, high word first")
	w("    let h_packed = (polygon_index << 1u) & 4095;")
	w("    let v_packed = (polygon_index << 1u) >> 12u;")
	w("    let object_index_high = textureLoad(tex_portion_ids, vec2<i32>(h_packed, v_packed), 0).r;")
	w("    let object_index_low = textureLoad(tex_portion_ids, vec2<i32>(h_packed + 1, v_packed), 0).r;")
	w("    let object_index = i32((object_index_high << 16u) | object_index_low);")
	w("")
	w("    let flags = textureLoad(tex_object_attributes, vec2<i32>(1, object_index), 0);")
	w("    if (i32(flags.r) != u.render_pass) {")
	w("        return culled();")
	w("    }")
	w("")
	w("    let flags2 = textureLoad(tex_object_attributes, vec2<i32>(2, object_index), 0);")
	w("    let vertex_base = i32(textureLoad(tex_object_attributes, vec2<i32>(3, object_index), 0).r);")
	w("    let index_base_offset = i32(textureLoad(tex_object_attributes, vec2<i32>(4, object_index), 0).r);")
	w("")
	w("    let h_index = (polygon_index - index_base_offset) & 4095;")
	w("    let v_index = (polygon_index - index_base_offset) >> 12u;")
	w("    let vertex_indices = vec3<i32>(textureLoad(tex_polygon_indices, vec2<i32>(h_index, v_index), 0).rgb);")
	w("    let unique_vertex_indexes = vertex_indices + vertex_base;")
	w("")
	w("    let index_position_h = unique_vertex_indexes & vec3<i32>(4095);")
	w("    let index_position_v = unique_vertex_indexes >> vec3<u32>(12u);")
	w("")
	w("    let object_decode_matrix = mat4x4<f32>(")
	w("        textureLoad(tex_object_decode_matrices, vec2<i32>(0, object_index), 0),")
	w("        textureLoad(tex_object_decode_matrices, vec2<i32>(1, object_index), 0),")
	w("        textureLoad(tex_object_decode_matrices, vec2<i32>(2, object_index), 0),")
	w("        textureLoad(tex_object_decode_matrices, vec2<i32>(3, object_index), 0));")
	w("    let object_instance_matrix = mat4x4<f32>(")
	w("        textureLoad(tex_object_instance_matrices, vec2<i32>(0, object_index), 0),")
	w("        textureLoad(tex_object_instance_matrices, vec2<i32>(1, object_index), 0),")
	w("        textureLoad(tex_object_instance_matrices, vec2<i32>(2, object_index), 0),")
	w("        textureLoad(tex_object_instance_matrices, vec2<i32>(3, object_index), 0));")
	w("    let object_decode_and_instance_matrix = object_instance_matrix * object_decode_matrix;")
	w("")
	w("    var positions = array<vec3<f32>, 3>(")
	w("        vec3<f32>(textureLoad(tex_vertex_coords, vec2<i32>(index_position_h.x, index_position_v.x), 0).rgb),")
	w("        vec3<f32>(textureLoad(tex_vertex_coords, vec2<i32>(index_position_h.y, index_position_v.y), 0).rgb),")
	w("        vec3<f32>(textureLoad(tex_vertex_coords, vec2<i32>(index_position_h.z, index_position_v.z), 0).rgb));")
	w("")
	w("    var normal = normalize(cross(positions[2] - positions[0], positions[1] - positions[0]));")
	w("")
	w("    let color = textureLoad(tex_object_attributes, vec2<i32>(0, object_index), 0);")
	w("    if (color.a == 0u) {")
	w("        return culled();")
	w("    }")
	w("")
	w("    let solid = textureLoad(tex_object_attributes, vec2<i32>(5, object_index), 0).r;")
	w("    let corner = i32(vertex_index % 3u);")
	w("    var position = positions[corner];")
	w("")
	w("    // non-solid geometry: pick the front-facing winding per triangle")
	w("    if (solid != 1u) {")
	w("        if (is_perspective_matrix(u.proj_matrix)) {")
	w("            let camera_eye_rtc_in_quantized_space = (inverse4(u.scene_model_matrix * object_decode_and_instance_matrix) * vec4<f32>(u.camera_eye_rtc, 1.0)).xyz;")
	w("            if (dot(position - camera_eye_rtc_in_quantized_space, normal) < 0.0) {")
	w("                position = positions[2 - corner];")
	w("                normal = -normal;")
	w("            }")
	w("        } else {")
	w("            let view_normal = normalize((transpose(inverse4(u.view_matrix * object_decode_and_instance_matrix)) * vec4<f32>(normal, 0.0)).xyz);")
	w("            if (view_normal.z < 0.0) {")
	w("                position = positions[2 - corner];")
	w("                normal = -normal;")
	w("            }")
	w("        }")
	w("    }")
	w("")
	w("    var world_position = u.scene_model_matrix * (object_decode_and_instance_matrix * vec4<f32>(position, 1.0));")
	if cfg.VertexOffsets {
		w("    let object_offset = textureLoad(tex_object_offsets, vec2<i32>(0, object_index), 0);")
		w("    world_position = vec4<f32>(world_position.xyz + object_offset.xyz, world_position.w);")
	}
	w("    let view_position = u.view_matrix * world_position;")
	w("    let clip_pos = u.proj_matrix * view_position;")
	w("")
	w("    var out: VertexOut;")
	w("    out.position = clip_pos;")
	w("    out.world_position = world_position;")
	w("    out.flags2 = flags2.r;")
	w("    out.color = vec4<f32>(color) / 255.0;")
	if logDepth {
		w("    out.frag_depth_w = 1.0 + clip_pos.w;")
		w("    out.is_perspective = select(0.0, 1.0, is_perspective_matrix(u.proj_matrix));")
	}
	w("    return out;")
	w("}")
	w("")
	if logDepth {
		w("struct FragmentOut {")
		w("    @location(0) color: vec4<f32>,")
		w("    @builtin(frag_depth) depth: f32,")
		w("}")
		w("")
		w("@fragment")
		w("fn fs_main(in: VertexOut) -> FragmentOut {")
	} else {
		w("@fragment")
		w("fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {")
	}
	if planes > 0 {
		w("    if (in.flags2 > 0u) {")
		w("        var dist = 0.0;")
		w("        for (var i = 0u; i < " + strconv.Itoa(planes) + "u; i = i + 1u) {")
		w("            let plane = u.planes[i];")
		w("            if (plane.active != 0.0) {")
		w("                dist = dist + clamp(dot(-plane.dir, in.world_position.xyz - plane.pos), 0.0, 1000.0);")
		w("            }")
		w("        }")
		w("        if (dist > 0.0) {")
		w("            discard;")
		w("        }")
		w("    }")
	}
	if logDepth {
		w("    var out: FragmentOut;")
		w("    out.color = in.color;")
		w("    if (in.is_perspective == 0.0) {")
		w("        out.depth = in.position.z;")
		w("    } else {")
		w("        out.depth = log2(in.frag_depth_w) * u.log_depth_buf_fc * 0.5;")
		w("    }")
		w("    return out;")
		w("}")
	} else {
		w("    return in.color;")
		w("}")
	}

	return b.String()
}
