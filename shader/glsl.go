package shader

import "github.com/gpuviz/dtx"

// VertexSource emits the GLSL ES 3.00 vertex stage for a configuration
// snapshot, one source line per element. Pure: no GPU access, no shared
// builder state across calls.
//
// The stage decodes the texel scene encoding in-place: it derives the
// polygon index from gl_VertexID, resolves the owning object through the
// portion-id lookup texture, filters by render pass, reconstructs the
// triangle's vertex indices and matrices from texel rows, computes a
// face normal, applies the dynamic backface flip for non-solid
// geometry, and transforms through model, view, and projection.
func VertexSource(cfg dtx.Config) []string {
	logDepth := cfg.LogDepthEnabled()

	src := make([]string, 0, 128)
	add := func(lines ...string) { src = append(src, lines...) }

	add("#version 300 es")
	add("// dtx triangles layer drawing vertex stage")
	add("")
	add("#ifdef GL_FRAGMENT_PRECISION_HIGH")
	add("precision highp float;")
	add("precision highp int;")
	add("precision highp usampler2D;")
	add("precision highp isampler2D;")
	add("precision highp sampler2D;")
	add("#else")
	add("precision mediump float;")
	add("precision mediump int;")
	add("precision mediump usampler2D;")
	add("precision mediump isampler2D;")
	add("precision mediump sampler2D;")
	add("#endif")
	add("")
	add("uniform int " + URenderPass + ";")
	add("")
	add("uniform mat4 " + USceneModelMatrix + ";")
	add("uniform mat4 " + UViewMatrix + ";")
	add("uniform mat4 " + UProjMatrix + ";")
	add("uniform vec3 " + UCameraEyeRTC + ";")
	add("")
	add("uniform highp usampler2D " + SamplerObjectAttributes + ";")
	add("uniform highp sampler2D " + SamplerObjectDecodeMatrices + ";")
	add("uniform highp sampler2D " + SamplerObjectInstanceMatrices + ";")
	add("uniform highp usampler2D " + SamplerVertexCoords + ";")
	add("uniform highp usampler2D " + SamplerPolygonIndices + ";")
	add("uniform mediump usampler2D " + SamplerPortionIDs + ";")
	if cfg.VertexOffsets {
		add("uniform highp sampler2D " + SamplerObjectOffsets + ";")
	}
	add("")
	if logDepth {
		add("uniform float " + ULogDepthBufFC + ";")
		add("out float vFragDepth;")
		add("out float isPerspective;")
		add("")
	}
	add("out vec4 vWorldPosition;")
	add("out vec4 vColor;")
	add("flat out uint vFlags2;")
	add("")
	add("bool isPerspectiveMatrix(mat4 m) {")
	add("    return (m[2][3] == - 1.0);")
	add("}")
	add("")
	add("void main(void) {")
	add("    int polygonIndex = gl_VertexID / 3;")
	add("")
	add("    // object index: two 16-bit words per polygon, high word first")
	add("    int h_packed_object_id = (polygonIndex << 1) & 4095;")
	add("    int v_packed_object_id = (polygonIndex << 1) >> 12;")
	add("    uint objectIndexHigh = texelFetch(" + SamplerPortionIDs + ", ivec2(h_packed_object_id, v_packed_object_id), 0).r;")
	add("    uint objectIndexLow = texelFetch(" + SamplerPortionIDs + ", ivec2(h_packed_object_id + 1, v_packed_object_id), 0).r;")
	add("    int objectIndex = int((objectIndexHigh << 16u) | objectIndexLow);")
	add("")
	add("    uvec4 flags = texelFetch(" + SamplerObjectAttributes + ", ivec2(1, objectIndex), 0);")
	add("")
	add("    // per-object render pass filter")
	add("    if (int(flags.r) != " + URenderPass + ") {")
	add("        gl_Position = vec4(3.0, 3.0, 3.0, 1.0);")
	add("        return;")
	add("    }")
	add("")
	add("    uvec4 flags2 = texelFetch(" + SamplerObjectAttributes + ", ivec2(2, objectIndex), 0);")
	add("    int vertexBase = int(texelFetch(" + SamplerObjectAttributes + ", ivec2(3, objectIndex), 0).r);")
	add("    int indexBaseOffset = int(texelFetch(" + SamplerObjectAttributes + ", ivec2(4, objectIndex), 0).r);")
	add("")
	add("    int h_index = (polygonIndex - indexBaseOffset) & 4095;")
	add("    int v_index = (polygonIndex - indexBaseOffset) >> 12;")
	add("    ivec3 vertexIndices = ivec3(texelFetch(" + SamplerPolygonIndices + ", ivec2(h_index, v_index), 0).rgb);")
	add("    ivec3 uniqueVertexIndexes = vertexIndices + vertexBase;")
	add("")
	add("    ivec3 indexPositionH = uniqueVertexIndexes & 4095;")
	add("    ivec3 indexPositionV = uniqueVertexIndexes >> 12;")
	add("")
	add("    mat4 objectDecodeMatrix = mat4(")
	add("        texelFetch(" + SamplerObjectDecodeMatrices + ", ivec2(0, objectIndex), 0),")
	add("        texelFetch(" + SamplerObjectDecodeMatrices + ", ivec2(1, objectIndex), 0),")
	add("        texelFetch(" + SamplerObjectDecodeMatrices + ", ivec2(2, objectIndex), 0),")
	add("        texelFetch(" + SamplerObjectDecodeMatrices + ", ivec2(3, objectIndex), 0));")
	add("    mat4 objectInstanceMatrix = mat4(")
	add("        texelFetch(" + SamplerObjectInstanceMatrices + ", ivec2(0, objectIndex), 0),")
	add("        texelFetch(" + SamplerObjectInstanceMatrices + ", ivec2(1, objectIndex), 0),")
	add("        texelFetch(" + SamplerObjectInstanceMatrices + ", ivec2(2, objectIndex), 0),")
	add("        texelFetch(" + SamplerObjectInstanceMatrices + ", ivec2(3, objectIndex), 0));")
	add("    mat4 objectDecodeAndInstanceMatrix = objectInstanceMatrix * objectDecodeMatrix;")
	add("")
	add("    vec3 positions[3];")
	add("    positions[0] = vec3(texelFetch(" + SamplerVertexCoords + ", ivec2(indexPositionH.x, indexPositionV.x), 0).rgb);")
	add("    positions[1] = vec3(texelFetch(" + SamplerVertexCoords + ", ivec2(indexPositionH.y, indexPositionV.y), 0).rgb);")
	add("    positions[2] = vec3(texelFetch(" + SamplerVertexCoords + ", ivec2(indexPositionH.z, indexPositionV.z), 0).rgb);")
	add("")
	add("    vec3 normal = normalize(cross(positions[2] - positions[0], positions[1] - positions[0]));")
	add("")
	add("    uvec4 color = texelFetch(" + SamplerObjectAttributes + ", ivec2(0, objectIndex), 0);")
	add("    if (color.a == 0u) {")
	add("        gl_Position = vec4(3.0, 3.0, 3.0, 1.0);")
	add("        return;")
	add("    }")
	add("")
	add("    uint solid = texelFetch(" + SamplerObjectAttributes + ", ivec2(5, objectIndex), 0).r;")
	add("    vec3 position = positions[gl_VertexID % 3];")
	add("")
	add("    // non-solid geometry: pick the front-facing winding per triangle")
	add("    if (solid != 1u) {")
	add("        if (isPerspectiveMatrix(" + UProjMatrix + ")) {")
	add("            vec3 cameraEyeRtcInQuantizedSpace = (inverse(" + USceneModelMatrix + " * objectDecodeAndInstanceMatrix) * vec4(" + UCameraEyeRTC + ", 1.0)).xyz;")
	add("            if (dot(position.xyz - cameraEyeRtcInQuantizedSpace, normal) < 0.0) {")
	add("                position = positions[2 - (gl_VertexID % 3)];")
	add("                normal = -normal;")
	add("            }")
	add("        } else {")
	add("            vec3 viewNormal = normalize((transpose(inverse(" + UViewMatrix + " * objectDecodeAndInstanceMatrix)) * vec4(normal, 0.0)).xyz);")
	add("            if (viewNormal.z < 0.0) {")
	add("                position = positions[2 - (gl_VertexID % 3)];")
	add("                normal = -normal;")
	add("            }")
	add("        }")
	add("    }")
	add("")
	add("    vec4 worldPosition = " + USceneModelMatrix + " * (objectDecodeAndInstanceMatrix * vec4(position, 1.0));")
	if cfg.VertexOffsets {
		add("    vec4 objectOffset = texelFetch(" + SamplerObjectOffsets + ", ivec2(0, objectIndex), 0);")
		add("    worldPosition.xyz = worldPosition.xyz + objectOffset.xyz;")
	}
	add("    vec4 viewPosition = " + UViewMatrix + " * worldPosition;")
	add("    vec4 clipPos = " + UProjMatrix + " * viewPosition;")
	if logDepth {
		add("    vFragDepth = 1.0 + clipPos.w;")
		add("    isPerspective = float(isPerspectiveMatrix(" + UProjMatrix + "));")
	}
	add("")
	add("    vWorldPosition = worldPosition;")
	add("    vFlags2 = flags2.r;")
	add("    vColor = vec4(float(color.r) / 255.0, float(color.g) / 255.0, float(color.b) / 255.0, float(color.a) / 255.0);")
	add("    gl_Position = clipPos;")
	add("}")

	return src
}

// FragmentSource emits the GLSL ES 3.00 fragment stage. Section planes
// are evaluated in plane index order, 0..N-1, matching the order their
// uniforms are declared; the loop is unrolled at generation time.
func FragmentSource(cfg dtx.Config) []string {
	logDepth := cfg.LogDepthEnabled()

	src := make([]string, 0, 64)
	add := func(lines ...string) { src = append(src, lines...) }

	add("#version 300 es")
	add("// dtx triangles layer drawing fragment stage")
	add("")
	add("#ifdef GL_FRAGMENT_PRECISION_HIGH")
	add("precision highp float;")
	add("precision highp int;")
	add("#else")
	add("precision mediump float;")
	add("precision mediump int;")
	add("#endif")
	add("")
	if logDepth {
		add("uniform float " + ULogDepthBufFC + ";")
		add("in float vFragDepth;")
		add("in float isPerspective;")
		add("")
	}
	add("in vec4 vWorldPosition;")
	add("in vec4 vColor;")
	add("flat in uint vFlags2;")
	add("")
	for i := 0; i < cfg.SectionPlaneCount; i++ {
		add("uniform bool " + SectionPlaneActive(i) + ";")
		add("uniform vec3 " + SectionPlanePos(i) + ";")
		add("uniform vec3 " + SectionPlaneDir(i) + ";")
	}
	if cfg.SectionPlaneCount > 0 {
		add("")
	}
	add("out vec4 outColor;")
	add("")
	add("void main(void) {")
	if cfg.SectionPlaneCount > 0 {
		add("    if (vFlags2 > 0u) {")
		add("        float dist = 0.0;")
		for i := 0; i < cfg.SectionPlaneCount; i++ {
			add("        if (" + SectionPlaneActive(i) + ") {")
			add("            dist += clamp(dot(-" + SectionPlaneDir(i) + ".xyz, vWorldPosition.xyz - " + SectionPlanePos(i) + ".xyz), 0.0, 1000.0);")
			add("        }")
		}
		add("        if (dist > 0.0) {")
		add("            discard;")
		add("        }")
		add("    }")
	}
	if logDepth {
		add("    gl_FragDepth = isPerspective == 0.0 ? gl_FragCoord.z : log2( vFragDepth ) * " + ULogDepthBufFC + " * 0.5;")
	}
	add("    outColor = vColor;")
	add("}")

	return src
}
