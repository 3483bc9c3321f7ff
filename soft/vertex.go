package soft

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/datatex"
)

// Plane is a section plane in the layer's RTC space, already rebased by
// the caller the way the renderer rebases uniform values.
type Plane struct {
	Active bool
	Pos    mgl32.Vec3
	Dir    mgl32.Vec3
}

// Uniforms carries the per-draw state the vertex stage reads, in the
// same space the renderer uploads: view and eye already rebased to the
// layer's RTC origin and narrowed to float32.
type Uniforms struct {
	SceneModelMatrix mgl32.Mat4
	ViewMatrix       mgl32.Mat4
	ProjMatrix       mgl32.Mat4
	CameraEyeRTC     mgl32.Vec3

	RenderPass dtx.RenderPass

	// VertexOffsets mirrors the configuration flag: the per-object
	// offset fetch happens only when set.
	VertexOffsets bool

	// Planes is the section-plane list. Evaluated per fragment for
	// clippable objects only.
	Planes []Plane
}

// Vertex is one vertex-stage output.
type Vertex struct {
	// Culled marks the render-pass and zero-alpha rejections; the GPU
	// expresses these as a position outside the clip volume.
	Culled bool

	ClipPos  mgl32.Vec4
	WorldPos mgl32.Vec4
	Color    mgl32.Vec4
	Flags2   uint32

	// ObjectIndex is kept for test introspection.
	ObjectIndex int
}

// isPerspective mirrors the shader's m[2][3] == -1 test. mgl32 matrices
// are column-major, so GLSL m[2][3] is element 11.
func isPerspective(m mgl32.Mat4) bool {
	return m[11] == -1
}

// VertexStage decodes one synthetic vertex of a bucket, performing the
// exact fetch-and-transform sequence of the generated vertex shader.
func VertexStage(layer *datatex.Layer, kind datatex.BucketKind, vertexID int, u *Uniforms) Vertex {
	bucket := layer.Buckets[kind]
	polygonIndex := vertexID / 3
	corner := vertexID % 3

	objectIndex := int(bucket.PortionIDs.ObjectIndex(polygonIndex))
	out := Vertex{ObjectIndex: objectIndex}

	flags := layer.Attributes.Texel(objectIndex, datatex.TexelFlags)
	if dtx.RenderPass(flags[0]) != u.RenderPass {
		out.Culled = true
		return out
	}

	flags2 := layer.Attributes.Texel(objectIndex, datatex.TexelFlags2)
	vertexBase := int(layer.Attributes.Texel(objectIndex, datatex.TexelVertexBase)[0])
	indexBaseOffset := int(layer.Attributes.Texel(objectIndex, datatex.TexelIndexBaseOffset)[0])

	tri := bucket.Indices.Triangle(polygonIndex - indexBaseOffset)

	decode := layer.DecodeMatrices.Mat4(objectIndex)
	instance := layer.InstanceMatrices.Mat4(objectIndex)
	odim := instance.Mul4(decode)

	var positions [3]mgl32.Vec3
	for i, idx := range tri {
		c := layer.Positions.Coord(int(idx) + vertexBase)
		positions[i] = mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
	}

	normal := positions[2].Sub(positions[0]).Cross(positions[1].Sub(positions[0])).Normalize()

	color := layer.Attributes.Texel(objectIndex, datatex.TexelColor)
	if color[3] == 0 {
		out.Culled = true
		return out
	}

	solid := layer.Attributes.Texel(objectIndex, datatex.TexelSolid)[0]
	position := positions[corner]

	if solid != 1 {
		if isPerspective(u.ProjMatrix) {
			eyeQ := u.SceneModelMatrix.Mul4(odim).Inv().Mul4x1(u.CameraEyeRTC.Vec4(1)).Vec3()
			if position.Sub(eyeQ).Dot(normal) < 0 {
				position = positions[2-corner]
				normal = normal.Mul(-1)
			}
		} else {
			viewNormal := u.ViewMatrix.Mul4(odim).Inv().Transpose().Mul4x1(normal.Vec4(0)).Vec3().Normalize()
			if viewNormal.Z() < 0 {
				position = positions[2-corner]
				normal = normal.Mul(-1)
			}
		}
	}

	worldPos := u.SceneModelMatrix.Mul4x1(odim.Mul4x1(position.Vec4(1)))
	if u.VertexOffsets {
		off := layer.Offsets.Offset(objectIndex)
		worldPos = mgl32.Vec4{worldPos.X() + off[0], worldPos.Y() + off[1], worldPos.Z() + off[2], worldPos.W()}
	}
	viewPos := u.ViewMatrix.Mul4x1(worldPos)
	clipPos := u.ProjMatrix.Mul4x1(viewPos)

	out.ClipPos = clipPos
	out.WorldPos = worldPos
	out.Flags2 = flags2[0]
	out.Color = mgl32.Vec4{
		float32(color[0]) / 255,
		float32(color[1]) / 255,
		float32(color[2]) / 255,
		float32(color[3]) / 255,
	}
	return out
}

// Triangle is three assembled vertex-stage outputs.
type Triangle [3]Vertex

// DrawBucket runs the vertex stage over a bucket's synthetic vertex
// range and assembles surviving triangles. Culled triangles (pass
// mismatch, zero alpha) are dropped, matching the GPU where the cull
// sentinel pushes them outside the clip volume.
func DrawBucket(layer *datatex.Layer, kind datatex.BucketKind, u *Uniforms) []Triangle {
	bucket := layer.Buckets[kind]
	var out []Triangle
	for v := 0; v < bucket.NumIndices; v += 3 {
		tri := Triangle{
			VertexStage(layer, kind, v, u),
			VertexStage(layer, kind, v+1, u),
			VertexStage(layer, kind, v+2, u),
		}
		if tri[0].Culled || tri[1].Culled || tri[2].Culled {
			continue
		}
		out = append(out, tri)
	}
	return out
}

// clipped mirrors the fragment stage's section-plane test for one world
// position: clippable fragments accumulate clamped signed distances
// over active planes and are discarded when the sum is positive.
func clipped(worldPos mgl32.Vec3, flags2 uint32, planes []Plane) bool {
	if flags2 == 0 {
		return false
	}
	var dist float32
	for _, p := range planes {
		if !p.Active {
			continue
		}
		d := p.Dir.Mul(-1).Dot(worldPos.Sub(p.Pos))
		if d < 0 {
			d = 0
		} else if d > 1000 {
			d = 1000
		}
		dist += d
	}
	return dist > 0
}
