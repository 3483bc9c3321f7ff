package datatex

import "github.com/go-gl/mathgl/mgl32"

// AttributesTexture holds one 8-texel row per object. Each texel is four
// 32-bit unsigned channels, matching a RGBA32-uint GPU texture of width
// ObjectRowTexels and height NumObjects.
type AttributesTexture struct {
	NumObjects int

	// Texels is row-major: object o occupies
	// Texels[o*ObjectRowTexels : (o+1)*ObjectRowTexels].
	Texels [][4]uint32
}

// Texel returns channel values for one texel of an object's row.
func (t *AttributesTexture) Texel(object, texel int) [4]uint32 {
	return t.Texels[object*ObjectRowTexels+texel]
}

// MatrixTexture holds one 4x4 float32 matrix per object, one column
// vector per texel, matching a RGBA32-float GPU texture of width
// MatrixRowTexels and height NumObjects.
type MatrixTexture struct {
	NumObjects int

	// Values is column-major per object: 16 floats per row.
	Values []float32
}

// Mat4 reconstructs object o's matrix, exactly as the vertex stage does
// from four texel fetches.
func (t *MatrixTexture) Mat4(object int) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], t.Values[object*16:object*16+16])
	return m
}

// SetMat4 stores object o's matrix.
func (t *MatrixTexture) SetMat4(object int, m mgl32.Mat4) {
	copy(t.Values[object*16:object*16+16], m[:])
}

// PositionsTexture holds quantized vertex coordinates shared by all
// objects in a layer: one x,y,z triplet of 16-bit values per vertex,
// addressed linearly with the fixed RowWidth split.
type PositionsTexture struct {
	Count int

	// Coords is 3 values per vertex.
	Coords []uint16
}

// Coord returns the quantized coordinates of vertex i.
func (t *PositionsTexture) Coord(i int) [3]uint16 {
	return [3]uint16{t.Coords[i*3], t.Coords[i*3+1], t.Coords[i*3+2]}
}

// IndexTexture holds one triangle per texel: three object-local vertex
// indices in the texel's first three channels. Channel width on the GPU
// (8, 16, or 32 bits) is the bucket's; CPU-side values are kept as
// uint32 regardless.
type IndexTexture struct {
	Triangles int

	// Indices is 3 values per triangle.
	Indices []uint32
}

// Triangle returns the object-local vertex indices of triangle i.
func (t *IndexTexture) Triangle(i int) [3]uint32 {
	return [3]uint32{t.Indices[i*3], t.Indices[i*3+1], t.Indices[i*3+2]}
}

// PortionTexture maps a bucket-local polygon index to the object that
// owns it. Each polygon occupies two consecutive 16-bit texels — a high
// and a low word — so object indices are full 32-bit values even though
// the texture is 16 bits per texel.
type PortionTexture struct {
	Polygons int

	// IDs is PortionTexelsPerPolygon values per polygon: high word
	// first.
	IDs []uint16
}

// ObjectIndex recombines the two texels of polygon p, mirroring the
// vertex stage's pair of fetches.
func (t *PortionTexture) ObjectIndex(p int) uint32 {
	high := uint32(t.IDs[p*PortionTexelsPerPolygon])
	low := uint32(t.IDs[p*PortionTexelsPerPolygon+1])
	return high<<16 | low
}

// setObjectIndex stores the object index of polygon p as a high/low
// word pair.
func (t *PortionTexture) setObjectIndex(p int, object uint32) {
	t.IDs[p*PortionTexelsPerPolygon] = uint16(object >> 16)
	t.IDs[p*PortionTexelsPerPolygon+1] = uint16(object & 0xFFFF)
}

// OffsetsTexture holds one world-space positional offset per object,
// consulted by the vertex stage only when the scene configuration
// enables per-vertex offsets.
type OffsetsTexture struct {
	NumObjects int

	// Offsets is 3 values per object.
	Offsets []float32
}

// Offset returns object o's positional offset.
func (t *OffsetsTexture) Offset(o int) [3]float32 {
	return [3]float32{t.Offsets[o*3], t.Offsets[o*3+1], t.Offsets[o*3+2]}
}
