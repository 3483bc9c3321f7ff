package datatex

import "fmt"

// Encoding constants. These are baked into generated shader source and
// into every packed texture, so they must stay stable across releases.
const (
	// RowWidth is the width, in texels, of every polygon- and
	// vertex-indexed texture. An index i addresses texel
	// (i & RowMask, i >> RowShift).
	RowWidth = 4096

	// RowMask extracts the column from a linear index.
	RowMask = RowWidth - 1

	// RowShift extracts the row from a linear index.
	RowShift = 12

	// ObjectRowTexels is the width of the per-object attributes texture:
	// one 8-texel row per object.
	ObjectRowTexels = 8

	// MatrixRowTexels is the width of the per-object matrix textures:
	// one 4x4 matrix per row, one column vector per texel.
	MatrixRowTexels = 4

	// PortionTexelsPerPolygon is the number of 16-bit texels holding one
	// polygon's object index: a high word and a low word, fetched
	// separately and recombined in the vertex stage.
	PortionTexelsPerPolygon = 2

	// QuantRange is the quantization range of vertex coordinates:
	// each axis maps onto [0, QuantRange] in 16-bit texels.
	QuantRange = 65535
)

// Attribute texel positions within an object's 8-texel row.
const (
	// TexelColor holds the object color, RGBA, one byte per channel.
	TexelColor = 0

	// TexelFlags holds the flags word; its first channel is the render
	// pass the object participates in.
	TexelFlags = 1

	// TexelFlags2 holds the flags2 word; its first channel is nonzero
	// for clippable objects.
	TexelFlags2 = 2

	// TexelVertexBase holds the object's base offset into the shared
	// vertex-coordinate texture.
	TexelVertexBase = 3

	// TexelIndexBaseOffset holds the offset subtracted from the polygon
	// index before addressing the polygon index texture.
	TexelIndexBaseOffset = 4

	// TexelSolid is nonzero for solid (closed) geometry; non-solid
	// geometry gets the dynamic backface flip in the vertex stage.
	TexelSolid = 5
)

// Capacity limits implied by RowWidth and the 4096-row ceiling of
// commonly guaranteed GPU texture sizes.
const (
	// MaxObjects is the maximum number of objects per layer: one
	// attributes row per object.
	MaxObjects = 4096

	// MaxVertices is the maximum number of vertices in a layer's shared
	// coordinate texture.
	MaxVertices = RowWidth * 4096

	// MaxPolygons is the maximum number of triangles per index-width
	// bucket, bounded by the portion-id texture at two texels per
	// polygon.
	MaxPolygons = RowWidth * 4096 / PortionTexelsPerPolygon
)

// BucketKind selects one of the three vertex-index encodings a layer may
// contain. Objects land in the narrowest bucket their object-local
// indices fit, which keeps index texture memory proportional to mesh
// complexity.
type BucketKind int

// Index-width buckets.
const (
	Bucket8 BucketKind = iota
	Bucket16
	Bucket32

	// NumBuckets is the number of index-width buckets.
	NumBuckets = 3
)

// MaxIndex returns the largest object-local vertex index representable
// in this bucket.
func (k BucketKind) MaxIndex() uint32 {
	switch k {
	case Bucket8:
		return 0xFF
	case Bucket16:
		return 0xFFFF
	default:
		return 0xFFFFFFFF
	}
}

// String returns a human-readable name for the bucket kind.
func (k BucketKind) String() string {
	switch k {
	case Bucket8:
		return "8-bit"
	case Bucket16:
		return "16-bit"
	case Bucket32:
		return "32-bit"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// bucketFor returns the narrowest bucket that can hold maxIndex.
func bucketFor(maxIndex uint32) BucketKind {
	switch {
	case maxIndex <= Bucket8.MaxIndex():
		return Bucket8
	case maxIndex <= Bucket16.MaxIndex():
		return Bucket16
	default:
		return Bucket32
	}
}
